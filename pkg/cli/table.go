package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

const columnGap = 2

// Table renders column-aligned output. Rows are buffered until Flush so that
// column widths account for every row; headers and a dash divider are only
// written when at least one row exists, so empty tables produce no output.
// When a maximum width is set, the widest columns are narrowed and their
// cells word-wrapped onto continuation lines.
type Table struct {
	out      io.Writer
	headers  []string
	prefix   string
	maxWidth int
	rows     [][]string
}

// NewTable creates a table on stdout, sized to the terminal when there is one.
func NewTable(headers ...string) *Table {
	return &Table{out: os.Stdout, headers: headers, maxWidth: TerminalWidth()}
}

// NewTableWriter creates a table writing to w with no width limit.
func NewTableWriter(w io.Writer, headers ...string) *Table {
	return &Table{out: w, headers: headers}
}

// WithPrefix sets a string prepended to each line (headers, divider, rows).
func (t *Table) WithPrefix(prefix string) *Table {
	t.prefix = prefix
	return t
}

// WithMaxWidth limits the rendered line width; 0 disables wrapping.
func (t *Table) WithMaxWidth(width int) *Table {
	t.maxWidth = width
	return t
}

// Row buffers one row. Missing trailing cells render empty.
func (t *Table) Row(values ...string) {
	t.rows = append(t.rows, values)
}

// Flush writes the table. If no rows were added, nothing is printed.
func (t *Table) Flush() error {
	if len(t.rows) == 0 {
		return nil
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visualLen(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			if l := visualLen(row[i]); l > widths[i] {
				widths[i] = l
			}
		}
	}
	if t.maxWidth > 0 {
		widths = capWidths(widths, t.headers, t.maxWidth, visualLen(t.prefix))
	}

	dividers := make([]string, len(t.headers))
	for i, h := range t.headers {
		dividers[i] = strings.Repeat("-", visualLen(h))
	}
	if err := t.writeLine(widths, t.headers); err != nil {
		return err
	}
	if err := t.writeLine(widths, dividers); err != nil {
		return err
	}

	for _, row := range t.rows {
		cells := make([][]string, len(widths))
		height := 1
		for i := range widths {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			cells[i] = wrapCell(v, widths[i])
			if len(cells[i]) > height {
				height = len(cells[i])
			}
		}
		for line := 0; line < height; line++ {
			values := make([]string, len(widths))
			for i := range widths {
				if line < len(cells[i]) {
					values[i] = cells[i][line]
				}
			}
			if err := t.writeLine(widths, values); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Table) writeLine(widths []int, values []string) error {
	var b strings.Builder
	b.WriteString(t.prefix)
	for i, v := range values {
		b.WriteString(v)
		if i == len(values)-1 {
			break
		}
		pad := widths[i] - visualLen(v) + columnGap
		if pad < columnGap {
			pad = columnGap
		}
		b.WriteString(strings.Repeat(" ", pad))
	}
	_, err := fmt.Fprintln(t.out, strings.TrimRight(b.String(), " "))
	return err
}

// visualLen returns the printed width of s, ignoring ANSI escape sequences.
func visualLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			n++
		}
	}
	return n
}

// capWidths narrows the widest columns, one character at a time, until the
// line fits termWidth. A column never shrinks below its header width, so the
// result may still exceed termWidth.
func capWidths(widths []int, headers []string, termWidth, prefixLen int) []int {
	out := make([]int, len(widths))
	copy(out, widths)
	if len(out) == 0 {
		return out
	}

	minWidths := make([]int, len(out))
	for i := range out {
		if i < len(headers) {
			minWidths[i] = visualLen(headers[i])
		}
	}

	total := prefixLen + columnGap*(len(out)-1)
	for _, w := range out {
		total += w
	}

	for total > termWidth {
		widest := -1
		for i, w := range out {
			if w <= minWidths[i] {
				continue
			}
			if widest < 0 || w > out[widest] {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		out[widest]--
		total--
	}
	return out
}

// wrapCell splits s into lines of at most width characters, breaking at
// spaces and hard-breaking words longer than width. Cells that fit are
// returned unchanged, escape codes included.
func wrapCell(s string, width int) []string {
	if width <= 0 || visualLen(s) <= width {
		return []string{s}
	}

	var lines []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		curLen = 0
	}

	for _, word := range strings.Fields(s) {
		for utf8.RuneCountInString(word) > width {
			if curLen > 0 {
				flush()
			}
			runes := []rune(word)
			lines = append(lines, string(runes[:width]))
			word = string(runes[width:])
		}
		wl := utf8.RuneCountInString(word)
		if wl == 0 {
			continue
		}
		switch {
		case curLen == 0:
			cur.WriteString(word)
			curLen = wl
		case curLen+1+wl <= width:
			cur.WriteByte(' ')
			cur.WriteString(word)
			curLen += 1 + wl
		default:
			flush()
			cur.WriteString(word)
			curLen = wl
		}
	}
	if curLen > 0 {
		flush()
	}
	return lines
}
