// Package report renders validation results for people and for tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/newtron-network/topocheck/pkg/cli"
	"github.com/newtron-network/topocheck/pkg/issue"
)

// Exit codes of the check command.
const (
	ExitOK     = 0 // nothing at or above the fail-on severity
	ExitIssues = 1 // at least one issue at or above the fail-on severity
	ExitConfig = 2 // bad request or unreadable input
)

// Status is the overall verdict for a set of issues.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Summary tallies a result set.
type Summary struct {
	Status     Status                 `json:"status"`
	Total      int                    `json:"total"`
	BySeverity map[issue.Severity]int `json:"by_severity"`
	ByType     map[string]int         `json:"by_type"`
	Documents  []string               `json:"documents,omitempty"`
}

// Summarize tallies issues. The status is the worst severity present; info
// issues alone still count as ok.
func Summarize(issues []issue.Issue) Summary {
	s := Summary{
		Status:     StatusOK,
		Total:      len(issues),
		BySeverity: issue.Count(issues),
		ByType:     map[string]int{},
	}
	docs := map[string]bool{}
	for _, i := range issues {
		s.ByType[i.IssueType]++
		if d := i.Document(); d != "" {
			docs[d] = true
		}
	}
	for d := range docs {
		s.Documents = append(s.Documents, d)
	}
	sort.Strings(s.Documents)

	switch issue.Worst(issues) {
	case issue.Error:
		s.Status = StatusError
	case issue.Warning:
		s.Status = StatusWarning
	}
	return s
}

// ExitCode maps issues to the process exit status for a fail-on threshold.
func ExitCode(issues []issue.Issue, failOn issue.Severity) int {
	for _, i := range issues {
		if i.Severity.AtLeast(failOn) {
			return ExitIssues
		}
	}
	return ExitOK
}

// Result is the JSON envelope written by WriteJSON.
type Result struct {
	Summary Summary       `json:"summary"`
	Issues  []issue.Issue `json:"issues"`
}

// WriteJSON writes issues and their summary as indented JSON. The output is
// byte-identical for identical issue lists.
func WriteJSON(w io.Writer, issues []issue.Issue) error {
	if issues == nil {
		issues = []issue.Issue{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Result{Summary: Summarize(issues), Issues: issues}); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// WriteTable writes one row per issue followed by a summary line. A
// maxWidth of 0 disables wrapping.
func WriteTable(w io.Writer, issues []issue.Issue, maxWidth int) error {
	if len(issues) == 0 {
		_, err := fmt.Fprintln(w, cli.Green("No issues found."))
		return err
	}

	t := cli.NewTableWriter(w, "SEVERITY", "CHECK", "DOCUMENT", "ENTITIES", "MESSAGE").WithMaxWidth(maxWidth)
	for _, i := range issues {
		doc := i.Document()
		if doc == "" {
			doc = "-"
		}
		t.Row(FormatSeverity(i.Severity), i.IssueType, doc, strings.Join(i.AffectedEntityIDs, ", "), i.Message)
	}
	if err := t.Flush(); err != nil {
		return err
	}

	summary := Summarize(issues)
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := WriteBreakdown(w, summary); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n", SummaryLine(summary))
	return err
}

// WriteBreakdown writes one dot-padded line per issue type, sorted by type.
func WriteBreakdown(w io.Writer, s Summary) error {
	types := make([]string, 0, len(s.ByType))
	for t := range s.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		if _, err := fmt.Fprintf(w, "  %s %d\n", cli.DotPad(t, 28), s.ByType[t]); err != nil {
			return err
		}
	}
	return nil
}

// SummaryLine renders a summary as one line, e.g.
// "Status: ERROR (5 issues: 2 error, 1 warning, 2 info)".
func SummaryLine(s Summary) string {
	noun := "issues"
	if s.Total == 1 {
		noun = "issue"
	}
	return fmt.Sprintf("Status: %s (%d %s: %d error, %d warning, %d info)",
		FormatStatus(s.Status), s.Total, noun,
		s.BySeverity[issue.Error], s.BySeverity[issue.Warning], s.BySeverity[issue.Info])
}

// FormatSeverity colors a severity for terminal output.
func FormatSeverity(sev issue.Severity) string {
	switch sev {
	case issue.Error:
		return cli.Red("ERROR")
	case issue.Warning:
		return cli.Yellow("WARNING")
	case issue.Info:
		return cli.Cyan("INFO")
	default:
		return string(sev)
	}
}

// FormatStatus colors an overall status.
func FormatStatus(status Status) string {
	switch status {
	case StatusOK:
		return cli.Green("OK")
	case StatusWarning:
		return cli.Yellow("WARNING")
	case StatusError:
		return cli.Red("ERROR")
	default:
		return string(status)
	}
}
