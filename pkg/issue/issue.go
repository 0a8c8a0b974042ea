// Package issue defines the defect records produced by topology checks.
package issue

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Severity grades an issue.
type Severity string

const (
	Info    Severity = "info"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Rank orders severities: info < warning < error. Unknown values rank lowest.
func (s Severity) Rank() int {
	switch s {
	case Error:
		return 2
	case Warning:
		return 1
	}
	return 0
}

// AtLeast reports whether s is as severe as min.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// ParseSeverity accepts info, warning (or warn) and error, ignoring case.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return Info, nil
	case "warning", "warn":
		return Warning, nil
	case "error":
		return Error, nil
	}
	return "", fmt.Errorf("unknown severity %q (valid: info, warning, error)", s)
}

// Issue is one defect found in a document or across documents. Issues are
// values: checks create them and nothing modifies them afterwards.
type Issue struct {
	IssueType         string         `json:"issue_type"`
	Severity          Severity       `json:"severity"`
	Message           string         `json:"message"`
	AffectedEntityIDs []string       `json:"affected_entity_ids"`
	Extra             map[string]any `json:"extra"`
}

// New creates an issue. A nil affected list or extra map becomes empty, so
// JSON output never carries null.
func New(issueType string, sev Severity, message string, affected []string, extra map[string]any) Issue {
	if affected == nil {
		affected = []string{}
	}
	if extra == nil {
		extra = map[string]any{}
	}
	return Issue{
		IssueType:         issueType,
		Severity:          sev,
		Message:           message,
		AffectedEntityIDs: affected,
		Extra:             extra,
	}
}

// With returns a copy of the issue with one extra field set. The receiver
// and its map are left untouched.
func (i Issue) With(key string, value any) Issue {
	extra := make(map[string]any, len(i.Extra)+1)
	for k, v := range i.Extra {
		extra[k] = v
	}
	extra[key] = value
	i.Extra = extra
	i.AffectedEntityIDs = slices.Clone(i.AffectedEntityIDs)
	return i
}

// Document returns the originating document name, empty for corpus issues.
func (i Issue) Document() string {
	s, _ := i.Extra["document"].(string)
	return s
}

// Compare orders issues by affected ids (element-wise), then issue type,
// then originating document, then message.
func Compare(a, b Issue) int {
	if c := slices.Compare(a.AffectedEntityIDs, b.AffectedEntityIDs); c != 0 {
		return c
	}
	if c := strings.Compare(a.IssueType, b.IssueType); c != 0 {
		return c
	}
	if c := strings.Compare(a.Document(), b.Document()); c != 0 {
		return c
	}
	return strings.Compare(a.Message, b.Message)
}

// Sort orders issues in place by Compare. The sort is stable, so issues that
// compare equal keep their relative order.
func Sort(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return Compare(issues[i], issues[j]) < 0
	})
}

// Count tallies issues per severity.
func Count(issues []Issue) map[Severity]int {
	counts := map[Severity]int{Info: 0, Warning: 0, Error: 0}
	for _, i := range issues {
		counts[i.Severity]++
	}
	return counts
}

// Filter returns the issues at or above min.
func Filter(issues []Issue, min Severity) []Issue {
	out := make([]Issue, 0, len(issues))
	for _, i := range issues {
		if i.Severity.AtLeast(min) {
			out = append(out, i)
		}
	}
	return out
}

// Worst returns the highest severity present, or "" for no issues.
func Worst(issues []Issue) Severity {
	var worst Severity
	for _, i := range issues {
		if worst == "" || i.Severity.Rank() > worst.Rank() {
			worst = i.Severity
		}
	}
	return worst
}
