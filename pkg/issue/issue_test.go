package issue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"info", Info, false},
		{"WARNING", Warning, false},
		{"warn", Warning, false},
		{" error ", Error, false},
		{"critical", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSeverity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeverity_AtLeast(t *testing.T) {
	assert.True(t, Error.AtLeast(Warning))
	assert.True(t, Warning.AtLeast(Warning))
	assert.False(t, Info.AtLeast(Warning))
}

func TestNew_NeverNull(t *testing.T) {
	data, err := json.Marshal(New("orphaned-devices", Warning, "msg", nil, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"issue_type": "orphaned-devices",
		"severity": "warning",
		"message": "msg",
		"affected_entity_ids": [],
		"extra": {}
	}`, string(data))
}

func TestWith_DoesNotMutate(t *testing.T) {
	orig := New("network-loops", Error, "loop", []string{"A"}, map[string]any{"length": 1})
	tagged := orig.With("document", "site-a")

	assert.Equal(t, "site-a", tagged.Document())
	assert.Empty(t, orig.Document())
	assert.Len(t, orig.Extra, 1)
}

func TestSort(t *testing.T) {
	issues := []Issue{
		New("orphaned-devices", Warning, "b", []string{"d2"}, nil),
		New("duplicate-device-id", Error, "a", []string{"d1", "d3"}, nil),
		New("missing-vendor-ids", Warning, "c", []string{"d1"}, nil),
		New("invalid-device-ranges", Error, "d", []string{"d1"}, nil),
		New("invalid-device-ranges", Error, "d", []string{"d1"}, map[string]any{"document": "a"}),
	}

	Sort(issues)

	var got []string
	for _, i := range issues {
		got = append(got, i.IssueType+"/"+i.Document())
	}
	assert.Equal(t, []string{
		"invalid-device-ranges/",
		"invalid-device-ranges/a",
		"missing-vendor-ids/",
		"duplicate-device-id/",
		"orphaned-devices/",
	}, got)
}

func TestCountFilterWorst(t *testing.T) {
	issues := []Issue{
		New("a", Info, "", nil, nil),
		New("b", Warning, "", nil, nil),
		New("c", Warning, "", nil, nil),
	}

	assert.Equal(t, map[Severity]int{Info: 1, Warning: 2, Error: 0}, Count(issues))
	assert.Len(t, Filter(issues, Warning), 2)
	assert.Equal(t, Warning, Worst(issues))
	assert.Equal(t, Severity(""), Worst(nil))
}
