package loader

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scalar is the raw text of a YAML or JSON scalar. Numbers are kept as text
// so that values such as -5, 4194304 or "abc" reach the checks unchanged.
// Null and absent both decode to "".
type Scalar string

// UnmarshalYAML accepts any scalar node.
func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", node.Line)
	}
	if node.Tag == "!!null" {
		*s = ""
		return nil
	}
	*s = Scalar(strings.TrimSpace(node.Value))
	return nil
}

// MarshalYAML writes canonical integers as numbers and everything else as
// strings, so that written documents load back to the same text.
func (s Scalar) MarshalYAML() (interface{}, error) {
	if n, err := strconv.Atoi(string(s)); err == nil && strconv.Itoa(n) == string(s) {
		return n, nil
	}
	return string(s), nil
}

func (s Scalar) String() string {
	return string(s)
}

func scalars(ss []Scalar) []string {
	if len(ss) == 0 {
		return nil
	}
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s != "" {
			out = append(out, string(s))
		}
	}
	return out
}

func fromStrings(ss []string) []Scalar {
	if len(ss) == 0 {
		return nil
	}
	out := make([]Scalar, len(ss))
	for i, s := range ss {
		out[i] = Scalar(s)
	}
	return out
}
