package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Compliance is the tri-state verdict for a tool.
type Compliance int

const (
	// Unknown is the zero value and never valid in a catalog.
	Unknown Compliance = iota
	Compliant
	Partial
	NonCompliant
)

// Valid reports whether c is one of the three verdicts.
func (c Compliance) Valid() bool {
	return c == Compliant || c == Partial || c == NonCompliant
}

func (c Compliance) String() string {
	switch c {
	case Compliant:
		return "compliant"
	case Partial:
		return "partial"
	case NonCompliant:
		return "non-compliant"
	default:
		return "unknown"
	}
}

// ParseCompliance accepts the catalog spellings: true/false, partial,
// compliant and non-compliant (with or without the hyphen or an underscore).
func ParseCompliance(s string) (Compliance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "compliant":
		return Compliant, nil
	case "partial":
		return Partial, nil
	case "false", "non-compliant", "noncompliant", "non_compliant":
		return NonCompliant, nil
	}
	return Unknown, fmt.Errorf("invalid compliance value %q", s)
}

// UnmarshalYAML decodes a YAML bool or string.
func (c *Compliance) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: compliance must be a scalar", value.Line)
	}
	if value.Tag == "!!bool" {
		b, err := strconv.ParseBool(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		if b {
			*c = Compliant
		} else {
			*c = NonCompliant
		}
		return nil
	}
	parsed, err := ParseCompliance(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = parsed
	return nil
}

// MarshalYAML writes true, false or "partial".
func (c Compliance) MarshalYAML() (any, error) {
	switch c {
	case Compliant:
		return true, nil
	case NonCompliant:
		return false, nil
	case Partial:
		return "partial", nil
	}
	return nil, fmt.Errorf("cannot marshal compliance %d", int(c))
}
