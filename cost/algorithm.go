package cost

import "github.com/pkg/errors"

// Algorithm is the placement cost formulation.
type Algorithm int

// Cost formulations.
const (
	BoundingBox Algorithm = iota
	CriticalityTiming
	SlackTiming
)

var algorithmNames = map[Algorithm]string{
	BoundingBox:       "bounding_box",
	CriticalityTiming: "criticality_timing",
	SlackTiming:       "slack_timing",
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}

	return "unknown"
}

// IsTimingDriven tells if the formulation has a timing term.
func (a Algorithm) IsTimingDriven() bool {
	return a == CriticalityTiming || a == SlackTiming
}

// ParseAlgorithm parses an algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	for a, name := range algorithmNames {
		if name == s {
			return a, nil
		}
	}

	return BoundingBox, errors.Errorf("unknown place algorithm %q", s)
}

// MarshalText writes the algorithm name.
func (a Algorithm) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses an algorithm name.
func (a *Algorithm) UnmarshalText(text []byte) error {
	v, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}

	*a = v

	return nil
}
