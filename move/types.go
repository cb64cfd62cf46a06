// Package move holds the move transaction: the set of block displacements of
// one swap, with apply, commit and revert over the placement.
package move

import "github.com/pkg/errors"

// Type is the kind of move a generator proposes.
type Type int

// Move types. The first NumAutoTypes are chosen by generators and agents.
const (
	Uniform Type = iota
	Median
	Centroid
	WeightedCentroid
	WeightedMedian
	CriticalUniform
	NumAutoTypes

	Manual   Type = NumAutoTypes
	NumTypes      = Manual + 1
	Invalid       = NumTypes + 1
)

var typeNames = [...]string{
	Uniform:          "Uniform",
	Median:           "Median",
	Centroid:         "Centroid",
	WeightedCentroid: "W. Centroid",
	WeightedMedian:   "W. Median",
	CriticalUniform:  "Crit. Uniform",
	Manual:           "Manual Move",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}

	return "Invalid"
}

var optionNames = map[string]Type{
	"uniform":           Uniform,
	"median":            Median,
	"centroid":          Centroid,
	"weighted_centroid": WeightedCentroid,
	"weighted_median":   WeightedMedian,
	"critical_uniform":  CriticalUniform,
}

// ParseType parses a move type option name such as "weighted_centroid".
func ParseType(s string) (Type, error) {
	t, ok := optionNames[s]
	if !ok {
		return Invalid, errors.Errorf("unknown move type %q", s)
	}

	return t, nil
}

// CreateOutcome tells if recording a move succeeded.
type CreateOutcome int

// Outcomes of recording a move.
const (
	Valid CreateOutcome = iota
	Abort
	// Invert asks the caller to retry the move in the opposite direction.
	Invert
)

func (o CreateOutcome) String() string {
	switch o {
	case Valid:
		return "Valid"
	case Abort:
		return "Abort"
	case Invert:
		return "Invert"
	}

	return "Unknown"
}

// Result is the outcome of one swap.
type Result int

// Swap results.
const (
	Rejected Result = iota
	Accepted
	Aborted
)

func (r Result) String() string {
	switch r {
	case Rejected:
		return "Rejected"
	case Accepted:
		return "Accepted"
	case Aborted:
		return "Aborted"
	}

	return "Unknown"
}
