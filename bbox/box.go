// Package bbox caches the bounding box of every net and updates it
// incrementally as blocks move.
package bbox

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/fplace/arch"
)

// SmallNet is the sink count below which a net's box is always recomputed
// by brute force instead of updated incrementally.
const SmallNet = 4

// Flag tracks how a net's proposed box was produced during a swap.
type Flag int8

// Flags of a net during a swap.
const (
	NotUpdatedYet Flag = iota
	UpdatedOnce
	GotFromScratch
)

func (f Flag) String() string {
	switch f {
	case NotUpdatedYet:
		return "NOT_UPDATED_YET"
	case UpdatedOnce:
		return "UPDATED_ONCE"
	case GotFromScratch:
		return "GOT_FROM_SCRATCH"
	}

	return "UNKNOWN"
}

// Box is an axis aligned rectangle. The same shape holds edge counts, the
// number of pins sitting on each side.
type Box struct {
	XMin, XMax, YMin, YMax int
}

// Method selects how boxes are built when loading them all.
type Method int

// Load methods.
const (
	// Normal builds boxes with edge counts for nets large enough to be
	// updated incrementally.
	Normal Method = iota
	// Check builds every box by brute force.
	Check
)

// Mode is the box shape requested by the user.
type Mode int

// Box modes.
const (
	AutoMode Mode = iota
	CubeMode
	PerLayerMode
)

func (m Mode) String() string {
	switch m {
	case AutoMode:
		return "auto_bb"
	case CubeMode:
		return "cube_bb"
	case PerLayerMode:
		return "per_layer_bb"
	}

	return "unknown"
}

// ParseMode parses "auto_bb", "cube_bb" or "per_layer_bb".
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{AutoMode, CubeMode, PerLayerMode} {
		if m.String() == s {
			return m, nil
		}
	}

	return AutoMode, errors.Errorf("unknown bounding box mode %q", s)
}

// MarshalText writes the mode name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses a mode name.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = v

	return nil
}

// UseCube resolves the requested mode against the device. Single layer
// devices always use cube boxes. Auto picks per-layer boxes only when some
// inter-layer connection is not driven from an output pin.
func UseCube(m Mode, g *arch.Grid) bool {
	if g.NumLayers() == 1 {
		return true
	}

	switch m {
	case CubeMode:
		return true
	case PerLayerMode:
		return false
	}

	return g.InterLayerFromOutputPinsOnly()
}

// axis is one dimension of a box together with its edge counts.
type axis struct {
	min, max         int
	minEdge, maxEdge int
}

func xAxis(coords, edges Box) axis {
	return axis{min: coords.XMin, max: coords.XMax, minEdge: edges.XMin, maxEdge: edges.XMax}
}

func yAxis(coords, edges Box) axis {
	return axis{min: coords.YMin, max: coords.YMax, minEdge: edges.YMin, maxEdge: edges.YMax}
}

func join(x, y axis) (coords, edges Box) {
	coords = Box{XMin: x.min, XMax: x.max, YMin: y.min, YMax: y.max}
	edges = Box{XMin: x.minEdge, XMax: x.maxEdge, YMin: y.minEdge, YMax: y.maxEdge}

	return coords, edges
}

// shift moves one pin along the axis. It reports false when the pin was the
// last one on the extremum it leaves, so the hull can only be rebuilt from
// scratch.
func (a axis) shift(from, to int) (axis, bool) {
	r := a

	switch {
	case to < from:
		if from == a.max {
			if a.maxEdge == 1 {
				return a, false
			}
			r.maxEdge--
		}

		if to < a.min {
			r.min, r.minEdge = to, 1
		} else if to == a.min {
			r.minEdge++
		}
	case to > from:
		if from == a.min {
			if a.minEdge == 1 {
				return a, false
			}
			r.minEdge--
		}

		if to > a.max {
			r.max, r.maxEdge = to, 1
		} else if to == a.max {
			r.maxEdge++
		}
	}

	return r, true
}

// remove takes a pin off the axis, for pins changing layer.
func (a axis) remove(from int) (axis, bool) {
	r := a

	if from == a.max {
		if a.maxEdge == 1 {
			return a, false
		}
		r.maxEdge--
	}

	if from == a.min {
		if a.minEdge == 1 {
			return a, false
		}
		r.minEdge--
	}

	return r, true
}

// add puts a pin on the axis, for pins changing layer.
func (a axis) add(to int) axis {
	r := a

	if to > a.max {
		r.max, r.maxEdge = to, 1
	} else if to == a.max {
		r.maxEdge++
	}

	if to < a.min {
		r.min, r.minEdge = to, 1
	} else if to == a.min {
		r.minEdge++
	}

	return r
}

// grow extends the axis with a pin while building a box from scratch.
func (a *axis) grow(v int) {
	if v == a.min {
		a.minEdge++
	}

	if v == a.max {
		a.maxEdge++
	} else if v < a.min {
		a.min, a.minEdge = v, 1
	} else if v > a.max {
		a.max, a.maxEdge = v, 1
	}
}

func seed(v int) axis {
	return axis{min: v, max: v, minEdge: 1, maxEdge: 1}
}
