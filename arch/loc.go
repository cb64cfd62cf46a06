// Package arch describes the device a netlist is placed onto: tile types,
// the grid of tiles and the routing channel profile.
package arch

import "fmt"

// Loc is a block location: a grid cell, a sub-tile slot inside it and a die
// layer.
type Loc struct {
	X, Y, SubTile, Layer int
}

// Offset is a displacement between two block locations.
type Offset struct {
	X, Y, SubTile, Layer int
}

// TileLoc is the location of a grid cell, without the sub-tile slot.
type TileLoc struct {
	X, Y, Layer int
}

// Add returns the location shifted by the offset.
func (l Loc) Add(o Offset) Loc {
	return Loc{
		X:       l.X + o.X,
		Y:       l.Y + o.Y,
		SubTile: l.SubTile + o.SubTile,
		Layer:   l.Layer + o.Layer,
	}
}

// Sub returns the offset that moves o onto l.
func (l Loc) Sub(o Loc) Offset {
	return Offset{
		X:       l.X - o.X,
		Y:       l.Y - o.Y,
		SubTile: l.SubTile - o.SubTile,
		Layer:   l.Layer - o.Layer,
	}
}

// Neg reverses the offset.
func (o Offset) Neg() Offset {
	return Offset{X: -o.X, Y: -o.Y, SubTile: -o.SubTile, Layer: -o.Layer}
}

// IsZero tells if the offset does not move anything.
func (o Offset) IsZero() bool {
	return o == Offset{}
}

// Tile drops the sub-tile index.
func (l Loc) Tile() TileLoc {
	return TileLoc{X: l.X, Y: l.Y, Layer: l.Layer}
}

func (l Loc) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", l.X, l.Y, l.SubTile, l.Layer)
}

// Region is a floorplan constraint box. A negative Layer or SubTile matches
// any value.
type Region struct {
	XMin, YMin, XMax, YMax int
	Layer                  int
	SubTile                int
}

// Contains tells if the location is inside the region.
func (r Region) Contains(l Loc) bool {
	if l.X < r.XMin || l.X > r.XMax || l.Y < r.YMin || l.Y > r.YMax {
		return false
	}

	if r.Layer >= 0 && l.Layer != r.Layer {
		return false
	}

	if r.SubTile >= 0 && l.SubTile != r.SubTile {
		return false
	}

	return true
}
