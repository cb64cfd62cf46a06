package arch

// LogicalBlockType is the type of a clustered netlist block.
type LogicalBlockType struct {
	ID   int
	Name string
}

// PhysicalTileType is a kind of tile on the device grid.
type PhysicalTileType struct {
	ID       int
	Name     string
	Capacity int

	// Width and Height are the number of grid cells a tile spans.
	Width, Height int

	// PinWidthOffset and PinHeightOffset place each tile pin on one of the
	// cells the tile spans.
	PinWidthOffset  []int
	PinHeightOffset []int

	compatible map[int]bool
}

// IsCompatible tells if a block of the logical type can sit in this tile.
func (t *PhysicalTileType) IsCompatible(logicalType int) bool {
	return t.compatible[logicalType]
}

// PinOffset returns the cell offset of a tile pin. Unknown pins sit on the
// root cell.
func (t *PhysicalTileType) PinOffset(pin int) (dx, dy int) {
	if pin >= 0 && pin < len(t.PinWidthOffset) {
		dx = t.PinWidthOffset[pin]
	}

	if pin >= 0 && pin < len(t.PinHeightOffset) {
		dy = t.PinHeightOffset[pin]
	}

	return dx, dy
}

// IsEmpty tells if the tile can not host any block.
func (t *PhysicalTileType) IsEmpty() bool {
	return t.Capacity == 0
}
