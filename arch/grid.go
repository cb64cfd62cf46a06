package arch

type cell struct {
	tile   *PhysicalTileType
	dx, dy int
}

// Grid is the device: a Width x Height x NumLayers array of tiles plus the
// routing channel profile. The perimeter row and column are I/O rings, so
// routed wiring only spans [1, W-2] x [1, H-2].
type Grid struct {
	width, height, layers int

	cells [][][]cell

	tileTypes    []*PhysicalTileType
	logicalTypes []*LogicalBlockType

	// ChanWidthX holds the horizontal channel width of every row and
	// ChanWidthY the vertical channel width of every column.
	ChanWidthX []int
	ChanWidthY []int

	interLayerFromOutputPinsOnly bool

	legalLocs [][]Loc
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// NumLayers returns the number of die layers.
func (g *Grid) NumLayers() int { return g.layers }

// TileTypes lists the physical tile types of the device.
func (g *Grid) TileTypes() []*PhysicalTileType { return g.tileTypes }

// LogicalTypes lists the logical block types known to the device.
func (g *Grid) LogicalTypes() []*LogicalBlockType { return g.logicalTypes }

// LogicalTypeByName finds a logical type. It returns -1 when the name is
// unknown.
func (g *Grid) LogicalTypeByName(name string) int {
	for _, t := range g.logicalTypes {
		if t.Name == name {
			return t.ID
		}
	}

	return -1
}

// InterLayerFromOutputPinsOnly tells if every inter-layer routing connection
// of the device is driven from an output pin.
func (g *Grid) InterLayerFromOutputPinsOnly() bool {
	return g.interLayerFromOutputPinsOnly
}

// InBounds tells if the cell exists.
func (g *Grid) InBounds(t TileLoc) bool {
	return t.X >= 0 && t.X < g.width &&
		t.Y >= 0 && t.Y < g.height &&
		t.Layer >= 0 && t.Layer < g.layers
}

// TileAt returns the tile type covering a cell.
func (g *Grid) TileAt(t TileLoc) *PhysicalTileType {
	return g.cells[t.Layer][t.X][t.Y].tile
}

// RootOffset returns the offset of a cell from the root cell of the tile that
// covers it.
func (g *Grid) RootOffset(t TileLoc) (dx, dy int) {
	c := g.cells[t.Layer][t.X][t.Y]
	return c.dx, c.dy
}

// IsLegal tells if a block of the logical type may be placed at l: the cell
// is on the grid and is the root of its tile, the sub-tile slot exists and the
// tile accepts the type.
func (g *Grid) IsLegal(l Loc, logicalType int) bool {
	if !g.InBounds(l.Tile()) {
		return false
	}

	c := g.cells[l.Layer][l.X][l.Y]
	if c.dx != 0 || c.dy != 0 {
		return false
	}

	if l.SubTile < 0 || l.SubTile >= c.tile.Capacity {
		return false
	}

	return c.tile.IsCompatible(logicalType)
}

// LegalLocs lists every location a block of the logical type may occupy, in
// layer, column, row, sub-tile order.
func (g *Grid) LegalLocs(logicalType int) []Loc {
	if logicalType < 0 || logicalType >= len(g.legalLocs) {
		return nil
	}

	return g.legalLocs[logicalType]
}

func (g *Grid) indexLegalLocs() {
	g.legalLocs = make([][]Loc, len(g.logicalTypes))

	for _, lt := range g.logicalTypes {
		for layer := 0; layer < g.layers; layer++ {
			for x := 0; x < g.width; x++ {
				for y := 0; y < g.height; y++ {
					g.appendLegalLocs(lt.ID, x, y, layer)
				}
			}
		}
	}
}

func (g *Grid) appendLegalLocs(logicalType, x, y, layer int) {
	c := g.cells[layer][x][y]
	if c.dx != 0 || c.dy != 0 || !c.tile.IsCompatible(logicalType) {
		return
	}

	for sub := 0; sub < c.tile.Capacity; sub++ {
		g.legalLocs[logicalType] = append(g.legalLocs[logicalType],
			Loc{X: x, Y: y, SubTile: sub, Layer: layer})
	}
}
