package arch

import "github.com/pkg/errors"

// EmptyTileName names the tile type of cells that host nothing, such as the
// grid corners.
const EmptyTileName = "EMPTY"

// TileTypeSpec describes a physical tile type to the GridBuilder.
type TileTypeSpec struct {
	Name            string
	Capacity        int
	Width, Height   int
	PinWidthOffset  []int
	PinHeightOffset []int
	Compatible      []string
}

// ColumnSpec fills every RepeatX-th inner column, starting at StartX, with a
// tile type.
type ColumnSpec struct {
	Type    string
	StartX  int
	RepeatX int
}

// TilePlacement puts one tile at an explicit root cell.
type TilePlacement struct {
	Type        string
	X, Y, Layer int
}

// GridBuilder builds device grids.
type GridBuilder struct {
	width, height, layers int

	tileTypes    []TileTypeSpec
	logicalTypes []string

	fill      string
	perimeter string
	columns   []ColumnSpec
	tiles     []TilePlacement

	chanWidth  int
	chanWidthX []int
	chanWidthY []int

	interLayerFromOutputPinsOnly bool
}

// MakeGridBuilder creates a GridBuilder with a single layer and unit channel
// widths.
func MakeGridBuilder() GridBuilder {
	return GridBuilder{
		layers:                       1,
		chanWidth:                    1,
		interLayerFromOutputPinsOnly: true,
	}
}

// WithSize sets the number of columns and rows, perimeter included.
func (b GridBuilder) WithSize(width, height int) GridBuilder {
	b.width = width
	b.height = height
	return b
}

// WithLayers sets the number of die layers.
func (b GridBuilder) WithLayers(layers int) GridBuilder {
	b.layers = layers
	return b
}

// WithTileType registers a physical tile type.
func (b GridBuilder) WithTileType(spec TileTypeSpec) GridBuilder {
	b.tileTypes = append(append([]TileTypeSpec(nil), b.tileTypes...), spec)
	return b
}

// WithLogicalType registers a logical block type. Types named by a tile's
// compatibility list are registered implicitly.
func (b GridBuilder) WithLogicalType(name string) GridBuilder {
	b.logicalTypes = append(append([]string(nil), b.logicalTypes...), name)
	return b
}

// WithFill sets the tile type of every inner cell.
func (b GridBuilder) WithFill(tileType string) GridBuilder {
	b.fill = tileType
	return b
}

// WithPerimeter sets the tile type of the perimeter ring, corners excluded.
func (b GridBuilder) WithPerimeter(tileType string) GridBuilder {
	b.perimeter = tileType
	return b
}

// WithColumn adds a repeating column of a tile type.
func (b GridBuilder) WithColumn(col ColumnSpec) GridBuilder {
	b.columns = append(append([]ColumnSpec(nil), b.columns...), col)
	return b
}

// WithTile places a single tile.
func (b GridBuilder) WithTile(t TilePlacement) GridBuilder {
	b.tiles = append(append([]TilePlacement(nil), b.tiles...), t)
	return b
}

// WithChannelWidth sets a uniform channel width.
func (b GridBuilder) WithChannelWidth(w int) GridBuilder {
	b.chanWidth = w
	return b
}

// WithChannelWidths sets per-row (x) and per-column (y) channel widths.
func (b GridBuilder) WithChannelWidths(x, y []int) GridBuilder {
	b.chanWidthX = x
	b.chanWidthY = y
	return b
}

// WithInterLayerFromOutputPinsOnly declares whether inter-layer connections
// all start at output pins.
func (b GridBuilder) WithInterLayerFromOutputPinsOnly(v bool) GridBuilder {
	b.interLayerFromOutputPinsOnly = v
	return b
}

// Build creates the grid.
func (b GridBuilder) Build() (*Grid, error) {
	if b.width < 3 || b.height < 3 {
		return nil, errors.Errorf(
			"grid size %dx%d is too small, need at least 3x3",
			b.width, b.height)
	}

	if b.layers < 1 {
		return nil, errors.Errorf("grid layers %d must be positive", b.layers)
	}

	g := &Grid{
		width:                        b.width,
		height:                       b.height,
		layers:                       b.layers,
		interLayerFromOutputPinsOnly: b.interLayerFromOutputPinsOnly,
	}

	byName, err := b.buildTypes(g)
	if err != nil {
		return nil, err
	}

	if err := b.fillCells(g, byName); err != nil {
		return nil, err
	}

	if err := b.buildChannels(g); err != nil {
		return nil, err
	}

	g.indexLegalLocs()

	return g, nil
}

func (b GridBuilder) buildTypes(g *Grid) (map[string]*PhysicalTileType, error) {
	logical := make(map[string]int)
	registerLogical := func(name string) int {
		if id, ok := logical[name]; ok {
			return id
		}

		id := len(g.logicalTypes)
		logical[name] = id
		g.logicalTypes = append(g.logicalTypes,
			&LogicalBlockType{ID: id, Name: name})

		return id
	}

	for _, name := range b.logicalTypes {
		registerLogical(name)
	}

	byName := make(map[string]*PhysicalTileType)
	empty := &PhysicalTileType{
		ID: 0, Name: EmptyTileName, Width: 1, Height: 1,
		compatible: map[int]bool{},
	}
	byName[EmptyTileName] = empty
	g.tileTypes = append(g.tileTypes, empty)

	for _, spec := range b.tileTypes {
		if _, dup := byName[spec.Name]; dup {
			return nil, errors.Errorf("tile type %q defined twice", spec.Name)
		}

		if spec.Capacity < 0 {
			return nil, errors.Errorf(
				"tile type %q: capacity %d is negative",
				spec.Name, spec.Capacity)
		}

		t := &PhysicalTileType{
			ID:              len(g.tileTypes),
			Name:            spec.Name,
			Capacity:        spec.Capacity,
			Width:           max(spec.Width, 1),
			Height:          max(spec.Height, 1),
			PinWidthOffset:  spec.PinWidthOffset,
			PinHeightOffset: spec.PinHeightOffset,
			compatible:      make(map[int]bool),
		}

		for pin := range t.PinWidthOffset {
			dx, dy := t.PinOffset(pin)
			if dx < 0 || dx >= t.Width || dy < 0 || dy >= t.Height {
				return nil, errors.Errorf(
					"tile type %q: pin %d offset (%d,%d) is outside the tile",
					spec.Name, pin, dx, dy)
			}
		}

		for _, name := range spec.Compatible {
			t.compatible[registerLogical(name)] = true
		}

		byName[spec.Name] = t
		g.tileTypes = append(g.tileTypes, t)
	}

	return byName, nil
}

func (b GridBuilder) fillCells(
	g *Grid,
	byName map[string]*PhysicalTileType,
) error {
	lookup := func(name string) (*PhysicalTileType, error) {
		t, ok := byName[name]
		if !ok {
			return nil, errors.Errorf("unknown tile type %q", name)
		}

		return t, nil
	}

	empty := byName[EmptyTileName]
	g.cells = make([][][]cell, b.layers)

	for layer := range g.cells {
		g.cells[layer] = make([][]cell, b.width)
		for x := range g.cells[layer] {
			g.cells[layer][x] = make([]cell, b.height)
			for y := range g.cells[layer][x] {
				g.cells[layer][x][y] = cell{tile: empty}
			}
		}
	}

	if b.fill != "" {
		fill, err := lookup(b.fill)
		if err != nil {
			return errors.Wrap(err, "fill")
		}

		for layer := 0; layer < b.layers; layer++ {
			b.fillInner(g, fill, layer)
		}
	}

	if b.perimeter != "" {
		perimeter, err := lookup(b.perimeter)
		if err != nil {
			return errors.Wrap(err, "perimeter")
		}

		for layer := 0; layer < b.layers; layer++ {
			b.fillPerimeter(g, perimeter, layer)
		}
	}

	for _, col := range b.columns {
		t, err := lookup(col.Type)
		if err != nil {
			return errors.Wrap(err, "column")
		}

		if col.StartX < 1 {
			return errors.Errorf("column %q starts at x=%d, inside the perimeter",
				col.Type, col.StartX)
		}

		for layer := 0; layer < b.layers; layer++ {
			b.fillColumn(g, t, col, layer)
		}
	}

	for _, p := range b.tiles {
		t, err := lookup(p.Type)
		if err != nil {
			return errors.Wrap(err, "tile")
		}

		root := TileLoc{X: p.X, Y: p.Y, Layer: p.Layer}
		far := TileLoc{X: p.X + t.Width - 1, Y: p.Y + t.Height - 1, Layer: p.Layer}
		if !g.InBounds(root) || !g.InBounds(far) {
			return errors.Errorf("tile %q at (%d,%d,%d) does not fit the grid",
				p.Type, p.X, p.Y, p.Layer)
		}

		stamp(g, t, root)
	}

	return nil
}

func (b GridBuilder) fillInner(g *Grid, t *PhysicalTileType, layer int) {
	for x := 1; x+t.Width-1 <= b.width-2; x += t.Width {
		for y := 1; y+t.Height-1 <= b.height-2; y += t.Height {
			stamp(g, t, TileLoc{X: x, Y: y, Layer: layer})
		}
	}
}

func (b GridBuilder) fillPerimeter(g *Grid, t *PhysicalTileType, layer int) {
	for x := 1; x < b.width-1; x++ {
		stamp(g, t, TileLoc{X: x, Y: 0, Layer: layer})
		stamp(g, t, TileLoc{X: x, Y: b.height - 1, Layer: layer})
	}

	for y := 1; y < b.height-1; y++ {
		stamp(g, t, TileLoc{X: 0, Y: y, Layer: layer})
		stamp(g, t, TileLoc{X: b.width - 1, Y: y, Layer: layer})
	}
}

func (b GridBuilder) fillColumn(
	g *Grid,
	t *PhysicalTileType,
	col ColumnSpec,
	layer int,
) {
	step := col.RepeatX
	if step <= 0 {
		step = b.width
	}

	for x := col.StartX; x+t.Width-1 <= b.width-2; x += step {
		for y := 1; y+t.Height-1 <= b.height-2; y += t.Height {
			stamp(g, t, TileLoc{X: x, Y: y, Layer: layer})
		}
	}
}

func stamp(g *Grid, t *PhysicalTileType, root TileLoc) {
	for dx := 0; dx < t.Width; dx++ {
		for dy := 0; dy < t.Height; dy++ {
			g.cells[root.Layer][root.X+dx][root.Y+dy] = cell{tile: t, dx: dx, dy: dy}
		}
	}
}

func (b GridBuilder) buildChannels(g *Grid) error {
	if b.chanWidthX == nil && b.chanWidthY == nil {
		g.ChanWidthX = uniform(b.height, b.chanWidth)
		g.ChanWidthY = uniform(b.width, b.chanWidth)

		return nil
	}

	if len(b.chanWidthX) != b.height {
		return errors.Errorf("chan_width_x has %d entries, want %d (one per row)",
			len(b.chanWidthX), b.height)
	}

	if len(b.chanWidthY) != b.width {
		return errors.Errorf(
			"chan_width_y has %d entries, want %d (one per column)",
			len(b.chanWidthY), b.width)
	}

	g.ChanWidthX = append([]int(nil), b.chanWidthX...)
	g.ChanWidthY = append([]int(nil), b.chanWidthY...)

	return nil
}

func uniform(n, w int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = w
	}

	return out
}
