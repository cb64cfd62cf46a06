package timing

import "github.com/sarchlab/fplace/arch"

// ManhattanDelayModel charges a fixed delay per connection plus a delay per
// tile and per layer crossed.
type ManhattanDelayModel struct {
	Base     float64
	PerTile  float64
	PerLayer float64
}

// Delay returns the connection delay between two tiles.
func (m ManhattanDelayModel) Delay(
	from arch.TileLoc, _ int,
	to arch.TileLoc, _ int,
) float64 {
	dist := abs(to.X-from.X) + abs(to.Y-from.Y)

	return m.Base +
		m.PerTile*float64(dist) +
		m.PerLayer*float64(abs(to.Layer-from.Layer))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
