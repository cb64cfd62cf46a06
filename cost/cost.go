// Package cost turns net bounding boxes into wirelength cost and combines
// the placement cost terms into the annealer's total cost.
package cost

import (
	"log/slog"
	"math"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/bbox"
)

// crossCount corrects the half perimeter of a net for its pin count. Entry
// n-1 is used for nets of n pins.
var crossCount = [50]float64{
	1.0, 1.0, 1.0, 1.0828, 1.1536, 1.2206, 1.2823, 1.3385, 1.3991, 1.4493,
	1.4974, 1.5455, 1.5937, 1.6418, 1.6899, 1.7304, 1.7709, 1.8114, 1.8519,
	1.8924, 1.9288, 1.9652, 2.0015, 2.0379, 2.0743, 2.1061, 2.1379, 2.1698,
	2.2016, 2.2334, 2.2646, 2.2958, 2.3271, 2.3583, 2.3895, 2.4187, 2.4479,
	2.4772, 2.5064, 2.5356, 2.5610, 2.5864, 2.6117, 2.6371, 2.6625, 2.6887,
	2.7148, 2.7410, 2.7671, 2.7933,
}

// CrossingCount returns the expected number of channel crossings of a net
// with the given number of pins. Nets over 50 pins are extrapolated.
func CrossingCount(numPins int) float64 {
	if numPins > 50 {
		return 2.7933 + 0.02616*float64(numPins-50)
	}

	if numPins < 1 {
		return crossCount[0]
	}

	return crossCount[numPins-1]
}

// ChanFactors holds, for every channel span [low, high], the inverse average
// channel width raised to the cost exponent. X is indexed by rows and Y by
// columns, both as [high][low].
type ChanFactors struct {
	X [][]float64
	Y [][]float64
}

// NewChanFactors computes the channel factors of a device.
func NewChanFactors(g *arch.Grid, costExp float64) *ChanFactors {
	return &ChanFactors{
		X: chanFactors(g.ChanWidthX, costExp, "chanx"),
		Y: chanFactors(g.ChanWidthY, costExp, "chany"),
	}
}

func chanFactors(widths []int, costExp float64, name string) [][]float64 {
	n := len(widths)
	fac := make([][]float64, n)
	for high := range fac {
		fac[high] = make([]float64, n+1)
	}

	if n == 0 {
		return fac
	}

	fac[0][0] = float64(widths[0])
	for high := 1; high < n; high++ {
		fac[high][high] = float64(widths[high])
		for low := 0; low < high; low++ {
			fac[high][low] = fac[high-1][low] + float64(widths[high])
		}
	}

	for high := 0; high < n; high++ {
		for low := 0; low <= high; low++ {
			if fac[high][low] == 0 {
				slog.Warn("Zero width channel span, using one track",
					"Channel", name, "High", high, "Low", low)
				fac[high][low] = 1
			}

			fac[high][low] = math.Pow(float64(high-low+1)/fac[high][low], costExp)
		}
	}

	return fac
}

// NetCost is the wirelength cost of a net of numPins pins with a cube box.
func (f *ChanFactors) NetCost(b bbox.Box, numPins int) float64 {
	crossing := CrossingCount(numPins)

	c := float64(b.XMax-b.XMin+1) * crossing * f.X[b.YMax][b.YMin-1]
	c += float64(b.YMax-b.YMin+1) * crossing * f.Y[b.XMax][b.XMin-1]

	return c
}

// NetLayerCost is the wirelength cost of a net with per-layer boxes. Layers
// without sinks do not count.
func (f *ChanFactors) NetLayerCost(boxes []bbox.Box, sinks []int) float64 {
	c := 0.0

	for layer, b := range boxes {
		if sinks[layer] == 0 {
			continue
		}

		crossing := CrossingCount(sinks[layer] + 1)
		c += float64(b.XMax-b.XMin+1) * crossing * f.X[b.YMax][b.YMin-1]
		c += float64(b.YMax-b.YMin+1) * crossing * f.Y[b.XMax][b.XMin-1]
	}

	return c
}

// WirelengthEstimate estimates the routed wirelength of a net with a cube
// box.
func WirelengthEstimate(b bbox.Box, numPins int) float64 {
	crossing := CrossingCount(numPins)
	return float64(b.XMax-b.XMin+1)*crossing + float64(b.YMax-b.YMin+1)*crossing
}

// LayerWirelengthEstimate estimates the routed wirelength of a net with
// per-layer boxes.
func LayerWirelengthEstimate(boxes []bbox.Box, sinks []int) float64 {
	wl := 0.0

	for layer, b := range boxes {
		if sinks[layer] == 0 {
			continue
		}

		crossing := CrossingCount(sinks[layer] + 1)
		wl += float64(b.XMax-b.XMin+1)*crossing + float64(b.YMax-b.YMin+1)*crossing
	}

	return wl
}
