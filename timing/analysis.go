package timing

import (
	"math"
	"sort"

	"github.com/sarchlab/fplace/netlist"
)

// SetCritExponent sets the exponent that sharpens criticalities at the next
// criticality update.
func (b *Bridge) SetCritExponent(e float64) {
	b.critExponent = e
}

// CritExponent returns the criticality exponent.
func (b *Bridge) CritExponent() float64 {
	return b.critExponent
}

// UpdateTimingClasses runs the analyzer on the committed delays and refreshes
// the criticality view, the setup-slack view, or both.
func (b *Bridge) UpdateTimingClasses(updateCrit, updateSlack bool) {
	b.analyzer.Update(b)

	if updateCrit {
		b.updateCriticalities()
	}

	if updateSlack {
		b.updateSlackView()
	}

	b.invalidator.Reset()
}

// PerformFullTimingUpdate refreshes criticalities and setup slacks,
// recomputes every connection timing cost, commits the setup slacks and
// returns the new total timing cost.
func (b *Bridge) PerformFullTimingUpdate(critExponent float64) float64 {
	b.critExponent = critExponent
	b.UpdateTimingClasses(true, true)
	total := b.CompTimingCosts()
	b.CommitSetupSlacks()

	return total
}

// UpdateSetupSlacks refreshes the setup-slack view only. Criticalities stay
// stale so that a probed swap does not disturb the cost function.
func (b *Bridge) UpdateSetupSlacks() {
	b.UpdateTimingClasses(false, true)
}

func (b *Bridge) updateCriticalities() {
	b.highlyCritical = b.highlyCritical[:0]

	b.forEachConnection(func(sink netlist.PinID) {
		c := math.Pow(b.analyzer.Criticality(sink), b.critExponent)
		b.crit[sink] = c

		if c > b.critLimit {
			b.highlyCritical = append(b.highlyCritical, sink)
		}
	})
}

func (b *Bridge) updateSlackView() {
	b.modifiedSlacks = b.modifiedSlacks[:0]

	b.forEachConnection(func(sink netlist.PinID) {
		s := b.analyzer.SetupSlack(sink)
		if s != b.slackView[sink] {
			b.modifiedSlacks = append(b.modifiedSlacks, sink)
		}

		b.slackView[sink] = s
	})
}

func (b *Bridge) forEachConnection(fn func(sink netlist.PinID)) {
	for n := 0; n < b.nl.NumNets(); n++ {
		net := netlist.NetID(n)
		if b.nl.Net(net).Ignored {
			continue
		}

		for _, sink := range b.nl.NetSinks(net) {
			fn(sink)
		}
	}
}

// ModifiedSetupSlacks returns the connections whose slack changed in the
// last slack update.
func (b *Bridge) ModifiedSetupSlacks() []netlist.PinID {
	return b.modifiedSlacks
}

// AnalyzeSetupSlackCost compares the committed and freshly analyzed slacks
// of the modified connections. Both sequences are sorted from worst to best
// and the first difference is returned; positive means the proposal is
// worse. When nothing differs a positive cost is returned so that the move
// is not taken for free.
func (b *Bridge) AnalyzeSetupSlackCost() float64 {
	original := make([]float64, 0, len(b.modifiedSlacks))
	proposed := make([]float64, 0, len(b.modifiedSlacks))

	for _, sink := range b.modifiedSlacks {
		original = append(original, b.setupSlack[sink])
		proposed = append(proposed, b.slackView[sink])
	}

	sort.Float64s(original)
	sort.Float64s(proposed)

	for i := range original {
		if diff := original[i] - proposed[i]; diff != 0 {
			return diff
		}
	}

	return 1
}

// CommitSetupSlacks copies the modified slacks of the view into the
// committed connection slacks.
func (b *Bridge) CommitSetupSlacks() {
	for _, sink := range b.modifiedSlacks {
		b.setupSlack[sink] = b.slackView[sink]
	}
}

// VerifySetupSlacks tells if the committed slacks match the view.
func (b *Bridge) VerifySetupSlacks() bool {
	ok := true

	b.forEachConnection(func(sink netlist.PinID) {
		if b.setupSlack[sink] != b.slackView[sink] {
			ok = false
		}
	})

	return ok
}
