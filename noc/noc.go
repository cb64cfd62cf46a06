// Package noc models the traffic flows of a network-on-chip whose routers
// are placeable blocks. Flows are routed XY over the router tiles and priced
// by bandwidth, latency and link congestion.
package noc

import (
	"math"
	"sort"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/cost"
	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/placement"
)

// Flow is a traffic flow between two router blocks.
type Flow struct {
	Source, Sink netlist.BlockID
	Bandwidth    float64
	// LatencyConstraint bounds the flow latency; zero means unconstrained.
	LatencyConstraint float64
	Priority          int
}

// Config holds the link and router parameters of the network.
type Config struct {
	LinkBandwidth float64
	LinkLatency   float64
	RouterLatency float64
}

// Link is a directed hop between two neighbouring tiles.
type Link struct {
	From, To arch.TileLoc
}

// Model holds the routes and costs of every flow at the committed placement
// and the proposal of the swap under evaluation.
type Model struct {
	st    *placement.State
	cfg   Config
	flows []Flow

	flowsOf map[netlist.BlockID][]int
	routers []netlist.BlockID

	routes    [][]Link
	flowTerms []cost.NoCTerms
	usage     map[Link]float64

	affected      []int
	isAffected    map[int]bool
	proposedRoute map[int][]Link
	proposedTerms map[int]cost.NoCTerms
	proposedUsage map[Link]float64
	// proposedLinks lists the keys of proposedUsage in first-touch order.
	proposedLinks []Link
}

// NewModel creates the model of a set of flows. Routes are built by Route.
func NewModel(st *placement.State, flows []Flow, cfg Config) *Model {
	m := &Model{
		st:            st,
		cfg:           cfg,
		flows:         flows,
		flowsOf:       make(map[netlist.BlockID][]int),
		routes:        make([][]Link, len(flows)),
		flowTerms:     make([]cost.NoCTerms, len(flows)),
		usage:         make(map[Link]float64),
		isAffected:    make(map[int]bool),
		proposedRoute: make(map[int][]Link),
		proposedTerms: make(map[int]cost.NoCTerms),
		proposedUsage: make(map[Link]float64),
	}

	for i, f := range flows {
		m.flowsOf[f.Source] = append(m.flowsOf[f.Source], i)
		if f.Sink != f.Source {
			m.flowsOf[f.Sink] = append(m.flowsOf[f.Sink], i)
		}
	}

	for b := range m.flowsOf {
		m.routers = append(m.routers, b)
	}

	sort.Slice(m.routers, func(i, j int) bool {
		return m.routers[i] < m.routers[j]
	})

	return m
}

// Flows returns the traffic flows.
func (m *Model) Flows() []Flow {
	return m.flows
}

// RouterBlocks returns the blocks that source or sink a flow, in id order.
func (m *Model) RouterBlocks() []netlist.BlockID {
	return m.routers
}

// RouteXY returns the links of the XY route between two tiles: first along
// x, then along y, then across layers.
func RouteXY(from, to arch.TileLoc) []Link {
	var links []Link

	cur := from
	step := func(next arch.TileLoc) {
		links = append(links, Link{From: cur, To: next})
		cur = next
	}

	for cur.X != to.X {
		next := cur
		next.X += sign(to.X - cur.X)
		step(next)
	}

	for cur.Y != to.Y {
		next := cur
		next.Y += sign(to.Y - cur.Y)
		step(next)
	}

	for cur.Layer != to.Layer {
		next := cur
		next.Layer += sign(to.Layer - cur.Layer)
		step(next)
	}

	return links
}

func tileLess(a, b arch.TileLoc) bool {
	if a.Layer != b.Layer {
		return a.Layer < b.Layer
	}

	if a.Y != b.Y {
		return a.Y < b.Y
	}

	return a.X < b.X
}

func linkLess(a, b Link) bool {
	if a.From != b.From {
		return tileLess(a.From, b.From)
	}

	return tileLess(a.To, b.To)
}

// congestionOf sums the congestion of every link in link order, so the
// total does not depend on map iteration.
func (m *Model) congestionOf(usage map[Link]float64) float64 {
	links := make([]Link, 0, len(usage))
	for l := range usage {
		links = append(links, l)
	}

	sort.Slice(links, func(i, j int) bool { return linkLess(links[i], links[j]) })

	total := 0.0
	for _, l := range links {
		total += m.congestion(usage[l])
	}

	return total
}

func sign(v int) int {
	if v < 0 {
		return -1
	}

	return 1
}

func (m *Model) routeFlow(i int) []Link {
	f := m.flows[i]
	return RouteXY(m.st.Location(f.Source).Tile(), m.st.Location(f.Sink).Tile())
}

// FlowTerms prices one flow routed over the given number of links.
func (m *Model) FlowTerms(f Flow, hops int) cost.NoCTerms {
	priority := float64(max(f.Priority, 1))
	latency := m.cfg.LinkLatency*float64(hops) +
		m.cfg.RouterLatency*float64(hops+1)

	t := cost.NoCTerms{
		AggregateBandwidth: f.Bandwidth * float64(hops) * priority,
		Latency:            latency * priority,
	}

	if f.LatencyConstraint > 0 && latency > f.LatencyConstraint {
		t.LatencyOverrun = (latency - f.LatencyConstraint) * priority
	}

	return t
}

// congestion is the relative overuse of a link.
func (m *Model) congestion(usage float64) float64 {
	if m.cfg.LinkBandwidth <= 0 || usage <= m.cfg.LinkBandwidth {
		return 0
	}

	return (usage - m.cfg.LinkBandwidth) / m.cfg.LinkBandwidth
}

// Route routes every flow at the current placement and returns the total
// terms.
func (m *Model) Route() cost.NoCTerms {
	clear(m.usage)

	for i, f := range m.flows {
		m.routes[i] = m.routeFlow(i)
		m.flowTerms[i] = m.FlowTerms(f, len(m.routes[i]))

		for _, l := range m.routes[i] {
			m.usage[l] += f.Bandwidth
		}
	}

	return m.Terms()
}

// Terms returns the committed total terms.
func (m *Model) Terms() cost.NoCTerms {
	var t cost.NoCTerms
	for _, ft := range m.flowTerms {
		t = t.Add(ft)
	}

	t.Congestion = m.congestionOf(m.usage)

	return t
}

// CheckTerms recomputes the total terms from the block locations without
// touching the model.
func (m *Model) CheckTerms() cost.NoCTerms {
	var t cost.NoCTerms
	usage := make(map[Link]float64)

	for i, f := range m.flows {
		route := m.routeFlow(i)
		t = t.Add(m.FlowTerms(f, len(route)))

		for _, l := range route {
			usage[l] += f.Bandwidth
		}
	}

	t.Congestion = m.congestionOf(usage)

	return t
}

// RouteOf returns the committed route of a flow.
func (m *Model) RouteOf(flow int) []Link {
	return m.routes[flow]
}

// LinkUsage returns the committed bandwidth on a link.
func (m *Model) LinkUsage(l Link) float64 {
	return m.usage[l]
}

func (m *Model) setProposed(l Link, u float64) {
	if _, ok := m.proposedUsage[l]; !ok {
		m.proposedLinks = append(m.proposedLinks, l)
	}

	m.proposedUsage[l] = u
}

func (m *Model) proposed(l Link) float64 {
	if u, ok := m.proposedUsage[l]; ok {
		return u
	}

	return m.usage[l]
}

// Propose reroutes every flow touching a moved block, at the applied block
// locations, and returns the change of the terms.
func (m *Model) Propose(ba *move.BlocksAffected) cost.NoCTerms {
	var delta cost.NoCTerms

	for _, mb := range ba.Moved {
		for _, i := range m.flowsOf[mb.Block] {
			if m.isAffected[i] {
				continue
			}

			m.isAffected[i] = true
			m.affected = append(m.affected, i)

			f := m.flows[i]
			route := m.routeFlow(i)
			terms := m.FlowTerms(f, len(route))
			m.proposedRoute[i] = route
			m.proposedTerms[i] = terms

			old := m.flowTerms[i]
			delta.AggregateBandwidth += terms.AggregateBandwidth - old.AggregateBandwidth
			delta.Latency += terms.Latency - old.Latency
			delta.LatencyOverrun += terms.LatencyOverrun - old.LatencyOverrun

			for _, l := range m.routes[i] {
				m.setProposed(l, m.proposed(l)-f.Bandwidth)
			}

			for _, l := range route {
				m.setProposed(l, m.proposed(l)+f.Bandwidth)
			}
		}
	}

	for _, l := range m.proposedLinks {
		delta.Congestion += m.congestion(m.proposedUsage[l]) - m.congestion(m.usage[l])
	}

	return delta
}

// Commit adopts the proposed routes.
func (m *Model) Commit() {
	for _, i := range m.affected {
		m.routes[i] = m.proposedRoute[i]
		m.flowTerms[i] = m.proposedTerms[i]
	}

	for _, l := range m.proposedLinks {
		u := m.proposedUsage[l]
		if math.Abs(u) < 1e-9 {
			delete(m.usage, l)
			continue
		}

		m.usage[l] = u
	}

	m.Revert()
}

// Revert discards the proposal.
func (m *Model) Revert() {
	m.affected = m.affected[:0]
	clear(m.isAffected)
	clear(m.proposedRoute)
	clear(m.proposedTerms)
	clear(m.proposedUsage)
	m.proposedLinks = m.proposedLinks[:0]
}
