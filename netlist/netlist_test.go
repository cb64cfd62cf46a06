package netlist_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/netlist"
)

var _ = Describe("Builder", func() {
	var b *netlist.Builder

	BeforeEach(func() {
		b = netlist.NewBuilder()
	})

	It("should index pins by net and block", func() {
		a := b.MustAddBlock("a", 0)
		c := b.MustAddBlock("c", 0)
		d := b.MustAddBlock("d", 1)
		n := b.MustAddNet("n",
			netlist.Terminal{Block: a},
			netlist.Terminal{Block: c, TilePin: 1},
			netlist.Terminal{Block: d, TilePin: 2})
		clk := b.MustAddNet("clk", netlist.Terminal{Block: d},
			netlist.Terminal{Block: a})
		b.SetIgnored(clk)

		nl, err := b.Build()
		Expect(err).NotTo(HaveOccurred())

		Expect(nl.NetDriverBlock(n)).To(Equal(a))
		Expect(nl.NetSinks(n)).To(HaveLen(2))
		Expect(nl.Pin(nl.NetPin(n, 2)).TilePin).To(Equal(2))
		Expect(nl.Pin(nl.NetPin(n, 2)).Type).To(Equal(netlist.Sink))
		Expect(nl.Block(a).Pins).To(HaveLen(2))
		Expect(nl.NumConnections()).To(Equal(2))
		Expect(nl.BlocksOfType(2)).To(Equal([]int{2, 1}))

		id, ok := nl.NetByName("clk")
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(clk))
	})

	It("should reject duplicated names", func() {
		b.MustAddBlock("a", 0)
		_, err := b.AddBlock("a", 0)
		Expect(err).To(MatchError(ContainSubstring(`"a"`)))
	})

	It("should reject nets on unknown blocks", func() {
		_, err := b.AddNet("n", netlist.Terminal{Block: 3})
		Expect(err).To(HaveOccurred())
	})

	It("should reject a block in two macros", func() {
		a := b.MustAddBlock("a", 0)
		c := b.MustAddBlock("c", 0)
		Expect(b.AddMacro(
			netlist.MacroMember{Block: a},
			netlist.MacroMember{Block: c, Offset: arch.Offset{Y: 1}},
		)).To(Succeed())
		Expect(b.AddMacro(netlist.MacroMember{Block: c})).To(Succeed())

		_, err := b.Build()
		Expect(err).To(MatchError(ContainSubstring(`"c"`)))
	})

	It("should reject a head with an offset", func() {
		a := b.MustAddBlock("a", 0)
		err := b.AddMacro(netlist.MacroMember{Block: a, Offset: arch.Offset{X: 1}})
		Expect(err).To(HaveOccurred())
	})
})
