package placement

import (
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/sarchlab/fplace/netlist"
)

// Digest fingerprints the block map. Equal placements have equal digests.
func (s *State) Digest() [32]byte {
	buf := make([]byte, 0, len(s.locs)*16)
	for _, l := range s.locs {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(l.X)))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(l.Y)))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(l.SubTile)))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(l.Layer)))
	}

	return blake2b.Sum256(buf)
}

// WritePlace writes the placement in the .place text format.
func (s *State) WritePlace(w io.Writer, netlistName string) error {
	_, err := fmt.Fprintf(w,
		"Netlist_File: %s\nArray size: %d x %d logic blocks\n\n"+
			"#block name\tx\ty\tsubblk\tlayer\tblock number\n"+
			"#----------\t--\t--\t------\t-----\t------------\n",
		netlistName, s.grid.Width(), s.grid.Height())
	if err != nil {
		return err
	}

	for b, l := range s.locs {
		_, err = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t#%d\n",
			s.nl.Block(netlist.BlockID(b)).Name, l.X, l.Y, l.SubTile, l.Layer, b)
		if err != nil {
			return err
		}
	}

	return nil
}
