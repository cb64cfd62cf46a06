package anneal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// dumpPlacement writes the placement to the dump directory as
// placement_<outer>_<inner>.place.
func (p *Placer) dumpPlacement(outer, inner int) error {
	path := filepath.Join(p.opts.DumpDir,
		fmt.Sprintf("placement_%03d_%03d.place", outer, inner))

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "dump placement")
	}

	err = p.st.WritePlace(f, p.name)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	return errors.Wrapf(err, "dump placement to %s", path)
}
