package placement

import "fmt"

// PlaceError reports a block that can not go where it was asked to.
type PlaceError struct {
	Block  string
	Loc    fmt.Stringer
	Reason string
}

func (e *PlaceError) Error() string {
	return fmt.Sprintf("cannot place block %q at %v: %s", e.Block, e.Loc, e.Reason)
}
