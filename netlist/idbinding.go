package netlist

// NameIDBinding hands out dense ids to names in registration order.
type NameIDBinding struct {
	// distributed is the number of ids handed out so far
	distributed int
	nameToID    map[string]int
	// IDToName maps an id back to its name.
	IDToName []string
}

// NewNameIDBinding creates an empty binding.
func NewNameIDBinding() *NameIDBinding {
	return &NameIDBinding{
		nameToID: make(map[string]int),
	}
}

// RegisterName binds a new name and returns its id. Registering a name twice
// returns false.
func (n *NameIDBinding) RegisterName(name string) (int, bool) {
	if _, dup := n.nameToID[name]; dup {
		return -1, false
	}

	id := n.distributed
	n.nameToID[name] = id
	n.IDToName = append(n.IDToName, name)
	n.distributed++

	return id, true
}

// Lookup finds the id of a name.
func (n *NameIDBinding) Lookup(name string) (int, bool) {
	id, ok := n.nameToID[name]
	return id, ok
}

// Len returns the number of registered names.
func (n *NameIDBinding) Len() int {
	return n.distributed
}
