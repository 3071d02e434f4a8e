// Package selection tracks a multi-select over leaves grouped into modules,
// with a derived tri-state per module.
package selection

// State is the derived selection state of a module.
type State int

const (
	Empty State = iota
	Partial
	Full
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Full:
		return "full"
	case Partial:
		return "partial"
	default:
		return "empty"
	}
}

// Leaf is one selectable item.
type Leaf struct {
	ID          string `yaml:"id" json:"id"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Module groups leaves under a key.
type Module struct {
	Key    string `yaml:"key" json:"key"`
	Label  string `yaml:"label" json:"label"`
	Leaves []Leaf `yaml:"leaves" json:"leaves"`
}

// Set is an insertion-ordered set of leaf ids.
type Set struct {
	ids   []string
	index map[string]int
}

// NewSet returns a set holding ids, dropping duplicates.
func NewSet(ids ...string) *Set {
	s := &Set{index: make(map[string]int)}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

// Has reports whether id is in the set.
func (s *Set) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of ids in the set.
func (s *Set) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the ids in insertion order.
func (s *Set) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *Set) add(id string) {
	if s.Has(id) {
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
}

// removeAll deletes every id in drop, keeping the order of the rest.
func (s *Set) removeAll(drop map[string]struct{}) {
	kept := s.ids[:0]
	for _, id := range s.ids {
		if _, gone := drop[id]; !gone {
			kept = append(kept, id)
		}
	}
	s.ids = kept
	s.index = make(map[string]int, len(kept))
	for i, id := range kept {
		s.index[id] = i
	}
}

func (s *Set) clear() {
	s.ids = nil
	s.index = make(map[string]int)
}

// Selector applies toggle operations to a Set over a fixed list of modules.
// The modules are never modified.
type Selector struct {
	modules []Module
	set     *Set
}

// NewSelector binds modules to set. A nil set starts empty.
func NewSelector(modules []Module, set *Set) *Selector {
	if set == nil {
		set = NewSet()
	}
	return &Selector{modules: modules, set: set}
}

// Modules returns the modules the selector was built with.
func (s *Selector) Modules() []Module {
	return s.modules
}

// Set returns the underlying selection set.
func (s *Selector) Set() *Set {
	return s.set
}

// Module looks up a module by key.
func (s *Selector) Module(key string) (Module, bool) {
	for _, m := range s.modules {
		if m.Key == key {
			return m, true
		}
	}
	return Module{}, false
}

// Leaf looks up a leaf by id across all modules.
func (s *Selector) Leaf(id string) (Leaf, bool) {
	for _, m := range s.modules {
		for _, l := range m.Leaves {
			if l.ID == id {
				return l, true
			}
		}
	}
	return Leaf{}, false
}

// IsSelected reports whether the leaf id is selected.
func (s *Selector) IsSelected(id string) bool {
	return s.set.Has(id)
}

// ModuleState derives the tri-state of m from the current selection.
// A module without leaves is Empty.
func (s *Selector) ModuleState(m Module) State {
	return StateOf(m, s.set)
}

// StateOf derives the tri-state of m against set.
func StateOf(m Module, set *Set) State {
	selected := 0
	for _, l := range m.Leaves {
		if set.Has(l.ID) {
			selected++
		}
	}
	switch {
	case selected == 0:
		return Empty
	case selected == len(m.Leaves):
		return Full
	default:
		return Partial
	}
}

// ToggleLeaf selects or deselects a single leaf.
func (s *Selector) ToggleLeaf(l Leaf, checked bool) {
	if checked {
		s.set.add(l.ID)
		return
	}
	s.set.removeAll(map[string]struct{}{l.ID: {}})
}

// ToggleModule selects every leaf of m, or removes exactly m's leaves.
// Selections outside m are left untouched either way.
func (s *Selector) ToggleModule(m Module, checked bool) {
	if len(m.Leaves) == 0 {
		return
	}
	if checked {
		for _, l := range m.Leaves {
			s.set.add(l.ID)
		}
		return
	}
	drop := make(map[string]struct{}, len(m.Leaves))
	for _, l := range m.Leaves {
		drop[l.ID] = struct{}{}
	}
	s.set.removeAll(drop)
}

// ToggleAll replaces the selection with every leaf, or clears it.
func (s *Selector) ToggleAll(checked bool) {
	s.set.clear()
	if !checked {
		return
	}
	for _, m := range s.modules {
		for _, l := range m.Leaves {
			s.set.add(l.ID)
		}
	}
}

// AllSelected reports whether every module with leaves is Full. It is
// false when there are no leaves at all.
func (s *Selector) AllSelected() bool {
	found := false
	for _, m := range s.modules {
		if len(m.Leaves) == 0 {
			continue
		}
		found = true
		if s.ModuleState(m) != Full {
			return false
		}
	}
	return found
}

// Unknown returns selected ids that match no leaf, in selection order.
func (s *Selector) Unknown() []string {
	var out []string
	for _, id := range s.set.ids {
		if _, ok := s.Leaf(id); !ok {
			out = append(out, id)
		}
	}
	return out
}
