package eval

import "sort"

// VarState maps variable names to integer values. A name absent from the
// map is not defined.
type VarState struct {
	store map[string]int64
}

func NewVarState() *VarState {
	return &VarState{store: make(map[string]int64)}
}

func (v *VarState) Get(name string) (int64, bool) {
	val, ok := v.store[name]
	return val, ok
}

// Set creates or overwrites name.
func (v *VarState) Set(name string, val int64) {
	v.store[name] = val
}

func (v *VarState) Has(name string) bool {
	_, ok := v.store[name]
	return ok
}

func (v *VarState) Clear() {
	clear(v.store)
}

func (v *VarState) Len() int {
	return len(v.store)
}

// Names returns the defined variable names in sorted order.
func (v *VarState) Names() []string {
	names := make([]string, 0, len(v.store))
	for name := range v.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the current bindings.
func (v *VarState) Snapshot() map[string]int64 {
	out := make(map[string]int64, len(v.store))
	for k, val := range v.store {
		out[k] = val
	}
	return out
}
