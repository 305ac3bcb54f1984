// internal/step/ref.go
package step

import "strconv"

// Ref addresses an entity either by list position or by id
type Ref struct {
	index int
	id    string
	named bool
}

// At returns a positional reference
func At(index int) Ref {
	return Ref{index: index}
}

// Named returns an id reference
func Named(id string) Ref {
	return Ref{id: id, named: true}
}

// Position returns the list position and true for positional references
func (r Ref) Position() (int, bool) {
	return r.index, !r.named
}

// Name returns the id and true for id references
func (r Ref) Name() (string, bool) {
	return r.id, r.named
}

// String returns a readable form for logs
func (r Ref) String() string {
	if r.named {
		return r.id
	}
	return "#" + strconv.Itoa(r.index)
}
