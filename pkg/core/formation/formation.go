// Package formation holds the editable data of a project: dancers, the
// formations (scenes) they are arranged in, and the timeline that orders
// those formations.
//
// A [Formation] is a plain value. Every mutation takes effect on the
// receiver only; cloning with [Formation.Clone] produces a formation whose
// dancers share no state with the original.
package formation

import (
	"fmt"
	"slices"
)

// Dancer is one entity placed on the stage.
//
// ID is assigned once at creation and never changes. Label is what the
// renderers show (the first two characters of it); it defaults to the ID.
type Dancer struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
	Row   int    `json:"row" yaml:"row"`
	Col   int    `json:"col" yaml:"col"`
}

// Formation is a named arrangement of dancers. Dancers keep insertion order
// and are unique by ID.
type Formation struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Dancers []Dancer `json:"dancers" yaml:"dancers"`
}

// At returns the first dancer standing on (row, col).
func (f *Formation) At(row, col int) (Dancer, bool) {
	for _, d := range f.Dancers {
		if d.Row == row && d.Col == col {
			return d, true
		}
	}
	return Dancer{}, false
}

// Occupied reports whether any dancer stands on (row, col).
func (f *Formation) Occupied(row, col int) bool {
	_, ok := f.At(row, col)
	return ok
}

// Index returns the position of the dancer with the given ID, or -1.
func (f *Formation) Index(id string) int {
	return slices.IndexFunc(f.Dancers, func(d Dancer) bool { return d.ID == id })
}

// Get returns the dancer with the given ID.
func (f *Formation) Get(id string) (Dancer, bool) {
	if i := f.Index(id); i >= 0 {
		return f.Dancers[i], true
	}
	return Dancer{}, false
}

// Add appends a dancer. It returns false without mutating if the ID is
// already present or the target cell is occupied.
func (f *Formation) Add(d Dancer) bool {
	if f.Index(d.ID) >= 0 || f.Occupied(d.Row, d.Col) {
		return false
	}
	f.Dancers = append(f.Dancers, d)
	return true
}

// Move relocates a dancer. It returns false if the dancer does not exist or
// the target cell holds a different dancer. Moving onto its own cell is a
// successful no-op.
func (f *Formation) Move(id string, row, col int) bool {
	i := f.Index(id)
	if i < 0 {
		return false
	}
	if other, ok := f.At(row, col); ok && other.ID != id {
		return false
	}
	f.Dancers[i].Row, f.Dancers[i].Col = row, col
	return true
}

// Remove deletes the dancer with the given ID.
func (f *Formation) Remove(id string) bool {
	i := f.Index(id)
	if i < 0 {
		return false
	}
	f.Dancers = slices.Delete(f.Dancers, i, i+1)
	return true
}

// Rename sets the label of a dancer. The label must already be validated.
func (f *Formation) Rename(id, label string) bool {
	i := f.Index(id)
	if i < 0 {
		return false
	}
	f.Dancers[i].Label = label
	return true
}

// Clone returns a deep copy of f carrying the given ID and name.
func (f *Formation) Clone(id, name string) Formation {
	return Formation{
		ID:      id,
		Name:    name,
		Dancers: slices.Clone(f.Dancers),
	}
}

// Check verifies the structural invariants of a loaded formation: unique
// dancer IDs, no two dancers on the same cell, and (when inBounds is non-nil)
// every dancer inside the stage.
func (f *Formation) Check(inBounds func(row, col int) bool) error {
	ids := make(map[string]struct{}, len(f.Dancers))
	cells := make(map[[2]int]string, len(f.Dancers))
	for _, d := range f.Dancers {
		if d.ID == "" {
			return fmt.Errorf("dancer without id")
		}
		if _, dup := ids[d.ID]; dup {
			return fmt.Errorf("duplicate dancer id %q", d.ID)
		}
		ids[d.ID] = struct{}{}
		cell := [2]int{d.Row, d.Col}
		if other, taken := cells[cell]; taken {
			return fmt.Errorf("dancers %q and %q share cell (%d, %d)", other, d.ID, d.Row, d.Col)
		}
		cells[cell] = d.ID
		if inBounds != nil && !inBounds(d.Row, d.Col) {
			return fmt.Errorf("dancer %q at (%d, %d) is off the stage", d.ID, d.Row, d.Col)
		}
	}
	return nil
}
