package search

import "github.com/standardbeagle/classgrep/internal/types"

// UnitSet is an inclusion filter over unit raw names.
// A nil *UnitSet means no filter.
type UnitSet struct {
	names map[string]struct{}
}

// NewUnitSet creates a set holding names
func NewUnitSet(names ...string) *UnitSet {
	s := &UnitSet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts a raw name
func (s *UnitSet) Add(name string) {
	s.names[name] = struct{}{}
}

// Contains reports whether unit passes the filter; a nil set passes everything
func (s *UnitSet) Contains(unit types.Unit) bool {
	if s == nil {
		return true
	}
	_, ok := s.names[unit.RawName]
	return ok
}

// Len returns the number of names; 0 for a nil set
func (s *UnitSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}
