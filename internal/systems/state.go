// Package systems folds journal events into a per-system, per-body view of
// what has been observed.
//
// A State is immutable. Fold and FoldAll return a new State and share every
// system and body they did not touch with the input, so an old State stays
// valid after a fold.
package systems

import (
	"sort"
	"strconv"
)

// SystemKey identifies a star system. When either side has a non-zero
// Address the keys compare by address only; otherwise by Name.
type SystemKey struct {
	Name    string
	Address int64
}

// Equal applies the address-then-name identity rule.
func (k SystemKey) Equal(o SystemKey) bool {
	if k.Address != 0 || o.Address != 0 {
		return k.Address == o.Address
	}
	return k.Name == o.Name
}

// IsZero reports whether k names no system at all.
func (k SystemKey) IsZero() bool { return k.Address == 0 && k.Name == "" }

// ID is a canonical string for k. Keys with an address never collide with
// name-only keys, matching Equal.
func (k SystemKey) ID() string {
	if k.Address != 0 {
		return "a:" + strconv.FormatInt(k.Address, 10)
	}
	return "n:" + k.Name
}

func (k SystemKey) String() string {
	switch {
	case k.Name != "" && k.Address != 0:
		return k.Name + " (" + strconv.FormatInt(k.Address, 10) + ")"
	case k.Name != "":
		return k.Name
	default:
		return strconv.FormatInt(k.Address, 10)
	}
}

// Body is what has been observed about one body. Values reachable from a
// State must not be modified.
type Body struct {
	ID           int
	Name         string
	DistanceLS   float64
	Gravity      *float64 // m/s²
	Landable     bool
	HasBio       bool
	HasGeo       bool
	HighValue    bool
	PlanetClass  string
	Atmosphere   string
	AtmoOrType   string
	SurfaceTempK *float64
	Volcanism    string

	genusPrefixes map[string]struct{}
	bioNames      map[string]struct{}
}

// GenusPrefixes returns the observed lower-cased genus names, sorted.
func (b *Body) GenusPrefixes() []string { return sortedSet(b.genusPrefixes) }

// BioDisplayNames returns the observed "Genus Species" names, sorted.
func (b *Body) BioDisplayNames() []string { return sortedSet(b.bioNames) }

func (b *Body) clone() *Body {
	cp := *b
	cp.genusPrefixes = cloneSet(b.genusPrefixes)
	cp.bioNames = cloneSet(b.bioNames)
	return &cp
}

// System is the accumulated view of one system.
type System struct {
	Key            SystemKey
	TotalBodies    *int
	NonBodyCount   *int
	FSSProgress    *float64 // 0..1
	AllBodiesFound *bool

	bodies map[int]*Body
}

// Body returns the body with the given id.
func (s *System) Body(id int) (*Body, bool) {
	b, ok := s.bodies[id]
	return b, ok
}

// BodyByName returns the first body whose name is exactly name.
func (s *System) BodyByName(name string) (*Body, bool) {
	for _, b := range s.Bodies() {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Bodies returns the bodies ordered by id.
func (s *System) Bodies() []*Body {
	out := make([]*Body, 0, len(s.bodies))
	for _, b := range s.bodies {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *System) BodyCount() int { return len(s.bodies) }

func (s *System) clone() *System {
	cp := *s
	cp.bodies = make(map[int]*Body, len(s.bodies))
	for id, b := range s.bodies {
		cp.bodies[id] = b
	}
	return &cp
}

// State is an immutable snapshot of every system folded so far plus the
// "current system" context used by events that carry no system of their own.
type State struct {
	current SystemKey
	systems map[string]*System
}

// Empty returns a State with no systems.
func Empty() *State {
	return &State{systems: make(map[string]*System)}
}

// Current returns the system the commander was last seen in.
func (s *State) Current() SystemKey {
	if s == nil {
		return SystemKey{}
	}
	return s.current
}

// Len returns the number of systems.
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.systems)
}

// System looks up a system by key.
func (s *State) System(key SystemKey) (*System, bool) {
	if s == nil {
		return nil, false
	}
	sys, ok := s.systems[key.ID()]
	return sys, ok
}

// Systems returns every system ordered by name, then address.
func (s *State) Systems() []*System {
	if s == nil {
		return nil
	}
	out := make([]*System, 0, len(s.systems))
	for _, sys := range s.systems {
		out = append(out, sys)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Name != out[j].Key.Name {
			return out[i].Key.Name < out[j].Key.Name
		}
		return out[i].Key.Address < out[j].Key.Address
	})
	return out
}

func cloneSet(m map[string]struct{}) map[string]struct{} {
	if m == nil {
		return nil
	}
	cp := make(map[string]struct{}, len(m))
	for k := range m {
		cp[k] = struct{}{}
	}
	return cp
}

func sortedSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
