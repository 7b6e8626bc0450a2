package systems

// BodyRecord is the flat, serializable form of a Body.
type BodyRecord struct {
	BodyID                  int      `json:"bodyId" yaml:"bodyId"`
	Name                    string   `json:"name" yaml:"name"`
	DistanceLS              float64  `json:"distanceLs" yaml:"distanceLs"`
	GravityMS               *float64 `json:"gravityMs,omitempty" yaml:"gravityMs,omitempty"`
	Landable                bool     `json:"landable" yaml:"landable"`
	HasBio                  bool     `json:"hasBio" yaml:"hasBio"`
	HasGeo                  bool     `json:"hasGeo" yaml:"hasGeo"`
	HighValue               bool     `json:"highValue" yaml:"highValue"`
	PlanetClass             string   `json:"planetClass,omitempty" yaml:"planetClass,omitempty"`
	Atmosphere              string   `json:"atmosphere,omitempty" yaml:"atmosphere,omitempty"`
	AtmoOrType              string   `json:"atmoOrType,omitempty" yaml:"atmoOrType,omitempty"`
	SurfaceTempK            *float64 `json:"surfaceTempK,omitempty" yaml:"surfaceTempK,omitempty"`
	Volcanism               string   `json:"volcanism,omitempty" yaml:"volcanism,omitempty"`
	ObservedGenusPrefixes   []string `json:"observedGenusPrefixes,omitempty" yaml:"observedGenusPrefixes,omitempty"`
	ObservedBioDisplayNames []string `json:"observedBioDisplayNames,omitempty" yaml:"observedBioDisplayNames,omitempty"`
}

// SystemRecord is the flat, serializable form of a System.
type SystemRecord struct {
	SystemName     string       `json:"systemName" yaml:"systemName"`
	SystemAddress  int64        `json:"systemAddress" yaml:"systemAddress"`
	TotalBodies    *int         `json:"totalBodies,omitempty" yaml:"totalBodies,omitempty"`
	NonBodyCount   *int         `json:"nonBodyCount,omitempty" yaml:"nonBodyCount,omitempty"`
	FSSProgress    *float64     `json:"fssProgress,omitempty" yaml:"fssProgress,omitempty"`
	AllBodiesFound *bool        `json:"allBodiesFound,omitempty" yaml:"allBodiesFound,omitempty"`
	Bodies         []BodyRecord `json:"bodies" yaml:"bodies"`
}

// Key returns the identity of the record.
func (r SystemRecord) Key() SystemKey {
	return SystemKey{Name: r.SystemName, Address: r.SystemAddress}
}

// Records exports every system that has at least one body, ordered like
// Systems. The result shares nothing with s.
func (s *State) Records() []SystemRecord {
	var out []SystemRecord
	for _, sys := range s.Systems() {
		if sys.BodyCount() == 0 {
			continue
		}
		out = append(out, sys.Record())
	}
	return out
}

// Record exports one system.
func (s *System) Record() SystemRecord {
	rec := SystemRecord{
		SystemName:     s.Key.Name,
		SystemAddress:  s.Key.Address,
		TotalBodies:    copyPtr(s.TotalBodies),
		NonBodyCount:   copyPtr(s.NonBodyCount),
		FSSProgress:    copyPtr(s.FSSProgress),
		AllBodiesFound: copyPtr(s.AllBodiesFound),
		Bodies:         make([]BodyRecord, 0, len(s.bodies)),
	}
	for _, b := range s.Bodies() {
		rec.Bodies = append(rec.Bodies, b.Record())
	}
	return rec
}

// Record exports one body.
func (b *Body) Record() BodyRecord {
	rec := BodyRecord{
		BodyID:       b.ID,
		Name:         b.Name,
		DistanceLS:   b.DistanceLS,
		GravityMS:    copyPtr(b.Gravity),
		Landable:     b.Landable,
		HasBio:       b.HasBio,
		HasGeo:       b.HasGeo,
		HighValue:    b.HighValue,
		PlanetClass:  b.PlanetClass,
		Atmosphere:   b.Atmosphere,
		AtmoOrType:   b.AtmoOrType,
		SurfaceTempK: copyPtr(b.SurfaceTempK),
		Volcanism:    b.Volcanism,
	}
	if len(b.genusPrefixes) > 0 {
		rec.ObservedGenusPrefixes = b.GenusPrefixes()
	}
	if len(b.bioNames) > 0 {
		rec.ObservedBioDisplayNames = b.BioDisplayNames()
	}
	return rec
}

// FromRecords rebuilds a State from exported records, e.g. a loaded cache.
// The current-system context is empty.
func FromRecords(records []SystemRecord) *State {
	s := Empty()
	for _, r := range records {
		key := r.Key()
		if key.IsZero() {
			continue
		}
		sys := &System{
			Key:            key,
			TotalBodies:    copyPtr(r.TotalBodies),
			NonBodyCount:   copyPtr(r.NonBodyCount),
			FSSProgress:    copyPtr(r.FSSProgress),
			AllBodiesFound: copyPtr(r.AllBodiesFound),
			bodies:         make(map[int]*Body, len(r.Bodies)),
		}
		for _, br := range r.Bodies {
			b := &Body{
				ID:           br.BodyID,
				Name:         br.Name,
				DistanceLS:   br.DistanceLS,
				Gravity:      copyPtr(br.GravityMS),
				Landable:     br.Landable,
				HasBio:       br.HasBio,
				HasGeo:       br.HasGeo,
				HighValue:    br.HighValue,
				PlanetClass:  br.PlanetClass,
				Atmosphere:   br.Atmosphere,
				AtmoOrType:   br.AtmoOrType,
				SurfaceTempK: copyPtr(br.SurfaceTempK),
				Volcanism:    br.Volcanism,
			}
			for _, g := range br.ObservedGenusPrefixes {
				b.genusPrefixes = addTo(b.genusPrefixes, g)
			}
			for _, n := range br.ObservedBioDisplayNames {
				b.bioNames = addTo(b.bioNames, n)
			}
			sys.bodies[b.ID] = b
		}
		s.systems[key.ID()] = sys
	}
	return s
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
