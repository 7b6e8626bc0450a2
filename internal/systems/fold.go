package systems

import (
	"hash/fnv"
	"strings"

	"github.com/atikulmunna/edlog/internal/model"
)

// GapFunc is told when a body had to be synthesized because the event named
// it without a numeric id. The cache simply has not seen that body's scan
// yet; this is not an error.
type GapFunc func(sys SystemKey, bodyName string, syntheticID int)

// Folder applies events to a State. The zero value is ready to use.
type Folder struct {
	OnGap GapFunc
}

// Fold applies one event with a zero Folder.
func Fold(s *State, ev model.Event) *State {
	return Folder{}.Fold(s, ev)
}

// FoldAll applies events in order with a zero Folder.
func FoldAll(s *State, events []model.Event) *State {
	return Folder{}.FoldAll(s, events)
}

// Fold returns the State after ev. Events that carry nothing for the
// accumulator return s unchanged.
func (f Folder) Fold(s *State, ev model.Event) *State {
	if s == nil {
		s = Empty()
	}
	if !relevant(ev) {
		return s
	}
	tx := f.begin(s)
	tx.apply(ev)
	return tx.next
}

// FoldAll applies events in the given order, which should be timestamp
// order. Repeating a sequence leaves the monotonic flags and sets unchanged.
func (f Folder) FoldAll(s *State, events []model.Event) *State {
	if s == nil {
		s = Empty()
	}
	tx := f.begin(s)
	for _, ev := range events {
		if relevant(ev) {
			tx.apply(ev)
		}
	}
	return tx.next
}

func relevant(ev model.Event) bool {
	switch ev.(type) {
	case *model.Location, *model.FSDJump, *model.CarrierJump,
		*model.FSSDiscoveryScan, *model.FSSAllBodiesFound,
		*model.Scan, *model.FSSBodySignals, *model.SAASignalsFound,
		*model.ScanOrganic:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Transient
// ---------------------------------------------------------------------------

// transient is a State under construction. Systems and bodies are copied the
// first time they are written and then mutated in place until the fold ends.
type transient struct {
	onGap   GapFunc
	next    *State
	ownSys  map[string]bool
	ownBody map[string]map[int]bool
}

func (f Folder) begin(s *State) *transient {
	next := &State{
		current: s.current,
		systems: make(map[string]*System, len(s.systems)),
	}
	for id, sys := range s.systems {
		next.systems[id] = sys
	}
	return &transient{
		onGap:   f.OnGap,
		next:    next,
		ownSys:  make(map[string]bool),
		ownBody: make(map[string]map[int]bool),
	}
}

func (tx *transient) system(key SystemKey) (string, *System) {
	id := key.ID()
	sys, ok := tx.next.systems[id]
	if ok && tx.ownSys[id] {
		if sys.Key.Name == "" && key.Name != "" {
			sys.Key.Name = key.Name
		}
		return id, sys
	}

	if ok {
		sys = sys.clone()
	} else {
		sys = &System{Key: key, bodies: make(map[int]*Body)}
	}
	if sys.Key.Name == "" && key.Name != "" {
		sys.Key.Name = key.Name
	}
	tx.next.systems[id] = sys
	tx.ownSys[id] = true
	tx.ownBody[id] = make(map[int]bool)
	return id, sys
}

func (tx *transient) body(sysID string, sys *System, bodyID int) *Body {
	b, ok := sys.bodies[bodyID]
	if ok && tx.ownBody[sysID][bodyID] {
		return b
	}
	if ok {
		b = b.clone()
	} else {
		b = &Body{ID: bodyID}
	}
	sys.bodies[bodyID] = b
	tx.ownBody[sysID][bodyID] = true
	return b
}

// ---------------------------------------------------------------------------
// Rules
// ---------------------------------------------------------------------------

func (tx *transient) apply(ev model.Event) {
	switch e := ev.(type) {
	case *model.Location:
		tx.arrive(SystemKey{Name: e.StarSystem, Address: e.SystemAddress})
	case *model.FSDJump:
		tx.arrive(SystemKey{Name: e.StarSystem, Address: e.SystemAddress})
	case *model.CarrierJump:
		tx.arrive(SystemKey{Name: e.StarSystem, Address: e.SystemAddress})
	case *model.FSSDiscoveryScan:
		tx.discoveryScan(e)
	case *model.FSSAllBodiesFound:
		tx.allBodiesFound(e)
	case *model.Scan:
		tx.scan(e)
	case *model.FSSBodySignals:
		tx.signals(e.SystemAddress, e.BodyID, e.Signals, nil)
	case *model.SAASignalsFound:
		tx.signals(e.SystemAddress, e.BodyID, e.Signals, e.Genuses)
	case *model.ScanOrganic:
		tx.scanOrganic(e)
	}
}

func (tx *transient) arrive(key SystemKey) {
	if key.IsZero() {
		return
	}
	tx.next.current = key
	tx.system(key)
}

// contextKey merges a key named by an event with the current context. A
// missing half is taken from the context only when the present half agrees
// with it.
func (tx *transient) contextKey(name string, addr int64) SystemKey {
	cur := tx.next.current
	switch {
	case name == "" && addr == 0:
		return cur
	case name == "" && addr == cur.Address:
		return SystemKey{Name: cur.Name, Address: addr}
	case addr == 0 && name == cur.Name:
		return SystemKey{Name: name, Address: cur.Address}
	}
	return SystemKey{Name: name, Address: addr}
}

func (tx *transient) discoveryScan(e *model.FSSDiscoveryScan) {
	key := tx.contextKey(e.SystemName, e.SystemAddress)
	if key.IsZero() {
		return
	}
	if e.SystemName != "" || e.SystemAddress != 0 {
		tx.next.current = key
	}

	_, sys := tx.system(key)
	progress := e.Progress
	total := e.BodyCount
	nonBody := e.NonBodyCount
	sys.FSSProgress = &progress
	sys.TotalBodies = &total
	sys.NonBodyCount = &nonBody
}

func (tx *transient) allBodiesFound(e *model.FSSAllBodiesFound) {
	key := tx.contextKey(e.SystemName, e.SystemAddress)
	if key.IsZero() {
		return
	}

	_, sys := tx.system(key)
	if e.Count > 0 {
		count := e.Count
		sys.TotalBodies = &count
	}
	found := true
	sys.AllBodiesFound = &found
}

// bodyKey resolves the system for a body-level event: its own address when
// present, else the current one, named from the context.
func (tx *transient) bodyKey(addr int64) SystemKey {
	cur := tx.next.current
	if addr == 0 {
		return cur
	}
	if addr == cur.Address {
		return cur
	}
	return SystemKey{Address: addr}
}

func (tx *transient) scan(e *model.Scan) {
	if isBeltOrRing(e.BodyName) || e.BodyID < 0 {
		return
	}
	key := tx.contextKey(e.StarSystem, e.SystemAddress)
	if key.IsZero() {
		return
	}

	sysID, sys := tx.system(key)
	b := tx.body(sysID, sys, e.BodyID)

	b.Name = e.BodyName
	b.DistanceLS = e.DistanceLS
	b.Landable = e.Landable
	b.Gravity = e.SurfaceGravity
	b.AtmoOrType = atmoOrType(e)
	b.PlanetClass = e.PlanetClass
	b.Atmosphere = e.Atmosphere
	b.HighValue = b.HighValue || isHighValue(e)
	if e.SurfaceTemperature != nil {
		b.SurfaceTempK = e.SurfaceTemperature
	}
	if e.Volcanism != "" {
		b.Volcanism = e.Volcanism
	}
}

func (tx *transient) signals(addr int64, bodyID int, signals []model.Signal, genuses []model.Genus) {
	if bodyID < 0 {
		return
	}
	if len(signals) == 0 && len(genuses) == 0 {
		return
	}
	key := tx.bodyKey(addr)
	if key.IsZero() {
		return
	}

	sysID, sys := tx.system(key)
	b := tx.body(sysID, sys, bodyID)

	for _, s := range signals {
		typ := strings.ToLower(s.Type)
		loc := strings.ToLower(s.TypeLocalised)
		switch {
		case strings.Contains(typ, "biological") || strings.Contains(loc, "biological"):
			b.HasBio = true
		case strings.Contains(typ, "geological") || strings.Contains(loc, "geological"):
			b.HasGeo = true
		}
	}

	for _, g := range genuses {
		name := strings.ToLower(g.GenusLocalised)
		if name == "" {
			name = strings.ToLower(g.Genus)
		}
		if name != "" {
			b.genusPrefixes = addTo(b.genusPrefixes, name)
		}
	}
}

func (tx *transient) scanOrganic(e *model.ScanOrganic) {
	key := tx.bodyKey(e.SystemAddress)
	if key.IsZero() {
		return
	}
	sysID, sys := tx.system(key)

	name := strings.TrimSpace(e.BodyName)
	var b *Body
	switch {
	case e.BodyID >= 0:
		b = tx.body(sysID, sys, e.BodyID)
		if b.Name == "" && name != "" {
			b.Name = name
		}
	case name != "":
		if found, ok := sys.BodyByName(name); ok {
			b = tx.body(sysID, sys, found.ID)
			break
		}
		id := syntheticID(sysID, name, sys)
		b = tx.body(sysID, sys, id)
		b.Name = name
		if tx.onGap != nil {
			tx.onGap(sys.Key, name, id)
		}
	default:
		return
	}

	b.HasBio = true

	genus := strings.ToLower(e.GenusLocalised)
	if genus == "" {
		genus = strings.ToLower(e.Genus)
	}
	if genus != "" {
		b.genusPrefixes = addTo(b.genusPrefixes, genus)
	}

	display := displayName(
		firstNonEmpty(e.GenusLocalised, e.Genus),
		firstNonEmpty(e.SpeciesLocalised, e.Species),
	)
	if display != "" {
		b.bioNames = addTo(b.bioNames, display)
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// syntheticID derives a stable negative id from the system and body name.
// On a hash collision with a differently named body it probes downwards.
// Ids below -1 are never issued by the game.
func syntheticID(sysID, name string, sys *System) int {
	h := fnv.New32a()
	h.Write([]byte(sysID))
	h.Write([]byte{0})
	h.Write([]byte(name))

	id := -int(h.Sum32()&0x3fffffff) - 2
	for {
		b, ok := sys.bodies[id]
		if !ok || b.Name == name {
			return id
		}
		id--
	}
}

func isBeltOrRing(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "belt cluster") ||
		strings.Contains(lower, "belt ") ||
		strings.Contains(lower, " ring")
}

func isHighValue(e *model.Scan) bool {
	pc := strings.ToLower(e.PlanetClass)
	tf := strings.ToLower(e.TerraformState)
	return strings.Contains(pc, "earth-like") ||
		strings.Contains(pc, "earthlike") ||
		strings.Contains(pc, "ammonia world") ||
		strings.Contains(pc, "water world") ||
		strings.Contains(tf, "terraformable")
}

func atmoOrType(e *model.Scan) string {
	if e.Atmosphere != "" {
		return e.Atmosphere
	}
	if e.PlanetClass != "" {
		return e.PlanetClass
	}
	return e.StarType
}

func displayName(genus, species string) string {
	switch {
	case genus == "":
		return species
	case species == "":
		return genus
	}
	return genus + " " + species
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func addTo(set map[string]struct{}, v string) map[string]struct{} {
	if set == nil {
		set = make(map[string]struct{})
	}
	set[v] = struct{}{}
	return set
}
