// Package model defines the typed journal events shared by the parser,
// readers, tailer and accumulator.
//
// Variant fields carry the journal's JSON names so the parser can decode a
// record straight into its variant. Events are immutable once constructed.
package model

import "time"

// Event is implemented by every journal event variant.
type Event interface {
	Time() time.Time
	Kind() Kind
	// Document is the original parsed record. Callers must not modify it.
	Document() map[string]any
}

// Base carries the fields common to all variants.
type Base struct {
	Timestamp time.Time
	Type      Kind
	Raw       map[string]any
}

func (b Base) Time() time.Time          { return b.Timestamp }
func (b Base) Kind() Kind               { return b.Type }
func (b Base) Document() map[string]any { return b.Raw }

// Name returns the literal "event" field of the record, falling back to the
// kind label when the record has none.
func (b Base) Name() string {
	if s, ok := b.Raw["event"].(string); ok && s != "" {
		return s
	}
	return b.Type.String()
}

// GenericEvent is any record whose kind has no dedicated variant.
type GenericEvent struct {
	Base `json:"-"`
}

type Fileheader struct {
	Base        `json:"-"`
	Part        int    `json:"part"`
	Language    string `json:"language"`
	Odyssey     bool   `json:"Odyssey"`
	GameVersion string `json:"gameversion"`
	Build       string `json:"build"`
}

type Commander struct {
	Base `json:"-"`
	FID  string `json:"FID"`
	Name string `json:"Name"`
}

type LoadGame struct {
	Base         `json:"-"`
	Commander    string  `json:"Commander"`
	FID          string  `json:"FID"`
	Ship         string  `json:"Ship"`
	ShipID       int     `json:"ShipID"`
	ShipName     string  `json:"ShipName"`
	ShipIdent    string  `json:"ShipIdent"`
	FuelLevel    float64 `json:"FuelLevel"`
	FuelCapacity float64 `json:"FuelCapacity"`
	GameMode     string  `json:"GameMode"`
	Credits      int64   `json:"Credits"`
}

type Loadout struct {
	Base          `json:"-"`
	Ship          string          `json:"Ship"`
	ShipID        int             `json:"ShipID"`
	ShipName      string          `json:"ShipName"`
	ShipIdent     string          `json:"ShipIdent"`
	HullValue     int64           `json:"HullValue"`
	ModulesValue  int64           `json:"ModulesValue"`
	HullHealth    float64         `json:"HullHealth"`
	UnladenMass   float64         `json:"UnladenMass"`
	CargoCapacity int             `json:"CargoCapacity"`
	MaxJumpRange  float64         `json:"MaxJumpRange"`
	FuelCapacity  *LoadoutFuel    `json:"FuelCapacity"`
	Rebuy         int64           `json:"Rebuy"`
	Modules       []LoadoutModule `json:"Modules"`
}

type LoadoutFuel struct {
	Main    float64 `json:"Main"`
	Reserve float64 `json:"Reserve"`
}

type LoadoutModule struct {
	Slot         string       `json:"Slot"`
	Item         string       `json:"Item"`
	On           bool         `json:"On"`
	Priority     int          `json:"Priority"`
	Health       float64      `json:"Health"`
	Value        int64        `json:"Value"`
	AmmoInClip   *int         `json:"AmmoInClip"`
	AmmoInHopper *int         `json:"AmmoInHopper"`
	Engineering  *Engineering `json:"Engineering"`
}

type Engineering struct {
	Engineer                    string     `json:"Engineer"`
	EngineerID                  int64      `json:"EngineerID"`
	BlueprintID                 int64      `json:"BlueprintID"`
	BlueprintName               string     `json:"BlueprintName"`
	Level                       int        `json:"Level"`
	Quality                     float64    `json:"Quality"`
	ExperimentalEffect          string     `json:"ExperimentalEffect"`
	ExperimentalEffectLocalised string     `json:"ExperimentalEffect_Localised"`
	Modifiers                   []Modifier `json:"Modifiers"`
}

type Modifier struct {
	Label         string  `json:"Label"`
	Value         float64 `json:"Value"`
	OriginalValue float64 `json:"OriginalValue"`
	LessIsGood    int     `json:"LessIsGood"`
}

// Location is written on game load and after respawns.
type Location struct {
	Base          `json:"-"`
	Docked        bool      `json:"Docked"`
	Taxi          bool      `json:"Taxi"`
	Multicrew     bool      `json:"Multicrew"`
	StarSystem    string    `json:"StarSystem"`
	SystemAddress int64     `json:"SystemAddress"`
	StarPos       []float64 `json:"StarPos"` // nil or exactly 3 elements
	Body          string    `json:"Body"`
	BodyID        int       `json:"BodyID"`
	BodyType      string    `json:"BodyType"`
}

type StartJump struct {
	Base          `json:"-"`
	JumpType      string `json:"JumpType"`
	Taxi          bool   `json:"Taxi"`
	StarSystem    string `json:"StarSystem"`
	SystemAddress *int64 `json:"SystemAddress"`
	StarClass     string `json:"StarClass"`
}

type FSDJump struct {
	Base          `json:"-"`
	StarSystem    string    `json:"StarSystem"`
	SystemAddress int64     `json:"SystemAddress"`
	StarPos       []float64 `json:"StarPos"` // nil or exactly 3 elements
	Body          string    `json:"Body"`
	BodyID        int       `json:"BodyID"`
	BodyType      string    `json:"BodyType"`
	JumpDist      float64   `json:"JumpDist"`
	FuelUsed      float64   `json:"FuelUsed"`
	FuelLevel     float64   `json:"FuelLevel"`
}

type CarrierJump struct {
	Base                         `json:"-"`
	Docked                       bool             `json:"Docked"`
	StationName                  string           `json:"StationName"`
	StationType                  string           `json:"StationType"`
	MarketID                     int64            `json:"MarketID"`
	StationFaction               Faction          `json:"StationFaction"`
	StationGovernment            string           `json:"StationGovernment"`
	StationGovernmentLocalised   string           `json:"StationGovernment_Localised"`
	StationServices              []string         `json:"StationServices"`
	StationEconomy               string           `json:"StationEconomy"`
	StationEconomyLocalised      string           `json:"StationEconomy_Localised"`
	StationEconomies             []StationEconomy `json:"StationEconomies"`
	Taxi                         bool             `json:"Taxi"`
	Multicrew                    bool             `json:"Multicrew"`
	StarSystem                   string           `json:"StarSystem"`
	SystemAddress                int64            `json:"SystemAddress"`
	StarPos                      []float64        `json:"StarPos"`
	SystemAllegiance             string           `json:"SystemAllegiance"`
	SystemEconomy                string           `json:"SystemEconomy"`
	SystemEconomyLocalised       string           `json:"SystemEconomy_Localised"`
	SystemSecondEconomy          string           `json:"SystemSecondEconomy"`
	SystemSecondEconomyLocalised string           `json:"SystemSecondEconomy_Localised"`
	SystemGovernment             string           `json:"SystemGovernment"`
	SystemGovernmentLocalised    string           `json:"SystemGovernment_Localised"`
	SystemSecurity               string           `json:"SystemSecurity"`
	SystemSecurityLocalised      string           `json:"SystemSecurity_Localised"`
	Population                   int64            `json:"Population"`
	Body                         string           `json:"Body"`
	BodyID                       int              `json:"BodyID"`
	BodyType                     string           `json:"BodyType"`
}

type Faction struct {
	Name string `json:"Name"`
}

type StationEconomy struct {
	Name          string  `json:"Name"`
	NameLocalised string  `json:"Name_Localised"`
	Proportion    float64 `json:"Proportion"`
}

type CarrierJumpRequest struct {
	Base          `json:"-"`
	CarrierType   string     `json:"CarrierType"`
	CarrierID     int64      `json:"CarrierID"`
	SystemName    string     `json:"SystemName"`
	Body          string     `json:"Body"`
	SystemAddress int64      `json:"SystemAddress"`
	BodyID        int        `json:"BodyID"`
	DepartureTime *time.Time `json:"DepartureTime"`
}

type CarrierLocation struct {
	Base          `json:"-"`
	StarSystem    string `json:"StarSystem"`
	SystemAddress int64  `json:"SystemAddress"`
	BodyID        int    `json:"BodyID"`
}

type FSDTarget struct {
	Base                  `json:"-"`
	Name                  string `json:"Name"`
	SystemAddress         int64  `json:"SystemAddress"`
	StarClass             string `json:"StarClass"`
	RemainingJumpsInRoute int    `json:"RemainingJumpsInRoute"`
}

// Signal is one entry of a body signal list.
type Signal struct {
	Type          string `json:"Type"`
	TypeLocalised string `json:"Type_Localised"`
	Count         int    `json:"Count"`
}

// Genus is one entry of a surface scan genus list.
type Genus struct {
	Genus          string `json:"Genus"`
	GenusLocalised string `json:"Genus_Localised"`
}

// SAASignalsFound is written when a body has been mapped with the DSS.
type SAASignalsFound struct {
	Base          `json:"-"`
	BodyName      string   `json:"BodyName"`
	SystemAddress int64    `json:"SystemAddress"`
	BodyID        int      `json:"BodyID"`
	Signals       []Signal `json:"Signals"`
	Genuses       []Genus  `json:"Genuses"`
}

// FSSBodySignals is written when the FSS resolves signals on a body.
type FSSBodySignals struct {
	Base          `json:"-"`
	BodyName      string   `json:"BodyName"`
	SystemAddress int64    `json:"SystemAddress"`
	BodyID        int      `json:"BodyID"`
	Signals       []Signal `json:"Signals"`
}

type FSSDiscoveryScan struct {
	Base          `json:"-"`
	Progress      float64 `json:"Progress"`
	BodyCount     int     `json:"BodyCount"`
	NonBodyCount  int     `json:"NonBodyCount"`
	SystemName    string  `json:"SystemName"`
	SystemAddress int64   `json:"SystemAddress"`
}

type FSSAllBodiesFound struct {
	Base          `json:"-"`
	SystemName    string `json:"SystemName"`
	SystemAddress int64  `json:"SystemAddress"`
	Count         int    `json:"Count"`
}

// ParentRef is one element of a Scan "Parents" chain, e.g. {"Star": 5}.
type ParentRef struct {
	Type   string
	BodyID int
}

// Scan carries the physical attributes of a star or planet.
type Scan struct {
	Base               `json:"-"`
	BodyName           string      `json:"BodyName"`
	BodyID             int         `json:"BodyID"`
	StarSystem         string      `json:"StarSystem"`
	SystemAddress      int64       `json:"SystemAddress"`
	DistanceLS         float64     `json:"DistanceFromArrivalLS"`
	Landable           bool        `json:"Landable"`
	PlanetClass        string      `json:"PlanetClass"`
	Atmosphere         string      `json:"Atmosphere"`
	TerraformState     string      `json:"TerraformState"`
	SurfaceGravity     *float64    `json:"SurfaceGravity"`
	SurfacePressure    *float64    `json:"SurfacePressure"`
	SurfaceTemperature *float64    `json:"SurfaceTemperature"`
	OrbitalPeriod      *float64    `json:"OrbitalPeriod"`
	Volcanism          string      `json:"Volcanism"`
	WasDiscovered      *bool       `json:"WasDiscovered"`
	WasMapped          *bool       `json:"WasMapped"`
	WasFootfalled      *bool       `json:"WasFootfalled"`
	StarType           string      `json:"StarType"`
	Parents            []ParentRef `json:"-"`
}

// ScanOrganic is written for each exobiology sample. "Body" is the numeric
// body id; some producers add a "BodyName" instead.
type ScanOrganic struct {
	Base             `json:"-"`
	SystemAddress    int64  `json:"SystemAddress"`
	BodyID           int    `json:"Body"`
	BodyName         string `json:"BodyName"`
	ScanType         string `json:"ScanType"`
	Genus            string `json:"Genus"`
	GenusLocalised   string `json:"Genus_Localised"`
	Species          string `json:"Species"`
	SpeciesLocalised string `json:"Species_Localised"`
}

type ReceiveText struct {
	Base             `json:"-"`
	From             string `json:"From"`
	Message          string `json:"Message"`
	MessageLocalised string `json:"Message_Localised"`
	Channel          string `json:"Channel"`
}

type NavRoute struct {
	Base `json:"-"`
}

type NavRouteClear struct {
	Base `json:"-"`
}

type MaterialProportion struct {
	Name       string  `json:"Name"`
	Proportion float64 `json:"Proportion"`
}

type ProspectedAsteroid struct {
	Base               `json:"-"`
	Materials          []MaterialProportion `json:"Materials"`
	MotherlodeMaterial string               `json:"MotherlodeMaterial"`
	Content            string               `json:"Content"`
}

// Status is a snapshot-file frame (or the rare journal "Status" record).
type Status struct {
	Base          `json:"-"`
	Flags         uint32       `json:"Flags"`
	Flags2        uint32       `json:"Flags2"`
	Pips          [3]int       `json:"Pips"`
	FireGroup     int          `json:"FireGroup"`
	GuiFocus      int          `json:"GuiFocus"`
	Fuel          StatusFuel   `json:"Fuel"`
	Cargo         float64      `json:"Cargo"`
	LegalState    string       `json:"LegalState"`
	Balance       int64        `json:"Balance"`
	Latitude      *float64     `json:"Latitude"`
	Longitude     *float64     `json:"Longitude"`
	Altitude      *float64     `json:"Altitude"`
	Heading       *float64     `json:"Heading"`
	BodyName      string       `json:"BodyName"` // falls back to the destination name
	PlanetRadius  *float64     `json:"PlanetRadius"`
	Destination   *Destination `json:"Destination"`
}

type StatusFuel struct {
	FuelMain      float64 `json:"FuelMain"`
	FuelReservoir float64 `json:"FuelReservoir"`
}

type Destination struct {
	System        *int64 `json:"System"`
	Body          *int   `json:"Body"`
	Name          string `json:"Name"`
	NameLocalised string `json:"Name_Localised"`
}

// DestinationSystem returns the targeted system address, if any.
func (s *Status) DestinationSystem() (int64, bool) {
	if s.Destination == nil || s.Destination.System == nil {
		return 0, false
	}
	return *s.Destination.System, true
}

// HyperjumpCharging is emitted once when the ship starts charging its frame
// shift drive for a hyperspace jump to a targeted system.
type HyperjumpCharging struct {
	Base
	Status            *Status
	DestinationSystem int64
	DestinationName   string
}
