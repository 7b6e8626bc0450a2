// Package status decodes the snapshot file's flag words and detects the
// transitions that matter to the live pipeline.
package status

// Bits used by the hyperjump transition.
const (
	FlagFSDCharging            uint32 = 1 << 17 // Flags
	Flag2FSDHyperdriveCharging uint32 = 1 << 19 // Flags2
)

// Flags is the decoded form of the snapshot's Flags and Flags2 words.
type Flags struct {
	// Flags
	Docked                    bool `json:"docked"`
	Landed                    bool `json:"landed"`
	LandingGearDown           bool `json:"landingGearDown"`
	ShieldsUp                 bool `json:"shieldsUp"`
	Supercruise               bool `json:"supercruise"`
	FlightAssistOff           bool `json:"flightAssistOff"`
	HardpointsDeployed        bool `json:"hardpointsDeployed"`
	InWing                    bool `json:"inWing"`
	LightsOn                  bool `json:"lightsOn"`
	CargoScoopDeployed        bool `json:"cargoScoopDeployed"`
	SilentRunning             bool `json:"silentRunning"`
	ScoopingFuel              bool `json:"scoopingFuel"`
	SrvHandbrake              bool `json:"srvHandbrake"`
	SrvUsingTurretView        bool `json:"srvUsingTurretView"`
	SrvTurretRetracted        bool `json:"srvTurretRetracted"`
	SrvDriveAssist            bool `json:"srvDriveAssist"`
	FsdMassLocked             bool `json:"fsdMassLocked"`
	FsdCharging               bool `json:"fsdCharging"`
	FsdCooldown               bool `json:"fsdCooldown"`
	LowFuel                   bool `json:"lowFuel"`
	OverHeating               bool `json:"overHeating"`
	HasLatLong                bool `json:"hasLatLong"`
	IsInDanger                bool `json:"isInDanger"`
	BeingInterdicted          bool `json:"beingInterdicted"`
	InMainShip                bool `json:"inMainShip"`
	InFighter                 bool `json:"inFighter"`
	InSrv                     bool `json:"inSrv"`
	HudInAnalysisMode         bool `json:"hudInAnalysisMode"`
	NightVision               bool `json:"nightVision"`
	AltitudeFromAverageRadius bool `json:"altitudeFromAverageRadius"`
	FsdJump                   bool `json:"fsdJump"`
	SrvHighBeam               bool `json:"srvHighBeam"`

	// Flags2
	OnFoot                bool `json:"onFoot"`
	InTaxi                bool `json:"inTaxi"`
	InMulticrew           bool `json:"inMulticrew"`
	OnFootInStation       bool `json:"onFootInStation"`
	OnFootOnPlanet        bool `json:"onFootOnPlanet"`
	AimDownSight          bool `json:"aimDownSight"`
	LowOxygen             bool `json:"lowOxygen"`
	LowHealth             bool `json:"lowHealth"`
	Cold                  bool `json:"cold"`
	Hot                   bool `json:"hot"`
	VeryCold              bool `json:"veryCold"`
	VeryHot               bool `json:"veryHot"`
	GlideMode             bool `json:"glideMode"`
	OnFootInHangar        bool `json:"onFootInHangar"`
	OnFootSocialSpace     bool `json:"onFootSocialSpace"`
	OnFootExterior        bool `json:"onFootExterior"`
	BreathableAtmosphere  bool `json:"breathableAtmosphere"`
	TelepresenceMulticrew bool `json:"telepresenceMulticrew"`
	PhysicalMulticrew     bool `json:"physicalMulticrew"`
	FsdHyperdriveCharging bool `json:"fsdHyperdriveCharging"`
}

type bitDef struct {
	word  int // 0 = Flags, 1 = Flags2
	bit   uint
	name  string
	field func(*Flags) *bool
}

var bits = []bitDef{
	{0, 0, "docked", func(f *Flags) *bool { return &f.Docked }},
	{0, 1, "landed", func(f *Flags) *bool { return &f.Landed }},
	{0, 2, "landingGearDown", func(f *Flags) *bool { return &f.LandingGearDown }},
	{0, 3, "shieldsUp", func(f *Flags) *bool { return &f.ShieldsUp }},
	{0, 4, "supercruise", func(f *Flags) *bool { return &f.Supercruise }},
	{0, 5, "flightAssistOff", func(f *Flags) *bool { return &f.FlightAssistOff }},
	{0, 6, "hardpointsDeployed", func(f *Flags) *bool { return &f.HardpointsDeployed }},
	{0, 7, "inWing", func(f *Flags) *bool { return &f.InWing }},
	{0, 8, "lightsOn", func(f *Flags) *bool { return &f.LightsOn }},
	{0, 9, "cargoScoopDeployed", func(f *Flags) *bool { return &f.CargoScoopDeployed }},
	{0, 10, "silentRunning", func(f *Flags) *bool { return &f.SilentRunning }},
	{0, 11, "scoopingFuel", func(f *Flags) *bool { return &f.ScoopingFuel }},
	{0, 12, "srvHandbrake", func(f *Flags) *bool { return &f.SrvHandbrake }},
	{0, 13, "srvUsingTurretView", func(f *Flags) *bool { return &f.SrvUsingTurretView }},
	{0, 14, "srvTurretRetracted", func(f *Flags) *bool { return &f.SrvTurretRetracted }},
	{0, 15, "srvDriveAssist", func(f *Flags) *bool { return &f.SrvDriveAssist }},
	{0, 16, "fsdMassLocked", func(f *Flags) *bool { return &f.FsdMassLocked }},
	{0, 17, "fsdCharging", func(f *Flags) *bool { return &f.FsdCharging }},
	{0, 18, "fsdCooldown", func(f *Flags) *bool { return &f.FsdCooldown }},
	{0, 19, "lowFuel", func(f *Flags) *bool { return &f.LowFuel }},
	{0, 20, "overHeating", func(f *Flags) *bool { return &f.OverHeating }},
	{0, 21, "hasLatLong", func(f *Flags) *bool { return &f.HasLatLong }},
	{0, 22, "isInDanger", func(f *Flags) *bool { return &f.IsInDanger }},
	{0, 23, "beingInterdicted", func(f *Flags) *bool { return &f.BeingInterdicted }},
	{0, 24, "inMainShip", func(f *Flags) *bool { return &f.InMainShip }},
	{0, 25, "inFighter", func(f *Flags) *bool { return &f.InFighter }},
	{0, 26, "inSrv", func(f *Flags) *bool { return &f.InSrv }},
	{0, 27, "hudInAnalysisMode", func(f *Flags) *bool { return &f.HudInAnalysisMode }},
	{0, 28, "nightVision", func(f *Flags) *bool { return &f.NightVision }},
	{0, 29, "altitudeFromAverageRadius", func(f *Flags) *bool { return &f.AltitudeFromAverageRadius }},
	{0, 30, "fsdJump", func(f *Flags) *bool { return &f.FsdJump }},
	{0, 31, "srvHighBeam", func(f *Flags) *bool { return &f.SrvHighBeam }},

	{1, 0, "onFoot", func(f *Flags) *bool { return &f.OnFoot }},
	{1, 1, "inTaxi", func(f *Flags) *bool { return &f.InTaxi }},
	{1, 2, "inMulticrew", func(f *Flags) *bool { return &f.InMulticrew }},
	{1, 3, "onFootInStation", func(f *Flags) *bool { return &f.OnFootInStation }},
	{1, 4, "onFootOnPlanet", func(f *Flags) *bool { return &f.OnFootOnPlanet }},
	{1, 5, "aimDownSight", func(f *Flags) *bool { return &f.AimDownSight }},
	{1, 6, "lowOxygen", func(f *Flags) *bool { return &f.LowOxygen }},
	{1, 7, "lowHealth", func(f *Flags) *bool { return &f.LowHealth }},
	{1, 8, "cold", func(f *Flags) *bool { return &f.Cold }},
	{1, 9, "hot", func(f *Flags) *bool { return &f.Hot }},
	{1, 10, "veryCold", func(f *Flags) *bool { return &f.VeryCold }},
	{1, 11, "veryHot", func(f *Flags) *bool { return &f.VeryHot }},
	{1, 12, "glideMode", func(f *Flags) *bool { return &f.GlideMode }},
	{1, 13, "onFootInHangar", func(f *Flags) *bool { return &f.OnFootInHangar }},
	{1, 14, "onFootSocialSpace", func(f *Flags) *bool { return &f.OnFootSocialSpace }},
	{1, 15, "onFootExterior", func(f *Flags) *bool { return &f.OnFootExterior }},
	{1, 16, "breathableAtmosphere", func(f *Flags) *bool { return &f.BreathableAtmosphere }},
	{1, 17, "telepresenceMulticrew", func(f *Flags) *bool { return &f.TelepresenceMulticrew }},
	{1, 18, "physicalMulticrew", func(f *Flags) *bool { return &f.PhysicalMulticrew }},
	{1, 19, "fsdHyperdriveCharging", func(f *Flags) *bool { return &f.FsdHyperdriveCharging }},
}

// Decode expands the two flag words into named booleans.
func Decode(flags, flags2 uint32) Flags {
	var f Flags
	words := [2]uint32{flags, flags2}
	for _, b := range bits {
		*b.field(&f) = words[b.word]&(1<<b.bit) != 0
	}
	return f
}

// Active lists the names of the set flags in bit order.
func (f Flags) Active() []string {
	var names []string
	for _, b := range bits {
		if *b.field(&f) {
			names = append(names, b.name)
		}
	}
	return names
}

// Encode packs f back into its two words.
func (f Flags) Encode() (flags, flags2 uint32) {
	var words [2]uint32
	for _, b := range bits {
		if *b.field(&f) {
			words[b.word] |= 1 << b.bit
		}
	}
	return words[0], words[1]
}
