package model

// Kind identifies the journal event type. The zero value is KindUnknown.
type Kind int

const (
	KindUnknown Kind = iota
	KindFileheader
	KindCommander
	KindMaterials
	KindRank
	KindProgress
	KindReputation
	KindEngineerProgress
	KindLoadGame
	KindLocation
	KindStartJump
	KindSupercruiseEntry
	KindSupercruiseExit
	KindFSDJump
	KindFSDTarget
	KindNavRoute
	KindNavRouteClear
	KindSAASignalsFound
	KindScan
	KindFSSDiscoveryScan
	KindFSSAllBodiesFound
	KindFSSBodySignals
	KindSAAScanComplete
	KindCodexEntry
	KindLeaveBody
	KindCargo
	KindLoadout
	KindShipLocker
	KindMissions
	KindStatistics
	KindCarrierLocation
	KindCarrierJump
	KindCarrierJumpRequest
	KindCarrierJumpCancelled
	KindReceiveText
	KindMusic
	KindReservoirReplenished
	KindUndocked
	KindStatus
	KindScanOrganic
	KindProspectedAsteroid

	// KindHyperjumpCharging is synthesized by the snapshot monitor; it never
	// appears in a journal file.
	KindHyperjumpCharging
)

type kindInfo struct {
	journal string // value of the "event" field
	label   string // display label
}

var kinds = map[Kind]kindInfo{
	KindUnknown:              {"UNKNOWN", "UNKNOWN"},
	KindFileheader:           {"Fileheader", "FILEHEADER"},
	KindCommander:            {"Commander", "COMMANDER"},
	KindMaterials:            {"Materials", "MATERIALS"},
	KindRank:                 {"Rank", "RANK"},
	KindProgress:             {"Progress", "PROGRESS"},
	KindReputation:           {"Reputation", "REPUTATION"},
	KindEngineerProgress:     {"EngineerProgress", "ENGINEER_PROGRESS"},
	KindLoadGame:             {"LoadGame", "LOAD_GAME"},
	KindLocation:             {"Location", "LOCATION"},
	KindStartJump:            {"StartJump", "START_JUMP"},
	KindSupercruiseEntry:     {"SupercruiseEntry", "SUPERCRUISE_ENTRY"},
	KindSupercruiseExit:      {"SupercruiseExit", "SUPERCRUISE_EXIT"},
	KindFSDJump:              {"FSDJump", "FSD_JUMP"},
	KindFSDTarget:            {"FSDTarget", "FSD_TARGET"},
	KindNavRoute:             {"NavRoute", "NAV_ROUTE"},
	KindNavRouteClear:        {"NavRouteClear", "NAV_ROUTE_CLEAR"},
	KindSAASignalsFound:      {"SAASignalsFound", "SAASIGNALS_FOUND"},
	KindScan:                 {"Scan", "SCAN"},
	KindFSSDiscoveryScan:     {"FSSDiscoveryScan", "FSS_DISCOVERY_SCAN"},
	KindFSSAllBodiesFound:    {"FSSAllBodiesFound", "FSS_ALL_BODIES_FOUND"},
	KindFSSBodySignals:       {"FSSBodySignals", "FSS_BODY_SIGNALS"},
	KindSAAScanComplete:      {"SAAScanComplete", "SAASCAN_COMPLETE"},
	KindCodexEntry:           {"CodexEntry", "CODEX_ENTRY"},
	KindLeaveBody:            {"LeaveBody", "LEAVE_BODY"},
	KindCargo:                {"Cargo", "CARGO"},
	KindLoadout:              {"Loadout", "LOADOUT"},
	KindShipLocker:           {"ShipLocker", "SHIP_LOCKER"},
	KindMissions:             {"Missions", "MISSIONS"},
	KindStatistics:           {"Statistics", "STATISTICS"},
	KindCarrierLocation:      {"CarrierLocation", "CARRIER_LOCATION"},
	KindCarrierJump:          {"CarrierJump", "CARRIER_JUMP"},
	KindCarrierJumpRequest:   {"CarrierJumpRequest", "CARRIER_JUMP_REQUEST"},
	KindCarrierJumpCancelled: {"CarrierJumpCancelled", "CARRIER_JUMP_CANCELLED"},
	KindReceiveText:          {"ReceiveText", "RECEIVE_TEXT"},
	KindMusic:                {"Music", "MUSIC"},
	KindReservoirReplenished: {"ReservoirReplenished", "RESERVOIR_REPLENISHED"},
	KindUndocked:             {"Undocked", "UNDOCKED"},
	KindStatus:               {"Status", "STATUS"},
	KindScanOrganic:          {"ScanOrganic", "SCAN_ORGANIC"},
	KindProspectedAsteroid:   {"ProspectedAsteroid", "PROSPECTED_ASTEROID"},
	KindHyperjumpCharging:    {"HyperjumpCharging", "HYPERJUMP_CHARGING"},
}

var byJournalName = func() map[string]Kind {
	m := make(map[string]Kind, len(kinds))
	for k, info := range kinds {
		if k == KindUnknown || k == KindHyperjumpCharging {
			continue
		}
		m[info.journal] = k
	}
	return m
}()

// KindFromName maps a journal "event" value to its Kind, or KindUnknown.
func KindFromName(name string) Kind {
	if k, ok := byJournalName[name]; ok {
		return k
	}
	return KindUnknown
}

// JournalName returns the "event" field value for k.
func (k Kind) JournalName() string {
	return kinds[k].journal
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.label
	}
	return "UNKNOWN"
}
