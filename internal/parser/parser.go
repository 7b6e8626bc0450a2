package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atikulmunna/edlog/internal/model"
)

// Parser converts one raw journal line into a typed event.
type Parser interface {
	Parse(line string) (model.Event, error)
}

// MalformedRecordError reports a line that could not be turned into an event.
// Callers log it and move on to the next line.
type MalformedRecordError struct {
	Line string
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record: %v", e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

func malformed(line string, err error) error {
	return &MalformedRecordError{Line: line, Err: err}
}

// ---------------------------------------------------------------------------
// Journal Parser
// ---------------------------------------------------------------------------

// JournalParser decodes journal and snapshot records. It is stateless and
// safe for concurrent use.
type JournalParser struct{}

func New() *JournalParser { return &JournalParser{} }

// Parse decodes a single JSON object. A record without an "event" field is a
// snapshot frame and decodes as model.Status. Unrecognized kinds decode as
// model.GenericEvent with the original document kept.
func (p *JournalParser) Parse(line string) (model.Event, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, malformed(line, errors.New("empty line"))
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, malformed(line, err)
	}
	if raw == nil {
		return nil, malformed(line, errors.New("record is not an object"))
	}

	name := model.KindStatus.JournalName()
	if v, ok := raw["event"]; ok {
		s, _ := v.(string)
		name = s
	}
	kind := model.KindFromName(name)

	tsText, _ := raw["timestamp"].(string)
	ts, err := time.Parse(time.RFC3339, tsText)
	if err != nil {
		return nil, malformed(line, fmt.Errorf("invalid timestamp %q", tsText))
	}

	base := model.Base{Timestamp: ts, Type: kind, Raw: raw}

	decode, ok := decoders[kind]
	if !ok {
		return &model.GenericEvent{Base: base}, nil
	}
	ev, err := decode([]byte(trimmed), base)
	if err != nil {
		return nil, malformed(line, err)
	}
	return ev, nil
}

var defaultParser = New()

// Parse decodes line with the default JournalParser.
func Parse(line string) (model.Event, error) {
	return defaultParser.Parse(line)
}

// ---------------------------------------------------------------------------
// Variant table
// ---------------------------------------------------------------------------

type decodeFunc func(data []byte, b model.Base) (model.Event, error)

// Each entry builds the variant with its field defaults set, then decodes the
// record over it. Fields absent from the record keep the default.
var decoders = map[model.Kind]decodeFunc{
	model.KindFileheader: variant(func(b model.Base) *model.Fileheader {
		return &model.Fileheader{Base: b}
	}),
	model.KindCommander: variant(func(b model.Base) *model.Commander {
		return &model.Commander{Base: b}
	}),
	model.KindLoadGame: variant(func(b model.Base) *model.LoadGame {
		return &model.LoadGame{Base: b, ShipID: -1}
	}),
	model.KindLoadout: variant(func(b model.Base) *model.Loadout {
		return &model.Loadout{Base: b, ShipID: -1}
	}),
	model.KindLocation: variant(func(b model.Base) *model.Location {
		return &model.Location{Base: b, BodyID: -1}
	}, func(e *model.Location) {
		e.StarPos = exactPosition(e.StarPos)
	}),
	model.KindStartJump: variant(func(b model.Base) *model.StartJump {
		return &model.StartJump{Base: b}
	}),
	model.KindFSDJump: variant(func(b model.Base) *model.FSDJump {
		return &model.FSDJump{Base: b, BodyID: -1}
	}, func(e *model.FSDJump) {
		e.StarPos = exactPosition(e.StarPos)
	}),
	model.KindCarrierJump: variant(func(b model.Base) *model.CarrierJump {
		return &model.CarrierJump{Base: b, BodyID: -1}
	}, func(e *model.CarrierJump) {
		if len(e.StarPos) >= 3 {
			e.StarPos = e.StarPos[:3]
		} else {
			e.StarPos = nil
		}
	}),
	model.KindCarrierJumpRequest: variant(func(b model.Base) *model.CarrierJumpRequest {
		return &model.CarrierJumpRequest{Base: b}
	}),
	model.KindCarrierLocation: variant(func(b model.Base) *model.CarrierLocation {
		return &model.CarrierLocation{Base: b}
	}),
	model.KindFSDTarget: variant(func(b model.Base) *model.FSDTarget {
		return &model.FSDTarget{Base: b}
	}),
	model.KindSAASignalsFound: variant(func(b model.Base) *model.SAASignalsFound {
		return &model.SAASignalsFound{Base: b, BodyID: -1}
	}),
	model.KindFSSBodySignals: variant(func(b model.Base) *model.FSSBodySignals {
		return &model.FSSBodySignals{Base: b, BodyID: -1}
	}),
	model.KindFSSDiscoveryScan: variant(func(b model.Base) *model.FSSDiscoveryScan {
		return &model.FSSDiscoveryScan{Base: b}
	}),
	model.KindFSSAllBodiesFound: variant(func(b model.Base) *model.FSSAllBodiesFound {
		return &model.FSSAllBodiesFound{Base: b}
	}),
	model.KindScan: variant(func(b model.Base) *model.Scan {
		return &model.Scan{Base: b, BodyID: -1}
	}, func(e *model.Scan) {
		e.Parents = parentRefs(e.Raw["Parents"])
	}),
	model.KindScanOrganic: variant(func(b model.Base) *model.ScanOrganic {
		return &model.ScanOrganic{Base: b, BodyID: -1}
	}),
	model.KindReceiveText: variant(func(b model.Base) *model.ReceiveText {
		return &model.ReceiveText{Base: b}
	}),
	model.KindNavRoute: variant(func(b model.Base) *model.NavRoute {
		return &model.NavRoute{Base: b}
	}),
	model.KindNavRouteClear: variant(func(b model.Base) *model.NavRouteClear {
		return &model.NavRouteClear{Base: b}
	}),
	model.KindProspectedAsteroid: variant(func(b model.Base) *model.ProspectedAsteroid {
		return &model.ProspectedAsteroid{Base: b}
	}, func(e *model.ProspectedAsteroid) {
		kept := e.Materials[:0]
		for _, m := range e.Materials {
			if strings.TrimSpace(m.Name) != "" {
				kept = append(kept, m)
			}
		}
		e.Materials = kept
	}),
	model.KindStatus: variant(func(b model.Base) *model.Status {
		return &model.Status{Base: b}
	}, func(e *model.Status) {
		if strings.TrimSpace(e.BodyName) != "" || e.Destination == nil {
			return
		}
		if strings.TrimSpace(e.Destination.NameLocalised) != "" {
			e.BodyName = e.Destination.NameLocalised
		} else {
			e.BodyName = e.Destination.Name
		}
	}),
}

// variant returns a decodeFunc that fills a fresh variant from the record and
// runs the optional fix-ups over the result.
func variant[P model.Event](newVariant func(model.Base) P, fixups ...func(P)) decodeFunc {
	return func(data []byte, b model.Base) (model.Event, error) {
		v := newVariant(b)
		if err := unmarshalLenient(data, v); err != nil {
			return nil, err
		}
		for _, fix := range fixups {
			fix(v)
		}
		return v, nil
	}
}

// unmarshalLenient decodes data into v. A field holding the wrong JSON type
// keeps its default instead of failing the whole record.
func unmarshalLenient(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	var typeErr *json.UnmarshalTypeError
	if err != nil && !errors.As(err, &typeErr) {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// exactPosition accepts a star position only when it has exactly three axes.
func exactPosition(p []float64) []float64 {
	if len(p) != 3 {
		return nil
	}
	return p
}

// parentRefs reads a Scan "Parents" array such as [{"Planet":17},{"Star":5}].
// Malformed elements are skipped.
func parentRefs(v any) []model.ParentRef {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}

	var out []model.ParentRef
	for _, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok || len(obj) == 0 {
			continue
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			n, ok := obj[k].(json.Number)
			if k == "" || !ok {
				continue
			}
			id, err := n.Int64()
			if err != nil {
				continue
			}
			out = append(out, model.ParentRef{Type: k, BodyID: int(id)})
		}
	}
	return out
}
