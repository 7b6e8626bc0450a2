package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atikulmunna/edlog/internal/model"
)

const timeLayout = "2006-01-02 15:04:05"

// Format renders ev as one human-readable line in local time, e.g.
//
//	2025-11-28 22:17:03 [FSD_JUMP] system=Sol body=Sol bodyType=Star ...
//
// Kinds without a dedicated layout print their literal event name and the
// record minus its timestamp and event fields.
func Format(ev model.Event) string {
	if ev == nil {
		return "<null event>"
	}
	ts := localTime(ev.Time())

	switch e := ev.(type) {
	case *model.Fileheader:
		return line(ts, e.Kind(),
			"part", itoa(e.Part),
			"odyssey", strconv.FormatBool(e.Odyssey),
			"gameVersion", safe(e.GameVersion),
			"build", safe(e.Build))
	case *model.Commander:
		return line(ts, e.Kind(), "name", safe(e.Name), "fid", safe(e.FID))
	case *model.LoadGame:
		return line(ts, e.Kind(),
			"commander", safe(e.Commander),
			"ship", safe(e.Ship),
			"shipName", safe(e.ShipName),
			"fuel", ftoa(e.FuelLevel)+"/"+ftoa(e.FuelCapacity),
			"mode", safe(e.GameMode),
			"credits", strconv.FormatInt(e.Credits, 10))
	case *model.Location:
		return line(ts, e.Kind(),
			"system", safe(e.StarSystem),
			"body", safe(e.Body),
			"bodyType", safe(e.BodyType),
			"docked", strconv.FormatBool(e.Docked),
			"taxi", strconv.FormatBool(e.Taxi),
			"multicrew", strconv.FormatBool(e.Multicrew))
	case *model.StartJump:
		return line(ts, e.Kind(),
			"type", safe(e.JumpType),
			"system", safe(e.StarSystem),
			"starClass", safe(e.StarClass),
			"taxi", strconv.FormatBool(e.Taxi))
	case *model.FSDJump:
		return line(ts, e.Kind(),
			"system", safe(e.StarSystem),
			"body", safe(e.Body),
			"bodyType", safe(e.BodyType),
			"jumpDist", ftoa(e.JumpDist),
			"fuelUsed", ftoa(e.FuelUsed),
			"fuelLevel", ftoa(e.FuelLevel))
	case *model.FSDTarget:
		return line(ts, e.Kind(),
			"name", safe(e.Name),
			"starClass", safe(e.StarClass),
			"remainingJumps", itoa(e.RemainingJumpsInRoute))
	case *model.SAASignalsFound:
		return formatSignals(ts, e)
	case *model.NavRoute:
		return ts + " [" + e.Kind().String() + "] Nav route updated"
	case *model.NavRouteClear:
		return ts + " [" + e.Kind().String() + "] Nav route cleared"
	case *model.Status:
		return formatStatus(ts, e)
	case *model.HyperjumpCharging:
		return line(ts, e.Kind(),
			"destination", strconv.FormatInt(e.DestinationSystem, 10),
			"name", safe(e.DestinationName))
	case *model.ReceiveText:
		msg := e.MessageLocalised
		if msg == "" {
			msg = e.Message
		}
		return line(ts, e.Kind(), "from", safe(e.From), "channel", safe(e.Channel), "msg", safe(msg))
	}
	return formatGeneric(ts, ev)
}

func localTime(t time.Time) string {
	if t.IsZero() {
		return "<no-ts>"
	}
	return t.Local().Format(timeLayout)
}

func line(ts string, k model.Kind, kv ...string) string {
	var b strings.Builder
	b.WriteString(ts)
	b.WriteString(" [")
	b.WriteString(k.String())
	b.WriteString("]")
	for i := 0; i+1 < len(kv); i += 2 {
		b.WriteByte(' ')
		b.WriteString(kv[i])
		b.WriteByte('=')
		b.WriteString(kv[i+1])
	}
	return b.String()
}

func formatSignals(ts string, e *model.SAASignalsFound) string {
	var b strings.Builder
	b.WriteString(line(ts, e.Kind(), "body", safe(e.BodyName)))
	if len(e.Signals) > 0 {
		parts := make([]string, len(e.Signals))
		for i, s := range e.Signals {
			parts[i] = s.Type + "(" + itoa(s.Count) + ")"
		}
		b.WriteString(" signals=")
		b.WriteString(strings.Join(parts, ", "))
	}
	if len(e.Genuses) > 0 {
		parts := make([]string, len(e.Genuses))
		for i, g := range e.Genuses {
			parts[i] = g.GenusLocalised
			if parts[i] == "" {
				parts[i] = g.Genus
			}
		}
		b.WriteString(" genuses=")
		b.WriteString(strings.Join(parts, ", "))
	}
	return b.String()
}

func formatStatus(ts string, e *model.Status) string {
	return line(ts, e.Kind(),
		"flags", strconv.FormatUint(uint64(e.Flags), 10),
		"flags2", strconv.FormatUint(uint64(e.Flags2), 10),
		"guiFocus", itoa(e.GuiFocus),
		"fuelMain", ftoa(e.Fuel.FuelMain),
		"fuelRes", ftoa(e.Fuel.FuelReservoir),
		"cargo", ftoa(e.Cargo),
		"legal", safe(e.LegalState),
		"balance", strconv.FormatInt(e.Balance, 10),
		"pips", fmt.Sprintf("[%d,%d,%d]", e.Pips[0], e.Pips[1], e.Pips[2]))
}

func formatGeneric(ts string, ev model.Event) string {
	label := EventName(ev)
	out := ts + " [" + label + "]"

	doc := ev.Document()
	if len(doc) == 0 {
		return out
	}
	rest := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == "timestamp" || k == "event" {
			continue
		}
		rest[k] = v
	}
	if len(rest) == 0 {
		return out
	}
	tail, err := compactJSON(rest)
	if err != nil {
		return out
	}
	return out + " " + tail
}

// EventName is the record's literal "event" value, else the kind's journal
// name.
func EventName(ev model.Event) string {
	if s, ok := ev.Document()["event"].(string); ok && s != "" {
		return s
	}
	return ev.Kind().JournalName()
}

func compactJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func safe(s string) string {
	if s == "" {
		return "<null>"
	}
	return s
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
