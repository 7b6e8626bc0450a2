package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/atikulmunna/edlog/internal/model"
)

// Renderer writes events to an output stream.
type Renderer interface {
	Render(ev model.Event) error
}

// New returns the renderer for the configured output format.
func New(format string, w io.Writer) (Renderer, error) {
	if w == nil {
		w = os.Stdout
	}
	switch format {
	case "", "text":
		return &TextRenderer{w: w}, nil
	case "json":
		return NewJSONRenderer(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want text or json)", format)
}

// ---------------------------------------------------------------------------
// Text Renderer (colorized terminal output)
// ---------------------------------------------------------------------------

var (
	styleDefault = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	styleStatus  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleJump    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))             // cyan
	styleScan    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))             // green
	styleBio     = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true) // yellow bold
	styleComms   = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))            // purple
	styleCharge  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("196")).
			Bold(true) // white on red
)

// TextRenderer prints one formatted line per event, coloured by kind.
type TextRenderer struct {
	w io.Writer
}

// NewTextRenderer returns a Renderer that writes colorized text to stdout.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{w: os.Stdout}
}

func (r *TextRenderer) Render(ev model.Event) error {
	_, err := fmt.Fprintln(r.w, styleFor(ev.Kind()).Render(Format(ev)))
	return err
}

func styleFor(k model.Kind) lipgloss.Style {
	switch k {
	case model.KindFSDJump, model.KindLocation, model.KindCarrierJump, model.KindStartJump, model.KindFSDTarget:
		return styleJump
	case model.KindScan, model.KindFSSDiscoveryScan, model.KindFSSAllBodiesFound, model.KindFSSBodySignals:
		return styleScan
	case model.KindSAASignalsFound, model.KindScanOrganic:
		return styleBio
	case model.KindReceiveText:
		return styleComms
	case model.KindHyperjumpCharging:
		return styleCharge
	case model.KindStatus:
		return styleStatus
	default:
		return styleDefault
	}
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints each event's original record as one JSON object per
// line. Records without an "event" field get one from their kind.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer that writes JSON lines to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONRenderer{enc: enc}
}

func (r *JSONRenderer) Render(ev model.Event) error {
	doc := ev.Document()
	out := make(map[string]any, len(doc)+2)
	for k, v := range doc {
		out[k] = v
	}
	if _, ok := out["event"]; !ok {
		out["event"] = ev.Kind().JournalName()
	}
	if _, ok := out["timestamp"]; !ok {
		out["timestamp"] = ev.Time().UTC().Format("2006-01-02T15:04:05Z")
	}
	return r.enc.Encode(out)
}
