package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/atikulmunna/edlog/internal/systems"
)

var (
	styleSystem = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	styleBadge  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleFaint  = lipgloss.NewStyle().Faint(true)
)

// WriteRecords exports system records in the given format: "yaml", "json"
// or "text".
func WriteRecords(w io.Writer, format string, records []systems.SystemRecord) error {
	if records == nil {
		records = []systems.SystemRecord{}
	}
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "", "text":
		return writeRecordsText(w, records)
	}
	return fmt.Errorf("unknown export format %q (want text, yaml or json)", format)
}

func writeRecordsText(w io.Writer, records []systems.SystemRecord) error {
	for _, r := range records {
		head := styleSystem.Render(r.Key().String())
		if r.TotalBodies != nil {
			head += styleFaint.Render(fmt.Sprintf(" %d/%d bodies", len(r.Bodies), *r.TotalBodies))
		}
		if _, err := fmt.Fprintln(w, head); err != nil {
			return err
		}
		for _, b := range r.Bodies {
			var badges []string
			if b.HighValue {
				badges = append(badges, "high-value")
			}
			if b.Landable {
				badges = append(badges, "landable")
			}
			if b.HasBio {
				badges = append(badges, "bio")
			}
			if b.HasGeo {
				badges = append(badges, "geo")
			}
			row := fmt.Sprintf("  %-28s %10.1f ls  %s", b.Name, b.DistanceLS, b.AtmoOrType)
			if len(badges) > 0 {
				row += " " + styleBadge.Render("["+strings.Join(badges, " ")+"]")
			}
			if _, err := fmt.Fprintln(w, row); err != nil {
				return err
			}
			for _, n := range b.ObservedBioDisplayNames {
				if _, err := fmt.Fprintln(w, styleFaint.Render("      "+n)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
