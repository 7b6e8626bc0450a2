package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/atikulmunna/edlog/internal/journal"
	"github.com/atikulmunna/edlog/internal/metrics"
	"github.com/atikulmunna/edlog/internal/model"
	"github.com/atikulmunna/edlog/internal/output"
)

var (
	readToday  bool
	readLatest bool
	readDate   string
	readLast   int
	readSince  string
	readKinds  string
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Print historical journal events",
	Long: `Read journal files and print their events in timestamp order. Without a
selector every journal file is read, followed by the current Status.json.

Examples:
  edlog read --today
  edlog read --date 2025-11-27 --kinds FSDJump
  edlog read --last 3
  edlog read --since 2025-11-27T18:00:00Z --output json`,
	Args: cobra.NoArgs,
	RunE: runRead,
}

func init() {
	f := readCmd.Flags()
	f.BoolVar(&readToday, "today", false, "events from today (local time)")
	f.BoolVar(&readLatest, "latest", false, "events from the newest journal file")
	f.StringVar(&readDate, "date", "", "events from a local date (YYYY-MM-DD)")
	f.IntVar(&readLast, "last", 0, "events from the last N journal files")
	f.StringVar(&readSince, "since", "", "events strictly after an RFC 3339 instant")
	f.StringVarP(&readKinds, "kinds", "k", "", "only show these event names (comma-separated)")
	readCmd.MarkFlagsMutuallyExclusive("today", "latest", "date", "last", "since")
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	r, err := journal.New(cfg.JournalDir,
		journal.WithStatusFile(cfg.StatusFile),
		journal.WithStrictOrder(cfg.StrictOrder),
		journal.WithMetrics(metrics.New()),
	)
	if err != nil {
		return err
	}

	events, err := selectEvents(r, cmd)
	if err != nil {
		return err
	}

	renderer, err := output.New(cfg.Output, os.Stdout)
	if err != nil {
		return err
	}
	show := kindFilter(readKinds)
	for _, ev := range events {
		if !show(ev) {
			continue
		}
		if err := renderer.Render(ev); err != nil {
			log.Printf("render error: %v", err)
		}
	}
	return nil
}

func selectEvents(r *journal.Reader, cmd *cobra.Command) ([]model.Event, error) {
	switch {
	case readToday:
		return r.ReadToday()
	case readLatest:
		return r.ReadLatest()
	case cmd.Flags().Changed("date"):
		return r.ReadForDate(readDate)
	case cmd.Flags().Changed("last"):
		return r.ReadLastN(readLast)
	case cmd.Flags().Changed("since"):
		since, err := time.Parse(time.RFC3339, readSince)
		if err != nil {
			return nil, fmt.Errorf("invalid --since %q: %w", readSince, err)
		}
		return r.ReadSince(since)
	}
	return r.ReadAll()
}
