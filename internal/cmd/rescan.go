package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/atikulmunna/edlog/internal/config"
	"github.com/atikulmunna/edlog/internal/cursor"
	"github.com/atikulmunna/edlog/internal/journal"
	"github.com/atikulmunna/edlog/internal/metrics"
	"github.com/atikulmunna/edlog/internal/store"
	"github.com/atikulmunna/edlog/internal/systems"
)

var rescanFull bool

var rescanCmd = &cobra.Command{
	Use:   "rescan",
	Short: "Fold journal history into the system cache",
	Long: `Read every journal event after the rescan cursor, fold it into the cached
systems and move the cursor to the newest event seen. With --full the cache
is rebuilt from every journal file and the cursor is reset to the result.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		run, err := rescan(ctx, cfg, rescanFull, metrics.New())
		if err != nil {
			return err
		}

		to := "unchanged"
		if run.CursorTo != nil {
			to = run.CursorTo.Local().Format(time.RFC3339)
		}
		fmt.Printf("%s rescan: %d events, %d systems cached, %d synthesized bodies, cursor %s\n",
			run.Mode, run.Events, run.Systems, run.Gaps, to)
		return nil
	},
}

func init() {
	rescanCmd.Flags().BoolVar(&rescanFull, "full", false, "ignore the cursor and rebuild the cache")
	rootCmd.AddCommand(rescanCmd)
}

// rescan runs one historical fold and records it in the cache.
func rescan(ctx context.Context, cfg config.Config, full bool, m *metrics.Metrics) (store.Run, error) {
	run := store.Run{Mode: store.ModeIncremental, StartedAt: time.Now()}
	if full {
		run.Mode = store.ModeFull
	}

	reader, err := journal.New(cfg.JournalDir,
		journal.WithStatusFile(cfg.StatusFile),
		journal.WithStrictOrder(cfg.StrictOrder),
		journal.WithMetrics(m),
	)
	if err != nil {
		return run, err
	}
	cur := cursor.New(cfg.CursorFile)

	db, err := store.Open(cfg.CacheDB)
	if err != nil {
		return run, err
	}
	defer db.Close()

	var (
		base  *systems.State
		since time.Time
	)
	if full {
		if err := db.Clear(ctx); err != nil {
			return run, err
		}
	} else {
		if t, ok := cur.Read(); ok {
			since = t
			run.CursorFrom = &t
		}
		recs, err := db.LoadRecords(ctx)
		if err != nil {
			return run, err
		}
		base = systems.FromRecords(recs)
	}

	events, err := reader.ReadSince(since)
	if err != nil {
		return run, fmt.Errorf("reading journals: %w", err)
	}
	run.Events = len(events)

	folder := systems.Folder{OnGap: func(sys systems.SystemKey, body string, id int) {
		run.Gaps++
		m.SyntheticBody()
		log.Printf("rescan: %s body %q has no scan yet, tracking as %d", sys, body, id)
	}}
	state := folder.FoldAll(base, events)

	recs := state.Records()
	if err := db.SaveRecords(ctx, recs); err != nil {
		return run, err
	}
	run.Systems = len(recs)
	m.SetSystems(state.Len())

	if n := len(events); n > 0 {
		newest := events[n-1].Time()
		if full {
			err = cur.Write(newest)
		} else {
			_, err = cur.Advance(newest)
		}
		if err != nil {
			return run, fmt.Errorf("saving cursor: %w", err)
		}
		if t, ok := cur.Read(); ok {
			run.CursorTo = &t
		}
	}

	run.FinishedAt = time.Now()
	return db.RecordRun(ctx, run)
}
