package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/atikulmunna/edlog/internal/aggregator"
	"github.com/atikulmunna/edlog/internal/catalog"
	"github.com/atikulmunna/edlog/internal/cursor"
	"github.com/atikulmunna/edlog/internal/hub"
	"github.com/atikulmunna/edlog/internal/journal"
	"github.com/atikulmunna/edlog/internal/metrics"
	"github.com/atikulmunna/edlog/internal/server"
	"github.com/atikulmunna/edlog/internal/store"
	"github.com/atikulmunna/edlog/internal/systems"
	"github.com/atikulmunna/edlog/internal/tailer"
	"github.com/atikulmunna/edlog/internal/watcher"
)

const saveInterval = 30 * time.Second

var (
	servePort   string
	serveRescan bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Tail the journal live and serve the system cache over HTTP",
	Long: `Catch the cache up with an incremental rescan, then tail the journal and
Status.json, folding every live event into the cache and moving the rescan
cursor as events are delivered.

Endpoints:
  /healthz  /api/stats  /api/systems  /api/systems/current  /api/status
  /ws (live events)  /metrics (Prometheus)`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVarP(&servePort, "port", "p", "", "HTTP port (default: server.port, 7777)")
	f.BoolVar(&serveRescan, "rescan", true, "run an incremental rescan before tailing")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	ctx, cancel := signalContext()
	defer cancel()

	m := metrics.New()

	if serveRescan {
		run, err := rescan(ctx, cfg, false, m)
		if err != nil {
			return fmt.Errorf("initial rescan: %w", err)
		}
		fmt.Fprintf(os.Stderr, "edlog caught up: %d events, %d systems\n", run.Events, run.Systems)
	}

	db, err := store.Open(cfg.CacheDB)
	if err != nil {
		return err
	}
	defer db.Close()

	recs, err := db.LoadRecords(ctx)
	if err != nil {
		return err
	}

	live := systems.NewLive(systems.FromRecords(recs), systems.Folder{
		OnGap: func(sys systems.SystemKey, body string, id int) {
			m.SyntheticBody()
			log.Printf("live: %s body %q has no scan yet, tracking as %d", sys, body, id)
		},
	})
	live.OnChange(func(s *systems.State) { m.SetSystems(s.Len()) })
	m.SetSystems(live.State().Len())

	h := hub.New()
	go h.Start(ctx)

	reg := tailer.NewRegistry(
		tailer.WithInterval(cfg.PollInterval),
		tailer.WithStrictOrder(cfg.StrictOrder),
		tailer.WithMetrics(m),
	)
	defer reg.StopAll()

	t, err := reg.Get(cfg.JournalDir,
		tailer.WithStatusFile(cfg.StatusFile),
		tailer.WithCursor(cursor.New(cfg.CursorFile)),
	)
	if err != nil {
		return err
	}

	agg := aggregator.New(h.Subscribe(), aggregator.Sources{
		Dropped: h.Dropped,
		Journal: func() string { return filepath.Base(t.CurrentFile()) },
		Systems: func() int { return live.State().Len() },
	})
	go agg.Start(ctx)

	if w, err := watcher.New(cfg.JournalDir, catalog.Pattern, journal.StatusFileName); err != nil {
		log.Printf("file notifications unavailable, polling only: %v", err)
	} else {
		go w.Start(ctx)
		go nudgeOnChange(w, t)
	}

	// Listeners run in order: the cache folds an event before the hub
	// publishes it.
	t.AddListener(live)
	t.AddListener(h)

	go saveLoop(ctx, db, live)

	srv := server.New(server.Deps{
		Hub:        h,
		Aggregator: agg,
		Systems:    live,
		Status:     t.LastStatus,
		Metrics:    m.Handler(),
	}, cfg.Port)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	fmt.Fprintf(os.Stderr, "edlog serving on :%s, tailing %s\n", cfg.Port, cfg.JournalDir)

	select {
	case <-ctx.Done():
	case err = <-errCh:
	}

	reg.StopAll()
	if serr := saveLive(context.Background(), db, live); serr != nil {
		log.Printf("saving cache on shutdown: %v", serr)
	}
	return err
}

// saveLoop persists the live cache periodically until ctx is cancelled.
func saveLoop(ctx context.Context, db *store.Store, live *systems.Live) {
	ticker := time.NewTicker(saveInterval)
	defer ticker.Stop()

	var last *systems.State
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := live.State()
			if st == last {
				continue
			}
			if err := db.SaveRecords(ctx, st.Records()); err != nil {
				log.Printf("saving cache: %v", err)
				continue
			}
			last = st
		}
	}
}

func saveLive(ctx context.Context, db *store.Store, live *systems.Live) error {
	return db.SaveRecords(ctx, live.State().Records())
}

