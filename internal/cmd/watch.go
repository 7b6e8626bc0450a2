package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/atikulmunna/edlog/internal/catalog"
	"github.com/atikulmunna/edlog/internal/journal"
	"github.com/atikulmunna/edlog/internal/model"
	"github.com/atikulmunna/edlog/internal/output"
	"github.com/atikulmunna/edlog/internal/tailer"
	"github.com/atikulmunna/edlog/internal/watcher"
)

var watchKinds string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream new journal events as they are written",
	Long: `Tail the newest journal file and the Status.json snapshot and print every
new event. Starts at the end of the current journal; earlier events are not
replayed. This command only displays events and never moves the rescan
cursor.

Examples:
  edlog watch
  edlog watch --kinds FSDJump,Scan,ScanOrganic
  edlog watch --output json`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchKinds, "kinds", "k", "", "only show these event names (comma-separated)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	renderer, err := output.New(cfg.Output, os.Stdout)
	if err != nil {
		return err
	}
	show := kindFilter(watchKinds)

	reg := tailer.NewRegistry(
		tailer.WithInterval(cfg.PollInterval),
		tailer.WithStrictOrder(cfg.StrictOrder),
	)
	defer reg.StopAll()

	t, err := reg.Get(cfg.JournalDir, tailer.WithStatusFile(cfg.StatusFile))
	if err != nil {
		return fmt.Errorf("failed to start tailer: %w", err)
	}

	w, err := watcher.New(cfg.JournalDir, catalog.Pattern, journal.StatusFileName)
	if err != nil {
		log.Printf("file notifications unavailable, polling only: %v", err)
	} else {
		go w.Start(ctx)
		go nudgeOnChange(w, t)
	}

	fmt.Fprintf(os.Stderr, "edlog watching %s (every %s)\n\n", cfg.JournalDir, cfg.PollInterval)

	t.AddListener(tailer.ListenerFunc(func(ev model.Event) {
		if !show(ev) {
			return
		}
		if err := renderer.Render(ev); err != nil {
			log.Printf("render error: %v", err)
		}
	}))

	<-ctx.Done()
	return nil
}

// nudgeOnChange wakes t whenever w reports a change, until w closes.
func nudgeOnChange(w *watcher.Watcher, t *tailer.Tailer) {
	for range w.Events {
		t.Nudge()
	}
}
