package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/edlog/internal/config"
	"github.com/atikulmunna/edlog/internal/model"
	"github.com/atikulmunna/edlog/internal/output"
)

var cfgFile string

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "edlog",
	Short: "edlog: Elite Dangerous journal reader and system cache",
	Long: `edlog reads the Elite Dangerous player journal, tails it live, decodes
the Status.json snapshot and folds everything it sees into a per-system,
per-body cache you can query from the terminal or over HTTP.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.edlog.yaml)")
	pf.StringP("output", "o", "text", "output format: text, json")
	pf.StringP("journal-dir", "d", "", "journal directory (default: discovered)")
	pf.String("status-file", "", "status snapshot file (default: Status.json in the journal directory)")
	pf.String("cursor-file", "", "rescan cursor file (default: edlog.lastRescanTimestamp in the journal directory)")
	pf.String("cache-db", "", "system cache database (default: $HOME/.edlog-systems.db)")
	pf.Duration("poll-interval", 500*time.Millisecond, "live poll interval")
	pf.Bool("strict-order", false, "order journal files by the timestamp in their name instead of by name")

	for key, flag := range map[string]string{
		config.KeyOutput:       "output",
		config.KeyJournalDir:   "journal-dir",
		config.KeyStatusFile:   "status-file",
		config.KeyCursorFile:   "cursor-file",
		config.KeyCacheDB:      "cache-db",
		config.KeyPollInterval: "poll-interval",
		config.KeyStrictOrder:  "strict-order",
	} {
		cobra.CheckErr(viper.BindPFlag(key, pf.Lookup(flag)))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".edlog")
		viper.SetConfigType("yaml")
	}

	config.SetDefaults(viper.GetViper())
	_ = viper.ReadInConfig()
}

// loadConfig resolves the configuration and requires a journal directory.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, err
	}
	if cfg.JournalDir == "" {
		return config.Config{}, fmt.Errorf("no journal directory found; set --journal-dir or %s_JOURNAL_DIR", config.EnvPrefix)
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nedlog shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// kindFilter builds a predicate from a comma-separated list of event names.
// An empty list accepts everything.
func kindFilter(list string) func(model.Event) bool {
	set := make(map[string]bool)
	for _, k := range strings.Split(list, ",") {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			set[k] = true
		}
	}
	if len(set) == 0 {
		return func(model.Event) bool { return true }
	}
	return func(ev model.Event) bool {
		return set[strings.ToLower(output.EventName(ev))] || set[strings.ToLower(ev.Kind().String())]
	}
}
