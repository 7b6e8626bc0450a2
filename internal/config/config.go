// Package config resolves edlog settings from flags, environment and an
// optional .edlog.yaml through viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/atikulmunna/edlog/internal/cursor"
	"github.com/atikulmunna/edlog/internal/journal"
)

// Keys.
const (
	KeyJournalDir   = "journal_dir"
	KeyStatusFile   = "status_file"
	KeyCursorFile   = "cursor_file"
	KeyCacheDB      = "cache_db"
	KeyPollInterval = "poll_interval"
	KeyStrictOrder  = "strict_order"
	KeyServerPort   = "server.port"
	KeyOutput       = "output"
)

// EnvPrefix is prepended to every key, e.g. EDLOG_JOURNAL_DIR.
const EnvPrefix = "EDLOG"

// Config is the resolved configuration.
type Config struct {
	JournalDir   string
	StatusFile   string
	CursorFile   string
	CacheDB      string
	PollInterval time.Duration
	StrictOrder  bool
	Port         string
	Output       string
}

// SetDefaults registers defaults and the environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPollInterval, "500ms")
	v.SetDefault(KeyStrictOrder, false)
	v.SetDefault(KeyServerPort, "7777")
	v.SetDefault(KeyOutput, "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads v into a Config, filling path defaults that depend on the
// journal directory. An undiscoverable journal directory is not an error
// here; commands that need one report it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		JournalDir:  v.GetString(KeyJournalDir),
		StatusFile:  v.GetString(KeyStatusFile),
		CursorFile:  v.GetString(KeyCursorFile),
		CacheDB:     v.GetString(KeyCacheDB),
		StrictOrder: v.GetBool(KeyStrictOrder),
		Port:        v.GetString(KeyServerPort),
		Output:      strings.ToLower(v.GetString(KeyOutput)),
	}

	interval, err := time.ParseDuration(v.GetString(KeyPollInterval))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", KeyPollInterval, err)
	}
	if interval <= 0 {
		return Config{}, fmt.Errorf("invalid %s: must be positive", KeyPollInterval)
	}
	cfg.PollInterval = interval

	switch cfg.Output {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("invalid %s %q: want text or json", KeyOutput, cfg.Output)
	}

	if cfg.JournalDir == "" {
		if dir, ok := DiscoverJournalDir(); ok {
			cfg.JournalDir = dir
		}
	}
	if cfg.JournalDir != "" {
		if cfg.StatusFile == "" {
			cfg.StatusFile = filepath.Join(cfg.JournalDir, journal.StatusFileName)
		}
		if cfg.CursorFile == "" {
			cfg.CursorFile = filepath.Join(cfg.JournalDir, cursor.DefaultFileName)
		}
	}
	if cfg.CacheDB == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolving cache location: %w", err)
		}
		cfg.CacheDB = filepath.Join(home, ".edlog-systems.db")
	}
	return cfg, nil
}

// ---------------------------------------------------------------------------
// Journal directory discovery
// ---------------------------------------------------------------------------

var journalSubdir = filepath.Join("Saved Games", "Frontier Developments", "Elite Dangerous")

// DiscoverJournalDir returns the first existing default journal directory.
func DiscoverJournalDir() (string, bool) {
	home, _ := os.UserHomeDir()
	for _, dir := range Candidates(os.Getenv, home) {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			return dir, true
		}
	}
	return "", false
}

// Candidates lists the default journal locations in probe order: the
// Windows profile, the home directory, then a Proton prefix.
func Candidates(getenv func(string) string, home string) []string {
	var out []string
	if p := strings.TrimSpace(getenv("USERPROFILE")); p != "" {
		out = append(out, filepath.Join(p, journalSubdir))
	}
	if home = strings.TrimSpace(home); home != "" {
		out = append(out,
			filepath.Join(home, journalSubdir),
			filepath.Join(home, ".steam", "steam", "steamapps", "compatdata", "359320",
				"pfx", "drive_c", "users", "steamuser", journalSubdir),
		)
	}
	return out
}
