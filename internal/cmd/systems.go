package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/edlog/internal/config"
	"github.com/atikulmunna/edlog/internal/output"
	"github.com/atikulmunna/edlog/internal/store"
	"github.com/atikulmunna/edlog/internal/systems"
)

var systemsFormat string

var systemsCmd = &cobra.Command{
	Use:   "systems [name]",
	Short: "Show cached systems and bodies",
	Long: `Print the system cache built by rescan and serve. With a name only that
system is shown (case-insensitive).

Examples:
  edlog systems
  edlog systems Sol --format yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSystems,
}

func init() {
	systemsCmd.Flags().StringVarP(&systemsFormat, "format", "f", "", "text, json or yaml (default: --output)")
	rootCmd.AddCommand(systemsCmd)
}

func runSystems(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.CacheDB)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	var recs []systems.SystemRecord
	if len(args) == 1 {
		r, ok, err := db.FindSystem(ctx, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("system %q is not in the cache", args[0])
		}
		recs = []systems.SystemRecord{r}
	} else {
		recs, err = db.LoadRecords(ctx)
		if err != nil {
			return err
		}
	}

	format := systemsFormat
	if format == "" {
		format = cfg.Output
	}
	return output.WriteRecords(os.Stdout, format, recs)
}
