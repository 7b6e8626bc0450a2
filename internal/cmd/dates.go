package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atikulmunna/edlog/internal/journal"
)

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List the local dates that have journal files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		r, err := journal.New(cfg.JournalDir, journal.WithStrictOrder(cfg.StrictOrder))
		if err != nil {
			return err
		}
		dates, err := r.ListAvailableDates()
		if err != nil {
			return err
		}

		if cfg.Output == "json" {
			if dates == nil {
				dates = []string{}
			}
			return json.NewEncoder(os.Stdout).Encode(dates)
		}
		for _, d := range dates {
			fmt.Println(d)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(datesCmd)
}
