package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atikulmunna/edlog/internal/model"
	"github.com/atikulmunna/edlog/internal/output"
	"github.com/atikulmunna/edlog/internal/status"
)

var statusOnce bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Follow the Status.json snapshot",
	Long: `Poll Status.json and print each new frame plus a HYPERJUMP_CHARGING line
when the drive starts charging for a jump to another system. With --once the
current frame is decoded and printed with its active flags.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusOnce, "once", false, "print the current snapshot and exit")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if statusOnce {
		p := status.NewPoller(cfg.StatusFile)
		if _, err := p.Poll(); err != nil {
			return err
		}
		st := p.Last()
		if st == nil {
			return fmt.Errorf("no status snapshot at %s", cfg.StatusFile)
		}
		return printStatus(st, cfg.Output)
	}

	renderer, err := output.New(cfg.Output, os.Stdout)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	fmt.Fprintf(os.Stderr, "edlog following %s\n\n", cfg.StatusFile)
	status.NewMonitor(cfg.StatusFile, cfg.PollInterval, func(ev model.Event) {
		if err := renderer.Render(ev); err != nil {
			log.Printf("render error: %v", err)
		}
	}).Run(ctx)
	return nil
}

func printStatus(st *model.Status, format string) error {
	flags := status.Decode(st.Flags, st.Flags2)
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Status *model.Status `json:"status"`
			Flags  status.Flags  `json:"flags"`
			Active []string      `json:"active"`
		}{st, flags, flags.Active()})
	}
	fmt.Println(output.Format(st))
	fmt.Printf("active: %s\n", strings.Join(flags.Active(), ", "))
	if status.HyperjumpCharging(st) {
		fmt.Println("hyperjump charging")
	}
	return nil
}
