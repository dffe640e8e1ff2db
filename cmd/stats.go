package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devkumarp/portfolio/internal/visits"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print visit statistics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Tracking.Enabled {
			return fmt.Errorf("visit tracking is disabled")
		}
		if _, err := os.Stat(cfg.Tracking.DBPath); err != nil {
			return fmt.Errorf("no visit log at %s: %w", cfg.Tracking.DBPath, err)
		}

		store, err := visits.Open(cfg.Tracking.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
