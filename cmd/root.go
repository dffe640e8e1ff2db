package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devkumarp/portfolio/internal/config"
)

var (
	cfgFile string
	variant string
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Single-page developer portfolio with a live section nav",
	Long: `portfolio serves a one-page developer portfolio. The fixed nav bar tracks
which section was last selected, scrolls the browser to it and, in the larger
variants, offers a résumé download and a mobile menu.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "portfolio.yml", "config file path")
	rootCmd.PersistentFlags().StringVar(&variant, "variant", "", "override the configured variant (essential, resume, complete)")
}

// loadConfig loads and validates the config, applying flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if variant != "" {
		cfg.Variant = variant
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
