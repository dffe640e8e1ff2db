package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devkumarp/portfolio/internal/profile"
	"github.com/devkumarp/portfolio/internal/tracker"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List the nav sections for the configured variant",
	Long: `Prints the nav entries a fresh page view starts with, in order. The entry
marked with * is active on load.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		features, err := cfg.Features()
		if err != nil {
			return err
		}
		prof, err := profile.Load(cfg.ProfilePath)
		if err != nil {
			return err
		}

		var opts []tracker.Option
		if features.MobileMenu {
			opts = append(opts, tracker.WithMobileMenu())
		}
		t, err := tracker.New(prof.Sections(features), opts...)
		if err != nil {
			return err
		}
		anchors := prof.Anchors(features)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "variant: %s (resume=%t mobile_menu=%t credentials=%t)\n\n",
			cfg.Variant, features.Resume, features.MobileMenu, features.Credentials)

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "\tID\tLABEL\tANCHOR")
		for _, item := range t.Items() {
			mark := ""
			if item.Active {
				mark = "*"
			}
			anchor := "yes"
			if !anchors.Has(item.ID) {
				anchor = "missing"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, item.ID, item.Label, anchor)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sectionsCmd)
}
