package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/devkumarp/portfolio/internal/profile"
	"github.com/devkumarp/portfolio/internal/web"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the page in its initial state as static HTML",
	Long: `Writes the portfolio page as it looks on first load. The nav links keep
their in-page anchors but have no live endpoints, so the file can be hosted
anywhere.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		gin.SetMode(gin.ReleaseMode)

		prof, err := profile.Load(cfg.ProfilePath)
		if err != nil {
			return err
		}
		srv, err := web.New(web.Deps{Config: cfg, Profile: prof})
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if renderOut != "" && renderOut != "-" {
			if err := os.MkdirAll(filepath.Dir(renderOut), 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			f, err := os.Create(renderOut)
			if err != nil {
				return fmt.Errorf("creating %s: %w", renderOut, err)
			}
			defer f.Close()
			w = f
		}
		if err := srv.RenderStatic(w); err != nil {
			return fmt.Errorf("rendering page: %w", err)
		}
		if renderOut != "" && renderOut != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", renderOut)
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(renderCmd)
}
