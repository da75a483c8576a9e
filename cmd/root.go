package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/influencer-os/internal/config"
	"github.com/sells-group/influencer-os/internal/dashboard"
)

var (
	cfg     *config.Config
	brandID string
)

var rootCmd = &cobra.Command{
	Use:   "influencer-os",
	Short: "Influencer campaign coordination for consumer brands",
	Long:  "Imports the legacy coordination workbook, tracks every influencer through the campaign pipeline, and serves the brand dashboard API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&brandID, "brand", "", "brand id to scope to (default all brands)")
}

// session is the brand scope selected on the command line.
func session() dashboard.Session {
	return dashboard.Session{BrandID: brandID}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
