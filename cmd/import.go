package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/influencer-os/internal/config"
	"github.com/sells-group/influencer-os/internal/importer"
	"github.com/sells-group/influencer-os/internal/store"
)

var (
	importFile   string
	importDryRun bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the coordination workbook into the database",
	Long:  "Parses the roster and tracker tabs, merges duplicate influencers, and writes brands' campaigns and assignments in a single transaction. Re-running is safe.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if importFile != "" {
			cfg.Import.WorkbookPath = importFile
		}
		if brandID != "" {
			cfg.Import.BrandID = brandID
		}
		if importDryRun {
			if cfg.Import.WorkbookPath == "" {
				return eris.New("workbook path is required (--file or INFLUENCER_IMPORT_WORKBOOK_PATH)")
			}
		} else if err := cfg.Validate("import"); err != nil {
			return err
		}

		opts, err := importOptions(cfg.Import, importDryRun)
		if err != nil {
			return err
		}

		wb, err := importer.OpenWorkbook(cfg.Import.WorkbookPath)
		if err != nil {
			return eris.Wrap(err, "open workbook")
		}

		var st store.Store
		if !importDryRun {
			st, err = initStore(ctx)
			if err != nil {
				return eris.Wrap(err, "init store")
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate")
			}
		}

		rep, err := importer.New(st, opts).Run(ctx, wb)
		if err != nil {
			return eris.Wrap(err, "import")
		}
		rep.Write(cmd.OutOrStdout())
		return nil
	},
}

func importOptions(ic config.ImportConfig, dryRun bool) (importer.Options, error) {
	aliases, err := importer.LoadRetailerAliases(ic.RetailerAliasesFile)
	if err != nil {
		return importer.Options{}, err
	}
	trackers := make([]importer.TrackerSheet, 0, len(ic.Trackers))
	for _, t := range ic.Trackers {
		trackers = append(trackers, importer.TrackerSheet{Sheet: t.Sheet, Quarter: t.Quarter})
	}
	return importer.Options{
		BrandID:           ic.BrandID,
		RosterSheet:       ic.RosterSheet,
		Trackers:          trackers,
		CompletedQuarters: ic.CompletedQuarters,
		Retailers:         aliases,
		DryRun:            dryRun,
	}, nil
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "path to the .xlsx workbook (default from config)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse and plan without writing")
	rootCmd.AddCommand(importCmd)
}
