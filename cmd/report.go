package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/influencer-os/internal/dashboard"
	"github.com/sells-group/influencer-os/internal/export"
	"github.com/sells-group/influencer-os/internal/model"
)

var reportXLSX string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print campaign performance reports",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("report"); err != nil {
			return err
		}
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()
		if err := env.Store.Migrate(ctx); err != nil {
			return err
		}

		rep, err := env.Service.Reports(ctx, session())
		if err != nil {
			return eris.Wrap(err, "report")
		}
		formatReports(cmd.OutOrStdout(), rep)

		if reportXLSX != "" {
			if err := export.SaveReports(reportXLSX, rep); err != nil {
				return err
			}
			zap.L().Info("report workbook written", zap.String("path", reportXLSX))
		}
		return nil
	},
}

func formatReports(out io.Writer, r *dashboard.Reports) {
	fmt.Fprintf(out, "Campaigns: %d   Influencers: %d   Budget: $%.2f   Paid: $%.2f\n\n",
		r.Summary.TotalCampaigns, r.Summary.TotalInfluencers, r.Summary.TotalBudget, r.Summary.TotalPaid)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CAMPAIGN\tQUARTER\tSTATUS\tINFLUENCERS\tBUDGET\tPAID\tDONE")
	for _, c := range r.Campaigns {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%.2f\t%d%%\n",
			c.Name, orDash(c.Quarter), c.Status, c.InfluencerCount, c.Budget, c.PaidOut, c.CompletionRate)
	}
	_ = w.Flush()

	fmt.Fprintln(out, "\nPipeline (active campaigns)")
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, p := range r.Pipeline {
		fmt.Fprintf(w, "  %s\t%d\n", p.Label, p.Count)
	}
	_ = w.Flush()

	if len(r.TopInfluencers) == 0 {
		return
	}
	fmt.Fprintln(out, "\nTop influencers")
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tHANDLE\tCAMPAIGNS\tEARNED\tAVG STAGE")
	for _, t := range r.TopInfluencers {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%s\n",
			t.Name, model.Deref(t.Handle), t.CampaignCount, t.TotalEarned, t.AvgStageLabel)
	}
	_ = w.Flush()
}

func init() {
	reportCmd.Flags().StringVar(&reportXLSX, "xlsx", "", "also write the reports workbook to this path")
	rootCmd.AddCommand(reportCmd)
}
