package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/influencer-os/internal/dashboard"
)

var chaseEmails bool

var chaseCmd = &cobra.Command{
	Use:   "chase",
	Short: "List influencers whose content is overdue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("chase"); err != nil {
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

		items, err := env.Service.ChaseList(ctx, session())
		if err != nil {
			return eris.Wrap(err, "chase")
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "Nobody to chase.")
			return nil
		}
		formatChaseList(cmd.OutOrStdout(), items, chaseEmails)
		return nil
	},
}

func formatChaseList(out io.Writer, items []dashboard.ChaseItem, emails bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tHANDLE\tCAMPAIGN\tSTAGE\tDEADLINE\tDAYS OVERDUE")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			it.Name, orDash(it.Handle), it.CampaignName, it.PipelineStage.Label(), it.PostingDeadline, it.DaysOverdue)
	}
	_ = w.Flush()

	if !emails {
		return
	}
	for _, it := range items {
		fmt.Fprintf(out, "\n----\n%s\n", it.EmailPreview)
	}
}

func init() {
	chaseCmd.Flags().BoolVar(&chaseEmails, "emails", false, "print a reminder email for each item")
	rootCmd.AddCommand(chaseCmd)
}
