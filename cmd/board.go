package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/influencer-os/internal/board"
	"github.com/sells-group/influencer-os/internal/dashboard"
	"github.com/sells-group/influencer-os/internal/model"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show or move cards on a campaign pipeline board",
}

// -- board show --

var boardShowCmd = &cobra.Command{
	Use:   "show <campaign-id>",
	Short: "Print a campaign's pipeline columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("board"); err != nil {
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

		view, err := env.Service.CampaignBoard(ctx, session(), args[0])
		if err != nil {
			return eris.Wrap(err, "board show")
		}
		formatBoard(cmd.OutOrStdout(), view)
		return nil
	},
}

// -- board move --

var boardMoveCmd = &cobra.Command{
	Use:   "move <campaign-id> <assignment-id> <stage|card-id>",
	Short: "Drop a card on a stage column or onto another card",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("board"); err != nil {
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

		view, err := env.Service.MoveCard(ctx, session(), args[0], args[1], args[2])
		if err != nil {
			return eris.Wrap(err, "board move")
		}
		formatBoard(cmd.OutOrStdout(), view)
		return nil
	},
}

func formatBoard(out io.Writer, view *dashboard.CampaignBoard) {
	c := view.Campaign
	fmt.Fprintf(out, "%s  [%s]  deadline %s\n", c.Name, c.Status, orDash(c.PostingDeadline))
	st := view.Stats
	fmt.Fprintf(out, "%d influencers  budget $%.2f  content %d  paid $%.2f  overdue %d\n",
		st.InfluencerCount, st.Budget, st.ContentReceived, st.PaidOut, st.Overdue)

	for _, col := range view.Columns {
		fmt.Fprintf(out, "\n%s (%d)\n", col.Label, len(col.Cards))
		for _, card := range col.Cards {
			parts := []string{card.Name}
			if card.Handle != nil {
				parts = append(parts, "@"+*card.Handle)
			}
			parts = append(parts, board.FormatFollowers(card.FollowerCount)+" followers")
			if card.Rate != nil {
				parts = append(parts, fmt.Sprintf("$%.0f", *card.Rate))
			}
			if d := model.Deref(card.Deliverable); d != "" {
				parts = append(parts, d)
			}
			fmt.Fprintf(out, "  - %s  (%s)\n", strings.Join(parts, "  "), card.AssignmentID)
		}
	}
}

func init() {
	boardCmd.AddCommand(boardShowCmd, boardMoveCmd)
	rootCmd.AddCommand(boardCmd)
}
