package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/influencer-os/internal/model"
)

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "Manage brands",
	Long:  "Brands scope every campaign. They are created here, never from the workbook.",
}

// -- brands list --

var brandsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List brands",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("brands"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		brands, err := st.ListBrands(ctx)
		if err != nil {
			return eris.Wrap(err, "brands list")
		}
		if len(brands) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No brands found.")
			return nil
		}
		formatBrands(cmd.OutOrStdout(), brands)
		return nil
	},
}

// -- brands add --

var (
	brandInvoiceEmail        string
	brandInvoiceInstructions string
)

var brandsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("brands"); err != nil {
			return err
		}
		name := strings.TrimSpace(args[0])
		if name == "" {
			return eris.New("brand name is required")
		}
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		b := model.Brand{Name: name}
		if brandInvoiceEmail != "" {
			b.InvoiceEmail = &brandInvoiceEmail
		}
		if brandInvoiceInstructions != "" {
			b.InvoiceInstructions = &brandInvoiceInstructions
		}
		created, err := st.CreateBrand(ctx, b)
		if err != nil {
			return eris.Wrap(err, "brands add")
		}
		zap.L().Info("brand created", zap.String("brand_id", created.ID), zap.String("name", created.Name))
		fmt.Fprintln(cmd.OutOrStdout(), created.ID)
		return nil
	},
}

func formatBrands(out io.Writer, brands []model.Brand) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tINVOICE EMAIL")
	for _, b := range brands {
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Name, orDash(b.InvoiceEmail))
	}
	_ = w.Flush()
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func init() {
	brandsAddCmd.Flags().StringVar(&brandInvoiceEmail, "invoice-email", "", "where influencers send invoices")
	brandsAddCmd.Flags().StringVar(&brandInvoiceInstructions, "invoice-instructions", "", "invoice instructions shown to influencers")
	brandsCmd.AddCommand(brandsListCmd, brandsAddCmd)
	rootCmd.AddCommand(brandsCmd)
}
