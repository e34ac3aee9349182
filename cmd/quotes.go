package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"partsource/internal/bootstrap"
	"partsource/internal/errs"
	sqliterepo "partsource/internal/infrastructure/persistence/sqlite/repository"
	"partsource/internal/usecase/sourcing"
)

var quotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "Quote audit commands",
}

// quotesAuditCmd represents the quotes audit command
var quotesAuditCmd = &cobra.Command{
	Use:   "audit <requirement-id>",
	Short: "List every retained quote for a requirement with its disposition",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, _ *sourcing.Service) error {
		requirementID := cmd.Flags().Args()[0]

		quotes := sqliterepo.NewQuoteRepository(app.DB)
		records, err := quotes.ListByRequirement(cmd.Context(), requirementID)
		if err != nil {
			return errs.Wrapf(err, "list quotes for requirement %q", requirementID)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "QUOTE\tVENDOR\tUNIT PRICE\tAVAILABILITY\tDISPOSITION\tREJECTION")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				rec.Quote.QuoteID,
				rec.Quote.VendorID,
				rec.Quote.UnitPrice.StringFixed(2),
				rec.Quote.Availability,
				rec.Disposition,
				rec.RejectionCode)
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "write audit output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(quotesCmd)
	quotesCmd.AddCommand(quotesAuditCmd)
}
