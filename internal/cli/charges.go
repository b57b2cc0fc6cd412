package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/format"
)

func init() {
	rootCmd.AddCommand(chargesCmd)
	chargesCmd.AddCommand(chargesGenerateCmd)

	chargesGenerateCmd.Flags().String("period", "", "Month to charge as YYYY-MM (default: current month)")
}

var chargesCmd = &cobra.Command{
	Use:   "charges",
	Short: "Manage common-expense charges",
}

var chargesGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Book the monthly common-expense charge of every apartment",
	Long: `Book one credit sale per apartment for its common expenses and reserve fund.
A month can only be generated once; running it again is reported and is not an error.`,
	Args: cobra.NoArgs,
	RunE: runChargesGenerate,
}

func runChargesGenerate(cmd *cobra.Command, args []string) error {
	when := time.Now()
	if period, _ := cmd.Flags().GetString("period"); period != "" {
		t, err := parsePeriod(period)
		if err != nil {
			return err
		}
		when = t
	}

	a, err := appFromFlags(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	charges, err := a.ledger.GenerateMonthlyCharges(cmd.Context(), when)
	if errors.Is(err, domain.ErrChargesAlreadyGenerated) {
		fmt.Fprintf(cmd.OutOrStdout(), "charges for %s were already generated\n", format.Period(when.Month(), when.Year()))
		return nil
	}
	if err != nil {
		return err
	}

	var total int64
	for _, c := range charges {
		total += c.Amount
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d charges generated for %s, total %s\n",
		len(charges), format.Period(when.Month(), when.Year()), format.Money(total))
	return nil
}

// parsePeriod reads YYYY-MM as the first day of that month in UTC.
func parsePeriod(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid period %q, expected YYYY-MM", s)
	}
	return t, nil
}
