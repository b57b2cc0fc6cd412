package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/edificio/internal/report"
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportMonthlyCmd)

	reportMonthlyCmd.Flags().String("period", "", "Report month as YYYY-MM (default: current month)")
	reportMonthlyCmd.Flags().StringP("format", "f", "csv", "Output format: csv or pdf")
	reportMonthlyCmd.Flags().StringP("output", "o", "", "File to write (default: stdout for csv, the standard file name for pdf)")
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export building reports",
}

var reportMonthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Export the monthly report",
	Args:  cobra.NoArgs,
	RunE:  runReportMonthly,
}

func runReportMonthly(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "csv" && format != "pdf" {
		return fmt.Errorf("unsupported format %q, expected csv or pdf", format)
	}
	when := time.Now()
	if period, _ := cmd.Flags().GetString("period"); period != "" {
		t, err := parsePeriod(period)
		if err != nil {
			return err
		}
		when = t
	}
	output, _ := cmd.Flags().GetString("output")

	a, err := appFromFlags(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	monthly, err := a.reports.Monthly(cmd.Context(), when.Month(), when.Year())
	if err != nil {
		return err
	}

	var body []byte
	switch format {
	case "pdf":
		docs, err := a.documents()
		if err != nil {
			return err
		}
		if body, err = docs.MonthlyReport(cmd.Context(), monthly); err != nil {
			return err
		}
		if output == "" {
			output = report.PDFFilename(monthly.Month, monthly.Year)
		}
	default:
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, monthly, time.Now()); err != nil {
			return err
		}
		body = buf.Bytes()
	}

	return writeOutput(cmd.OutOrStdout(), output, body)
}

func writeOutput(stdout io.Writer, path string, body []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(body)
		return err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "wrote %s (%d bytes)\n", path, len(body))
	return nil
}
