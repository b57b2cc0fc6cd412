package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/josh-kwaku/edificio/internal/format"
)

const utf8BOM = "\uFEFF"

// CSVFilename is the download name of a monthly report export.
func CSVFilename(month time.Month, year int) string {
	return monthlyFilename(month, year) + ".csv"
}

func PDFFilename(month time.Month, year int) string {
	return monthlyFilename(month, year) + ".pdf"
}

func monthlyFilename(month time.Month, year int) string {
	return fmt.Sprintf("informe-mensual-%s-%d", strings.ToLower(format.MonthName(month)), year)
}

// WriteCSV exports the monthly report as a semicolon separated sheet that spreadsheet
// programs configured for Spanish open without an import wizard.
func WriteCSV(w io.Writer, r *Monthly, generated time.Time) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	n := format.CSVNumber
	rows := [][]string{
		{"Informe Mensual de Cuenta Corriente - " + r.Period()},
		{"Generado: " + format.Date(generated)},
		{},
		{"RESUMEN GENERAL"},
		{"Concepto", "Monto"},
		{"Saldo Anterior Total", n(r.Totals.PreviousBalance)},
		{"Pagos del Mes Total", n(r.Totals.Payments)},
		{"Gastos Comunes Total", n(r.Totals.CommonCharges)},
		{"Fondo Reserva Total", n(r.Totals.ReserveCharges)},
		{"Saldo Actual Total", n(r.Totals.CurrentBalance)},
		{},
		{"RESUMEN BANCARIO"},
		{"Concepto", "Monto"},
		{"Ingreso por Gastos Comunes", n(r.Bank.CommonIncome)},
		{"Ingreso por Fondo de Reserva", n(r.Bank.ReserveIncome)},
		{"Egreso por Gastos Comunes", n(r.Bank.CommonExpense)},
		{"Egreso por Fondo de Reserva", n(r.Bank.ReserveExpense)},
		{"Saldo Bancario Total", n(r.Bank.TotalBalance)},
		{},
	}

	if notices := r.ActiveNotices(); len(notices) > 0 {
		rows = append(rows, []string{"AVISOS"}, []string{"#", "Aviso"})
		for i, notice := range notices {
			rows = append(rows, []string{strconv.Itoa(i + 1), notice.Text})
		}
		rows = append(rows, []string{})
	}

	rows = append(rows,
		[]string{"DESGLOSE POR APARTAMENTO"},
		[]string{"Apartamento", "Tipo", "Saldo Anterior", "Pagos del Mes", "Gastos Comunes", "Fondo Reserva", "Saldo Actual"},
	)
	for _, line := range r.Apartments {
		rows = append(rows, []string{
			line.Apartment.Number,
			line.Apartment.Occupancy.Label(),
			n(line.PreviousBalance),
			n(line.Payments),
			n(line.CommonCharges),
			n(line.ReserveCharges),
			n(line.CurrentBalance),
		})
	}
	rows = append(rows, []string{
		"TOTALES",
		"",
		n(r.Totals.PreviousBalance),
		n(r.Totals.Payments),
		n(r.Totals.CommonCharges),
		n(r.Totals.ReserveCharges),
		n(r.Totals.CurrentBalance),
	})

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	return nil
}
