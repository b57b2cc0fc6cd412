package format

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Spanish)

// ParseAmount converts a decimal string such as "1234.50" into cents. More than two
// decimal places is an error rather than a silent rounding.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("ParseAmount: %w", err)
	}
	return FromDecimal(d)
}

var (
	ErrTooPrecise = errors.New("more than two decimal places")
	ErrOutOfRange = errors.New("amount out of range")

	minCents = decimal.NewFromInt(math.MinInt64)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// FromDecimal converts d to cents, rejecting sub-cent precision and values outside int64.
func FromDecimal(d decimal.Decimal) (int64, error) {
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("FromDecimal: %s: %w", d, ErrTooPrecise)
	}
	if cents.LessThan(minCents) || cents.GreaterThan(maxCents) {
		return 0, fmt.Errorf("FromDecimal: %s: %w", d, ErrOutOfRange)
	}
	return cents.IntPart(), nil
}

func ToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Money renders cents the way receipts and reports print them: "$ 12.345,67".
func Money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$ %s,%02d", sign, printer.Sprintf("%d", cents/100), cents%100)
}

// CSVNumber renders cents with two decimals and a comma separator, without grouping.
func CSVNumber(cents int64) string {
	return strings.Replace(ToDecimal(cents).StringFixed(2), ".", ",", 1)
}
