package format

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		want      int64
		malformed bool
		wantErr   error
	}{
		{name: "integer", in: "1500", want: 150000},
		{name: "two decimals", in: "1500.25", want: 150025},
		{name: "one decimal", in: " 0.5 ", want: 50},
		{name: "negative", in: "-12.30", want: -1230},
		{name: "three decimals", in: "1.005", wantErr: ErrTooPrecise},
		{name: "garbage", in: "doce", malformed: true},
		{name: "largest amount", in: "92233720368547758.07", want: math.MaxInt64},
		{name: "one cent past int64", in: "92233720368547758.08", wantErr: ErrOutOfRange},
		{name: "wraps to one cent", in: "184467440737095516.17", wantErr: ErrOutOfRange},
		{name: "far too large", in: "100000000000000000000", wantErr: ErrOutOfRange},
		{name: "too negative", in: "-92233720368547758.09", wantErr: ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.malformed {
				require.Error(t, err)
				return
			}
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$ 1.234.567,89", Money(123456789))
	assert.Equal(t, "$ 0,05", Money(5))
	assert.Equal(t, "-$ 12.345,67", Money(-1234567))
}

func TestCSVNumber(t *testing.T) {
	assert.Equal(t, "1234,50", CSVNumber(123450))
	assert.Equal(t, "-0,07", CSVNumber(-7))
	assert.Equal(t, "0,00", CSVNumber(0))
}

func TestDates(t *testing.T) {
	d := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "05/03/2024", Date(d))
	assert.Equal(t, "5 de marzo de 2024", LongDate(d))
	assert.Equal(t, "Marzo de 2024", Period(time.March, 2024))

	start, end := MonthRange(time.December, 2023)
	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestWhatsAppLink(t *testing.T) {
	assert.Equal(t, "https://wa.me/59899123456", WhatsAppLink("+598 99 123 456", ""))
	assert.Equal(t, "https://wa.me/099123456?text=Hola%20Juan", WhatsAppLink("099-123-456", "Hola Juan"))
	assert.Empty(t, WhatsAppLink("sin número", "hola"))
}
