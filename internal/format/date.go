package format

import (
	"strconv"
	"strings"
	"time"
)

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// Period is the "Marzo de 2024" label used in descriptions and report titles.
func Period(m time.Month, year int) string {
	return MonthName(m) + " de " + strconv.Itoa(year)
}

func Date(t time.Time) string {
	return t.Format("02/01/2006")
}

// LongDate renders "5 de marzo de 2024".
func LongDate(t time.Time) string {
	return strconv.Itoa(t.Day()) + " de " + strings.ToLower(MonthName(t.Month())) + " de " + strconv.Itoa(t.Year())
}

func DateTime(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

// MonthRange returns the first instant of the month and the first instant of the next one, in UTC.
func MonthRange(m time.Month, year int) (time.Time, time.Time) {
	start := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// EndOfDay returns the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999999999, t.Location())
}
