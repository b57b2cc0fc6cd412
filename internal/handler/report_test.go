package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/report"
)

type mockReports struct {
	monthly  *report.Monthly
	gotMonth time.Month
	gotYear  int
	gotFrom  time.Time
	gotTo    time.Time
	calls    int
}

func (m *mockReports) Monthly(_ context.Context, month time.Month, year int) (*report.Monthly, error) {
	m.calls++
	m.gotMonth, m.gotYear = month, year
	return m.monthly, nil
}

func (m *mockReports) Cumulative(_ context.Context, from, to time.Time) (*report.Cumulative, error) {
	m.calls++
	m.gotFrom, m.gotTo = from, to
	return &report.Cumulative{From: from, To: to}, nil
}

type mockNotices struct {
	reordered []uuid.UUID
	footer    string
	err       error
}

func (m *mockNotices) List(context.Context, int, int, bool) ([]domain.ReportNotice, error) {
	return nil, m.err
}

func (m *mockNotices) Create(_ context.Context, text string, month, year int) (*domain.ReportNotice, error) {
	return &domain.ReportNotice{ID: uuid.New(), Text: text, Month: month, Year: year, Active: true}, m.err
}

func (m *mockNotices) Update(_ context.Context, id uuid.UUID, _ *string, _ *bool) (*domain.ReportNotice, error) {
	return &domain.ReportNotice{ID: id}, m.err
}

func (m *mockNotices) Delete(context.Context, uuid.UUID) error { return m.err }

func (m *mockNotices) Reorder(_ context.Context, ids []uuid.UUID) error {
	m.reordered = ids
	return m.err
}

func (m *mockNotices) Footer(context.Context) (string, error) { return m.footer, m.err }

func (m *mockNotices) SetFooter(_ context.Context, text string) error {
	m.footer = text
	return m.err
}

type mockReportDocs struct{}

func (mockReportDocs) MonthlyReport(context.Context, *report.Monthly) ([]byte, error) {
	return []byte("%PDF-monthly"), nil
}

func sampleMonthly() *report.Monthly {
	return &report.Monthly{
		Month: time.March,
		Year:  2024,
		Date:  time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Apartments: []report.ApartmentLine{
			{
				Apartment:       domain.Apartment{ID: uuid.New(), Number: "1A", CommonExpenses: 100000, ReserveFund: 20000},
				PreviousBalance: 120000,
				Payments:        120000,
				CommonCharges:   100000,
				ReserveCharges:  20000,
				CurrentBalance:  120000,
			},
		},
		Notices: []domain.ReportNotice{
			{ID: uuid.New(), Text: "Corte de agua el martes", Active: true},
			{ID: uuid.New(), Text: "Oculto", Active: false},
		},
		Footer: "Administración",
	}
}

func newTestReportHandler(reports *mockReports, notices *mockNotices) *ReportHandler {
	h := NewReportHandler(reports, notices, mockReportDocs{})
	h.now = func() time.Time { return time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC) }
	return h
}

func TestReportMonthly(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantType   string
		wantMonth  time.Month
		wantYear   int
		wantFields []string
	}{
		{name: "defaults to current month", query: "", wantStatus: http.StatusOK, wantType: "application/json", wantMonth: time.April, wantYear: 2024},
		{name: "explicit period", query: "?month=3&year=2024", wantStatus: http.StatusOK, wantType: "application/json", wantMonth: time.March, wantYear: 2024},
		{name: "csv export", query: "?month=3&year=2024&format=csv", wantStatus: http.StatusOK, wantType: "text/csv; charset=utf-8", wantMonth: time.March, wantYear: 2024},
		{name: "pdf export", query: "?format=pdf", wantStatus: http.StatusOK, wantType: "application/pdf", wantMonth: time.April, wantYear: 2024},
		{name: "month out of range", query: "?month=13", wantStatus: http.StatusBadRequest, wantFields: []string{"month"}},
		{name: "unknown format and year", query: "?format=xml&year=1999", wantStatus: http.StatusBadRequest, wantFields: []string{"year", "format"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reports := &mockReports{monthly: sampleMonthly()}
			h := newTestReportHandler(reports, &mockNotices{})

			rec := httptest.NewRecorder()
			h.Monthly(rec, newRequest(http.MethodGet, "/api/v1/reports/monthly"+tc.query, "", nil))

			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			if tc.wantFields != nil {
				assert.ElementsMatch(t, tc.wantFields, fieldNames(t, decodeResponse(t, rec)))
				assert.Zero(t, reports.calls)
				return
			}
			assert.Equal(t, tc.wantType, rec.Header().Get("Content-Type"))
			assert.Equal(t, tc.wantMonth, reports.gotMonth)
			assert.Equal(t, tc.wantYear, reports.gotYear)
		})
	}
}

func TestReportMonthly_JSONHidesInactiveNotices(t *testing.T) {
	h := newTestReportHandler(&mockReports{monthly: sampleMonthly()}, &mockNotices{})

	rec := httptest.NewRecorder()
	h.Monthly(rec, newRequest(http.MethodGet, "/api/v1/reports/monthly?month=3&year=2024", "", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	got := dataAs[monthlyDTO](t, decodeResponse(t, rec))
	assert.Equal(t, "Marzo de 2024", got.Period)
	require.Len(t, got.Notices, 1)
	assert.Equal(t, "Corte de agua el martes", got.Notices[0].Text)
	require.Len(t, got.Apartments, 1)
	assert.Equal(t, "1A", got.Apartments[0].Apartment.Number)
}

func TestReportMonthly_CSVDownload(t *testing.T) {
	h := newTestReportHandler(&mockReports{monthly: sampleMonthly()}, &mockNotices{})

	rec := httptest.NewRecorder()
	h.Monthly(rec, newRequest(http.MethodGet, "/api/v1/reports/monthly?month=3&year=2024&format=csv", "", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fmt.Sprintf("attachment; filename=%q", report.CSVFilename(time.March, 2024)), rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\ufeff"))
	assert.Contains(t, rec.Body.String(), "1A")
}

func TestReportCumulative(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantFields []string
	}{
		{name: "valid range", query: "?from=2024-01-01&to=2024-03-31", wantStatus: http.StatusOK},
		{name: "missing both", query: "", wantStatus: http.StatusBadRequest, wantFields: []string{"from", "to"}},
		{name: "malformed from", query: "?from=01/01/2024&to=2024-03-31", wantStatus: http.StatusBadRequest, wantFields: []string{"from"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reports := &mockReports{}
			h := newTestReportHandler(reports, &mockNotices{})

			rec := httptest.NewRecorder()
			h.Cumulative(rec, newRequest(http.MethodGet, "/api/v1/reports/cumulative"+tc.query, "", nil))

			require.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantFields != nil {
				assert.ElementsMatch(t, tc.wantFields, fieldNames(t, decodeResponse(t, rec)))
				return
			}
			assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), reports.gotFrom)
			assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), reports.gotTo)
		})
	}
}

func TestReorderNotices(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "reorders", body: fmt.Sprintf(`{"ids":[%q,%q]}`, b, a), wantStatus: http.StatusNoContent},
		{name: "empty list", body: `{"ids":[]}`, wantStatus: http.StatusBadRequest},
		{name: "duplicate ids", body: fmt.Sprintf(`{"ids":[%q,%q]}`, a, a), wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			notices := &mockNotices{}
			h := newTestReportHandler(&mockReports{}, notices)

			rec := httptest.NewRecorder()
			h.ReorderNotices(rec, newRequest(http.MethodPut, "/api/v1/reports/notices/order", tc.body, nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusNoContent {
				assert.Equal(t, []uuid.UUID{b, a}, notices.reordered)
			} else {
				assert.Nil(t, notices.reordered)
			}
		})
	}
}

func TestFooter(t *testing.T) {
	notices := &mockNotices{}
	h := newTestReportHandler(&mockReports{}, notices)

	rec := httptest.NewRecorder()
	h.SetFooter(rec, newRequest(http.MethodPut, "/api/v1/reports/footer", `{"text":"Edificio Los Pinos"}`, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Edificio Los Pinos", notices.footer)

	rec = httptest.NewRecorder()
	h.GetFooter(rec, newRequest(http.MethodGet, "/api/v1/reports/footer", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Edificio Los Pinos", dataAs[footerDTO](t, decodeResponse(t, rec)).Text)

	rec = httptest.NewRecorder()
	h.SetFooter(rec, newRequest(http.MethodPut, "/api/v1/reports/footer", `{"text":""}`, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
