package handler

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/logging"
	"github.com/josh-kwaku/edificio/internal/report"
)

type reportService interface {
	Monthly(ctx context.Context, month time.Month, year int) (*report.Monthly, error)
	Cumulative(ctx context.Context, from, to time.Time) (*report.Cumulative, error)
}

type reportDocuments interface {
	MonthlyReport(ctx context.Context, r *report.Monthly) ([]byte, error)
}

type noticeService interface {
	List(ctx context.Context, month, year int, activeOnly bool) ([]domain.ReportNotice, error)
	Create(ctx context.Context, text string, month, year int) (*domain.ReportNotice, error)
	Update(ctx context.Context, id uuid.UUID, text *string, active *bool) (*domain.ReportNotice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, ids []uuid.UUID) error
	Footer(ctx context.Context) (string, error)
	SetFooter(ctx context.Context, text string) error
}

type ReportHandler struct {
	reports   reportService
	notices   noticeService
	documents reportDocuments
	now       func() time.Time
}

func NewReportHandler(reports reportService, notices noticeService, documents reportDocuments) *ReportHandler {
	return &ReportHandler{reports: reports, notices: notices, documents: documents, now: time.Now}
}

// period reads ?month and ?year, defaulting to the current month.
func (h *ReportHandler) period(r *http.Request) (int, int, []FieldError) {
	now := h.now().UTC()
	month, fe1 := queryInt(r, "month", int(now.Month()), 1, 12)
	year, fe2 := queryInt(r, "year", now.Year(), 2000, 2100)
	return month, year, collect(fe1, fe2)
}

type apartmentLineDTO struct {
	Apartment       apartmentDTO    `json:"apartment"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	Payments        decimal.Decimal `json:"payments"`
	CommonCharges   decimal.Decimal `json:"common_charges"`
	ReserveCharges  decimal.Decimal `json:"reserve_charges"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
}

type bankSummaryDTO struct {
	CommonIncome   decimal.Decimal `json:"common_income"`
	ReserveIncome  decimal.Decimal `json:"reserve_income"`
	CommonExpense  decimal.Decimal `json:"common_expense"`
	ReserveExpense decimal.Decimal `json:"reserve_expense"`
	TotalBalance   decimal.Decimal `json:"total_balance"`
}

type expenseLineDTO struct {
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	Classification *string         `json:"classification"`
	Amount         decimal.Decimal `json:"amount"`
	Bank           string          `json:"bank"`
}

type totalsDTO struct {
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	Payments        decimal.Decimal `json:"payments"`
	CommonCharges   decimal.Decimal `json:"common_charges"`
	ReserveCharges  decimal.Decimal `json:"reserve_charges"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
}

type monthlyDTO struct {
	Month      int                `json:"month"`
	Year       int                `json:"year"`
	Period     string             `json:"period"`
	Date       time.Time          `json:"date"`
	Apartments []apartmentLineDTO `json:"apartments"`
	Bank       bankSummaryDTO     `json:"bank"`
	Expenses   []expenseLineDTO   `json:"expenses"`
	Totals     totalsDTO          `json:"totals"`
	Notices    []noticeDTO        `json:"notices"`
	Footer     string             `json:"footer"`
}

func toMonthlyDTO(m *report.Monthly) monthlyDTO {
	out := monthlyDTO{
		Month:      int(m.Month),
		Year:       m.Year,
		Period:     m.Period(),
		Date:       m.Date,
		Apartments: make([]apartmentLineDTO, len(m.Apartments)),
		Bank: bankSummaryDTO{
			CommonIncome:   money(m.Bank.CommonIncome),
			ReserveIncome:  money(m.Bank.ReserveIncome),
			CommonExpense:  money(m.Bank.CommonExpense),
			ReserveExpense: money(m.Bank.ReserveExpense),
			TotalBalance:   money(m.Bank.TotalBalance),
		},
		Expenses: make([]expenseLineDTO, len(m.Expenses)),
		Totals: totalsDTO{
			PreviousBalance: money(m.Totals.PreviousBalance),
			Payments:        money(m.Totals.Payments),
			CommonCharges:   money(m.Totals.CommonCharges),
			ReserveCharges:  money(m.Totals.ReserveCharges),
			CurrentBalance:  money(m.Totals.CurrentBalance),
		},
		Notices: toNoticeDTOs(m.ActiveNotices()),
		Footer:  m.Footer,
	}
	for i := range m.Apartments {
		l := &m.Apartments[i]
		out.Apartments[i] = apartmentLineDTO{
			Apartment:       toApartmentDTO(&l.Apartment),
			PreviousBalance: money(l.PreviousBalance),
			Payments:        money(l.Payments),
			CommonCharges:   money(l.CommonCharges),
			ReserveCharges:  money(l.ReserveCharges),
			CurrentBalance:  money(l.CurrentBalance),
		}
	}
	for i, e := range m.Expenses {
		out.Expenses[i] = expenseLineDTO{
			Date:           e.Date,
			Description:    e.Description,
			Classification: strPtr(e.Classification),
			Amount:         money(e.Amount),
			Bank:           e.Bank,
		}
	}
	return out
}

// Monthly builds the monthly current-account report. ?format selects json (default),
// csv or pdf.
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	month, year, fields := h.period(r)
	format := r.URL.Query().Get("format")
	switch format {
	case "", "json", "csv", "pdf":
	default:
		fields = append(fields, FieldError{Field: "format", Message: "debe ser uno de: json csv pdf"})
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	m, err := h.reports.Monthly(r.Context(), time.Month(month), year)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to build monthly report", "error", err, "month", month, "year", year)
		RespondDomainError(w, err)
		return
	}

	switch format {
	case "csv":
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, m, h.now()); err != nil {
			logging.FromContext(r.Context()).Error("failed to export monthly report", "error", err)
			RespondDomainError(w, err)
			return
		}
		RespondFile(w, "text/csv; charset=utf-8", report.CSVFilename(m.Month, m.Year), buf.Bytes())
	case "pdf":
		pdf, err := h.documents.MonthlyReport(r.Context(), m)
		if err != nil {
			logging.FromContext(r.Context()).Error("failed to render monthly report", "error", err)
			RespondDomainError(w, err)
			return
		}
		RespondFile(w, "application/pdf", report.PDFFilename(m.Month, m.Year), pdf)
	default:
		RespondSuccess(w, http.StatusOK, toMonthlyDTO(m))
	}
}

type fundSplitDTO struct {
	Common  decimal.Decimal `json:"common"`
	Reserve decimal.Decimal `json:"reserve"`
	Total   decimal.Decimal `json:"total"`
}

func toFundSplitDTO(f report.FundSplit) fundSplitDTO {
	return fundSplitDTO{Common: money(f.Common), Reserve: money(f.Reserve), Total: money(f.Total)}
}

type cumulativeDTO struct {
	From     time.Time    `json:"from"`
	To       time.Time    `json:"to"`
	Receipts fundSplitDTO `json:"receipts"`
	Expenses fundSplitDTO `json:"expenses"`
	Balance  fundSplitDTO `json:"balance"`
}

// Cumulative compares receipts and expenses between ?from and ?to, both required.
func (h *ReportHandler) Cumulative(w http.ResponseWriter, r *http.Request) {
	from, fe1 := queryDate(r, "from")
	to, fe2 := queryDate(r, "to")
	fields := collect(fe1, fe2)
	if fe1 == nil && from == nil {
		fields = append(fields, FieldError{Field: "from", Message: "es obligatorio"})
	}
	if fe2 == nil && to == nil {
		fields = append(fields, FieldError{Field: "to", Message: "es obligatorio"})
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	c, err := h.reports.Cumulative(r.Context(), *from, *to)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, cumulativeDTO{
		From:     c.From,
		To:       c.To,
		Receipts: toFundSplitDTO(c.Receipts),
		Expenses: toFundSplitDTO(c.Expenses),
		Balance:  toFundSplitDTO(c.Balance),
	})
}

type footerDTO struct {
	Text string `json:"text" validate:"required,max=500"`
}

func (h *ReportHandler) GetFooter(w http.ResponseWriter, r *http.Request) {
	text, err := h.notices.Footer(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, footerDTO{Text: text})
}

func (h *ReportHandler) SetFooter(w http.ResponseWriter, r *http.Request) {
	var req footerDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.notices.SetFooter(r.Context(), req.Text); err != nil {
		logging.FromContext(r.Context()).Error("failed to save report footer", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, req)
}

// ListNotices returns the notices of ?month and ?year; ?active=true hides disabled ones.
func (h *ReportHandler) ListNotices(w http.ResponseWriter, r *http.Request) {
	month, year, fields := h.period(r)
	active, fe := queryBool(r, "active")
	fields = append(fields, collect(fe)...)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	notices, err := h.notices.List(r.Context(), month, year, active != nil && *active)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toNoticeDTOs(notices))
}

type createNoticeRequest struct {
	Text  string `json:"text" validate:"required,max=1000"`
	Month int    `json:"month" validate:"required,min=1,max=12"`
	Year  int    `json:"year" validate:"required,min=2000,max=2100"`
}

func (h *ReportHandler) CreateNotice(w http.ResponseWriter, r *http.Request) {
	var req createNoticeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	n, err := h.notices.Create(r.Context(), req.Text, req.Month, req.Year)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create notice", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toNoticeDTO(n))
}

type updateNoticeRequest struct {
	Text   *string `json:"text" validate:"omitempty,max=1000"`
	Active *bool   `json:"active"`
}

func (h *ReportHandler) UpdateNotice(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req updateNoticeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	n, err := h.notices.Update(r.Context(), id, req.Text, req.Active)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toNoticeDTO(n))
}

func (h *ReportHandler) DeleteNotice(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.notices.Delete(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,unique"`
}

// ReorderNotices sets the print order of a month's notices to the order of ids.
func (h *ReportHandler) ReorderNotices(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.notices.Reorder(r.Context(), req.IDs); err != nil {
		logging.FromContext(r.Context()).Error("failed to reorder notices", "error", err)
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
