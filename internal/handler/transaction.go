package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/logging"
	"github.com/josh-kwaku/edificio/internal/pdf"
	"github.com/josh-kwaku/edificio/internal/report"
	"github.com/josh-kwaku/edificio/internal/repository"
	"github.com/josh-kwaku/edificio/internal/service/ledger"
)

type ledgerService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	List(ctx context.Context, f repository.TransactionFilter) ([]domain.TransactionWithApartment, error)
	UnlinkedReceipts(ctx context.Context) ([]domain.TransactionWithApartment, error)
	Create(ctx context.Context, req ledger.CreateRequest) (*domain.Transaction, error)
	CreateCreditSale(ctx context.Context, req ledger.CreditSaleRequest) (*domain.Transaction, error)
	CreateReceipt(ctx context.Context, req ledger.ReceiptRequest) (*ledger.ReceiptResult, error)
	Update(ctx context.Context, id uuid.UUID, req ledger.UpdateRequest) (*domain.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
	LinkReceiptToBank(ctx context.Context, transactionID uuid.UUID, bankAccountID *uuid.UUID) (*domain.BankMovement, error)
	GenerateMonthlyCharges(ctx context.Context, now time.Time) ([]domain.Transaction, error)
}

type receiptStatements interface {
	ApartmentStatement(ctx context.Context, apartmentID uuid.UUID) (*report.ApartmentStatement, error)
}

type receiptDocuments interface {
	Receipt(ctx context.Context, doc pdf.ReceiptDoc, footer string) ([]byte, error)
}

type TransactionHandler struct {
	ledger     ledgerService
	statements receiptStatements
	documents  receiptDocuments
	now        func() time.Time
}

func NewTransactionHandler(ledger ledgerService, statements receiptStatements, documents receiptDocuments) *TransactionHandler {
	return &TransactionHandler{
		ledger:     ledger,
		statements: statements,
		documents:  documents,
		now:        time.Now,
	}
}

// List filters by ?type (comma separated), ?apartment_id, ?from, ?to and ?limit.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	var types []domain.TransactionType
	var typeErr *FieldError
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		for _, v := range strings.Split(raw, ",") {
			t := domain.TransactionType(strings.ToUpper(strings.TrimSpace(v)))
			if !t.IsValid() {
				typeErr = &FieldError{Field: "type", Message: "tipo de transacción inválido: " + v}
				break
			}
			types = append(types, t)
		}
	}
	apartmentID, fe1 := queryUUID(r, "apartment_id")
	from, fe2 := queryDate(r, "from")
	to, fe3 := queryDate(r, "to")
	limit, fe4 := queryInt(r, "limit", 0, 0, 1000)
	if fields := collect(typeErr, fe1, fe2, fe3, fe4); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	txs, err := h.ledger.List(r.Context(), repository.TransactionFilter{
		Types:       types,
		ApartmentID: apartmentID,
		From:        from,
		To:          to,
		Limit:       limit,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list transactions", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toTransactionDTOs(txs))
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	t, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toTransactionDTO(t))
}

type transactionRequest struct {
	Type          string          `json:"type" validate:"required,oneof=INCOME EXPENSE CREDIT_SALE PAYMENT_RECEIPT"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	Date          *apiDate        `json:"date"`
	Category      *string         `json:"category"`
	Description   *string         `json:"description" validate:"omitempty,max=500"`
	Reference     *string         `json:"reference" validate:"omitempty,max=100"`
	PaymentMethod *string         `json:"payment_method"`
	Notes         *string         `json:"notes"`
	ApartmentID   *uuid.UUID      `json:"apartment_id"`
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, fe1 := cents("amount", req.Amount)
	category, fe2 := categoryPtr(req.Category)
	method, fe3 := methodPtr(req.PaymentMethod)
	if fields := collect(fe1, fe2, fe3); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	t, err := h.ledger.Create(r.Context(), ledger.CreateRequest{
		Type:          domain.TransactionType(req.Type),
		Amount:        amount,
		Date:          dateOrNow(req.Date),
		Category:      category,
		Description:   nonEmpty(req.Description),
		Reference:     nonEmpty(req.Reference),
		PaymentMethod: method,
		Notes:         nonEmpty(req.Notes),
		ApartmentID:   req.ApartmentID,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create transaction", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toTransactionDTO(t))
}

type creditSaleRequest struct {
	ApartmentID uuid.UUID       `json:"apartment_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Date        *apiDate        `json:"date"`
	Category    *string         `json:"category"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
	Reference   *string         `json:"reference" validate:"omitempty,max=100"`
	Notes       *string         `json:"notes"`
}

// CreateCreditSale records an amount owed by an apartment.
func (h *TransactionHandler) CreateCreditSale(w http.ResponseWriter, r *http.Request) {
	var req creditSaleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, fe1 := cents("amount", req.Amount)
	category, fe2 := categoryPtr(req.Category)
	if fields := collect(fe1, fe2); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	t, err := h.ledger.CreateCreditSale(r.Context(), ledger.CreditSaleRequest{
		ApartmentID: req.ApartmentID,
		Amount:      amount,
		Date:        dateOrNow(req.Date),
		Category:    category,
		Description: nonEmpty(req.Description),
		Reference:   nonEmpty(req.Reference),
		Notes:       nonEmpty(req.Notes),
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create credit sale", "error", err, "apartment_id", req.ApartmentID)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toTransactionDTO(t))
}

type receiptRequest struct {
	ApartmentID    uuid.UUID        `json:"apartment_id" validate:"required"`
	Amount         decimal.Decimal  `json:"amount" validate:"gt=0"`
	Date           *apiDate         `json:"date"`
	PaymentMethod  *string          `json:"payment_method"`
	Reference      *string          `json:"reference" validate:"omitempty,max=100"`
	Notes          *string          `json:"notes"`
	Classification *string          `json:"classification" validate:"omitempty,oneof=COMMON_EXPENSE RESERVE_FUND"`
	CommonAmount   *decimal.Decimal `json:"common_amount" validate:"omitempty,gte=0"`
	ReserveAmount  *decimal.Decimal `json:"reserve_amount" validate:"omitempty,gte=0"`
	BankAccountID  *uuid.UUID       `json:"bank_account_id"`
}

type allocationDTO struct {
	CreditID uuid.UUID       `json:"credit_id"`
	Applied  decimal.Decimal `json:"applied"`
	NewPaid  decimal.Decimal `json:"new_paid"`
	Status   string          `json:"status"`
	Version  int64           `json:"version"`
}

type receiptResponse struct {
	Receipt       transactionDTO   `json:"receipt"`
	Allocations   []allocationDTO  `json:"allocations"`
	Updated       []transactionDTO `json:"updated_credits"`
	Allocated     decimal.Decimal  `json:"allocated"`
	Unallocated   decimal.Decimal  `json:"unallocated"`
	CreditBalance *transactionDTO  `json:"credit_balance"`
	BankMovement  *movementDTO     `json:"bank_movement"`
}

func toReceiptResponse(res *ledger.ReceiptResult) receiptResponse {
	out := receiptResponse{
		Receipt:     toTransactionDTO(res.Receipt),
		Allocations: make([]allocationDTO, len(res.Allocations)),
		Updated:     make([]transactionDTO, len(res.Updated)),
		Allocated:   money(res.Allocated),
		Unallocated: money(res.Unallocated),
	}
	for i, a := range res.Allocations {
		out.Allocations[i] = allocationDTO{
			CreditID: a.CreditID,
			Applied:  money(a.Applied),
			NewPaid:  money(a.NewPaid),
			Status:   string(a.Status),
			Version:  a.Version,
		}
	}
	for i := range res.Updated {
		out.Updated[i] = toTransactionDTO(&res.Updated[i])
	}
	if res.CreditBalance != nil {
		dto := toTransactionDTO(res.CreditBalance)
		out.CreditBalance = &dto
	}
	if res.Movement != nil {
		dto := toMovementDTO(res.Movement)
		out.BankMovement = &dto
	}
	return out
}

// CreateReceipt records a payment and applies it to the apartment's open credit sales,
// oldest first.
func (h *TransactionHandler) CreateReceipt(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, fe1 := cents("amount", req.Amount)
	common, fe2 := optionalCents("common_amount", req.CommonAmount)
	reserve, fe3 := optionalCents("reserve_amount", req.ReserveAmount)
	method, fe4 := methodPtr(req.PaymentMethod)
	if fields := collect(fe1, fe2, fe3, fe4); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	var class *domain.Classification
	if req.Classification != nil {
		c := domain.Classification(*req.Classification)
		class = &c
	}

	res, err := h.ledger.CreateReceipt(r.Context(), ledger.ReceiptRequest{
		ApartmentID:   req.ApartmentID,
		Amount:        amount,
		Date:          dateOrNow(req.Date),
		Method:        method,
		Reference:     nonEmpty(req.Reference),
		Notes:         nonEmpty(req.Notes),
		Class:         class,
		CommonAmount:  common,
		ReserveAmount: reserve,
		BankAccountID: req.BankAccountID,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to record payment receipt", "error", err, "apartment_id", req.ApartmentID)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toReceiptResponse(res))
}

// UnlinkedReceipts lists receipts that have no bank movement yet.
func (h *TransactionHandler) UnlinkedReceipts(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ledger.UnlinkedReceipts(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toTransactionDTOs(txs))
}

type updateTransactionRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	Date          *apiDate        `json:"date"`
	Category      *string         `json:"category"`
	Description   *string         `json:"description" validate:"omitempty,max=500"`
	Reference     *string         `json:"reference" validate:"omitempty,max=100"`
	PaymentMethod *string         `json:"payment_method"`
	Notes         *string         `json:"notes"`
	ApartmentID   *uuid.UUID      `json:"apartment_id"`
	Version       int64           `json:"version" validate:"gte=0"`
}

func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req updateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, fe1 := cents("amount", req.Amount)
	category, fe2 := categoryPtr(req.Category)
	method, fe3 := methodPtr(req.PaymentMethod)
	if fields := collect(fe1, fe2, fe3); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	t, err := h.ledger.Update(r.Context(), id, ledger.UpdateRequest{
		Amount:        amount,
		Date:          dateOrZero(req.Date),
		Category:      category,
		Description:   nonEmpty(req.Description),
		Reference:     nonEmpty(req.Reference),
		PaymentMethod: method,
		Notes:         nonEmpty(req.Notes),
		ApartmentID:   req.ApartmentID,
		Version:       req.Version,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to update transaction", "error", err, "transaction_id", id)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toTransactionDTO(t))
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.ledger.Delete(r.Context(), id); err != nil {
		logging.FromContext(r.Context()).Error("failed to delete transaction", "error", err, "transaction_id", id)
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type linkBankRequest struct {
	BankAccountID *uuid.UUID `json:"bank_account_id"`
}

// LinkBank books the bank income of a receipt recorded without one.
func (h *TransactionHandler) LinkBank(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req linkBankRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	m, err := h.ledger.LinkReceiptToBank(r.Context(), id, req.BankAccountID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to link receipt to bank", "error", err, "transaction_id", id)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toMovementDTO(m))
}

type chargesResponse struct {
	Month   int              `json:"month"`
	Year    int              `json:"year"`
	Created []transactionDTO `json:"created"`
	Total   decimal.Decimal  `json:"total"`
}

// GenerateMonthlyCharges bills every apartment for the current month.
func (h *TransactionHandler) GenerateMonthlyCharges(w http.ResponseWriter, r *http.Request) {
	now := h.now().UTC()
	created, err := h.ledger.GenerateMonthlyCharges(r.Context(), now)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to generate monthly charges", "error", err)
		RespondDomainError(w, err)
		return
	}

	resp := chargesResponse{
		Month:   int(now.Month()),
		Year:    now.Year(),
		Created: make([]transactionDTO, len(created)),
	}
	var total int64
	for i := range created {
		resp.Created[i] = toTransactionDTO(&created[i])
		total += created[i].Amount
	}
	resp.Total = money(total)
	RespondSuccess(w, http.StatusCreated, resp)
}

// ReceiptPDF renders the payment receipt with the apartment's balance as it stands now.
func (h *TransactionHandler) ReceiptPDF(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	t, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	if t.Type != domain.TransactionTypePaymentReceipt || t.ApartmentID == nil {
		RespondAppError(w, ErrNotAReceipt, nil)
		return
	}

	st, err := h.statements.ApartmentStatement(r.Context(), *t.ApartmentID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	doc := pdf.NewReceiptDoc(*t, st.Apartment, st.Balance)
	body, err := h.documents.Receipt(r.Context(), doc, st.Footer)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to render receipt", "error", err, "transaction_id", id)
		RespondDomainError(w, err)
		return
	}
	RespondFile(w, "application/pdf", "recibo-apto-"+st.Apartment.Number+"-"+t.Date.Format(dateLayout)+".pdf", body)
}

func categoryPtr(s *string) (*domain.Category, *FieldError) {
	v := nonEmpty(s)
	if v == nil {
		return nil, nil
	}
	c := domain.Category(strings.ToUpper(*v))
	if !c.IsValid() {
		return nil, &FieldError{Field: "category", Message: "categoría inválida"}
	}
	return &c, nil
}

func methodPtr(s *string) (*domain.PaymentMethod, *FieldError) {
	v := nonEmpty(s)
	if v == nil {
		return nil, nil
	}
	m := domain.PaymentMethod(strings.ToUpper(*v))
	if !m.IsValid() {
		return nil, &FieldError{Field: "payment_method", Message: "medio de pago inválido"}
	}
	return &m, nil
}
