package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/logging"
	"github.com/josh-kwaku/edificio/internal/report"
	"github.com/josh-kwaku/edificio/internal/repository"
)

type bankService interface {
	ListAccounts(ctx context.Context) ([]domain.BankAccount, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error)
	CreateAccount(ctx context.Context, a *domain.BankAccount) error
	UpdateAccount(ctx context.Context, a *domain.BankAccount) error
	DeleteAccount(ctx context.Context, id uuid.UUID) error

	ListMovements(ctx context.Context, f repository.BankMovementFilter) ([]domain.BankMovementDetail, error)
	GetMovement(ctx context.Context, id uuid.UUID) (*domain.BankMovementDetail, error)
	CreateMovement(ctx context.Context, m *domain.BankMovement) (*domain.BankMovementDetail, error)
	UpdateMovement(ctx context.Context, m *domain.BankMovement) (*domain.BankMovementDetail, error)
	Reconcile(ctx context.Context, id uuid.UUID, reconciled bool) (*domain.BankMovementDetail, error)
	DeleteMovement(ctx context.Context, id uuid.UUID) error
}

type bankStatements interface {
	Statement(ctx context.Context, accountID uuid.UUID, from, to *time.Time) (*report.Statement, error)
}

type bankDocuments interface {
	BankStatement(ctx context.Context, st *report.Statement) ([]byte, error)
}

type BankHandler struct {
	bank       bankService
	statements bankStatements
	documents  bankDocuments
}

func NewBankHandler(bank bankService, statements bankStatements, documents bankDocuments) *BankHandler {
	return &BankHandler{bank: bank, statements: statements, documents: documents}
}

type bankAccountRequest struct {
	Bank           string          `json:"bank" validate:"required,max=100"`
	AccountType    string          `json:"account_type" validate:"required,max=60"`
	AccountNumber  string          `json:"account_number" validate:"required,max=60"`
	Holder         *string         `json:"holder" validate:"omitempty,max=150"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Active         *bool           `json:"active"`
	IsDefault      bool            `json:"is_default"`
}

func (req bankAccountRequest) toDomain() (*domain.BankAccount, []FieldError) {
	opening, fe := cents("opening_balance", req.OpeningBalance)
	if fe != nil {
		return nil, []FieldError{*fe}
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &domain.BankAccount{
		Bank:           req.Bank,
		AccountType:    req.AccountType,
		AccountNumber:  req.AccountNumber,
		Holder:         nonEmpty(req.Holder),
		OpeningBalance: opening,
		Active:         active,
		IsDefault:      req.IsDefault,
	}, nil
}

func (h *BankHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.bank.ListAccounts(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list bank accounts", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]bankAccountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toBankAccountDTO(&accounts[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *BankHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, ErrBankAccountNotFound, nil)
		return
	}

	a, err := h.bank.GetAccount(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toBankAccountDTO(a))
}

func (h *BankHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req bankAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, fields := req.toDomain()
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	if err := h.bank.CreateAccount(r.Context(), a); err != nil {
		logging.FromContext(r.Context()).Error("failed to create bank account", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toBankAccountDTO(a))
}

func (h *BankHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, ErrBankAccountNotFound, nil)
		return
	}

	var req bankAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, fields := req.toDomain()
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}
	a.ID = id

	if err := h.bank.UpdateAccount(r.Context(), a); err != nil {
		logging.FromContext(r.Context()).Error("failed to update bank account", "error", err, "bank_account_id", id)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toBankAccountDTO(a))
}

func (h *BankHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, ErrBankAccountNotFound, nil)
		return
	}

	if err := h.bank.DeleteAccount(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statementLineDTO struct {
	movementDTO
	Balance decimal.Decimal `json:"balance"`
}

type statementDTO struct {
	Account      bankAccountDTO     `json:"account"`
	From         *time.Time         `json:"from"`
	To           *time.Time         `json:"to"`
	Opening      decimal.Decimal    `json:"opening"`
	Lines        []statementLineDTO `json:"lines"`
	TotalIncome  decimal.Decimal    `json:"total_income"`
	TotalExpense decimal.Decimal    `json:"total_expense"`
	Closing      decimal.Decimal    `json:"closing"`
}

func toStatementDTO(st *report.Statement) statementDTO {
	lines := make([]statementLineDTO, len(st.Lines))
	for i := range st.Lines {
		lines[i] = statementLineDTO{
			movementDTO: toMovementDetailDTO(&st.Lines[i].BankMovementDetail),
			Balance:     money(st.Lines[i].Balance),
		}
	}
	return statementDTO{
		Account:      toBankAccountDTO(&st.Account),
		From:         st.From,
		To:           st.To,
		Opening:      money(st.Opening),
		Lines:        lines,
		TotalIncome:  money(st.TotalIncome),
		TotalExpense: money(st.TotalExpense),
		Closing:      money(st.Closing),
	}
}

func (h *BankHandler) statement(w http.ResponseWriter, r *http.Request) (*report.Statement, bool) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, ErrBankAccountNotFound, nil)
		return nil, false
	}
	from, fe1 := queryDate(r, "from")
	to, fe2 := queryDate(r, "to")
	if fields := collect(fe1, fe2); len(fields) > 0 {
		RespondValidationError(w, fields)
		return nil, false
	}

	st, err := h.statements.Statement(r.Context(), id, from, to)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to build bank statement", "error", err, "bank_account_id", id)
		RespondDomainError(w, err)
		return nil, false
	}
	return st, true
}

// Statement lists an account's movements with the running balance, optionally
// bounded by ?from= and ?to=.
func (h *BankHandler) Statement(w http.ResponseWriter, r *http.Request) {
	st, ok := h.statement(w, r)
	if !ok {
		return
	}
	RespondSuccess(w, http.StatusOK, toStatementDTO(st))
}

func (h *BankHandler) StatementPDF(w http.ResponseWriter, r *http.Request) {
	st, ok := h.statement(w, r)
	if !ok {
		return
	}
	pdf, err := h.documents.BankStatement(r.Context(), st)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to render bank statement", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondFile(w, "application/pdf", "estado-de-cuenta-"+st.Account.AccountNumber+".pdf", pdf)
}

type movementRequest struct {
	Type           string          `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	Amount         decimal.Decimal `json:"amount" validate:"gt=0"`
	Date           *apiDate        `json:"date"`
	Description    string          `json:"description" validate:"required,max=500"`
	Reference      *string         `json:"reference" validate:"omitempty,max=100"`
	DocumentNumber *string         `json:"document_number" validate:"omitempty,max=100"`
	AttachmentURL  *string         `json:"attachment_url" validate:"omitempty,url"`
	Classification *string         `json:"classification" validate:"omitempty,oneof=COMMON_EXPENSE RESERVE_FUND"`
	Reconciled     bool            `json:"reconciled"`
	BankAccountID  uuid.UUID       `json:"bank_account_id" validate:"required"`
	ProviderID     *uuid.UUID      `json:"provider_id"`
}

func (req movementRequest) toDomain() (*domain.BankMovement, []FieldError) {
	amount, fe := cents("amount", req.Amount)
	if fe != nil {
		return nil, []FieldError{*fe}
	}
	m := &domain.BankMovement{
		Type:           domain.MovementType(req.Type),
		Amount:         amount,
		Date:           dateOrNow(req.Date),
		Description:    req.Description,
		Reference:      nonEmpty(req.Reference),
		DocumentNumber: nonEmpty(req.DocumentNumber),
		AttachmentURL:  nonEmpty(req.AttachmentURL),
		Reconciled:     req.Reconciled,
		BankAccountID:  req.BankAccountID,
		ProviderID:     req.ProviderID,
	}
	if req.Classification != nil {
		c := domain.Classification(*req.Classification)
		m.Classification = &c
	}
	return m, nil
}

// ListMovements filters by ?bank_account_id, ?provider_id, ?from, ?to and ?limit.
func (h *BankHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	accountID, fe1 := queryUUID(r, "bank_account_id")
	providerID, fe2 := queryUUID(r, "provider_id")
	from, fe3 := queryDate(r, "from")
	to, fe4 := queryDate(r, "to")
	limit, fe5 := queryInt(r, "limit", 0, 0, 1000)
	if fields := collect(fe1, fe2, fe3, fe4, fe5); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	movements, err := h.bank.ListMovements(r.Context(), repository.BankMovementFilter{
		BankAccountID: accountID,
		ProviderID:    providerID,
		From:          from,
		To:            to,
		Limit:         limit,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list bank movements", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]movementDTO, len(movements))
	for i := range movements {
		dtos[i] = toMovementDetailDTO(&movements[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *BankHandler) GetMovement(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	m, err := h.bank.GetMovement(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toMovementDetailDTO(m))
}

func (h *BankHandler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, fields := req.toDomain()
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	created, err := h.bank.CreateMovement(r.Context(), m)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create bank movement", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toMovementDetailDTO(created))
}

func (h *BankHandler) UpdateMovement(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req movementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, fields := req.toDomain()
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}
	m.ID = id

	updated, err := h.bank.UpdateMovement(r.Context(), m)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to update bank movement", "error", err, "movement_id", id)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toMovementDetailDTO(updated))
}

type reconcileRequest struct {
	Reconciled *bool `json:"reconciled" validate:"required"`
}

func (h *BankHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req reconcileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m, err := h.bank.Reconcile(r.Context(), id, *req.Reconciled)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toMovementDetailDTO(m))
}

func (h *BankHandler) DeleteMovement(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.bank.DeleteMovement(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
