package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/logging"
	"github.com/josh-kwaku/edificio/internal/report"
	"github.com/josh-kwaku/edificio/internal/service/ledger"
)

type apartmentService interface {
	List(ctx context.Context) ([]domain.Apartment, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Apartment, error)
	Create(ctx context.Context, a *domain.Apartment) error
	Update(ctx context.Context, a *domain.Apartment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type apartmentTenants interface {
	ListByApartment(ctx context.Context, apartmentID uuid.UUID) ([]domain.Tenant, error)
}

type apartmentLedger interface {
	ListByApartment(ctx context.Context, apartmentID uuid.UUID) ([]domain.TransactionWithApartment, error)
	Balances(ctx context.Context) ([]ledger.ApartmentBalance, error)
}

type apartmentStatements interface {
	ApartmentStatement(ctx context.Context, apartmentID uuid.UUID) (*report.ApartmentStatement, error)
}

type apartmentDocuments interface {
	ApartmentStatement(ctx context.Context, st *report.ApartmentStatement) ([]byte, error)
}

type ApartmentHandler struct {
	apartments apartmentService
	tenants    apartmentTenants
	ledger     apartmentLedger
	statements apartmentStatements
	documents  apartmentDocuments
}

func NewApartmentHandler(
	apartments apartmentService,
	tenants apartmentTenants,
	ledger apartmentLedger,
	statements apartmentStatements,
	documents apartmentDocuments,
) *ApartmentHandler {
	return &ApartmentHandler{
		apartments: apartments,
		tenants:    tenants,
		ledger:     ledger,
		statements: statements,
		documents:  documents,
	}
}

type apartmentRequest struct {
	Number           string          `json:"number" validate:"required,max=20"`
	Floor            *int            `json:"floor" validate:"omitempty,gte=-5,lte=200"`
	CommonExpenses   decimal.Decimal `json:"common_expenses" validate:"gte=0"`
	ReserveFund      decimal.Decimal `json:"reserve_fund" validate:"gte=0"`
	Occupancy        string          `json:"occupancy" validate:"required,oneof=OWNER TENANT"`
	ContactFirstName *string         `json:"contact_first_name" validate:"omitempty,max=100"`
	ContactLastName  *string         `json:"contact_last_name" validate:"omitempty,max=100"`
	ContactPhone     *string         `json:"contact_phone" validate:"omitempty,max=40"`
	ContactEmail     *string         `json:"contact_email" validate:"omitempty,email"`
	Notes            *string         `json:"notes"`
}

func (req apartmentRequest) toDomain() (*domain.Apartment, []FieldError) {
	common, fe1 := cents("common_expenses", req.CommonExpenses)
	reserve, fe2 := cents("reserve_fund", req.ReserveFund)
	if fields := collect(fe1, fe2); len(fields) > 0 {
		return nil, fields
	}
	return &domain.Apartment{
		Number:           req.Number,
		Floor:            req.Floor,
		CommonExpenses:   common,
		ReserveFund:      reserve,
		Occupancy:        domain.Occupancy(req.Occupancy),
		ContactFirstName: nonEmpty(req.ContactFirstName),
		ContactLastName:  nonEmpty(req.ContactLastName),
		ContactPhone:     nonEmpty(req.ContactPhone),
		ContactEmail:     nonEmpty(req.ContactEmail),
		Notes:            nonEmpty(req.Notes),
	}, nil
}

func (h *ApartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	apts, err := h.apartments.List(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list apartments", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]apartmentDTO, len(apts))
	for i := range apts {
		dtos[i] = toApartmentDTO(&apts[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *ApartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, ErrApartmentNotFound, nil)
		return
	}

	apt, err := h.apartments.Get(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toApartmentDTO(apt))
}

func (h *ApartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req apartmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	apt, fields := req.toDomain()
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	if err := h.apartments.Create(r.Context(), apt); err != nil {
		logging.FromContext(r.Context()).Error("failed to create apartment", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toApartmentDTO(apt))
}

func (h *ApartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, ErrApartmentNotFound, nil)
		return
	}

	var req apartmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	apt, fields := req.toDomain()
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}
	apt.ID = id

	if err := h.apartments.Update(r.Context(), apt); err != nil {
		logging.FromContext(r.Context()).Error("failed to update apartment", "error", err, "apartment_id", id)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toApartmentDTO(apt))
}

func (h *ApartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, ErrApartmentNotFound, nil)
		return
	}

	if err := h.apartments.Delete(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type balanceDTO struct {
	Apartment apartmentDTO    `json:"apartment"`
	Balance   decimal.Decimal `json:"balance"`
}

// Balances lists what every apartment owes; negative balances are credit in favour.
func (h *ApartmentHandler) Balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.ledger.Balances(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to compute balances", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]balanceDTO, len(balances))
	for i := range balances {
		dtos[i] = balanceDTO{
			Apartment: toApartmentDTO(&balances[i].Apartment),
			Balance:   money(balances[i].Balance),
		}
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *ApartmentHandler) Tenants(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, ErrApartmentNotFound, nil)
		return
	}

	tenants, err := h.tenants.ListByApartment(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	dtos := make([]tenantDTO, len(tenants))
	for i := range tenants {
		dtos[i] = toTenantDTO(&tenants[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *ApartmentHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, ErrApartmentNotFound, nil)
		return
	}

	txs, err := h.ledger.ListByApartment(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toTransactionDTOs(txs))
}

type accountLineDTO struct {
	Transaction transactionDTO  `json:"transaction"`
	Charge      decimal.Decimal `json:"charge"`
	Payment     decimal.Decimal `json:"payment"`
	Balance     decimal.Decimal `json:"balance"`
}

type apartmentStatementDTO struct {
	Apartment     apartmentDTO     `json:"apartment"`
	Lines         []accountLineDTO `json:"lines"`
	TotalCharges  decimal.Decimal  `json:"total_charges"`
	TotalPayments decimal.Decimal  `json:"total_payments"`
	Balance       decimal.Decimal  `json:"balance"`
}

func toApartmentStatementDTO(st *report.ApartmentStatement) apartmentStatementDTO {
	lines := make([]accountLineDTO, len(st.Lines))
	for i, l := range st.Lines {
		lines[i] = accountLineDTO{
			Transaction: toTransactionDTO(&l.Transaction),
			Charge:      money(l.Charge),
			Payment:     money(l.Payment),
			Balance:     money(l.Balance),
		}
	}
	return apartmentStatementDTO{
		Apartment:     toApartmentDTO(&st.Apartment),
		Lines:         lines,
		TotalCharges:  money(st.TotalCharges),
		TotalPayments: money(st.TotalPayments),
		Balance:       money(st.Balance),
	}
}

func (h *ApartmentHandler) Statement(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, ErrApartmentNotFound, nil)
		return
	}

	st, err := h.statements.ApartmentStatement(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toApartmentStatementDTO(st))
}

func (h *ApartmentHandler) StatementPDF(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, ErrApartmentNotFound, nil)
		return
	}

	st, err := h.statements.ApartmentStatement(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	pdf, err := h.documents.ApartmentStatement(r.Context(), st)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to render apartment statement", "error", err, "apartment_id", id)
		RespondDomainError(w, err)
		return
	}
	RespondFile(w, "application/pdf", "estado-de-cuenta-apto-"+st.Apartment.Number+".pdf", pdf)
}
