package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/logging"
)

type tenantService interface {
	List(ctx context.Context) ([]domain.Tenant, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	Create(ctx context.Context, t *domain.Tenant) error
	Update(ctx context.Context, t *domain.Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TenantHandler struct {
	tenants tenantService
}

func NewTenantHandler(tenants tenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

type tenantRequest struct {
	FirstName   string     `json:"first_name" validate:"required,max=100"`
	LastName    string     `json:"last_name" validate:"required,max=100"`
	DocumentID  *string    `json:"document_id" validate:"omitempty,max=40"`
	Email       *string    `json:"email" validate:"omitempty,email"`
	Phone       *string    `json:"phone" validate:"omitempty,max=40"`
	Kind        string     `json:"kind" validate:"omitempty,oneof=OWNER TENANT"`
	Active      *bool      `json:"active"`
	MoveInDate  *apiDate   `json:"move_in_date"`
	MoveOutDate *apiDate   `json:"move_out_date"`
	Notes       *string    `json:"notes"`
	ApartmentID *uuid.UUID `json:"apartment_id"`
}

func (req tenantRequest) toDomain() *domain.Tenant {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &domain.Tenant{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DocumentID:  nonEmpty(req.DocumentID),
		Email:       nonEmpty(req.Email),
		Phone:       nonEmpty(req.Phone),
		Kind:        domain.Occupancy(req.Kind),
		Active:      active,
		MoveInDate:  dateOrZero(req.MoveInDate),
		MoveOutDate: datePtr(req.MoveOutDate),
		Notes:       nonEmpty(req.Notes),
		ApartmentID: req.ApartmentID,
	}
}

func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.List(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list tenants", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]tenantDTO, len(tenants))
	for i := range tenants {
		dtos[i] = toTenantDTO(&tenants[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	t, err := h.tenants.Get(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toTenantDTO(t))
}

func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tenantRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t := req.toDomain()
	if err := h.tenants.Create(r.Context(), t); err != nil {
		logging.FromContext(r.Context()).Error("failed to create tenant", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toTenantDTO(t))
}

func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req tenantRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t := req.toDomain()
	t.ID = id
	if err := h.tenants.Update(r.Context(), t); err != nil {
		logging.FromContext(r.Context()).Error("failed to update tenant", "error", err, "tenant_id", id)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toTenantDTO(t))
}

func (h *TenantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.tenants.Delete(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
