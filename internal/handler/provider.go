package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/logging"
)

type providerService interface {
	List(ctx context.Context, activeOnly bool) ([]domain.ServiceProvider, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.ServiceProvider, error)
	Create(ctx context.Context, p *domain.ServiceProvider) error
	Update(ctx context.Context, p *domain.ServiceProvider) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type footerSource interface {
	Footer(ctx context.Context) (string, error)
}

type providerDocuments interface {
	ProviderDirectory(ctx context.Context, providers []domain.ServiceProvider, footer string) ([]byte, error)
}

type ProviderHandler struct {
	providers providerService
	footer    footerSource
	documents providerDocuments
}

func NewProviderHandler(providers providerService, footer footerSource, documents providerDocuments) *ProviderHandler {
	return &ProviderHandler{providers: providers, footer: footer, documents: documents}
}

type providerRequest struct {
	Kind          string  `json:"kind" validate:"required"`
	Name          string  `json:"name" validate:"required,max=150"`
	Phone         *string `json:"phone" validate:"omitempty,max=40"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Bank          *string `json:"bank" validate:"omitempty,max=100"`
	AccountNumber *string `json:"account_number" validate:"omitempty,max=60"`
	Notes         *string `json:"notes"`
	Active        *bool   `json:"active"`
}

func (req providerRequest) toDomain() *domain.ServiceProvider {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &domain.ServiceProvider{
		Kind:          domain.ProviderKind(req.Kind),
		Name:          req.Name,
		Phone:         nonEmpty(req.Phone),
		Email:         nonEmpty(req.Email),
		Bank:          nonEmpty(req.Bank),
		AccountNumber: nonEmpty(req.AccountNumber),
		Notes:         nonEmpty(req.Notes),
		Active:        active,
	}
}

// List returns every provider, or only the active ones with ?active=true.
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	active, fe := queryBool(r, "active")
	if fe != nil {
		RespondValidationError(w, []FieldError{*fe})
		return
	}

	providers, err := h.providers.List(r.Context(), active != nil && *active)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list providers", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]providerDTO, len(providers))
	for i := range providers {
		dtos[i] = toProviderDTO(&providers[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *ProviderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	p, err := h.providers.Get(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toProviderDTO(p))
}

func (h *ProviderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req providerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p := req.toDomain()
	if err := h.providers.Create(r.Context(), p); err != nil {
		logging.FromContext(r.Context()).Error("failed to create provider", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toProviderDTO(p))
}

func (h *ProviderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req providerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p := req.toDomain()
	p.ID = id
	if err := h.providers.Update(r.Context(), p); err != nil {
		logging.FromContext(r.Context()).Error("failed to update provider", "error", err, "provider_id", id)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toProviderDTO(p))
}

func (h *ProviderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.providers.Delete(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DirectoryPDF renders the active providers as a printable phone list.
func (h *ProviderHandler) DirectoryPDF(w http.ResponseWriter, r *http.Request) {
	providers, err := h.providers.List(r.Context(), true)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	footer, err := h.footer.Footer(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	pdf, err := h.documents.ProviderDirectory(r.Context(), providers, footer)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to render provider directory", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondFile(w, "application/pdf", "proveedores.pdf", pdf)
}
