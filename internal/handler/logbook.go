package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/logging"
)

type logbookService interface {
	List(ctx context.Context, status *domain.LogbookStatus) ([]domain.LogbookEntry, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.LogbookEntry, error)
	Create(ctx context.Context, e *domain.LogbookEntry) error
	Update(ctx context.Context, e *domain.LogbookEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type logbookDocuments interface {
	Logbook(ctx context.Context, entries []domain.LogbookEntry, footer string) ([]byte, error)
}

type LogbookHandler struct {
	entries   logbookService
	footer    footerSource
	documents logbookDocuments
}

func NewLogbookHandler(entries logbookService, footer footerSource, documents logbookDocuments) *LogbookHandler {
	return &LogbookHandler{entries: entries, footer: footer, documents: documents}
}

type logbookRequest struct {
	Date   *apiDate `json:"date"`
	Kind   string   `json:"kind" validate:"required,oneof=NEWS DUE_DATE MAINTENANCE MEETING INCIDENT REMINDER OTHER"`
	Detail string   `json:"detail" validate:"required,max=2000"`
	Notes  *string  `json:"notes"`
	Status string   `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS DONE CANCELLED EXPIRED"`
}

func (req logbookRequest) toDomain() *domain.LogbookEntry {
	return &domain.LogbookEntry{
		Date:   dateOrNow(req.Date),
		Kind:   domain.LogbookKind(req.Kind),
		Detail: req.Detail,
		Notes:  nonEmpty(req.Notes),
		Status: domain.LogbookStatus(req.Status),
	}
}

func (h *LogbookHandler) statusFilter(r *http.Request) (*domain.LogbookStatus, *FieldError) {
	v := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))
	if v == "" {
		return nil, nil
	}
	s := domain.LogbookStatus(v)
	if !s.IsValid() {
		return nil, &FieldError{Field: "status", Message: "estado inválido"}
	}
	return &s, nil
}

func (h *LogbookHandler) List(w http.ResponseWriter, r *http.Request) {
	status, fe := h.statusFilter(r)
	if fe != nil {
		RespondValidationError(w, []FieldError{*fe})
		return
	}

	entries, err := h.entries.List(r.Context(), status)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list logbook", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]logbookDTO, len(entries))
	for i := range entries {
		dtos[i] = toLogbookDTO(&entries[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *LogbookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	e, err := h.entries.Get(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toLogbookDTO(e))
}

func (h *LogbookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req logbookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	e := req.toDomain()
	if err := h.entries.Create(r.Context(), e); err != nil {
		logging.FromContext(r.Context()).Error("failed to create logbook entry", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toLogbookDTO(e))
}

func (h *LogbookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req logbookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	e := req.toDomain()
	e.ID = id
	if err := h.entries.Update(r.Context(), e); err != nil {
		logging.FromContext(r.Context()).Error("failed to update logbook entry", "error", err, "entry_id", id)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toLogbookDTO(e))
}

func (h *LogbookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.entries.Delete(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportPDF prints the logbook, honouring the same ?status filter as List.
func (h *LogbookHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	status, fe := h.statusFilter(r)
	if fe != nil {
		RespondValidationError(w, []FieldError{*fe})
		return
	}

	entries, err := h.entries.List(r.Context(), status)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	footer, err := h.footer.Footer(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	pdf, err := h.documents.Logbook(r.Context(), entries, footer)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to render logbook", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondFile(w, "application/pdf", "bitacora.pdf", pdf)
}
