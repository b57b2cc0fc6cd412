package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/josh-kwaku/edificio/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

// RespondFile sends a generated document as a download.
func RespondFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write file response", "error", err, "filename", filename)
	}
}

var domainErrors = []struct {
	err    error
	appErr *AppError
}{
	{domain.ErrApartmentNotFound, ErrApartmentNotFound},
	{domain.ErrBankAccountNotFound, ErrBankAccountNotFound},
	{domain.ErrNotFound, ErrResourceNotFound},
	{domain.ErrDuplicate, ErrDuplicate},
	{domain.ErrVersionConflict, ErrVersionConflict},
	{domain.ErrInvalidAmount, ErrInvalidAmount},
	{domain.ErrInvalidRequest, ErrInvalidRequest},
	{domain.ErrNotAReceipt, ErrNotAReceipt},
	{domain.ErrReceiptAlreadyLinked, ErrReceiptAlreadyLinked},
	{domain.ErrNoApartments, ErrNoApartments},
	{domain.ErrChargesAlreadyGenerated, ErrChargesAlreadyGenerated},
	{domain.ErrDuplicateIdempotencyKey, ErrIdempotencyConflict},
	{domain.ErrBackupSourceMissing, ErrBackupSourceMissing},
	{domain.ErrDriveNotDetected, ErrDriveNotDetected},
	{domain.ErrPathNotFound, ErrPathNotFound},
	{domain.ErrStorageDisabled, ErrStorageDisabled},
	{domain.ErrRendererDisabled, ErrRendererDisabled},
	{domain.ErrUpdateFeedDisabled, ErrUpdateFeedDisabled},
}

// AppErrorFor maps a service error to the response it produces. The more specific
// not-found sentinels are listed before ErrNotFound.
func AppErrorFor(err error) *AppError {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			return m.appErr
		}
	}
	return ErrInternalError
}

func RespondDomainError(w http.ResponseWriter, err error) {
	appErr := AppErrorFor(err)
	if appErr == ErrInternalError {
		slog.Error("unhandled domain error", "error", err)
	}
	RespondAppError(w, appErr, nil)
}
