package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Se requiere el encabezado Authorization"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "La sesión no es válida o expiró"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email o contraseña incorrectos"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Solicitud inválida"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Hay campos con errores"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Registro no encontrado"}
	ErrDuplicate          = &AppError{http.StatusConflict, "DUPLICATE", "Ya existe un registro con esos datos"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "Error interno del servidor"}

	ErrApartmentNotFound       = &AppError{http.StatusNotFound, "APARTMENT_NOT_FOUND", "Apartamento no encontrado"}
	ErrBankAccountNotFound     = &AppError{http.StatusNotFound, "BANK_ACCOUNT_NOT_FOUND", "Cuenta bancaria no encontrada"}
	ErrNotAReceipt             = &AppError{http.StatusUnprocessableEntity, "NOT_A_RECEIPT", "Solo se pueden vincular recibos de pago"}
	ErrReceiptAlreadyLinked    = &AppError{http.StatusConflict, "RECEIPT_ALREADY_LINKED", "Este recibo ya está vinculado a un movimiento bancario"}
	ErrNoApartments            = &AppError{http.StatusUnprocessableEntity, "NO_APARTMENTS", "No hay apartamentos registrados"}
	ErrChargesAlreadyGenerated = &AppError{http.StatusConflict, "CHARGES_ALREADY_GENERATED", "Los gastos del mes ya fueron generados"}
	ErrVersionConflict         = &AppError{http.StatusConflict, "VERSION_CONFLICT", "El registro fue modificado por otra operación, intente nuevamente"}
	ErrMissingIdempotencyKey   = &AppError{http.StatusBadRequest, "MISSING_IDEMPOTENCY_KEY", "Se requiere el encabezado Idempotency-Key"}
	ErrIdempotencyConflict     = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "La clave de idempotencia ya se usó con otra solicitud"}
	ErrInvalidAmount           = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "El monto debe ser mayor a cero"}

	ErrMissingFile        = &AppError{http.StatusBadRequest, "MISSING_FILE", "No se proporcionó ningún archivo"}
	ErrFileTooLarge       = &AppError{http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "El archivo supera el máximo de 10 MB"}
	ErrUploadFailed       = &AppError{http.StatusBadGateway, "UPLOAD_FAILED", "Error al subir archivo"}
	ErrStorageDisabled    = &AppError{http.StatusServiceUnavailable, "STORAGE_DISABLED", "El almacenamiento de archivos no está configurado"}
	ErrRendererDisabled   = &AppError{http.StatusServiceUnavailable, "PDF_UNAVAILABLE", "La generación de PDF no está disponible"}
	ErrUpdateFeedDisabled = &AppError{http.StatusServiceUnavailable, "UPDATES_DISABLED", "La búsqueda de actualizaciones no está configurada"}

	ErrBackupSourceMissing = &AppError{http.StatusUnprocessableEntity, "DATABASE_NOT_FOUND", "No se encontró la base de datos"}
	ErrDriveNotDetected    = &AppError{http.StatusUnprocessableEntity, "DRIVE_NOT_DETECTED", "Google Drive Desktop no detectado. Instálalo y vuelve a intentar."}
	ErrPathNotFound        = &AppError{http.StatusUnprocessableEntity, "PATH_NOT_FOUND", "La ruta no existe"}
)
