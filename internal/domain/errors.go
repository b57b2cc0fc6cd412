package domain

import "errors"

var (
	ErrNotFound                = errors.New("not found")
	ErrDuplicate               = errors.New("already exists")
	ErrVersionConflict         = errors.New("optimistic lock conflict")
	ErrInvalidAmount           = errors.New("amount must be greater than zero")
	ErrInvalidRequest          = errors.New("invalid request")
	ErrApartmentNotFound       = errors.New("apartment not found")
	ErrBankAccountNotFound     = errors.New("bank account not found")
	ErrNotAReceipt             = errors.New("only payment receipts can be linked")
	ErrReceiptAlreadyLinked    = errors.New("receipt already linked to a bank movement")
	ErrNoApartments            = errors.New("no apartments registered")
	ErrChargesAlreadyGenerated = errors.New("monthly charges already generated")
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
	ErrBackupSourceMissing     = errors.New("database file not found")
	ErrDriveNotDetected        = errors.New("cloud drive folder not detected")
	ErrPathNotFound            = errors.New("path does not exist")
	ErrStorageDisabled         = errors.New("object storage not configured")
	ErrRendererDisabled        = errors.New("pdf renderer not available")
	ErrUpdateFeedDisabled      = errors.New("update feed not configured")
)
