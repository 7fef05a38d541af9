package models

import "errors"

var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountNotFound        = errors.New("account not found")
	ErrEmailTaken             = errors.New("account with this email already exists")
	ErrInvoiceNotFound        = errors.New("invoice not found")
	ErrDuplicateInvoiceNumber = errors.New("invoice number already in use")
	ErrStorageDisabled        = errors.New("object storage is not configured")
)
