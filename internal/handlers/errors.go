package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"invoice-backend/internal/logger"
	"invoice-backend/internal/middleware"
	"invoice-backend/internal/models"
	"invoice-backend/internal/storage"
	"invoice-backend/internal/validation"
	"invoice-backend/pkg/utils"
)

// Error messages returned to clients
const (
	msgUnauthorized       = "unauthorized"
	msgInvalidBody        = "Invalid request body"
	msgBodyTooLarge       = "Request body too large"
	msgInvoiceNotFound    = "Invoice not found"
	msgAccountNotFound    = "Account not found"
	msgDuplicateInvoice   = "Invoice number already exists"
	msgEmailTaken         = "User with this email already exists. Please log in."
	msgInvalidCredentials = "Invalid credentials"
	msgStorageDisabled    = "Logo storage is not configured"
	msgInternal           = "Internal Server Error"
)

// ValidationBody is the 400 response for rejected payloads
type ValidationBody struct {
	Errors struct {
		FieldErrors validation.FieldErrors `json:"fieldErrors"`
	} `json:"errors"`
}

func writeValidation(w http.ResponseWriter, fe validation.FieldErrors) {
	var body ValidationBody
	body.Errors.FieldErrors = fe
	utils.JSON(w, http.StatusBadRequest, body)
}

// writeError maps service errors onto status codes. Unknown errors are
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fe validation.FieldErrors
	switch {
	case errors.As(err, &fe):
		writeValidation(w, fe)
	case errors.Is(err, models.ErrUnauthorized):
		utils.Error(w, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, models.ErrInvalidCredentials):
		utils.Error(w, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, models.ErrInvoiceNotFound):
		utils.Error(w, http.StatusNotFound, msgInvoiceNotFound)
	case errors.Is(err, models.ErrAccountNotFound):
		utils.Error(w, http.StatusNotFound, msgAccountNotFound)
	case errors.Is(err, models.ErrDuplicateInvoiceNumber):
		utils.Error(w, http.StatusConflict, msgDuplicateInvoice)
	case errors.Is(err, models.ErrEmailTaken):
		utils.Error(w, http.StatusConflict, msgEmailTaken)
	case errors.Is(err, models.ErrStorageDisabled):
		utils.Error(w, http.StatusServiceUnavailable, msgStorageDisabled)
	case errors.Is(err, storage.ErrUnsupportedImage):
		utils.Error(w, http.StatusBadRequest, err.Error())
	default:
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		utils.Error(w, http.StatusInternalServerError, msgInternal)
	}
}

// accountID returns the session account or writes 401
func accountID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, msgUnauthorized)
		return "", false
	}
	return id, true
}

// MaxJSONBodyBytes bounds every JSON request body
const MaxJSONBodyBytes = 1 << 20

// readJSON decodes a size-limited JSON body into dst, answering 413 or 400
// itself when that fails.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes)).Decode(dst)
	if err != nil {
		writeBodyError(w, err)
		return false
	}
	return true
}

// readObject is readJSON for untyped invoice drafts
func readObject(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	payload, err := decodeObject(http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes))
	if err != nil {
		writeBodyError(w, err)
		return nil, false
	}
	return payload, true
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		utils.Error(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		return
	}
	utils.Error(w, http.StatusBadRequest, msgInvalidBody)
}

// decodeObject reads a JSON object keeping numbers as json.Number
func decodeObject(body io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("expected a JSON object")
	}
	return payload, nil
}
