package handlers

import (
	"errors"
	"io"
	"net/http"

	"invoice-backend/internal/middleware"
	"invoice-backend/internal/models"
	"invoice-backend/internal/services"
	"invoice-backend/pkg/utils"
)

const logoField = "logo"

type AccountHandler struct {
	Service      *services.AccountService
	MaxLogoBytes int64
}

func NewAccountHandler(s *services.AccountService, maxLogoBytes int64) *AccountHandler {
	if maxLogoBytes <= 0 {
		maxLogoBytes = 2 << 20
	}
	return &AccountHandler{Service: s, MaxLogoBytes: maxLogoBytes}
}

// Me handles GET /me. Without a session the body is {"user": null} with 401.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		utils.JSON(w, http.StatusUnauthorized, models.CurrentAccountResponse{})
		return
	}

	account, err := h.Service.Get(r.Context(), id)
	if errors.Is(err, models.ErrAccountNotFound) {
		utils.JSON(w, http.StatusUnauthorized, models.CurrentAccountResponse{})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, models.CurrentAccountResponse{User: account})
}

// UpdateProfile handles PATCH /me
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if !readJSON(w, r, &req) {
		return
	}

	account, err := h.Service.UpdateProfile(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, account)
}

// UploadLogo handles POST /me/logo as multipart form data with a "logo" file
func (h *AccountHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxLogoBytes+(64<<10))
	if err := r.ParseMultipartForm(h.MaxLogoBytes); err != nil {
		utils.Error(w, http.StatusBadRequest, "Logo must be an image smaller than the upload limit")
		return
	}

	file, _, err := r.FormFile(logoField)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Missing logo file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.MaxLogoBytes+1))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if int64(len(data)) > h.MaxLogoBytes {
		utils.Error(w, http.StatusBadRequest, "Logo must be an image smaller than the upload limit")
		return
	}

	account, err := h.Service.UploadLogo(r.Context(), id, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, account)
}
