package handlers

import (
	"net/http"

	"invoice-backend/internal/auth"
	"invoice-backend/internal/models"
	"invoice-backend/internal/services"
	"invoice-backend/pkg/utils"
)

type AuthHandler struct {
	Service *services.AccountService
	Cookies *auth.SessionCookies
}

func NewAuthHandler(s *services.AccountService, cookies *auth.SessionCookies) *AuthHandler {
	return &AuthHandler{Service: s, Cookies: cookies}
}

// SignUp creates an account and opens a session
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if !readJSON(w, r, &req) {
		return
	}

	res, err := h.Service.SignUp(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookies.Set(w, res.Token, res.ExpiresAt)
	utils.JSON(w, http.StatusOK, models.MessageResponse{Message: "Account Creation Successful"})
}

// SignIn checks credentials and opens a session
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if !readJSON(w, r, &req) {
		return
	}

	res, err := h.Service.SignIn(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookies.Set(w, res.Token, res.ExpiresAt)
	utils.JSON(w, http.StatusOK, models.MessageResponse{Success: true, Message: "Sign-in successful"})
}

// SignOut expires the session cookie
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.Cookies.Clear(w)
	utils.JSON(w, http.StatusOK, models.MessageResponse{Message: "Logged out successfully"})
}
