package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/vaultx/internal/server/models"
	"github.com/dmitrijs2005/vaultx/internal/server/services"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	Message string             `json:"message"`
	User    *models.PublicUser `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string             `json:"token"`
	User  *models.PublicUser `json:"user"`
}

type secondFactorResponse struct {
	Message           string `json:"message"`
	TwoFactorRequired bool   `json:"twoFactorRequired"`
	UserID            string `json:"userId"`
}

type validateTwoFactorRequest struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

type userResponse struct {
	User *models.PublicUser `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{Message: "User registered successfully", User: u})
}

// Login answers 200 with a token, or 206 when a TOTP code must follow.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeLoginResult(w, res)
}

func (h *Handler) ValidateTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req validateTwoFactorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Token == "" {
		writeError(w, http.StatusBadRequest, "userId and token are required")
		return
	}

	res, err := h.auth.CompleteSecondFactor(r.Context(), req.UserID, req.Token)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeLoginResult(w, res)
}

func (h *Handler) writeLoginResult(w http.ResponseWriter, res *services.LoginResult) {
	if res.Step == services.StepSecondFactorRequired {
		writeJSON(w, http.StatusPartialContent, secondFactorResponse{
			Message:           "2FA token required",
			TwoFactorRequired: true,
			UserID:            res.UserID,
		})
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: res.Token, User: res.User})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Profile(r.Context(), currentUser(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: u})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.users.ChangePassword(r.Context(), currentUser(r), req.CurrentPassword, req.NewPassword); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Password updated successfully"})
}
