package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/vaultx/internal/common"
)

type generateTwoFactorResponse struct {
	QRCodeURL  string `json:"qrCodeUrl"`
	OTPAuthURL string `json:"otpauthUrl"`
	Secret     string `json:"secret"`
}

type verifyTwoFactorRequest struct {
	Token string `json:"token"`
}

type disableTwoFactorRequest struct {
	Password string `json:"password"`
}

func (h *Handler) GenerateTwoFactor(w http.ResponseWriter, r *http.Request) {
	enr, err := h.twoFactor.Generate(r.Context(), currentUser(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, generateTwoFactorResponse{
		QRCodeURL:  enr.QRCodeDataURL,
		OTPAuthURL: enr.ProvisioningURI,
		Secret:     enr.Secret,
	})
}

// VerifyTwoFactor confirms enrollment. A wrong code here is a bad request,
// not an authentication failure.
func (h *Handler) VerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req verifyTwoFactorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.twoFactor.Verify(r.Context(), currentUser(r), req.Token)
	if errors.Is(err, common.ErrInvalidCode) {
		writeError(w, http.StatusBadRequest, "Invalid 2FA token")
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "2FA enabled successfully"})
}

func (h *Handler) DisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req disableTwoFactorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.twoFactor.Disable(r.Context(), currentUser(r), req.Password); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "2FA has been disabled."})
}
