// Package httpapi is the JSON-over-HTTP transport of the vaultx server.
package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/vaultx/internal/logging"
	"github.com/dmitrijs2005/vaultx/internal/ratelimit"
	"github.com/dmitrijs2005/vaultx/internal/server/services"
)

// Services bundles what the handlers call into.
type Services struct {
	Auth      *services.AuthService
	Users     *services.UserService
	TwoFactor *services.TwoFactorService
	Vault     *services.VaultService
	Activity  *services.ActivityService
	Backup    *services.BackupService
}

type Handler struct {
	auth      *services.AuthService
	users     *services.UserService
	twoFactor *services.TwoFactorService
	vault     *services.VaultService
	activity  *services.ActivityService
	backup    *services.BackupService
	logger    logging.Logger
	now       func() time.Time
}

func NewHandler(s Services, logger logging.Logger) *Handler {
	return &Handler{
		auth:      s.Auth,
		users:     s.Users,
		twoFactor: s.TwoFactor,
		vault:     s.Vault,
		activity:  s.Activity,
		backup:    s.Backup,
		logger:    logger,
		now:       time.Now,
	}
}

// NewServeMux registers every route and wraps the mux with recovery, rate
// limiting and request logging, in that order from the inside out. A nil
// limiter disables rate limiting.
func NewServeMux(h *Handler, limiter *ratelimit.KeyedLimiter, logger logging.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.Health)

	mux.HandleFunc("POST /api/auth/signup", h.Signup)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/validate-2fa", h.ValidateTwoFactor)

	mux.HandleFunc("GET /api/user/me", h.requireAuth(h.Me))
	mux.HandleFunc("PUT /api/user/change-password", h.requireAuth(h.ChangePassword))

	mux.HandleFunc("POST /api/2fa/generate", h.requireAuth(h.GenerateTwoFactor))
	mux.HandleFunc("POST /api/2fa/verify", h.requireAuth(h.VerifyTwoFactor))
	mux.HandleFunc("POST /api/2fa/disable", h.requireAuth(h.DisableTwoFactor))

	mux.HandleFunc("GET /api/secrets", h.requireAuth(h.ListSecrets))
	mux.HandleFunc("POST /api/secrets", h.requireAuth(h.CreateSecret))
	mux.HandleFunc("POST /api/secrets/backup", h.requireAuth(h.ExportBackup))
	mux.HandleFunc("GET /api/secrets/{id}", h.requireAuth(h.GetSecret))
	mux.HandleFunc("PUT /api/secrets/{id}", h.requireAuth(h.UpdateSecret))
	mux.HandleFunc("DELETE /api/secrets/{id}", h.requireAuth(h.DeleteSecret))

	mux.HandleFunc("GET /api/activity", h.requireAuth(h.ListActivity))

	wrapped := recoveryMiddleware(logger, mux)
	if limiter != nil {
		wrapped = rateLimitMiddleware(limiter, wrapped)
	}
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

type healthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Time:   h.now().UTC().Format(time.RFC3339),
	})
}

// currentUser is only called behind requireAuth.
func currentUser(r *http.Request) string {
	id, _ := UserID(r.Context())
	return id
}
