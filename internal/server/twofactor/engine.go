// Package twofactor implements TOTP second-factor enrollment, verification
// and removal for user records.
//
// The engine only mutates the *models.User it is given; callers persist the
// record afterwards. Two-factor state is derived from the record:
//
//	None     no secrets stored
//	Pending  an enrollment secret awaits confirmation
//	Active   a confirmed secret is in use and the enabled flag is set
package twofactor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	Digits = otp.DigitsSix
	Period = 30
	// Skew is the number of periods accepted on either side of the current one.
	Skew = 1

	secretSize = 20
	qrSize     = 200
)

type State int

const (
	StateNone State = iota
	StatePending
	StateActive
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	default:
		return "none"
	}
}

// Enrollment is what a user needs to register the pending secret in an
// authenticator app.
type Enrollment struct {
	Secret          string
	ProvisioningURI string
	// QRCodeDataURL is a base64 PNG of ProvisioningURI as a data: URL.
	QRCodeDataURL string
}

// PasswordVerifier re-checks the account password before 2FA is removed.
type PasswordVerifier interface {
	Verify(password, hash string) (bool, error)
}

type Engine struct {
	issuer    string
	passwords PasswordVerifier
	now       func() time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine returns an engine labelling provisioning URIs with issuer.
func NewEngine(issuer string, passwords PasswordVerifier, opts ...Option) *Engine {
	e := &Engine{issuer: issuer, passwords: passwords, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) State(u *models.User) State {
	switch {
	case u.TwoFactorEnabled:
		return StateActive
	case u.TwoFactorPendingSecret != "":
		return StatePending
	default:
		return StateNone
	}
}

// GenerateSecret creates a new pending secret for u, replacing any earlier
// pending one. Users with active 2FA must disable it first.
func (e *Engine) GenerateSecret(u *models.User) (*Enrollment, error) {
	if e.State(u) == StateActive {
		return nil, common.ErrTwoFactorAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.issuer,
		AccountName: u.Email,
		Period:      Period,
		SecretSize:  secretSize,
		Digits:      Digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp key: %w", err)
	}

	img, err := key.Image(qrSize, qrSize)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}

	u.TwoFactorPendingSecret = key.Secret()

	return &Enrollment{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
		QRCodeDataURL:   "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// VerifyEnrollment confirms the pending secret with code. On success the
// pending secret becomes the active one. On failure u is left untouched.
func (e *Engine) VerifyEnrollment(u *models.User, code string) error {
	if e.State(u) != StatePending {
		return common.ErrTwoFactorNotPending
	}
	if !e.validate(u.TwoFactorPendingSecret, code) {
		return common.ErrInvalidCode
	}

	u.TwoFactorSecret = u.TwoFactorPendingSecret
	u.TwoFactorPendingSecret = ""
	u.TwoFactorEnabled = true
	return nil
}

// VerifyLoginCode checks code against the active secret. It never mutates u.
func (e *Engine) VerifyLoginCode(u *models.User, code string) bool {
	if e.State(u) != StateActive || u.TwoFactorSecret == "" {
		return false
	}
	return e.validate(u.TwoFactorSecret, code)
}

// Disable removes every trace of 2FA from u after re-checking password.
// A wrong password returns common.ErrAuthorization and leaves u untouched.
func (e *Engine) Disable(u *models.User, password string) error {
	ok, err := e.passwords.Verify(password, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return common.ErrAuthorization
	}

	u.TwoFactorEnabled = false
	u.TwoFactorSecret = ""
	u.TwoFactorPendingSecret = ""
	return nil
}

func (e *Engine) validate(secret, code string) bool {
	code = strings.TrimSpace(code)
	if len(code) != Digits.Length() {
		return false
	}

	ok, err := totp.ValidateCustom(code, secret, e.now().UTC(), totp.ValidateOpts{
		Period:    Period,
		Skew:      Skew,
		Digits:    Digits,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
