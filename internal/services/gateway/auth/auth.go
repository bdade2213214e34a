// Package auth implements the gateway's credential state machines.
//
// Three mutually exclusive authenticators cover the client's credential
// schemes: password form login, cached-token login, and the combo exchange
// that hands a client off to a gameplay server. Each consumes one request
// and produces one well-formed result; none of them returns an error to its
// caller, soft failures travel in the result's retcode and message.
package auth

import (
	"log/slog"

	apperrors "github.com/lunargate/lunargate/internal/platform/errors"
	"github.com/lunargate/lunargate/internal/services/gateway/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// RetSuccess is the retcode of every successful result.
	RetSuccess = 0
	// RetFailure is the flat retcode shared by every failure kind; clients
	// distinguish failures by message text only.
	RetFailure = -201

	// ComboID is the fixed combo identifier returned on every successful
	// combo exchange.
	ComboID = "157795300"

	// Per-authenticator indexes used in the flat access-denied message when
	// the client version is unknown.
	deniedPassword = 0
	deniedToken    = 1
	deniedCombo    = 2
)

var tracer = otel.Tracer("lunargate/gateway/auth")

// PasswordRequest is the credential payload of a password form login.
type PasswordRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
	IsCrypto bool   `json:"is_crypto"`
}

// TokenRequest is the credential payload of a cached-token login.
type TokenRequest struct {
	UID   int64  `json:"uid"`
	Token string `json:"token"`
}

// ComboLogin is the nested login payload of a combo exchange.
type ComboLogin struct {
	UID   int64  `json:"uid"`
	Guest bool   `json:"guest"`
	Token string `json:"token"`
}

// Request is one inbound authentication call. Exactly one credential payload
// is set, matching the authenticator the endpoint dispatches to.
type Request struct {
	Headers    Headers
	RemoteAddr string

	Password *PasswordRequest
	Token    *TokenRequest
	Combo    *ComboLogin
}

// AccountData is the issued identity of a successful password/token login.
type AccountData struct {
	UID   int64  `json:"uid"`
	Token string `json:"token"`
	Email string `json:"email"`
}

// LoginData wraps AccountData in the client's expected envelope.
type LoginData struct {
	Account AccountData `json:"account"`
}

// LoginResult is the outcome of a password or token login. Either Retcode is
// RetSuccess with a fully populated Data, or it is RetFailure with a default
// Data; partially filled success payloads never occur.
type LoginResult struct {
	Retcode int       `json:"retcode"`
	Message string    `json:"message"`
	Data    LoginData `json:"data"`
}

// ComboData is the issued handoff credential of a successful combo exchange.
type ComboData struct {
	OpenID     int64  `json:"open_id"`
	ComboID    string `json:"combo_id"`
	ComboToken string `json:"combo_token"`
}

// ComboResult is the outcome of a combo exchange.
type ComboResult struct {
	Retcode int       `json:"retcode"`
	Message string    `json:"message"`
	Data    ComboData `json:"data"`
}

// Deps are the collaborators every authenticator variant shares.
type Deps struct {
	Gate      VersionGate
	Guard     CapacityGuard
	Directory storage.AccountDirectory
	// AutoCreate lets password logins register unknown usernames.
	AutoCreate bool
	Log        *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}

// rejectAttr tags a span with the taxonomy code of a rejected attempt.
func rejectAttr(code apperrors.Code) attribute.KeyValue {
	return attribute.String("reject", string(code))
}

// maskToken shortens opaque credentials for audit logs.
func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
