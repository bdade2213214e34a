package auth

import (
	"context"
	"errors"

	apperrors "github.com/lunargate/lunargate/internal/platform/errors"
	"github.com/lunargate/lunargate/internal/platform/i18n"
	"github.com/lunargate/lunargate/internal/services/gateway/domain/account"
	"github.com/lunargate/lunargate/internal/services/gateway/storage"
	"go.opentelemetry.io/otel/attribute"
)

// PasswordAuthenticator handles the username/password login form.
//
// The password field is accepted but never verified against a stored secret;
// accounts carry no secret to verify against. This reproduces the deployed
// behavior: adding verification would lock out every provisioned account.
type PasswordAuthenticator struct {
	Deps
}

// NewPasswordAuthenticator builds the password variant.
func NewPasswordAuthenticator(deps Deps) *PasswordAuthenticator {
	return &PasswordAuthenticator{Deps: deps}
}

// Authenticate runs the password login state machine and always returns a
// well-formed result.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, req Request) LoginResult {
	ctx, span := tracer.Start(ctx, "auth.Password")
	defer span.End()

	log := a.logger().With("authenticator", "password", "addr", req.RemoteAddr)

	if req.Password == nil {
		log.Error("password login without credential payload")
		return loginFailure(i18n.T("dispatch.account.username_error"))
	}

	decision := a.Gate.Check(req.Headers, true)
	if !decision.Unknown {
		log.Info("password login attempt",
			"version", decision.Version, "os", decision.OS, "agent", req.Headers.UserAgent)
	}
	if !decision.Match {
		span.SetAttributes(rejectAttr(apperrors.CodeVersionRejected))
		return loginFailure(versionRejection("PasswordAuthenticator", deniedPassword, a.Gate, decision))
	}

	identifier := req.Password.Account
	if err := account.ValidateIdentifier(identifier); err != nil {
		log.Info(i18n.T("dispatch.account.login_invalid_error", req.RemoteAddr))
		span.SetAttributes(rejectAttr(apperrors.CodeInvalidIdentifier))
		return loginFailure(i18n.T("dispatch.account.username_invalid"))
	}

	if !a.Guard.Admit() {
		log.Info("password login rejected: server full")
		span.SetAttributes(rejectAttr(apperrors.CodeCapacityExceeded))
		return loginFailure(i18n.T("dispatch.account.server_max_player_limit"))
	}

	acct, err := a.Directory.GetAccountByName(ctx, identifier)
	switch {
	case err == nil:
		// Authenticated by identity alone; see the type comment.
	case errors.Is(err, storage.ErrNotFound) && a.AutoCreate:
		// Auto-created accounts receive no elevated permissions.
		acct, err = a.Directory.CreateAccount(ctx, account.New(identifier, nil))
		if err != nil {
			log.Error(i18n.T("dispatch.account.login_create_error", req.RemoteAddr), "error", err)
			span.SetAttributes(rejectAttr(apperrors.CodeAccountCreateFailed))
			return loginFailure(i18n.T("dispatch.account.username_create_error"))
		}
		log.Info(i18n.T("dispatch.account.login_create_success", req.RemoteAddr, acct.ID))
	case errors.Is(err, storage.ErrNotFound):
		log.Info(i18n.T("dispatch.account.login_exist_error", req.RemoteAddr))
		span.SetAttributes(rejectAttr(apperrors.CodeAccountNotFound))
		return loginFailure(i18n.T("dispatch.account.username_error"))
	default:
		log.Error("account lookup failed", "code", apperrors.GetCode(err), "error", err)
		span.SetAttributes(rejectAttr(apperrors.GetCode(err)))
		return loginFailure(i18n.T("dispatch.account.username_error"))
	}

	sessionKey, err := acct.RotateSessionKey()
	if err != nil {
		log.Error("session key rotation failed", "error", err)
		return loginFailure(i18n.T("dispatch.account.account_cache_error"))
	}
	if err := a.Directory.UpdateAccount(ctx, acct); err != nil {
		log.Error("session key persist failed", "error", err)
		return loginFailure(i18n.T("dispatch.account.account_cache_error"))
	}

	log.Info(i18n.T("dispatch.account.login_success", req.RemoteAddr, acct.ID))
	span.SetAttributes(attribute.Int64("uid", acct.ID))
	return LoginResult{
		Retcode: RetSuccess,
		Message: "OK",
		Data: LoginData{Account: AccountData{
			UID:   acct.ID,
			Token: sessionKey,
			Email: acct.Email,
		}},
	}
}

func loginFailure(message string) LoginResult {
	return LoginResult{Retcode: RetFailure, Message: message}
}

// versionRejection renders the version failure message: a flat access-denied
// line for the unknown sentinel, a detailed one naming both versions
// otherwise.
func versionRejection(name string, deniedIndex int, gate VersionGate, decision VersionDecision) string {
	if decision.Unknown {
		return i18n.T("dispatch.version.denied", deniedIndex)
	}
	return i18n.T("dispatch.version.mismatch", name, gate.Accepted, decision.Version)
}
