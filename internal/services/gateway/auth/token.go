package auth

import (
	"context"

	apperrors "github.com/lunargate/lunargate/internal/platform/errors"
	"github.com/lunargate/lunargate/internal/platform/i18n"
	"go.opentelemetry.io/otel/attribute"
)

// TokenAuthenticator handles logins that replay a cached session key.
type TokenAuthenticator struct {
	Deps
}

// NewTokenAuthenticator builds the token variant.
func NewTokenAuthenticator(deps Deps) *TokenAuthenticator {
	return &TokenAuthenticator{Deps: deps}
}

// Authenticate accepts iff the supplied token is exactly the account's
// current session key. The existing key is returned, not a fresh one: token
// logins resume a session, they do not start one.
func (a *TokenAuthenticator) Authenticate(ctx context.Context, req Request) LoginResult {
	ctx, span := tracer.Start(ctx, "auth.Token")
	defer span.End()

	log := a.logger().With("authenticator", "token", "addr", req.RemoteAddr)

	if req.Token == nil {
		log.Error("token login without credential payload")
		return loginFailure(i18n.T("dispatch.account.account_cache_error"))
	}

	decision := a.Gate.Check(req.Headers, false)
	if !decision.Unknown {
		log.Info("token login attempt",
			"version", decision.Version, "os", decision.OS, "agent", req.Headers.UserAgent)
	}
	log.Info(i18n.T("dispatch.account.login_token_attempt", req.RemoteAddr))

	if !decision.Match {
		span.SetAttributes(rejectAttr(apperrors.CodeVersionRejected))
		return loginFailure(versionRejection("TokenAuthenticator", deniedToken, a.Gate, decision))
	}

	if !a.Guard.Admit() {
		log.Info("token login rejected: server full")
		span.SetAttributes(rejectAttr(apperrors.CodeCapacityExceeded))
		return loginFailure(i18n.T("dispatch.account.server_max_player_limit"))
	}

	acct, err := a.Directory.GetAccountByID(ctx, req.Token.UID)
	if err != nil || acct.SessionKey == "" || acct.SessionKey != req.Token.Token {
		log.Info(i18n.T("dispatch.account.login_token_error", req.RemoteAddr),
			"uid", req.Token.UID, "token", maskToken(req.Token.Token))
		span.SetAttributes(rejectAttr(apperrors.CodeCredentialMismatch))
		return loginFailure(i18n.T("dispatch.account.account_cache_error"))
	}

	log.Info(i18n.T("dispatch.account.login_token_success", req.RemoteAddr, acct.ID))
	span.SetAttributes(attribute.Int64("uid", acct.ID))
	return LoginResult{
		Retcode: RetSuccess,
		Message: "OK",
		Data: LoginData{Account: AccountData{
			UID:   acct.ID,
			Token: acct.SessionKey,
			Email: acct.Email,
		}},
	}
}
