package auth

import (
	"context"

	apperrors "github.com/lunargate/lunargate/internal/platform/errors"
	"github.com/lunargate/lunargate/internal/platform/i18n"
	"go.opentelemetry.io/otel/attribute"
)

// ComboKeyAuthenticator handles the combo exchange: a client holding a valid
// session key trades it for a fresh combo token used for gameplay-server
// handoff. The combo token rotates independently of the session key and
// never substitutes for it.
type ComboKeyAuthenticator struct {
	Deps
}

// NewComboKeyAuthenticator builds the combo variant.
func NewComboKeyAuthenticator(deps Deps) *ComboKeyAuthenticator {
	return &ComboKeyAuthenticator{Deps: deps}
}

// Authenticate validates the nested login payload and mints a fresh combo
// token on success.
func (a *ComboKeyAuthenticator) Authenticate(ctx context.Context, req Request) ComboResult {
	ctx, span := tracer.Start(ctx, "auth.ComboKey")
	defer span.End()

	log := a.logger().With("authenticator", "combo", "addr", req.RemoteAddr)

	if req.Combo == nil {
		log.Error("combo exchange without credential payload")
		return comboFailure(i18n.T("dispatch.account.session_key_error"))
	}

	decision := a.Gate.Check(req.Headers, false)
	if !decision.Unknown {
		log.Info("combo exchange attempt",
			"version", decision.Version, "os", decision.OS, "agent", req.Headers.UserAgent)
	}
	if !decision.Match {
		span.SetAttributes(rejectAttr(apperrors.CodeVersionRejected))
		return comboFailure(versionRejection("ComboKeyAuthenticator", deniedCombo, a.Gate, decision))
	}

	if !a.Guard.Admit() {
		log.Info("combo exchange rejected: server full")
		span.SetAttributes(rejectAttr(apperrors.CodeCapacityExceeded))
		return comboFailure(i18n.T("dispatch.account.server_max_player_limit"))
	}

	acct, err := a.Directory.GetAccountByID(ctx, req.Combo.UID)
	if err != nil || acct.SessionKey == "" || acct.SessionKey != req.Combo.Token {
		log.Info(i18n.T("dispatch.account.combo_token_error", req.RemoteAddr),
			"uid", req.Combo.UID, "token", maskToken(req.Combo.Token))
		span.SetAttributes(rejectAttr(apperrors.CodeCredentialMismatch))
		return comboFailure(i18n.T("dispatch.account.session_key_error"))
	}

	comboToken, err := acct.MintComboToken()
	if err != nil {
		log.Error("combo token mint failed", "error", err)
		return comboFailure(i18n.T("dispatch.account.session_key_error"))
	}
	if err := a.Directory.UpdateAccount(ctx, acct); err != nil {
		log.Error("combo token persist failed", "error", err)
		return comboFailure(i18n.T("dispatch.account.session_key_error"))
	}

	log.Info(i18n.T("dispatch.account.combo_token_success", req.RemoteAddr))
	span.SetAttributes(attribute.Int64("uid", acct.ID))
	return ComboResult{
		Retcode: RetSuccess,
		Message: "OK",
		Data: ComboData{
			OpenID:     acct.ID,
			ComboID:    ComboID,
			ComboToken: comboToken,
		},
	}
}

func comboFailure(message string) ComboResult {
	return ComboResult{Retcode: RetFailure, Message: message}
}
