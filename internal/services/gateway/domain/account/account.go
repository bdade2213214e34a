// Package account provides the gateway's view of a game account.
package account

import (
	"regexp"
	"strings"
	"time"

	apperrors "github.com/lunargate/lunargate/internal/platform/errors"
	"github.com/lunargate/lunargate/internal/platform/random"
)

const (
	// MaxUsernameLength bounds plain usernames accepted at login.
	MaxUsernameLength = 50

	// sessionKeyBytes and comboTokenBytes size the raw entropy behind each
	// credential before hex encoding.
	sessionKeyBytes = 32
	comboTokenBytes = 32
)

var (
	// ErrInvalidIdentifier indicates a login identifier that is neither a
	// plain username nor an email address.
	ErrInvalidIdentifier = apperrors.New(apperrors.CodeInvalidIdentifier, "identifier must be a username or an email address")

	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9_!#$%&'*+/=?` + "`" + `{|}~^.\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Account is an authenticated game identity.
//
// The session key is the primary long-lived credential and rotates on every
// successful password login. The combo token is a secondary credential minted
// per combo exchange for gameplay-server handoff; the two never substitute
// for one another.
type Account struct {
	ID         int64
	Username   string
	Email      string
	SessionKey string
	ComboToken string
	// Permissions carries elevated rights. Auto-created accounts get none.
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateIdentifier enforces the login identifier rule: a bounded
// `[A-Za-z0-9_]+` username or an email address.
func ValidateIdentifier(identifier string) error {
	if identifier == "" {
		return ErrInvalidIdentifier
	}
	if len(identifier) <= MaxUsernameLength && usernamePattern.MatchString(identifier) {
		return nil
	}
	if emailPattern.MatchString(identifier) {
		return nil
	}
	return ErrInvalidIdentifier
}

// New builds an account shell for the store to assign an id to.
// Email is derived when the username already is an address.
func New(username string, now func() time.Time) Account {
	if now == nil {
		now = time.Now
	}
	email := ""
	if strings.Contains(username, "@") {
		email = username
	}
	createdAt := now().UTC()
	return Account{
		Username:  username,
		Email:     email,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// RotateSessionKey replaces the session key with a fresh one and returns it.
func (a *Account) RotateSessionKey() (string, error) {
	key, err := random.NewToken(sessionKeyBytes)
	if err != nil {
		return "", err
	}
	a.SessionKey = key
	return key, nil
}

// MintComboToken replaces the combo token with a fresh one and returns it.
// The minted token is independent of the session key.
func (a *Account) MintComboToken() (string, error) {
	token, err := random.NewToken(comboTokenBytes)
	if err != nil {
		return "", err
	}
	a.ComboToken = token
	return token, nil
}
