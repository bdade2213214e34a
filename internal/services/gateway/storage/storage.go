// Package storage defines the account directory the gateway depends on.
//
// The gateway consumes the directory, it does not own it: uniqueness of ids
// and names, and resolution of racing first-time creations, are directory
// invariants.
package storage

import (
	"context"

	apperrors "github.com/lunargate/lunargate/internal/platform/errors"
	"github.com/lunargate/lunargate/internal/services/gateway/domain/account"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrAlreadyExists indicates a uniqueness conflict on create.
var ErrAlreadyExists = apperrors.New(apperrors.CodeAlreadyExists, "record already exists")

// AccountDirectory persists game accounts.
type AccountDirectory interface {
	// GetAccountByName resolves an account by its unique username.
	GetAccountByName(ctx context.Context, username string) (account.Account, error)
	// GetAccountByID resolves an account by its unique numeric id.
	GetAccountByID(ctx context.Context, id int64) (account.Account, error)
	// CreateAccount persists a new account and returns it with an assigned id.
	CreateAccount(ctx context.Context, a account.Account) (account.Account, error)
	// UpdateAccount persists credential and profile changes for an existing account.
	UpdateAccount(ctx context.Context, a account.Account) error
	// DeleteAccount removes an account by id.
	DeleteAccount(ctx context.Context, id int64) error
}
