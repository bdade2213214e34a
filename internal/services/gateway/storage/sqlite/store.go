// Package sqlite implements the account directory over SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/lunargate/lunargate/internal/platform/errors"
	"github.com/lunargate/lunargate/internal/platform/storage/sqlitemigrate"
	"github.com/lunargate/lunargate/internal/services/gateway/domain/account"
	"github.com/lunargate/lunargate/internal/services/gateway/storage"
	"github.com/lunargate/lunargate/internal/services/gateway/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store implements gateway persistence over SQLite.
//
// A single SQLite file backs the account directory so credential rotation and
// lookups share the same transaction and visibility boundaries.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.AccountDirectory = (*Store)(nil)

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the account SQLite store and applies bundled migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}

	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

const accountColumns = "id, username, email, session_key, combo_token, permissions, created_at, updated_at"

// GetAccountByName resolves an account by username.
func (s *Store) GetAccountByName(ctx context.Context, username string) (account.Account, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE username = ?", username)
	return scanAccount(row)
}

// GetAccountByID resolves an account by numeric id.
func (s *Store) GetAccountByID(ctx context.Context, id int64) (account.Account, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	return scanAccount(row)
}

// CreateAccount persists a new account, assigning the next free id.
func (s *Store) CreateAccount(ctx context.Context, a account.Account) (account.Account, error) {
	result, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO accounts (username, email, session_key, combo_token, permissions, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.Username, a.Email, a.SessionKey, a.ComboToken,
		joinPermissions(a.Permissions), toMillis(a.CreatedAt), toMillis(a.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return account.Account{}, apperrors.Wrap(apperrors.CodeAlreadyExists, "record already exists", err)
		}
		return account.Account{}, fmt.Errorf("insert account: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return account.Account{}, fmt.Errorf("account id: %w", err)
	}
	a.ID = id
	return a, nil
}

// UpdateAccount persists credential and profile changes.
func (s *Store) UpdateAccount(ctx context.Context, a account.Account) error {
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE accounts
SET email = ?, session_key = ?, combo_token = ?, permissions = ?, updated_at = ?
WHERE id = ?`,
		a.Email, a.SessionKey, a.ComboToken, joinPermissions(a.Permissions),
		toMillis(time.Now()), a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteAccount removes an account by id.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	result, err := s.sqlDB.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (account.Account, error) {
	var a account.Account
	var permissions string
	var createdAt, updatedAt int64
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.SessionKey, &a.ComboToken,
		&permissions, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return account.Account{}, storage.ErrNotFound
		}
		return account.Account{}, fmt.Errorf("scan account: %w", err)
	}
	a.Permissions = splitPermissions(permissions)
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	return a, nil
}

func joinPermissions(permissions []string) string {
	return strings.Join(permissions, ",")
}

func splitPermissions(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}

func isUniqueViolation(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
