package auth

import (
	"context"
	"log/slog"
	"testing"

	"github.com/lunargate/lunargate/internal/services/gateway/domain/account"
	"github.com/lunargate/lunargate/internal/services/gateway/storage"
)

// fakeDirectory is an in-memory AccountDirectory for authenticator tests.
type fakeDirectory struct {
	accounts  map[int64]account.Account
	nextID    int64
	getErr    error
	createErr error
	updateErr error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{accounts: make(map[int64]account.Account)}
}

func (d *fakeDirectory) GetAccountByName(_ context.Context, username string) (account.Account, error) {
	if d.getErr != nil {
		return account.Account{}, d.getErr
	}
	for _, a := range d.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return account.Account{}, storage.ErrNotFound
}

func (d *fakeDirectory) GetAccountByID(_ context.Context, id int64) (account.Account, error) {
	if d.getErr != nil {
		return account.Account{}, d.getErr
	}
	a, ok := d.accounts[id]
	if !ok {
		return account.Account{}, storage.ErrNotFound
	}
	return a, nil
}

func (d *fakeDirectory) CreateAccount(_ context.Context, a account.Account) (account.Account, error) {
	if d.createErr != nil {
		return account.Account{}, d.createErr
	}
	for _, existing := range d.accounts {
		if existing.Username == a.Username {
			return account.Account{}, storage.ErrAlreadyExists
		}
	}
	d.nextID++
	a.ID = d.nextID
	d.accounts[a.ID] = a
	return a, nil
}

func (d *fakeDirectory) UpdateAccount(_ context.Context, a account.Account) error {
	if d.updateErr != nil {
		return d.updateErr
	}
	if _, ok := d.accounts[a.ID]; !ok {
		return storage.ErrNotFound
	}
	d.accounts[a.ID] = a
	return nil
}

func (d *fakeDirectory) DeleteAccount(_ context.Context, id int64) error {
	if _, ok := d.accounts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(d.accounts, id)
	return nil
}

func testDeps(t *testing.T, dir storage.AccountDirectory, maxPlayers int, online int, autoCreate bool) Deps {
	t.Helper()
	return Deps{
		Gate:       VersionGate{Accepted: "2.7.0"},
		Guard:      CapacityGuard{MaxPlayers: maxPlayers, Counter: fixedCounter(online)},
		Directory:  dir,
		AutoCreate: autoCreate,
		Log:        slog.New(slog.DiscardHandler),
	}
}

func gameHeaders() Headers {
	return Headers{
		Version:   "OSRELWin2.7.0",
		OS:        "Windows%2010",
		UserAgent: "UnityPlayer/2019.4.21f1",
	}
}
