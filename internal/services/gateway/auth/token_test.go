package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/lunargate/lunargate/internal/services/gateway/domain/account"
)

func seedAccount(t *testing.T, dir *fakeDirectory, username string) account.Account {
	t.Helper()
	a := account.New(username, nil)
	if _, err := a.RotateSessionKey(); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	created, err := dir.CreateAccount(context.Background(), a)
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return created
}

func TestTokenAuthenticate_ExactMatch(t *testing.T) {
	dir := newFakeDirectory()
	seeded := seedAccount(t, dir, "alice123")
	a := NewTokenAuthenticator(testDeps(t, dir, UnlimitedPlayers, 0, true))

	result := a.Authenticate(context.Background(), Request{
		Headers:    gameHeaders(),
		RemoteAddr: "10.0.0.7",
		Token:      &TokenRequest{UID: seeded.ID, Token: seeded.SessionKey},
	})

	if result.Retcode != RetSuccess {
		t.Fatalf("expected success, got %d %q", result.Retcode, result.Message)
	}
	if result.Data.Account.Token != seeded.SessionKey {
		t.Fatal("token login must return the existing session key, not a fresh one")
	}
}

func TestTokenAuthenticate_SingleCharacterMutationFails(t *testing.T) {
	dir := newFakeDirectory()
	seeded := seedAccount(t, dir, "alice123")
	a := NewTokenAuthenticator(testDeps(t, dir, UnlimitedPlayers, 0, true))

	mutated := []byte(seeded.SessionKey)
	if mutated[0] == 'f' {
		mutated[0] = '0'
	} else {
		mutated[0] = 'f'
	}

	result := a.Authenticate(context.Background(), Request{
		Headers:    gameHeaders(),
		RemoteAddr: "10.0.0.7",
		Token:      &TokenRequest{UID: seeded.ID, Token: string(mutated)},
	})

	if result.Retcode != RetFailure {
		t.Fatalf("expected mutated token to fail, got %d", result.Retcode)
	}
}

func TestTokenAuthenticate_UnknownUID(t *testing.T) {
	dir := newFakeDirectory()
	a := NewTokenAuthenticator(testDeps(t, dir, UnlimitedPlayers, 0, true))

	result := a.Authenticate(context.Background(), Request{
		Headers:    gameHeaders(),
		RemoteAddr: "10.0.0.7",
		Token:      &TokenRequest{UID: 404, Token: "anything"},
	})

	if result.Retcode != RetFailure {
		t.Fatalf("expected failure for unknown uid, got %d", result.Retcode)
	}
}

func TestTokenAuthenticate_EmptyStoredKeyNeverMatches(t *testing.T) {
	dir := newFakeDirectory()
	created, err := dir.CreateAccount(context.Background(), account.New("fresh", nil))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	a := NewTokenAuthenticator(testDeps(t, dir, UnlimitedPlayers, 0, true))

	result := a.Authenticate(context.Background(), Request{
		Headers:    gameHeaders(),
		RemoteAddr: "10.0.0.7",
		Token:      &TokenRequest{UID: created.ID, Token: ""},
	})

	if result.Retcode != RetFailure {
		t.Fatal("an account without a session key must reject every token")
	}
}

func TestTokenAuthenticate_VersionMismatch(t *testing.T) {
	dir := newFakeDirectory()
	seeded := seedAccount(t, dir, "alice123")
	a := NewTokenAuthenticator(testDeps(t, dir, UnlimitedPlayers, 0, true))

	headers := gameHeaders()
	headers.Version = "1.4.50"
	result := a.Authenticate(context.Background(), Request{
		Headers:    headers,
		RemoteAddr: "10.0.0.7",
		Token:      &TokenRequest{UID: seeded.ID, Token: seeded.SessionKey},
	})

	if result.Retcode != RetFailure || !strings.Contains(result.Message, "1.4.50") {
		t.Fatalf("expected version rejection naming 1.4.50, got %d %q", result.Retcode, result.Message)
	}
}

func TestTokenAuthenticate_CapacityExceeded(t *testing.T) {
	dir := newFakeDirectory()
	seeded := seedAccount(t, dir, "alice123")
	a := NewTokenAuthenticator(testDeps(t, dir, 3, 3, true))

	result := a.Authenticate(context.Background(), Request{
		Headers:    gameHeaders(),
		RemoteAddr: "10.0.0.7",
		Token:      &TokenRequest{UID: seeded.ID, Token: seeded.SessionKey},
	})

	if result.Retcode != RetFailure {
		t.Fatalf("expected capacity rejection, got %d", result.Retcode)
	}
}
