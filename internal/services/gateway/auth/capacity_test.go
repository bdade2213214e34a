package auth

import "testing"

type fixedCounter int

func (c fixedCounter) Online() int { return int(c) }

func TestCapacityGuard_Unlimited(t *testing.T) {
	guard := CapacityGuard{MaxPlayers: UnlimitedPlayers, Counter: fixedCounter(1_000_000)}
	if !guard.Admit() {
		t.Fatal("unlimited sentinel must always admit")
	}
}

func TestCapacityGuard_BelowLimit(t *testing.T) {
	guard := CapacityGuard{MaxPlayers: 10, Counter: fixedCounter(9)}
	if !guard.Admit() {
		t.Fatal("expected admission below the cap")
	}
}

func TestCapacityGuard_AtLimit(t *testing.T) {
	guard := CapacityGuard{MaxPlayers: 10, Counter: fixedCounter(10)}
	if guard.Admit() {
		t.Fatal("expected rejection at the cap")
	}
}

func TestCapacityGuard_NilCounter(t *testing.T) {
	guard := CapacityGuard{MaxPlayers: 10}
	if !guard.Admit() {
		t.Fatal("nil counter admits")
	}
}
