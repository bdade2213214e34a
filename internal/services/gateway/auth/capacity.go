package auth

// UnlimitedPlayers is the sentinel that disables the admission cap.
const UnlimitedPlayers = -1

// OnlineCounter reports the live online player count. The gateway reads it,
// the hosting session manager maintains it.
type OnlineCounter interface {
	Online() int
}

// CapacityGuard is the advisory admission check. Concurrent logins may race
// and both observe free capacity; exact enforcement belongs to the session
// manager, not the gateway.
type CapacityGuard struct {
	// MaxPlayers caps admissions; UnlimitedPlayers (or lower) disables it.
	MaxPlayers int
	// Counter supplies the live count. A nil counter admits everyone.
	Counter OnlineCounter
}

// Admit reports whether one more login may proceed.
func (g CapacityGuard) Admit() bool {
	if g.MaxPlayers <= UnlimitedPlayers {
		return true
	}
	if g.Counter == nil {
		return true
	}
	return g.Counter.Online() < g.MaxPlayers
}
