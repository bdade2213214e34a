// Package session tracks the live online count the capacity guard reads.
package session

import "sync/atomic"

// Counter is a process-local tally of online players, maintained by the
// hosting session manager as clients attach to and leave gameplay servers.
// Reads are approximate: concurrent logins may both observe free capacity,
// and exact enforcement belongs to the session manager.
type Counter struct {
	online atomic.Int64
}

// Connect records one more online player.
func (c *Counter) Connect() {
	c.online.Add(1)
}

// Disconnect records one player leaving. The count never goes below zero.
func (c *Counter) Disconnect() {
	for {
		current := c.online.Load()
		if current <= 0 {
			return
		}
		if c.online.CompareAndSwap(current, current-1) {
			return
		}
	}
}

// Online reports the current online player count.
func (c *Counter) Online() int {
	return int(c.online.Load())
}
