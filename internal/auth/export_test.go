package auth

import "time"

// SetClock replaces the gateway's time source.
func (g *Gateway) SetClock(now func() time.Time) { g.now = now }
