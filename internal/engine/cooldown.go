package engine

import "time"

// DefaultCooldown is the minimum spacing between two order submissions.
const DefaultCooldown = 60 * time.Second

// cooldownGate is the sole throttle preventing order storms when several
// branches trigger on the same observation. Every candidate order checks
// the gate against the timestamp of the most recent submission.
type cooldownGate struct {
	cooldown time.Duration
	// last is zero until the first order is submitted.
	last time.Time
}

func newCooldownGate(cooldown time.Duration) *cooldownGate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &cooldownGate{cooldown: cooldown}
}

// allowed reports whether an order may be submitted at now.
func (g *cooldownGate) allowed(now time.Time) bool {
	return g.last.IsZero() || now.Sub(g.last) >= g.cooldown
}

// mark records a successful submission at now.
func (g *cooldownGate) mark(now time.Time) {
	g.last = now
}
