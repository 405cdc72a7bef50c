package portal

import (
	"math"
	"time"
)

// Backoff computes the delay before a retry. Deterministic exponential
// growth capped at MaxDelay; no jitter.
type Backoff struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
}

// DefaultBackoff returns the portal defaults: 1s initial, doubling, capped
// at 30s.
func DefaultBackoff() Backoff {
	return Backoff{
		InitialDelay: time.Second,
		Multiplier:   2,
		MaxDelay:     30 * time.Second,
	}
}

// Delay returns the pause before retrying after the given zero-based
// attempt: min(InitialDelay * Multiplier^attempt, MaxDelay).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := float64(b.InitialDelay) * math.Pow(b.Multiplier, float64(attempt))
	if max := float64(b.MaxDelay); b.MaxDelay > 0 && d > max {
		return b.MaxDelay
	}
	return time.Duration(d)
}
