package portal

import (
	"testing"
	"time"
)

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		name    string
		backoff Backoff
		attempt int
		want    time.Duration
	}{
		{"Default attempt 0", DefaultBackoff(), 0, time.Second},
		{"Default attempt 1", DefaultBackoff(), 1, 2 * time.Second},
		{"Default attempt 2", DefaultBackoff(), 2, 4 * time.Second},
		{"Default attempt 4", DefaultBackoff(), 4, 16 * time.Second},
		{"Default capped at max", DefaultBackoff(), 5, 30 * time.Second},
		{"Default far beyond cap", DefaultBackoff(), 20, 30 * time.Second},
		{"Negative attempt treated as zero", DefaultBackoff(), -3, time.Second},
		{
			"Custom multiplier",
			Backoff{InitialDelay: 100 * time.Millisecond, Multiplier: 3, MaxDelay: 10 * time.Second},
			2,
			900 * time.Millisecond,
		},
		{
			"No cap when MaxDelay unset",
			Backoff{InitialDelay: time.Second, Multiplier: 2},
			6,
			64 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.backoff.Delay(tt.attempt); got != tt.want {
				t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}
