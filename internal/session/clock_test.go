package session

import (
	"testing"
	"time"
)

func TestExpired_Threshold(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		want    bool
	}{
		{0, false},
		{time.Second, false},
		{23 * time.Hour, false},
		{24 * time.Hour, false}, // exactamente 24h: NO expirada (estricto)
		{24*time.Hour + time.Millisecond, true},
		{25 * time.Hour, true},
		{90_000_000 * time.Millisecond, true}, // ~25h
	}
	for _, c := range cases {
		if got := Expired(c.elapsed); got != c.want {
			t.Fatalf("Expired(%v) = %v, want %v", c.elapsed, got, c.want)
		}
	}
}

func TestClock_Elapsed(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	clk := NewClockAt(func() time.Time { return now })

	if got := clk.Elapsed(now.Add(-90 * time.Minute)); got != 90*time.Minute {
		t.Fatalf("elapsed = %v, want 90m", got)
	}
	// start cero: sin inicio registrado
	if got := clk.Elapsed(time.Time{}); got != 0 {
		t.Fatalf("elapsed for zero start = %v, want 0", got)
	}
	// start en el futuro (skew): clamp a 0
	if got := clk.Elapsed(now.Add(time.Minute)); got != 0 {
		t.Fatalf("elapsed for future start = %v, want 0", got)
	}
}

func TestFormatElapsed_Tiers(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{30 * time.Second, "30s"},
		{59 * time.Second, "59s"},
		{time.Minute, "1m 0s"},
		{45*time.Minute + 12*time.Second, "45m 12s"},
		// con horas nunca aparecen segundos
		{time.Hour, "1h 0m"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{2*time.Hour + 15*time.Minute + 59*time.Second, "2h 15m"},
		{26 * time.Hour, "26h 0m"},
		{-5 * time.Second, "0s"},
	}
	for _, c := range cases {
		if got := FormatElapsed(c.d); got != c.want {
			t.Fatalf("FormatElapsed(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}
