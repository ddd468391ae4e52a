package message

import (
	"fmt"
	"strings"
	"time"
)

// Lifetime is how long a word stays eligible for display: either a finite
// duration or infinite, in which case the matching expiry never passes.
type Lifetime struct {
	d        time.Duration
	infinite bool
}

func Finite(d time.Duration) Lifetime {
	return Lifetime{d: d}
}

func Infinite() Lifetime {
	return Lifetime{infinite: true}
}

func (l Lifetime) IsInfinite() bool {
	return l.infinite
}

// Duration returns the finite duration and false for an infinite lifetime.
func (l Lifetime) Duration() (time.Duration, bool) {
	if l.infinite {
		return 0, false
	}
	return l.d, true
}

func (l Lifetime) String() string {
	if l.infinite {
		return "infinite"
	}
	return l.d.String()
}

func (l Lifetime) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts a Go duration ("5s", "1m30s"), "infinite"/"never",
// or a negative duration, which also means infinite.
func (l *Lifetime) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	switch s {
	case "infinite", "inf", "never":
		*l = Infinite()
		return nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid lifetime %q: %w", s, err)
	}
	if d < 0 {
		*l = Infinite()
		return nil
	}
	*l = Finite(d)
	return nil
}

// Expiry is a deadline that may be "never".
type Expiry struct {
	at    time.Time
	never bool
}

func At(t time.Time) Expiry {
	return Expiry{at: t}
}

func Never() Expiry {
	return Expiry{never: true}
}

func (e Expiry) IsNever() bool {
	return e.never
}

// Passed reports whether now is at or after the deadline.
func (e Expiry) Passed(now time.Time) bool {
	return !e.never && !now.Before(e.at)
}

// Add extends the deadline by a lifetime; anything infinite yields Never.
func (e Expiry) Add(l Lifetime) Expiry {
	if e.never || l.infinite {
		return Never()
	}
	return At(e.at.Add(l.d))
}

// Later returns the later of two expiries.
func Later(a, b Expiry) Expiry {
	switch {
	case a.never:
		return a
	case b.never:
		return b
	case b.at.After(a.at):
		return b
	default:
		return a
	}
}
