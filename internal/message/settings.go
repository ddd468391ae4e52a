package message

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type PolicyKind string

const (
	Scrolling  PolicyKind = "scrolling"
	Pagination PolicyKind = "pagination"
)

// ParsePolicyKind accepts the policy name in any case.
func ParsePolicyKind(s string) (PolicyKind, error) {
	switch PolicyKind(strings.ToLower(strings.TrimSpace(s))) {
	case Scrolling:
		return Scrolling, nil
	case Pagination:
		return Pagination, nil
	}
	return "", fmt.Errorf("unknown dequeue policy %q (must be scrolling or pagination)", s)
}

// Settings configures a Queue.
type Settings struct {
	// DisplayBudget is the maximum caption length in characters.
	DisplayBudget int
	Policy        PolicyKind
	// MaxWordsPerTick caps soft-expiry evictions per Render under Scrolling.
	// Zero leaves eviction to hard expiry alone.
	MaxWordsPerTick int
	// LookaheadPadding is the room kept free for the live paragraph to grow into.
	LookaheadPadding int
	SoftLifetime     Lifetime
	HardLifetime     Lifetime
	// PageContextWords is how many words survive a page eviction.
	PageContextWords int
	UsePagePrefix    bool
}

func DefaultSettings() Settings {
	return Settings{
		DisplayBudget:    144,
		Policy:           Pagination,
		MaxWordsPerTick:  10,
		LookaheadPadding: 24,
		SoftLifetime:     Finite(5 * time.Second),
		HardLifetime:     Finite(16 * time.Second),
		PageContextWords: 1,
		UsePagePrefix:    false,
	}
}

// Unthrottled is a MaxWordsPerTick value that never limits eviction.
const Unthrottled = math.MaxInt

// lookaheadTarget is the length the live suffix has to fit in before the
// lookahead pass stops pushing words to the backlog. A padding that leaves no
// room is ignored.
func (s Settings) lookaheadTarget() int {
	if s.LookaheadPadding <= 0 || s.LookaheadPadding >= s.DisplayBudget {
		return s.DisplayBudget
	}
	return s.DisplayBudget - s.LookaheadPadding
}
