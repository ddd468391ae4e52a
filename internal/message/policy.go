package message

import "time"

// policy decides when staged words leave the display and how eagerly live
// words are pushed to the backlog.
type policy interface {
	// evict drops staged words. It only runs when other text waits for room.
	evict(q *Queue, now time.Time)
	// keepLive reports whether the live suffix can stay as it is.
	keepLive(suffix, available, target int) bool
	// cutAt reports whether pushing can stop in front of a word of the given length.
	cutAt(suffix, available, target, wordLength int) bool
}

func newPolicy(kind PolicyKind) policy {
	if kind == Scrolling {
		return scrolling{}
	}
	return pagination{}
}

// scrolling evicts words one by one as they expire, so the caption scrolls.
type scrolling struct{}

func (scrolling) evict(q *Queue, now time.Time) {
	evicted := 0
	for len(q.staged) > 0 {
		head := q.staged[0]
		soft := evicted < q.settings.MaxWordsPerTick && head.soft.Passed(now)
		if !soft && !head.hard.Passed(now) {
			return
		}
		q.popStaged()
		evicted++
	}
}

func (scrolling) keepLive(suffix, _, target int) bool {
	return suffix <= target
}

func (scrolling) cutAt(suffix, _, target, _ int) bool {
	return suffix <= target
}

// pagination replaces the whole display at once when the page is stale,
// keeping a few words of context.
type pagination struct{}

func (pagination) evict(q *Queue, now time.Time) {
	// Don't flip the page while the speaker is still filling it.
	if q.hadTextLast {
		return
	}

	last := q.staged[len(q.staged)-1]
	hardExpired := last.hard.Passed(now)
	if !hardExpired && (!last.soft.Passed(now) || !q.pageFull()) {
		return
	}

	// A hard-expired page is cleared completely, context included.
	removed := false
	for len(q.staged) > 0 && (hardExpired || len(q.staged) > q.settings.PageContextWords || q.staged[0].hard.Passed(now)) {
		q.popStaged()
		removed = true
	}

	usePrefix := q.settings.UsePagePrefix
	switch {
	case len(q.staged) == 0:
		// The prefix allowance is not tracked by popStaged.
		if removed && !hardExpired && usePrefix {
			q.pagePrefix = true
			q.length = 1
		} else {
			q.pagePrefix = false
			q.length = 0
		}
	case removed && !q.pagePrefix && usePrefix:
		q.pagePrefix = true
		q.length++
	}
}

// keepLive holds the live excerpt as long as the page still has room for all of it.
func (pagination) keepLive(suffix, available, _ int) bool {
	return available > suffix
}

func (pagination) cutAt(suffix, available, target, wordLength int) bool {
	return suffix <= target && available < wordLength
}
