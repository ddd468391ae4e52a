// Package message merges a live, still-changing utterance with finalized
// words into a single caption that never exceeds a character budget.
package message

import (
	"strings"
	"sync"
	"time"

	"github.com/leonardotrapani/hyprcaption/internal/text"
)

// Cursor marks the first word of the live paragraph that has not been pushed
// to the backlog. Word may equal the sentence length, meaning the whole
// sentence was consumed.
type Cursor struct {
	Sentence int
	Word     int
}

type stagedWord struct {
	text   string
	length int
	soft   Expiry
	hard   Expiry
}

// Stats is a snapshot of the queue state.
type Stats struct {
	Staged     int
	Backlog    int
	Length     int
	LiveLength int
	PagePrefix bool
	Policy     PolicyKind
}

// Queue is the caption buffer. The producer calls SetLiveParagraph and
// FinalizeLiveParagraph, the consumer calls Render; every method holds the
// queue lock for its full duration.
type Queue struct {
	mu       sync.Mutex
	settings Settings
	policy   policy
	now      func() time.Time

	live   text.Paragraph
	cursor Cursor

	backlog []text.Word
	staged  []stagedWord
	// length is the sum of staged word lengths, plus one while pagePrefix is set.
	length int

	pagePrefix  bool
	hadTextLast bool
}

func New(settings Settings) *Queue {
	return &Queue{
		settings: settings,
		policy:   newPolicy(settings.Policy),
		now:      time.Now,
	}
}

// Reconfigure swaps the settings while keeping every queued word.
func (q *Queue) Reconfigure(settings Settings) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.settings = settings
	q.policy = newPolicy(settings.Policy)
	if q.pagePrefix && (settings.Policy != Pagination || !settings.UsePagePrefix) {
		q.pagePrefix = false
		q.length--
	}
}

func (q *Queue) Settings() Settings {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.settings
}

// SetLiveParagraph replaces the live paragraph. All other work is deferred to Render.
func (q *Queue) SetLiveParagraph(p text.Paragraph) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.live = p
}

func (q *Queue) LiveParagraph() text.Paragraph {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.live
}

// FinalizeLiveParagraph moves every unconsumed live word to the backlog and
// resets the live paragraph. Calling it with nothing live is a no-op.
func (q *Queue) FinalizeLiveParagraph() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.clampCursor()
	q.eachLiveWord(func(_ Cursor, w text.Word) bool {
		q.backlog = append(q.backlog, w)
		return true
	})

	q.live = text.Paragraph{}
	q.cursor = Cursor{}
}

// Finished reports whether nothing is waiting to be shown: no backlog and no live text.
func (q *Queue) Finished() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog) == 0 && q.live.IsEmpty()
}

// Clear drops all queued, staged and live text.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.live = text.Paragraph{}
	q.cursor = Cursor{}
	q.backlog = nil
	q.staged = nil
	q.length = 0
	q.pagePrefix = false
	q.hadTextLast = false
}

func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	return Stats{
		Staged:     len(q.staged),
		Backlog:    len(q.backlog),
		Length:     q.length,
		LiveLength: q.live.Length,
		PagePrefix: q.pagePrefix,
		Policy:     q.settings.Policy,
	}
}

// Render computes the caption to display right now. It is safe to call at
// any rate; with a frozen clock repeated calls return the same text.
func (q *Queue) Render() string {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	q.clampCursor()

	// Only make room when something is waiting for it.
	if len(q.staged) > 0 && (len(q.backlog) > 0 || !q.live.IsEmpty()) {
		q.policy.evict(q, now)
	}
	q.fitLive()
	q.admit(now)

	var b strings.Builder
	for _, w := range q.staged {
		b.WriteString(w.text)
	}
	showPrefix := q.pagePrefix
	showSuffix := len(q.backlog) > 0

	q.hadTextLast = false
	if len(q.backlog) == 0 && !q.live.IsEmpty() {
		if remaining := q.liveSuffixLength(); remaining > 0 {
			available := q.available()
			taken := 0
			q.eachLiveWord(func(_ Cursor, w text.Word) bool {
				if taken+w.Length > available {
					return false
				}
				taken += w.Length
				b.WriteString(w.Text)
				return true
			})
			showSuffix = remaining > taken
			q.hadTextLast = taken > 0
		}
	}

	message := strings.TrimSpace(b.String())
	if message == "" {
		return ""
	}
	if showPrefix {
		message = "-" + message
	}
	if showSuffix {
		message += "-"
	}
	return message
}

// available is the budget left after the staged words.
func (q *Queue) available() int {
	return q.settings.DisplayBudget - q.length
}

// fitLive pushes live words to the backlog until the remaining live text fits
// the lookahead target, as far as the policy allows.
func (q *Queue) fitLive() {
	if q.live.IsEmpty() {
		q.cursor = Cursor{}
		return
	}

	q.clampCursor()
	suffix := q.liveSuffixLength()
	if suffix == 0 {
		return
	}

	available := q.available()
	target := q.settings.lookaheadTarget()
	if q.policy.keepLive(suffix, available, target) {
		return
	}

	cut := false
	q.eachLiveWord(func(at Cursor, w text.Word) bool {
		if q.policy.cutAt(suffix, available, target, w.Length) {
			q.cursor = at
			cut = true
			return false
		}
		q.backlog = append(q.backlog, w)
		suffix -= w.Length
		available -= w.Length
		return true
	})
	if !cut {
		q.cursor = q.endCursor()
	}
}

// admit moves backlog words into the staged queue while they fit. A word
// longer than the whole budget is admitted anyway so it cannot block the queue.
func (q *Queue) admit(now time.Time) {
	for len(q.backlog) > 0 {
		w := q.backlog[0]
		if q.length+w.Length > q.settings.DisplayBudget && w.Length <= q.settings.DisplayBudget {
			return
		}
		q.backlog[0] = text.Word{}
		q.backlog = q.backlog[1:]
		if len(q.backlog) == 0 {
			q.backlog = nil
		}

		base := At(now)
		if n := len(q.staged); n > 0 {
			base = Later(base, q.staged[n-1].soft)
		}
		soft := base.Add(q.settings.SoftLifetime)
		q.staged = append(q.staged, stagedWord{
			text:   w.Text,
			length: w.Length,
			soft:   soft,
			hard:   soft.Add(q.settings.HardLifetime),
		})
		q.length += w.Length
	}
}

// popStaged removes the oldest staged word.
func (q *Queue) popStaged() {
	q.length -= q.staged[0].length
	q.staged[0] = stagedWord{}
	q.staged = q.staged[1:]
	if len(q.staged) == 0 {
		q.staged = nil
	}
}

// pageFull reports whether the next pending word no longer fits on the page.
func (q *Queue) pageFull() bool {
	available := q.available()
	if len(q.backlog) > 0 && q.backlog[0].Length > available {
		return true
	}
	next := 0
	q.eachLiveWord(func(_ Cursor, w text.Word) bool {
		next = w.Length
		return false
	})
	return next > available
}

// clampCursor keeps the cursor inside the live paragraph after it was
// replaced by a shorter one, falling back to its last word.
func (q *Queue) clampCursor() {
	sentences := q.live.Sentences
	if len(sentences) == 0 {
		q.cursor = Cursor{}
		return
	}
	if q.cursor.Sentence >= len(sentences) {
		last := len(sentences) - 1
		q.cursor = Cursor{Sentence: last, Word: max(0, len(sentences[last].Words)-1)}
		return
	}
	if words := len(sentences[q.cursor.Sentence].Words); q.cursor.Word > words {
		q.cursor.Word = max(0, words-1)
	}
}

func (q *Queue) endCursor() Cursor {
	last := len(q.live.Sentences) - 1
	if last < 0 {
		return Cursor{}
	}
	return Cursor{Sentence: last, Word: len(q.live.Sentences[last].Words)}
}

// eachLiveWord walks the live paragraph from the cursor until fn returns false.
func (q *Queue) eachLiveWord(fn func(at Cursor, w text.Word) bool) {
	sentences := q.live.Sentences
	for s := q.cursor.Sentence; s < len(sentences); s++ {
		start := 0
		if s == q.cursor.Sentence {
			start = q.cursor.Word
		}
		words := sentences[s].Words
		for w := start; w < len(words); w++ {
			if !fn(Cursor{Sentence: s, Word: w}, words[w]) {
				return
			}
		}
	}
}

func (q *Queue) liveSuffixLength() int {
	n := 0
	q.eachLiveWord(func(_ Cursor, w text.Word) bool {
		n += w.Length
		return true
	})
	return n
}
