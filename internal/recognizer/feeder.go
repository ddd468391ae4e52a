package recognizer

import (
	"sync"

	"github.com/leonardotrapani/hyprcaption/internal/text"
)

// Target receives parsed paragraphs; *message.Queue implements it.
type Target interface {
	SetLiveParagraph(p text.Paragraph)
	FinalizeLiveParagraph()
}

type FeederOptions struct {
	Capitalize bool
	KeepURLs   bool
}

// Feeder applies recognizer events to a Target. Handle is serialized so a
// set/finalize pair from one event is never interleaved with another event.
type Feeder struct {
	target Target

	mu         sync.Mutex
	capitalize bool
	live       text.Grammar
	final      text.Grammar
}

func NewFeeder(target Target, opts FeederOptions) *Feeder {
	f := &Feeder{target: target}
	f.SetOptions(opts)
	return f
}

func (f *Feeder) SetOptions(opts FeederOptions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.capitalize = opts.Capitalize
	f.live = text.NewGrammar(true, opts.KeepURLs)
	f.final = text.NewGrammar(false, opts.KeepURLs)
}

func (f *Feeder) Handle(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := ev.Text
	if f.capitalize {
		s = text.Capitalize(s)
	}

	grammar := f.live
	if ev.IsFinal || ev.CompleteWord {
		grammar = f.final
	}

	f.target.SetLiveParagraph(grammar.Parse(s))
	if ev.IsFinal {
		f.target.FinalizeLiveParagraph()
	}
}
