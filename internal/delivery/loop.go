// Package delivery polls the caption engine at a bounded rate and pushes
// changed captions to a transport.
package delivery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// DefaultRateLimit matches the VRChat chatbox throttle.
const DefaultRateLimit = 1300 * time.Millisecond

// Source is the engine side of the loop.
type Source interface {
	Render() string
	Finished() bool
}

// Sender is the transport side of the loop.
type Sender interface {
	Send(text string, composing bool) error
}

type Stats struct {
	Sent     int
	Failed   int
	LastText string
	LastSent time.Time
}

type Loop struct {
	source  Source
	limiter *rate.Limiter

	mu        sync.Mutex
	transport Sender
	rateLimit time.Duration
	cancel    context.CancelFunc
	done      chan struct{}
	last      string
	stats     Stats
}

// New builds a stopped loop. A non-positive rate limit falls back to DefaultRateLimit.
func New(source Source, transport Sender, rateLimit time.Duration) *Loop {
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}
	return &Loop{
		source:    source,
		transport: transport,
		rateLimit: rateLimit,
		limiter:   rate.NewLimiter(rate.Every(rateLimit), 1),
	}
}

// Start launches the loop goroutine. It does nothing while the loop is running.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.isRunning() {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done
	go l.run(runCtx, done)
}

// Stop cancels the loop and waits for it to exit, or for ctx to end first.
// Stopping a stopped loop is a no-op.
func (l *Loop) Stop(ctx context.Context) error {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	if done == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("wait for delivery loop: %w", ctx.Err())
	}

	l.mu.Lock()
	if l.done == done {
		l.done = nil
		l.cancel = nil
	}
	l.mu.Unlock()
	return nil
}

func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isRunning()
}

func (l *Loop) isRunning() bool {
	if l.done == nil {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}

// SetRateLimit changes the pacing; it applies from the next wait on.
func (l *Loop) SetRateLimit(d time.Duration) {
	if d <= 0 {
		d = DefaultRateLimit
	}
	l.mu.Lock()
	l.rateLimit = d
	l.mu.Unlock()
	l.limiter.SetLimit(rate.Every(d))
}

func (l *Loop) RateLimit() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rateLimit
}

// SetTransport swaps the transport. The next tick resends the current caption.
func (l *Loop) SetTransport(t Sender) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transport = t
	l.last = ""
}

func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	log.Infof("Delivery: loop started, rate limit %s", l.RateLimit())
	for {
		if err := l.limiter.Wait(ctx); err != nil {
			log.Infof("Delivery: loop stopped")
			return
		}
		l.tick()
	}
}

// tick sends the current caption unless it is blank or unchanged. A failed
// send is not retried; the next tick renders again.
func (l *Loop) tick() {
	text := l.source.Render()
	if strings.TrimSpace(text) == "" {
		return
	}

	l.mu.Lock()
	transport := l.transport
	unchanged := text == l.last
	l.mu.Unlock()
	if unchanged || transport == nil {
		return
	}

	composing := !l.source.Finished()
	err := transport.Send(text, composing)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.stats.Failed++
		log.Warnf("Delivery: send failed: %v", err)
		return
	}
	l.last = text
	l.stats.Sent++
	l.stats.LastText = text
	l.stats.LastSent = time.Now()
	log.Debugf("Delivery: sent %q (composing=%t)", text, composing)
}
