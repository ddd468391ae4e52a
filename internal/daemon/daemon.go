package daemon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/leonardotrapani/hyprcaption/internal/bus"
	"github.com/leonardotrapani/hyprcaption/internal/config"
	"github.com/leonardotrapani/hyprcaption/internal/delivery"
	"github.com/leonardotrapani/hyprcaption/internal/message"
	"github.com/leonardotrapani/hyprcaption/internal/notify"
	"github.com/leonardotrapani/hyprcaption/internal/recognizer"
	"github.com/leonardotrapani/hyprcaption/internal/recording"
	"github.com/leonardotrapani/hyprcaption/internal/transport"
)

const shutdownTimeout = 3 * time.Second

type Options struct {
	// Stdin feeds the stdin recognizer source; nil means os.Stdin.
	Stdin io.Reader
	// NewTransport builds the outbound transport; nil means transport.New.
	NewTransport func(transport.Config) (transport.Transport, error)
}

// Daemon owns one caption engine and serves control commands for it.
type Daemon struct {
	cfg          *config.Manager
	stdin        io.Reader
	newTransport func(transport.Config) (transport.Transport, error)

	queue  *message.Queue
	feeder *recognizer.Feeder
	loop   *delivery.Loop

	mu        sync.Mutex
	notifier  notify.Notifier
	transport transport.Transport
	paused    bool
	ctx       context.Context
	cancel    context.CancelFunc

	wg sync.WaitGroup
}

func New(cfg *config.Manager, opts Options) (*Daemon, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.NewTransport == nil {
		opts.NewTransport = transport.New
	}

	c := cfg.GetConfig()
	t, err := opts.NewTransport(c.ToTransportConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	queue := message.New(c.ToQueueSettings())
	d := &Daemon{
		cfg:          cfg,
		stdin:        opts.Stdin,
		newTransport: opts.NewTransport,
		queue:        queue,
		feeder:       recognizer.NewFeeder(queue, c.ToFeederOptions()),
		loop:         delivery.New(queue, t, c.Delivery.RateLimit),
		notifier:     c.ToNotifier(),
		transport:    t,
	}
	cfg.OnChange(d.applyConfig)
	return d, nil
}

// Run serves on the user control socket until a quit command or SIGINT/SIGTERM.
func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := d.cfg.StartWatching(ctx); err != nil {
		log.Warnf("Daemon: config hot reload unavailable: %v", err)
	}
	defer d.cfg.Stop()

	return d.Serve(ctx, ln)
}

// Serve runs the engine and answers requests on ln until ctx ends or a quit
// command arrives. It closes ln.
func (d *Daemon) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.ctx, d.cancel = ctx, cancel
	d.mu.Unlock()
	defer cancel()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	d.loop.Start(ctx)
	d.startRecognizer(ctx, d.cfg.GetConfig())
	d.notify(notify.CaptionStarted)

	log.Infof("Daemon: started, listening on %s", ln.Addr())

	var serveErr error
	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() == nil {
				log.Errorf("Daemon: accept error: %v", err)
				serveErr = fmt.Errorf("accept failed: %w", err)
			}
			break
		}
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.handle(c)
		}()
	}

	log.Infof("Daemon: shutting down")
	cancel()
	d.shutdown()
	return serveErr
}

func (d *Daemon) shutdown() {
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.loop.Stop(stopCtx); err != nil {
		log.Warnf("Daemon: %v", err)
	}
	d.wg.Wait()

	d.mu.Lock()
	t := d.transport
	d.mu.Unlock()
	if err := t.Close(); err != nil {
		log.Warnf("Daemon: failed to close transport: %v", err)
	}
}

func (d *Daemon) startRecognizer(ctx context.Context, c *config.Config) {
	source, err := d.buildSource(c)
	if err != nil {
		log.Errorf("Daemon: recognizer unavailable: %v", err)
		d.notify(notify.RecognizerFailed)
		return
	}
	if source == nil {
		log.Infof("Daemon: no recognizer source, captions come from control commands only")
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		log.Infof("Daemon: recognizer %s started", c.Recognizer.Source)
		if err := recognizer.Pump(ctx, source, d.feeder); err != nil && ctx.Err() == nil {
			log.Errorf("Daemon: recognizer stopped: %v", err)
			d.notify(notify.RecognizerFailed)
		}
	}()
}

func (d *Daemon) buildSource(c *config.Config) (recognizer.Source, error) {
	switch c.Recognizer.Source {
	case config.SourceStdin:
		return recognizer.NewLineSource(d.stdin), nil
	case config.SourceOpenAI:
		recorder := recording.NewRecorder(c.ToRecordingConfig())
		return recognizer.NewWhisperSource(c.ToWhisperConfig(), recorder)
	default:
		return nil, nil
	}
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Warnf("Daemon: client read error: %v", err)
		fmt.Fprint(c, bus.Error(fmt.Errorf("read_error: %w", err)))
		return
	}
	cmd, payload, err := bus.ParseRequest(line)
	if err != nil {
		fmt.Fprint(c, bus.Error(err))
		return
	}

	switch cmd {
	case bus.CmdStatus:
		fmt.Fprint(c, d.status())
	case bus.CmdVersion:
		fmt.Fprint(c, bus.Status("proto", bus.ProtoVer))
	case bus.CmdPause:
		if d.togglePause() {
			fmt.Fprint(c, bus.OK("paused"))
		} else {
			fmt.Fprint(c, bus.OK("resumed"))
		}
	case bus.CmdClear:
		d.queue.Clear()
		fmt.Fprint(c, bus.OK("cleared"))
	case bus.CmdLive:
		d.feeder.Handle(recognizer.Event{Text: payload})
		fmt.Fprint(c, bus.OK("live"))
	case bus.CmdFinal:
		if payload == "" {
			d.queue.FinalizeLiveParagraph()
		} else {
			d.feeder.Handle(recognizer.Event{Text: payload, IsFinal: true})
		}
		fmt.Fprint(c, bus.OK("final"))
	case bus.CmdQuit:
		fmt.Fprint(c, bus.OK("quitting"))
		d.mu.Lock()
		cancel := d.cancel
		d.mu.Unlock()
		cancel()
	default:
		log.Warnf("Daemon: unknown command: %q", cmd)
		fmt.Fprint(c, bus.Error(fmt.Errorf("unknown=%q", cmd)))
	}
}

func (d *Daemon) status() string {
	q := d.queue.Stats()
	l := d.loop.Stats()

	last := "never"
	if !l.LastSent.IsZero() {
		last = humanize.Time(l.LastSent)
	}
	return bus.Status(
		"running", strconv.FormatBool(d.loop.Running()),
		"policy", string(q.Policy),
		"staged", strconv.Itoa(q.Staged),
		"backlog", strconv.Itoa(q.Backlog),
		"length", strconv.Itoa(q.Length),
		"sent", humanize.Comma(int64(l.Sent)),
		"failed", humanize.Comma(int64(l.Failed)),
		"last", strconv.Quote(last),
		"text", strconv.Quote(l.LastText),
	)
}

// togglePause stops or restarts delivery; recognized text keeps queueing
// while paused. It reports whether delivery is now paused.
func (d *Daemon) togglePause() bool {
	d.mu.Lock()
	d.paused = !d.paused
	paused, ctx := d.paused, d.ctx
	d.mu.Unlock()

	if paused {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := d.loop.Stop(stopCtx); err != nil {
			log.Warnf("Daemon: %v", err)
		}
		log.Infof("Daemon: delivery paused")
		d.notify(notify.CaptionPaused)
		return true
	}

	d.loop.Start(ctx)
	log.Infof("Daemon: delivery resumed")
	d.notify(notify.CaptionResumed)
	return false
}

// applyConfig pushes a reloaded config into the running engine.
func (d *Daemon) applyConfig(prev, next *config.Config) {
	log.SetLevel(next.LogLevel())
	d.queue.Reconfigure(next.ToQueueSettings())
	d.feeder.SetOptions(next.ToFeederOptions())
	d.loop.SetRateLimit(next.Delivery.RateLimit)

	if prev.Transport != next.Transport {
		t, err := d.newTransport(next.ToTransportConfig())
		if err != nil {
			log.Errorf("Daemon: keeping previous transport: %v", err)
		} else {
			d.mu.Lock()
			replaced := d.transport
			d.transport = t
			d.mu.Unlock()
			d.loop.SetTransport(t)
			if err := replaced.Close(); err != nil {
				log.Warnf("Daemon: failed to close previous transport: %v", err)
			}
			log.Infof("Daemon: transport switched to %s", next.Transport.Type)
		}
	}

	if prev.Recognizer != next.Recognizer || prev.Recording != next.Recording {
		log.Warnf("Daemon: recognizer settings changed; restart the daemon to apply them")
	}

	d.mu.Lock()
	d.notifier = next.ToNotifier()
	d.mu.Unlock()
	d.notify(notify.ConfigReloaded)
}

func (d *Daemon) notify(mt notify.MessageType) {
	d.mu.Lock()
	n := d.notifier
	d.mu.Unlock()
	go n.Send(mt)
}
