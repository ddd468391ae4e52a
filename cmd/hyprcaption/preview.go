package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/leonardotrapani/hyprcaption/internal/config"
	"github.com/leonardotrapani/hyprcaption/internal/delivery"
	"github.com/leonardotrapani/hyprcaption/internal/message"
	"github.com/leonardotrapani/hyprcaption/internal/recognizer"
	"github.com/leonardotrapani/hyprcaption/internal/transport"
	"github.com/spf13/cobra"
)

// previewTimeout bounds how long preview waits for the queue to drain.
const previewTimeout = 2 * time.Minute

type previewOptions struct {
	WordDelay time.Duration
	// Send uses the configured transport instead of the terminal.
	Send bool
}

func previewCmd() *cobra.Command {
	var configPath string
	var opts previewOptions

	cmd := &cobra.Command{
		Use:   "preview [text...]",
		Short: "Replay text through the caption engine locally",
		Long: `Replay text through the caption engine without a daemon.
Each line (from the arguments, or stdin when none are given) is typed out
word by word as live text and then committed, using the configured caption
settings. Captions are drawn in the terminal unless --send is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg *config.Config
			var err error
			if configPath == "" {
				cfg, err = config.Load()
			} else {
				cfg, err = config.LoadFile(configPath)
			}
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			log.SetLevel(cfg.LogLevel())

			var lines []string
			if len(args) > 0 {
				lines = []string{strings.Join(args, " ")}
			} else {
				lines, err = readLines(os.Stdin)
				if err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var t transport.Transport
			if opts.Send {
				t, err = transport.New(cfg.ToTransportConfig())
				if err != nil {
					return fmt.Errorf("failed to create transport: %w", err)
				}
			} else {
				t = transport.NewConsole(cmd.OutOrStdout())
			}
			defer t.Close()

			return runPreview(ctx, cfg, lines, t, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.config/hyprcaption/config.toml)")
	cmd.Flags().DurationVarP(&opts.WordDelay, "word-delay", "d", 300*time.Millisecond, "delay between spoken words")
	cmd.Flags().BoolVar(&opts.Send, "send", false, "send captions to the configured transport")
	return cmd
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}

// runPreview types each line into a fresh engine as growing partial
// hypotheses, commits it, and returns once everything has been shown.
func runPreview(ctx context.Context, cfg *config.Config, lines []string, sender delivery.Sender, opts previewOptions) error {
	queue := message.New(cfg.ToQueueSettings())
	feeder := recognizer.NewFeeder(queue, cfg.ToFeederOptions())
	loop := delivery.New(queue, sender, cfg.Delivery.RateLimit)

	loop.Start(ctx)
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = loop.Stop(stopCtx)
	}()

	for _, line := range lines {
		words := strings.Fields(line)
		for i := range words {
			feeder.Handle(recognizer.Event{Text: strings.Join(words[:i+1], " ")})
			if !sleep(ctx, opts.WordDelay) {
				return nil
			}
		}
		feeder.Handle(recognizer.Event{Text: line, IsFinal: true})
	}

	return waitDrained(ctx, queue, cfg.Delivery.RateLimit)
}

// waitDrained waits until the queue has nothing left to admit, then gives
// the loop two more ticks to deliver the final render.
func waitDrained(ctx context.Context, queue *message.Queue, rate time.Duration) error {
	deadline := time.After(previewTimeout)
	ticker := time.NewTicker(max(rate/2, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-deadline:
			return fmt.Errorf("preview did not finish within %s", previewTimeout)
		case <-ticker.C:
			if queue.Finished() {
				sleep(ctx, 2*rate)
				return nil
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
