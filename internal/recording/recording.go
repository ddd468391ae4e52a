// Package recording captures microphone audio with pw-record.
package recording

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// Frame is one read of raw PCM from the capture process.
type Frame struct {
	Data []byte
	At   time.Time
}

type Config struct {
	SampleRate        int
	Channels          int
	Format            string
	BufferSize        int
	Device            string
	ChannelBufferSize int
}

func DefaultConfig() Config {
	return Config{
		SampleRate:        16000,
		Channels:          1,
		Format:            "s16",
		BufferSize:        8192,
		Device:            "",
		ChannelBufferSize: 30,
	}
}

// BytesPerSecond assumes 16-bit samples.
func (c Config) BytesPerSecond() int {
	return c.SampleRate * c.Channels * 2
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("invalid channels: %d", c.Channels)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("invalid buffer size: %d", c.BufferSize)
	}
	if c.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid channel buffer size: %d", c.ChannelBufferSize)
	}
	if c.Format == "" {
		return errors.New("invalid format: empty")
	}
	if frameBytes := 2 * c.Channels; c.BufferSize%frameBytes != 0 {
		log.Warnf("Recording: buffer size %d not aligned to frame size %d; samples may split across frames",
			c.BufferSize, frameBytes)
	}
	return nil
}

type Recorder struct {
	config    Config
	recording atomic.Bool
	dropped   atomic.Uint64

	// newCmd and probe are swapped out in tests.
	newCmd func(ctx context.Context, args []string) *exec.Cmd
	probe  func(context.Context) error

	mu     sync.Mutex // guards cmd and cancel
	cmd    *exec.Cmd
	cancel context.CancelFunc

	wg sync.WaitGroup
}

func NewRecorder(config Config) *Recorder {
	return &Recorder{
		config: config,
		newCmd: pwRecord,
		probe:  CheckPipeWireAvailable,
	}
}

func NewDefaultRecorder() *Recorder { return NewRecorder(DefaultConfig()) }

func (r *Recorder) Config() Config {
	return r.config
}

func (r *Recorder) IsRecording() bool {
	return r.recording.Load()
}

// Dropped is the number of frames discarded because the consumer fell behind.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Start launches the capture process. Both channels are closed when capture ends.
func (r *Recorder) Start(ctx context.Context) (<-chan Frame, <-chan error, error) {
	if r.recording.Load() {
		return nil, nil, errors.New("already recording")
	}
	if err := r.config.Validate(); err != nil {
		return nil, nil, err
	}
	if err := r.probe(ctx); err != nil {
		return nil, nil, fmt.Errorf("PipeWire not available: %w", err)
	}

	captureCtx, cancel := context.WithCancel(ctx)
	frameCh := make(chan Frame, r.config.ChannelBufferSize)
	errCh := make(chan error, 1)

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	r.recording.Store(true)
	r.wg.Add(1)
	go r.captureLoop(captureCtx, frameCh, errCh)

	return frameCh, errCh, nil
}

func (r *Recorder) Stop() error {
	if !r.recording.Load() {
		return nil
	}
	r.requestCancel()
	return nil
}

// Wait blocks until the capture goroutine has exited.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) captureLoop(ctx context.Context, frameCh chan<- Frame, errCh chan<- error) {
	defer func() {
		close(frameCh)
		close(errCh)
		r.recording.Store(false)

		r.mu.Lock()
		if r.cmd != nil {
			_ = r.cmd.Wait()
			r.cmd = nil
		}
		r.cancel = nil
		r.mu.Unlock()

		r.wg.Done()
	}()

	cmd := r.newCmd(ctx, r.args())

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.fail(errCh, fmt.Errorf("create stdout pipe: %w", err))
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		r.fail(errCh, fmt.Errorf("create stderr pipe: %w", err))
		return
	}

	r.mu.Lock()
	r.cmd = cmd
	r.mu.Unlock()

	if err := cmd.Start(); err != nil {
		r.mu.Lock()
		r.cmd = nil
		r.mu.Unlock()
		r.fail(errCh, fmt.Errorf("start pw-record: %w", err))
		return
	}

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			log.Debugf("Recording stderr: %s", scanner.Text())
		}
	}()

	buffer := make([]byte, r.config.BufferSize)
	var droppedSinceLog uint64
	lastDropLog := time.Now()

	for {
		n, readErr := stdout.Read(buffer)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buffer[:n])

			select {
			case frameCh <- Frame{Data: data, At: time.Now()}:
			case <-ctx.Done():
				return
			default:
				r.dropped.Add(1)
				droppedSinceLog++
				if time.Since(lastDropLog) > time.Second {
					log.Warnf("Recording: dropped %d frames due to backpressure", droppedSinceLog)
					lastDropLog = time.Now()
					droppedSinceLog = 0
				}
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) || ctx.Err() != nil {
				return
			}
			r.fail(errCh, fmt.Errorf("read audio: %w", readErr))
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (r *Recorder) requestCancel() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (r *Recorder) fail(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
	log.Errorf("Recording error: %v", err)
	r.requestCancel()
}

func (r *Recorder) args() []string {
	args := []string{
		"--format", r.config.Format,
		"--rate", strconv.Itoa(r.config.SampleRate),
		"--channels", strconv.Itoa(r.config.Channels),
	}
	if r.config.Device != "" {
		args = append(args, "--target", r.config.Device)
	}
	return append(args, "-")
}

func pwRecord(ctx context.Context, args []string) *exec.Cmd {
	return exec.CommandContext(ctx, "pw-record", args...)
}

func CheckPipeWireAvailable(ctx context.Context) error {
	if _, err := exec.LookPath("pw-record"); err != nil {
		return fmt.Errorf("pw-record not found: %w (install pipewire-tools)", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := exec.CommandContext(checkCtx, "pw-cli", "info").Run(); err != nil {
		return fmt.Errorf("PipeWire not running or accessible: %w", err)
	}
	return nil
}
