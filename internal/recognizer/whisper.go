package recognizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sashabaranov/go-openai"

	"github.com/leonardotrapani/hyprcaption/internal/recording"
)

// minChunk is the shortest trailing audio worth sending when capture ends.
const minChunk = 250 * time.Millisecond

// FrameSource produces raw PCM; *recording.Recorder implements it.
type FrameSource interface {
	Start(ctx context.Context) (<-chan recording.Frame, <-chan error, error)
	Stop() error
}

type WhisperConfig struct {
	APIKey   string
	Model    string
	Language string
	// BaseURL overrides the OpenAI endpoint, e.g. for a compatible local server.
	BaseURL    string
	Chunk      time.Duration
	SampleRate int
	Channels   int
}

// WhisperSource cuts captured audio into fixed-length chunks and transcribes
// each with the OpenAI audio API. Every chunk becomes one final event, in order.
type WhisperSource struct {
	config WhisperConfig
	frames FrameSource
	client *openai.Client

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWhisperSource(config WhisperConfig, frames FrameSource) (*WhisperSource, error) {
	if config.APIKey == "" {
		return nil, errors.New("openai api key is required for the whisper recognizer")
	}
	if config.Chunk <= 0 {
		return nil, fmt.Errorf("invalid chunk length: %s", config.Chunk)
	}
	if config.SampleRate <= 0 || config.Channels <= 0 {
		return nil, fmt.Errorf("invalid audio format: %d Hz, %d channels", config.SampleRate, config.Channels)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &WhisperSource{
		config: config,
		frames: frames,
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

func (s *WhisperSource) chunkBytes(d time.Duration) int {
	bytesPerSecond := s.config.SampleRate * s.config.Channels * 2
	n := int(int64(bytesPerSecond) * int64(d) / int64(time.Second))
	return n - n%(2*s.config.Channels)
}

func (s *WhisperSource) Start(ctx context.Context) (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil, errors.New("whisper source already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	frameCh, errCh, err := s.frames.Start(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("start audio capture: %w", err)
	}
	s.cancel = cancel

	events := make(chan Event, 16)
	chunks := make(chan []byte, 4)

	s.wg.Add(2)
	go s.collect(ctx, frameCh, errCh, chunks, events)
	go s.transcribeLoop(ctx, cancel, chunks, events)
	go func() {
		s.wg.Wait()
		close(events)
	}()

	log.Infof("Whisper: listening, model %s, %s chunks", s.config.Model, s.config.Chunk)
	return events, nil
}

func (s *WhisperSource) collect(ctx context.Context, frameCh <-chan recording.Frame, errCh <-chan error, chunks chan<- []byte, events chan<- Event) {
	defer s.wg.Done()
	defer close(chunks)

	size := s.chunkBytes(s.config.Chunk)
	var buf []byte

	push := func(chunk []byte) bool {
		select {
		case chunks <- chunk:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			emit(ctx, events, Event{Err: fmt.Errorf("audio capture: %w", err)})
		case frame, ok := <-frameCh:
			if !ok {
				if len(buf) >= s.chunkBytes(minChunk) {
					push(buf)
				}
				return
			}
			buf = append(buf, frame.Data...)
			for len(buf) >= size {
				chunk := make([]byte, size)
				copy(chunk, buf[:size])
				buf = append(buf[:0], buf[size:]...)
				if !push(chunk) {
					return
				}
			}
		}
	}
}

func (s *WhisperSource) transcribeLoop(ctx context.Context, cancel context.CancelFunc, chunks <-chan []byte, events chan<- Event) {
	defer s.wg.Done()

	for chunk := range chunks {
		text, err := s.transcribe(ctx, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			emit(ctx, events, Event{Err: err})
			if IsFatal(err) {
				cancel()
				return
			}
			continue
		}
		if text = strings.TrimSpace(text); text == "" {
			continue
		}
		if !emit(ctx, events, Event{Text: text, IsFinal: true}) {
			return
		}
	}
}

func (s *WhisperSource) transcribe(ctx context.Context, pcm []byte) (string, error) {
	req := openai.AudioRequest{
		Model:    s.config.Model,
		Reader:   bytes.NewReader(pcmToWAV(pcm, s.config.SampleRate, s.config.Channels)),
		FilePath: "audio.wav",
		Language: s.config.Language,
	}

	start := time.Now()
	resp, err := s.client.CreateTranscription(ctx, req)
	if err != nil {
		err = fmt.Errorf("openai transcription: %w", err)
		if isAuthError(err) {
			return "", NewFatalError(err)
		}
		return "", err
	}

	log.Debugf("Whisper: transcribed %d bytes in %v: %q", len(pcm), time.Since(start), resp.Text)
	return resp.Text, nil
}

// isAuthError reports a rejected API key, which no retry can fix.
func isAuthError(err error) bool {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func (s *WhisperSource) Close() error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	err := s.frames.Stop()
	s.wg.Wait()
	return err
}

func emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
