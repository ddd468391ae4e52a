package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprcaption/internal/transport"
)

// TestConfigTOML is a daemon config that delivers quickly, needs no
// recognizer and prints to the console.
const TestConfigTOML = `
[delivery]
  rate_limit = "20ms"

[recognizer]
  source = "none"

[transport]
  type = "console"
`

// CreateTempConfigFile creates a temporary config file for testing
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// Sent is one caption recorded by MockTransport.
type Sent struct {
	Text      string
	Composing bool
}

// MockTransport implements transport.Transport for testing
type MockTransport struct {
	// FailNext makes that many upcoming sends fail.
	FailNext int

	mu     sync.Mutex
	sent   []Sent
	closed bool
}

func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

func (m *MockTransport) Send(text string, composing bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("transport closed")
	}
	if m.FailNext > 0 {
		m.FailNext--
		return errors.New("network unreachable")
	}
	m.sent = append(m.sent, Sent{Text: text, Composing: composing})
	return nil
}

func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Sent returns a copy of everything delivered so far.
func (m *MockTransport) Sent() []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Sent, len(m.sent))
	copy(result, m.sent)
	return result
}

// Last returns the most recent caption text, or "".
func (m *MockTransport) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].Text
}

func (m *MockTransport) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockTransportFactory hands out a fresh MockTransport per call and keeps
// them in creation order, so tests can follow transport rebuilds.
type MockTransportFactory struct {
	mu      sync.Mutex
	created []*MockTransport
	configs []transport.Config
}

func (f *MockTransportFactory) New(cfg transport.Config) (transport.Transport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := NewMockTransport()
	f.created = append(f.created, m)
	f.configs = append(f.configs, cfg)
	return m, nil
}

// Get returns the i-th transport created.
func (f *MockTransportFactory) Get(i int) *MockTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created[i]
}

// Config returns the config the i-th transport was built from.
func (f *MockTransportFactory) Config(i int) transport.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configs[i]
}

func (f *MockTransportFactory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Condition not met within %v", timeout)
		default:
			if condition() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}
