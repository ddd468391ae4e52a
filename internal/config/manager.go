package config

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// ChangeFunc is called after a reload with the previous and the new config.
type ChangeFunc func(prev, next *Config)

type Manager struct {
	mu          sync.RWMutex
	config      *Config
	path        string
	subscribers []ChangeFunc

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

func NewManager() (*Manager, error) {
	log.Debugf("Config manager: initializing configuration system...")

	configPath, err := ensureConfigFile()
	if err != nil {
		log.Errorf("Config manager: failed to load initial configuration: %v", err)
		return nil, err
	}
	return NewManagerForFile(configPath)
}

// NewManagerForFile loads and validates configPath. An invalid initial config
// is an error; later invalid edits are logged and skipped.
func NewManagerForFile(configPath string) (*Manager, error) {
	config, err := LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	log.Debugf("Config manager: initialization completed successfully")
	return &Manager{config: config, path: configPath}, nil
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent external modification
	configCopy := *m.config
	return &configCopy
}

// OnChange registers fn for every successful reload.
func (m *Manager) OnChange(fn ChangeFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

func (m *Manager) StartWatching(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Editors usually replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return err
	}
	m.watcher = watcher

	m.wg.Add(1)
	go m.watchLoop(ctx)

	log.Infof("Config manager: watching %s for changes", m.path)
	return nil
}

func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
}

func (m *Manager) watchLoop(ctx context.Context) {
	defer m.wg.Done()
	configFileName := filepath.Base(m.path)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFileName {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				log.Debugf("Config manager: file change detected: %s. Reloading config...", event.Name)
				m.Reload()
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("Config manager: watcher error: %v", err)

		case <-ctx.Done():
			return
		}
	}
}

// Reload re-reads the file and notifies subscribers. It reports whether the
// new config was accepted.
func (m *Manager) Reload() bool {
	newConfig, err := LoadFile(m.path)
	if err != nil {
		log.Errorf("Config manager: failed to reload config: %v", err)
		return false
	}
	if err := newConfig.Validate(); err != nil {
		log.Errorf("Config manager: invalid config after reload: %v", err)
		return false
	}

	m.mu.Lock()
	old := m.config
	m.config = newConfig
	subscribers := append([]ChangeFunc(nil), m.subscribers...)
	m.mu.Unlock()

	log.Infof("Config manager: configuration successfully reloaded")
	for _, fn := range subscribers {
		oldCopy, newCopy := *old, *newConfig
		fn(&oldCopy, &newCopy)
	}
	return true
}
