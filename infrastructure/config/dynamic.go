package config

import (
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Dynamic holds runtime-tunable settings, reloaded whenever the overrides
// file changes. All values have working defaults so the file is optional.
type Dynamic struct {
	// Assistant tool-call timeouts, seconds.
	Assistant AssistantTimeouts `yaml:"assistant"`
	// Extra CORS origins appended to the static ALLOWED_ORIGINS list.
	ExtraOrigins []string `yaml:"extraOrigins"`
	// Maximum avatar upload size in megabytes.
	MaxAvatarMB int `yaml:"maxAvatarMB"`
}

// AssistantTimeouts bounds each proxy endpoint's upstream call.
type AssistantTimeouts struct {
	SuggestionsSeconds int `yaml:"suggestionsSeconds"`
	ChatSeconds        int `yaml:"chatSeconds"`
	SummarizeSeconds   int `yaml:"summarizeSeconds"`
}

// SuggestionsTimeout returns the suggestions call bound.
func (t AssistantTimeouts) SuggestionsTimeout() time.Duration {
	return time.Duration(t.SuggestionsSeconds) * time.Second
}

// ChatTimeout returns the chat call bound.
func (t AssistantTimeouts) ChatTimeout() time.Duration {
	return time.Duration(t.ChatSeconds) * time.Second
}

// SummarizeTimeout returns the summarize call bound.
func (t AssistantTimeouts) SummarizeTimeout() time.Duration {
	return time.Duration(t.SummarizeSeconds) * time.Second
}

func defaultDynamic() Dynamic {
	return Dynamic{
		Assistant: AssistantTimeouts{
			SuggestionsSeconds: 30,
			ChatSeconds:        120,
			SummarizeSeconds:   1000,
		},
		MaxAvatarMB: 5,
	}
}

// DynamicProvider serves the current Dynamic snapshot and reloads it on file
// change. With no path configured it serves defaults forever.
type DynamicProvider struct {
	mu      sync.RWMutex
	current Dynamic
	path    string
	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

// NewDynamicProvider loads the overrides file (if any) and starts watching it.
func NewDynamicProvider(path string, logger *zap.Logger) (*DynamicProvider, error) {
	p := &DynamicProvider{current: defaultDynamic(), path: path, logger: logger}
	if path == "" {
		return p, nil
	}
	if err := p.reload(); err != nil {
		logger.Warn("dynamic config load failed, using defaults", zap.String("path", path), zap.Error(err))
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}
	p.watcher = watcher
	go p.watch()
	return p, nil
}

// Current returns the latest snapshot.
func (p *DynamicProvider) Current() Dynamic {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Close stops the file watcher.
func (p *DynamicProvider) Close() error {
	if p.watcher != nil {
		return p.watcher.Close()
	}
	return nil
}

func (p *DynamicProvider) reload() error {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return err
	}
	next := defaultDynamic()
	if err := yaml.Unmarshal(raw, &next); err != nil {
		return err
	}
	if next.Assistant.SuggestionsSeconds <= 0 {
		next.Assistant.SuggestionsSeconds = 30
	}
	if next.Assistant.ChatSeconds <= 0 {
		next.Assistant.ChatSeconds = 120
	}
	if next.Assistant.SummarizeSeconds <= 0 {
		next.Assistant.SummarizeSeconds = 1000
	}
	if next.MaxAvatarMB <= 0 {
		next.MaxAvatarMB = 5
	}
	p.mu.Lock()
	p.current = next
	p.mu.Unlock()
	return nil
}

func (p *DynamicProvider) watch() {
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := p.reload(); err != nil {
					p.logger.Warn("dynamic config reload failed", zap.Error(err))
					continue
				}
				p.logger.Info("dynamic config reloaded", zap.String("path", p.path))
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("dynamic config watcher error", zap.Error(err))
		}
	}
}
