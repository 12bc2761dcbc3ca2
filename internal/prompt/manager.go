// Package prompt loads the per-mode system templates and assembles the
// system and user prompts sent to the language model.
package prompt

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

//go:embed templates/*.txt
var builtinTemplates embed.FS

// Manager resolves template keys to template text. Built-in templates
// ship with the binary; a file named <key>.txt in the override
// directory takes precedence, so operators can tune prompts without a
// rebuild. A missing template for a requested key is an error, never a
// silent skip.
type Manager struct {
	overrideDir string

	mu    sync.RWMutex
	cache map[string]string
}

func NewManager(overrideDir string) *Manager {
	return &Manager{
		overrideDir: overrideDir,
		cache:       make(map[string]string),
	}
}

// Template returns the template text for key.
func (m *Manager) Template(key string) (string, error) {
	m.mu.RLock()
	cached, ok := m.cache[key]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	text, err := m.load(key)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.cache[key] = text
	m.mu.Unlock()
	return text, nil
}

// Reload drops the cache so edited override files are picked up.
func (m *Manager) Reload() {
	m.mu.Lock()
	m.cache = make(map[string]string)
	m.mu.Unlock()
}

func (m *Manager) load(key string) (string, error) {
	filename := key + ".txt"

	if m.overrideDir != "" {
		path := filepath.Join(m.overrideDir, filename)
		if data, err := os.ReadFile(path); err == nil {
			return string(data), nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("prompt: read override %s: %w", path, err)
		}
	}

	data, err := builtinTemplates.ReadFile("templates/" + filename)
	if err != nil {
		return "", fmt.Errorf("prompt: no template for key %q: %w", key, err)
	}
	return string(data), nil
}
