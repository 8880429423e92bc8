package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	themeKey     = "lingo-theme"
	defaultTheme = "coffee"
)

// ThemeStore persists the selected UI theme as a small JSON file under the
// user config dir, so the preference survives restarts.
type ThemeStore struct {
	path string

	mu    sync.Mutex
	theme string
}

func NewThemeStore() (*ThemeStore, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate config dir: %w", err)
	}
	return NewThemeStoreAt(filepath.Join(configDir, "lingo", "theme.json"))
}

// NewThemeStoreAt uses an explicit file path. A missing or unreadable file
// falls back to the default theme.
func NewThemeStoreAt(path string) (*ThemeStore, error) {
	s := &ThemeStore{path: path, theme: defaultTheme}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}

	var stored map[string]string
	if err := json.Unmarshal(data, &stored); err != nil {
		// Corrupt preference file: keep the default rather than failing
		return s, nil
	}
	if theme, ok := stored[themeKey]; ok && theme != "" {
		s.theme = theme
	}

	return s, nil
}

// Theme returns the current theme.
func (s *ThemeStore) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetTheme updates and persists the theme.
func (s *ThemeStore) SetTheme(theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(map[string]string{themeKey: theme})
	if err != nil {
		return fmt.Errorf("failed to encode theme: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write theme file: %w", err)
	}

	s.theme = theme
	return nil
}
