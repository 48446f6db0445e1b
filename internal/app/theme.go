package app

import (
	"context"
	"sync"

	"evaluation-console/internal/domain"
)

// ThemePreferenceKey is the single persisted preference of the console.
const ThemePreferenceKey = "theme"

// PreferenceStore persists small user preferences (memory, Redis).
type PreferenceStore interface {
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
}

// ThemeStore is the process-wide light/dark preference. Views subscribe to
// it instead of polling.
type ThemeStore struct {
	prefs PreferenceStore

	mu      sync.RWMutex
	current domain.Theme
	hub     *hub[domain.Theme]
}

// NewThemeStore restores the persisted theme; an unreadable or invalid value
// falls back to light.
func NewThemeStore(ctx context.Context, prefs PreferenceStore) (*ThemeStore, error) {
	store := &ThemeStore{prefs: prefs, current: domain.ThemeLight, hub: newHub[domain.Theme](4)}
	raw, ok, err := prefs.GetPreference(ctx, ThemePreferenceKey)
	if err != nil {
		return store, err
	}
	if ok {
		if theme, err := domain.ParseTheme(raw); err == nil {
			store.current = theme
		}
	}
	return store, nil
}

func (t *ThemeStore) Current() domain.Theme {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Set persists theme and notifies subscribers when it changed.
func (t *ThemeStore) Set(ctx context.Context, theme domain.Theme) error {
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return err
	}
	if err := t.prefs.SetPreference(ctx, ThemePreferenceKey, string(theme)); err != nil {
		return err
	}

	t.mu.Lock()
	changed := t.current != theme
	t.current = theme
	t.mu.Unlock()

	if changed {
		t.hub.publish(theme)
	}
	return nil
}

// Toggle switches between light and dark.
func (t *ThemeStore) Toggle(ctx context.Context) (domain.Theme, error) {
	next := domain.ThemeDark
	if t.Current() == domain.ThemeDark {
		next = domain.ThemeLight
	}
	return next, t.Set(ctx, next)
}

// Subscribe streams the current theme, then every change.
func (t *ThemeStore) Subscribe() (<-chan domain.Theme, func()) {
	current := t.Current()
	return t.hub.subscribe(&current)
}
