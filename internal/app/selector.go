package app

import (
	"context"
	"fmt"
	"sync"

	"evaluation-console/internal/domain"
)

// OptionLoader fetches the options of a selection level filtered by the key
// selected at the level above. parent is empty for level 0.
type OptionLoader interface {
	Options(ctx context.Context, level int, parent string) ([]domain.Option, error)
}

// Hydratable is an entity that knows the selection path leading to it.
type Hydratable interface {
	ParentPath() []string
}

// Level is a read-only view of one dropdown of the chain.
type Level struct {
	Name        string          `json:"name"`
	SelectedKey string          `json:"selectedKey"`
	Options     []domain.Option `json:"options"`
	Loading     bool            `json:"loading"`
}

type levelState struct {
	Level
	token  uint64
	cancel context.CancelFunc
}

// Selector keeps dependent dropdowns (classroom → matiere → evaluation)
// consistent with the option lists served by the backend.
//
// Selecting a key at level i clears every deeper level and fetches the
// options of level i+1. Each level carries a request token; a response that
// arrives after its level was reset again is discarded.
type Selector struct {
	loader  OptionLoader
	notices Notices

	mu     sync.Mutex
	levels []levelState
	next   uint64
	hub    *hub[[]Level]

	// pubMu makes snapshot and delivery one step so subscribers never
	// receive an older chain after a newer one.
	pubMu sync.Mutex
}

// DefaultLevels names the chain used by the trainer screens.
var DefaultLevels = []string{"classroom", "matiere", "evaluation"}

func NewSelector(loader OptionLoader, notices Notices, names ...string) *Selector {
	if len(names) == 0 {
		names = DefaultLevels
	}
	levels := make([]levelState, len(names))
	for i, name := range names {
		levels[i].Name = name
	}
	return &Selector{
		loader:  loader,
		notices: notices,
		levels:  levels,
		hub:     newHub[[]Level](8),
	}
}

// Chain returns a copy of every level.
func (s *Selector) Chain() []Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe streams the chain after every change, starting with the current one.
func (s *Selector) Subscribe() (<-chan []Level, func()) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	initial := s.Chain()
	return s.hub.subscribe(&initial)
}

// Load fetches the options of level 0. It reports whether the fetch succeeded.
func (s *Selector) Load(ctx context.Context) bool {
	s.mu.Lock()
	token, fetchCtx := s.beginFetchLocked(ctx, 0)
	s.mu.Unlock()
	s.publish()
	return s.fetch(fetchCtx, 0, "", token)
}

// SelectLevel sets the key of a level, resets the levels below it and loads
// the options of the next level. Fetch failures become notices; the only
// error returned is ErrInvalidLevel.
func (s *Selector) SelectLevel(ctx context.Context, level int, key string) error {
	fetch, err := s.BeginSelect(ctx, level, key)
	if err != nil {
		return err
	}
	fetch()
	return nil
}

// BeginSelect applies a selection (key set, deeper levels cleared, child fetch
// registered) before returning, and hands back the child fetch to run. Callers
// that receive selections in order call BeginSelect in that order and may run
// the fetches concurrently: a later selection always wins.
func (s *Selector) BeginSelect(ctx context.Context, level int, key string) (func() bool, error) {
	if level < 0 || level >= len(s.levels) {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidLevel, level)
	}
	return s.beginSelect(ctx, level, key), nil
}

// Hydrate pre-populates the chain from an existing entity, top-down. Every
// level is confirmed against the options of its own level before the next
// fetch starts; hydration stops at the first missing key, unknown key or
// failed fetch, leaving deeper levels empty. It returns the number of levels
// selected.
func (s *Selector) Hydrate(ctx context.Context, entity Hydratable) int {
	return s.HydratePath(ctx, entity.ParentPath())
}

// HydratePath is Hydrate for an explicit top-down list of keys.
func (s *Selector) HydratePath(ctx context.Context, path []string) int {
	if len(path) == 0 {
		return 0
	}
	if len(s.Chain()[0].Options) == 0 && !s.Load(ctx) {
		return 0
	}

	selected := 0
	for i, key := range path {
		if i >= len(s.levels) || key == "" {
			break
		}
		if !s.hasOption(i, key) {
			s.notices.Push(NoticeWarning, fmt.Sprintf("%s %q introuvable", s.levels[i].Name, key))
			break
		}
		ok := s.beginSelect(ctx, i, key)()
		selected++
		if !ok {
			break
		}
	}
	return selected
}

// Reset clears every selection and every option list below level 0.
func (s *Selector) Reset() {
	s.mu.Lock()
	s.levels[0].SelectedKey = ""
	s.clearBelowLocked(0)
	s.mu.Unlock()
	s.publish()
}

// beginSelect returns a fetch reporting whether the child options were
// loaded (true when there is nothing to load).
func (s *Selector) beginSelect(ctx context.Context, level int, key string) func() bool {
	s.mu.Lock()
	s.levels[level].SelectedKey = key
	s.clearBelowLocked(level)
	child := level + 1
	if child >= len(s.levels) || key == "" {
		s.mu.Unlock()
		s.publish()
		return func() bool { return true }
	}
	token, fetchCtx := s.beginFetchLocked(ctx, child)
	s.mu.Unlock()
	s.publish()

	return func() bool { return s.fetch(fetchCtx, child, key, token) }
}

func (s *Selector) clearBelowLocked(level int) {
	for j := level + 1; j < len(s.levels); j++ {
		l := &s.levels[j]
		if l.cancel != nil {
			l.cancel()
			l.cancel = nil
		}
		s.next++
		l.token = s.next
		l.SelectedKey = ""
		l.Options = nil
		l.Loading = false
	}
}

// beginFetchLocked supersedes any fetch in flight for level and returns the
// token the new fetch must present when it completes, with its context.
func (s *Selector) beginFetchLocked(ctx context.Context, level int) (uint64, context.Context) {
	l := &s.levels[level]
	if l.cancel != nil {
		l.cancel()
	}
	s.next++
	l.token = s.next
	l.Loading = true
	fetchCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	return l.token, fetchCtx
}

func (s *Selector) fetch(ctx context.Context, level int, parent string, token uint64) bool {
	opts, err := s.loader.Options(ctx, level, parent)
	aborted := ctx.Err() != nil

	s.mu.Lock()
	l := &s.levels[level]
	if l.token != token {
		s.mu.Unlock()
		return false
	}
	l.cancel()
	l.cancel = nil
	l.Loading = false
	if err == nil {
		l.Options = opts
	} else {
		l.Options = nil
	}
	s.mu.Unlock()

	if err != nil && !aborted {
		s.notices.PushError(err)
	}
	s.publish()
	return err == nil
}

func (s *Selector) hasOption(level int, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, opt := range s.levels[level].Options {
		if opt.Key == key {
			return true
		}
	}
	return false
}

func (s *Selector) publish() {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.hub.publish(s.Chain())
}

func (s *Selector) snapshotLocked() []Level {
	out := make([]Level, len(s.levels))
	for i, l := range s.levels {
		out[i] = l.Level
		if l.Options != nil {
			out[i].Options = append([]domain.Option(nil), l.Options...)
		}
	}
	return out
}
