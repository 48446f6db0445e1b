package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"evaluation-console/internal/app"
	"evaluation-console/internal/domain"
)

type countingLoader struct {
	calls int
	err   error
}

func (l *countingLoader) Options(_ context.Context, level int, parent string) ([]domain.Option, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return []domain.Option{{Key: parent + "-child", Label: "child"}}, nil
}

func TestOptionCacheCaches(t *testing.T) {
	loader := &countingLoader{}
	cache := NewOptionCache(loader, time.Minute)
	ctx := context.Background()

	if _, err := cache.Options(ctx, 1, "CLS-1"); err != nil {
		t.Fatalf("options: %v", err)
	}
	opts, err := cache.Options(ctx, 1, "CLS-1")
	if err != nil {
		t.Fatalf("options 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if len(opts) != 1 || opts[0].Key != "CLS-1-child" {
		t.Fatalf("unexpected options %+v", opts)
	}

	if _, err := cache.Options(ctx, 1, "CLS-2"); err != nil || loader.calls != 2 {
		t.Fatalf("expected separate entry per parent, calls %d", loader.calls)
	}

	_ = cache.Invalidate(ctx, 1, "CLS-1")
	_, _ = cache.Options(ctx, 1, "CLS-1")
	if loader.calls != 3 {
		t.Fatalf("expected reload after invalidate, calls %d", loader.calls)
	}
}

func TestOptionCacheExpires(t *testing.T) {
	loader := &countingLoader{}
	cache := NewOptionCache(loader, time.Minute)
	now := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }
	ctx := context.Background()

	_, _ = cache.Options(ctx, 0, "")
	now = now.Add(2 * time.Minute)
	_, _ = cache.Options(ctx, 0, "")
	if loader.calls != 2 {
		t.Fatalf("expected expired entry to reload, calls %d", loader.calls)
	}
}

func TestOptionCacheDoesNotCacheErrors(t *testing.T) {
	loader := &countingLoader{err: errors.New("down")}
	cache := NewOptionCache(loader, time.Minute)

	if _, err := cache.Options(context.Background(), 0, ""); err == nil {
		t.Fatalf("expected error")
	}
	loader.err = nil
	if _, err := cache.Options(context.Background(), 0, ""); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected two loader calls, got %d", loader.calls)
	}
}

type emptyLoader struct {
	calls int
}

func (l *emptyLoader) Options(context.Context, int, string) ([]domain.Option, error) {
	l.calls++
	return []domain.Option{}, nil
}

func TestOptionCacheSkipsEmptyLists(t *testing.T) {
	loader := &emptyLoader{}
	cache := NewOptionCache(loader, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		opts, err := cache.Options(ctx, 1, "CLS-3")
		if err != nil || len(opts) != 0 {
			t.Fatalf("expected empty list, got %+v %v", opts, err)
		}
	}
	if loader.calls != 2 {
		t.Fatalf("empty list should not be cached, loader calls %d", loader.calls)
	}
}

// gatedLoader blocks loads of CLS-1 until released and honours cancellation,
// like a real HTTP call.
type gatedLoader struct {
	mu      sync.Mutex
	calls   map[string]int
	gate    chan struct{}
	entered chan string
}

func (l *gatedLoader) Options(ctx context.Context, level int, parent string) ([]domain.Option, error) {
	l.mu.Lock()
	l.calls[parent]++
	l.mu.Unlock()
	if parent == "CLS-1" {
		l.entered <- parent
		select {
		case <-l.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []domain.Option{{Key: parent + "-MAT", Label: "Maths"}}, nil
}

func TestSharedLoadSurvivesOneSelectorMovingOn(t *testing.T) {
	loader := &gatedLoader{calls: map[string]int{}, gate: make(chan struct{}), entered: make(chan string, 4)}
	cache := NewOptionCache(loader, time.Minute)
	ctx := context.Background()

	noticesA := app.NewNotifier(10, nil)
	noticesB := app.NewNotifier(10, nil)
	a := app.NewSelector(cache, noticesA)
	b := app.NewSelector(cache, noticesB)

	go func() { _ = a.SelectLevel(ctx, 0, "CLS-1") }()
	select {
	case <-loader.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("first load never started")
	}

	bDone := make(chan struct{})
	go func() {
		defer close(bDone)
		_ = b.SelectLevel(ctx, 0, "CLS-1")
	}()
	deadline := time.Now().Add(2 * time.Second)
	for !b.Chain()[1].Loading {
		if time.Now().After(deadline) {
			t.Fatalf("second selector never started loading")
		}
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)

	// A moves on: its own fetch is cancelled, B's must not be.
	if err := a.SelectLevel(ctx, 0, "CLS-2"); err != nil {
		t.Fatalf("select: %v", err)
	}
	close(loader.gate)
	select {
	case <-bDone:
	case <-time.After(2 * time.Second):
		t.Fatalf("second selector never finished")
	}

	chain := b.Chain()
	if len(chain[1].Options) != 1 || chain[1].Options[0].Key != "CLS-1-MAT" {
		t.Fatalf("expected B to keep its options, got %+v", chain[1])
	}
	if pending := noticesB.Pending(); len(pending) != 0 {
		t.Fatalf("expected no notice for B, got %+v", pending)
	}
	if got := a.Chain(); got[0].SelectedKey != "CLS-2" || got[1].Options[0].Key != "CLS-2-MAT" {
		t.Fatalf("unexpected chain for A %+v", got)
	}
	loader.mu.Lock()
	defer loader.mu.Unlock()
	if loader.calls["CLS-1"] != 1 {
		t.Fatalf("expected one shared backend call, got %d", loader.calls["CLS-1"])
	}
}
