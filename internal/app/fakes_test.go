package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"evaluation-console/internal/app"
	"evaluation-console/internal/domain"
)

// fakeLoader serves options keyed by "level:parent". A gated key blocks until
// its gate is closed and ignores cancellation, like a slow backend response.
type fakeLoader struct {
	mu      sync.Mutex
	options map[string][]domain.Option
	fail    map[string]error
	gates   map[string]chan struct{}
	entered chan string
	calls   []string
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		options: map[string][]domain.Option{
			"0:":      {{Key: "CLS-1", Label: "Terminale A"}, {Key: "CLS-2", Label: "Terminale B"}},
			"1:CLS-1": {{Key: "MAT-7", Label: "Maths"}, {Key: "MAT-8", Label: "Physique"}},
			"1:CLS-2": {{Key: "MAT-9", Label: "Histoire"}},
			"2:MAT-7": {{Key: "EVAL-42", Label: "Partiel"}},
			"2:MAT-8": {{Key: "EVAL-43", Label: "Contrôle"}},
		},
		fail:    map[string]error{},
		gates:   map[string]chan struct{}{},
		entered: make(chan string, 16),
	}
}

func (l *fakeLoader) Options(_ context.Context, level int, parent string) ([]domain.Option, error) {
	key := fmt.Sprintf("%d:%s", level, parent)
	l.mu.Lock()
	l.calls = append(l.calls, key)
	gate := l.gates[key]
	err := l.fail[key]
	opts := l.options[key]
	l.mu.Unlock()

	l.entered <- key
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return opts, nil
}

func (l *fakeLoader) callLog() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// drain empties the entered channel so it never fills up.
func (l *fakeLoader) drain() {
	for {
		select {
		case <-l.entered:
		default:
			return
		}
	}
}

var errBackendDown = errors.New("backend down")

type recordingNotices struct {
	mu      sync.Mutex
	notices []app.Notice
}

func (r *recordingNotices) Push(kind app.NoticeKind, message string) app.Notice {
	n := app.Notice{Kind: kind, Message: message}
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
	return n
}

func (r *recordingNotices) PushError(err error) app.Notice {
	return r.Push(app.NoticeError, domain.UserMessage(err))
}

func (r *recordingNotices) count(kind app.NoticeKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, notice := range r.notices {
		if notice.Kind == kind {
			n++
		}
	}
	return n
}
