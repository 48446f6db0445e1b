package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"evaluation-console/internal/app"
	"evaluation-console/internal/domain"
	"evaluation-console/internal/logging"
	"github.com/gorilla/websocket"
)

// ConsoleDeps lists what a console connection is built from.
type ConsoleDeps struct {
	Options   app.OptionLoader
	Questions app.QuestionBackend
	Validator *app.Validator
	Results   *app.ResultsService
	Theme     *app.ThemeStore
	Logger    logging.Logger
}

// ConsoleHandler serves the live console: every connection drives its own
// selection chain and results page, and receives chain, notice and theme
// updates.
type ConsoleHandler struct {
	deps     ConsoleDeps
	logger   logging.Logger
	upgrader websocket.Upgrader
}

func NewConsoleHandler(deps ConsoleDeps) *ConsoleHandler {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Nop{}
	}
	return &ConsoleHandler{
		deps:   deps,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Level int    `json:"level"`
	Key   string `json:"key"`
}

type hydratePayload struct {
	Question string `json:"question"`
}

type themePayload struct {
	Mode string `json:"mode"`
}

type dismissPayload struct {
	ID string `json:"id"`
}

type resultsPayload struct {
	Evaluation string `json:"evaluation"`
	Student    string `json:"etudiant"`
	Archived   bool   `json:"archived"`
}

type filterPayload struct {
	Text string `json:"text"`
}

type sortPayload struct {
	Field string `json:"field"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs the console session until the
// client disconnects.
func (h *ConsoleHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", err)
		return
	}
	defer conn.Close()

	ctx, cancelCtx := context.WithCancel(r.Context())
	defer cancelCtx()

	notifier := app.NewNotifier(20, h.logger)
	selector := app.NewSelector(h.deps.Options, notifier)
	questions := app.NewQuestionService(h.deps.Questions, h.deps.Validator, notifier)
	theme := h.deps.Theme
	results := &resultsSession{service: h.deps.Results}

	chain, cancelChain := selector.Subscribe()
	notices, cancelNotices := notifier.Subscribe()
	themes, cancelThemes := theme.Subscribe()

	send := make(chan outboundMessage[any], 32)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Warn("ws write error", err)
				return
			}
		}
	}()

	emit := func(typ string, payload any) {
		select {
		case send <- outboundMessage[any]{Type: typ, Payload: payload}:
		case <-closeSignals:
		case <-writerDone:
		}
	}

	var forwarders sync.WaitGroup
	forwarders.Add(3)
	go forward(&forwarders, chain, closeSignals, func(levels []app.Level) { emit("chain", levels) })
	go forward(&forwarders, notices, closeSignals, func(n app.Notice) { emit("notice", n) })
	go forward(&forwarders, themes, closeSignals, func(t domain.Theme) { emit("theme", themePayload{Mode: string(t)}) })

	// Fetches run off the read loop so a newer selection can supersede a
	// fetch still in flight. Selections themselves are applied in read order.
	var workers sync.WaitGroup
	spawn := func(fn func()) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			fn()
		}()
	}

	// Level 0 is loaded before reading so hydration starts from a known list.
	selector.Load(ctx)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit("error", errorPayload{Message: "invalid select payload"})
				continue
			}
			fetch, err := selector.BeginSelect(ctx, payload.Level, payload.Key)
			if err != nil {
				emit("error", errorPayload{Message: err.Error()})
				continue
			}
			spawn(func() { fetch() })
		case "hydrate":
			var payload hydratePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Question == "" {
				emit("error", errorPayload{Message: "invalid hydrate payload"})
				continue
			}
			spawn(func() {
				if q, err := questions.Edit(ctx, payload.Question, selector); err == nil {
					emit("question", q)
				}
			})
		case "theme":
			var payload themePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit("error", errorPayload{Message: "invalid theme payload"})
				continue
			}
			if payload.Mode == "toggle" {
				_, err = theme.Toggle(ctx)
			} else {
				err = theme.Set(ctx, domain.Theme(payload.Mode))
			}
			if err != nil {
				emit("error", errorPayload{Message: err.Error()})
			}
		case "dismiss":
			var payload dismissPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit("error", errorPayload{Message: "invalid dismiss payload"})
				continue
			}
			notifier.Dismiss(payload.ID)
		case "reset":
			selector.Reset()
		case "results":
			var payload resultsPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || (payload.Evaluation == "" && payload.Student == "") {
				emit("error", errorPayload{Message: "invalid results payload"})
				continue
			}
			spawn(func() {
				page, err := results.open(ctx, payload)
				if errors.Is(err, errSuperseded) {
					return
				}
				if err != nil {
					if ctx.Err() == nil {
						notifier.PushError(err)
					}
					return
				}
				emit("results", page)
			})
		case "filter":
			var payload filterPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit("error", errorPayload{Message: "invalid filter payload"})
				continue
			}
			if page, err := results.update(func(p *app.ResultsPage) { p.SetFilter(payload.Text) }); err != nil {
				emit("error", errorPayload{Message: err.Error()})
			} else {
				emit("results", page)
			}
		case "sort":
			var payload sortPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit("error", errorPayload{Message: "invalid sort payload"})
				continue
			}
			if _, err := app.ParseSortState(payload.Field, ""); err != nil || payload.Field == "" {
				emit("error", errorPayload{Message: "invalid sort field"})
				continue
			}
			if page, err := results.update(func(p *app.ResultsPage) { p.ToggleSort(app.SortField(payload.Field)) }); err != nil {
				emit("error", errorPayload{Message: err.Error()})
			} else {
				emit("results", page)
			}
		default:
			emit("error", errorPayload{Message: "unsupported message type"})
		}
	}

	cancelCtx()
	close(closeSignals)
	workers.Wait()
	cancelChain()
	cancelNotices()
	cancelThemes()
	forwarders.Wait()
	close(send)
	<-writerDone
}

func forward[T any](wg *sync.WaitGroup, updates <-chan T, closeSignals <-chan struct{}, fn func(T)) {
	defer wg.Done()
	for {
		select {
		case v, ok := <-updates:
			if !ok {
				return
			}
			fn(v)
		case <-closeSignals:
			return
		}
	}
}

var errSuperseded = errors.New("results page superseded")

// resultsSession holds the results page opened by one connection.
type resultsSession struct {
	service *app.ResultsService

	mu   sync.Mutex
	page *app.ResultsPage
	seq  uint64
}

// open loads a page; a page opened later replaces it even when this one
// finishes last.
func (s *resultsSession) open(ctx context.Context, p resultsPayload) (app.ResultPage, error) {
	kind, subject := app.ResultsByEvaluation, p.Evaluation
	if subject == "" {
		kind, subject = app.ResultsByStudent, p.Student
	}
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	var (
		page *app.ResultsPage
		err  error
	)
	if p.Archived {
		page, err = s.service.OpenArchived(ctx, kind, subject)
	} else {
		page, err = s.service.Open(ctx, kind, subject)
	}
	if err != nil {
		return app.ResultPage{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return app.ResultPage{}, errSuperseded
	}
	if s.page != nil {
		// keep the user's filter and ordering across subjects
		view := s.page.View()
		page.SetFilter(view.Filter)
		page.SetSort(view.Sort)
	}
	s.page = page
	return page.Render()
}

func (s *resultsSession) update(fn func(*app.ResultsPage)) (app.ResultPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == nil {
		return app.ResultPage{}, domain.ErrNotLoaded
	}
	fn(s.page)
	return s.page.Render()
}
