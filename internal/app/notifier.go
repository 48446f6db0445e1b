package app

import (
	"errors"
	"sync"
	"time"

	"evaluation-console/internal/domain"
	"evaluation-console/internal/logging"
	"github.com/google/uuid"
)

type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeSuccess NoticeKind = "success"
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message (toast or banner). Fields carries inline
// validation messages keyed by form field name.
type Notice struct {
	ID      string            `json:"id"`
	Kind    NoticeKind        `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	At      time.Time         `json:"at"`
}

// Notices is what components need to report non-fatal problems.
type Notices interface {
	Push(kind NoticeKind, message string) Notice
	PushError(err error) Notice
}

// Notifier is the single notification queue shared by every view. It keeps
// the most recent notices until dismissed and streams new ones to subscribers.
type Notifier struct {
	mu       sync.Mutex
	capacity int
	queue    []Notice
	now      func() time.Time
	logger   logging.Logger
	hub      *hub[Notice]
}

var _ Notices = (*Notifier)(nil)

func NewNotifier(capacity int, logger logging.Logger) *Notifier {
	if capacity <= 0 {
		capacity = 20
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Notifier{
		capacity: capacity,
		now:      time.Now,
		logger:   logger,
		hub:      newHub[Notice](16),
	}
}

func (n *Notifier) Push(kind NoticeKind, message string) Notice {
	return n.push(Notice{Kind: kind, Message: message})
}

// PushError turns err into an error notice with a human-readable message.
func (n *Notifier) PushError(err error) Notice {
	notice := Notice{Kind: NoticeError, Message: domain.UserMessage(err)}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		notice.Fields = verr.Fields
	}
	n.logger.Warn("notice", err)
	return n.push(notice)
}

func (n *Notifier) push(notice Notice) Notice {
	notice.ID = uuid.NewString()
	notice.At = n.now()

	n.mu.Lock()
	n.queue = append(n.queue, notice)
	if len(n.queue) > n.capacity {
		n.queue = n.queue[len(n.queue)-n.capacity:]
	}
	n.mu.Unlock()

	n.hub.publish(notice)
	return notice
}

// Dismiss removes a notice; it reports whether the notice was pending.
func (n *Notifier) Dismiss(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, notice := range n.queue {
		if notice.ID == id {
			n.queue = append(n.queue[:i], n.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Pending returns undismissed notices, oldest first.
func (n *Notifier) Pending() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notice, len(n.queue))
	copy(out, n.queue)
	return out
}

// Subscribe streams notices pushed after the call.
func (n *Notifier) Subscribe() (<-chan Notice, func()) {
	return n.hub.subscribe(nil)
}
