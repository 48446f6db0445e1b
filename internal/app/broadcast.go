package app

import "sync"

// hub fans values out to subscribers. A slow subscriber loses its oldest
// pending value instead of blocking the publisher.
type hub[T any] struct {
	mu          sync.Mutex
	subscribers map[chan T]struct{}
	buffer      int
}

func newHub[T any](buffer int) *hub[T] {
	if buffer <= 0 {
		buffer = 8
	}
	return &hub[T]{subscribers: make(map[chan T]struct{}), buffer: buffer}
}

// subscribe registers a channel primed with initial. The cancel func is
// idempotent and closes the channel.
func (h *hub[T]) subscribe(initial *T) (<-chan T, func()) {
	ch := make(chan T, h.buffer)
	if initial != nil {
		ch <- *initial
	}

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *hub[T]) publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

func (h *hub[T]) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
