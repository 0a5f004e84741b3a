package services

import (
	"sync"
)

// ChatEvent is pushed to SSE subscribers when something happens in a
// project's chat.
type ChatEvent struct {
	Type      string      `json:"type"`
	ProjectID uint        `json:"project_id"`
	StackID   *uint       `json:"stack_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
}

// EventHub fans chat events out to per-project subscribers. Slow
// subscribers are skipped rather than blocking the sender.
type EventHub struct {
	mu   sync.RWMutex
	subs map[uint]map[chan ChatEvent]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[uint]map[chan ChatEvent]struct{})}
}

// Subscribe registers a listener for one project's events. The returned
// channel is buffered; call the cancel func to unsubscribe.
func (h *EventHub) Subscribe(projectID uint) (<-chan ChatEvent, func()) {
	ch := make(chan ChatEvent, 16)

	h.mu.Lock()
	if h.subs[projectID] == nil {
		h.subs[projectID] = make(map[chan ChatEvent]struct{})
	}
	h.subs[projectID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[projectID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, projectID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// ClientCount reports the number of connected subscribers across all
// projects.
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.subs {
		n += len(set)
	}
	return n
}

// Publish delivers an event to every subscriber of the project.
func (h *EventHub) Publish(event ChatEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[event.ProjectID] {
		select {
		case ch <- event:
		default:
			// Drop for subscribers that are not keeping up.
		}
	}
}
