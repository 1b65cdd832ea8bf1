// Package popupstream hosts the popup engine for browsers. Each
// Server-Sent-Events connection gets its own popup.Controller whose sink
// writes show/hide events to the response; hover state arrives through the
// Hub by stream id.
package popupstream

import "sync"

// Pauser receives hover state for a running stream.
type Pauser interface {
	SetPaused(paused bool)
}

// Hub tracks the open streams of this process.
type Hub struct {
	mu      sync.Mutex
	streams map[string]Pauser
}

func NewHub() *Hub {
	return &Hub{streams: make(map[string]Pauser)}
}

func (h *Hub) Register(streamID string, p Pauser) {
	h.mu.Lock()
	h.streams[streamID] = p
	h.mu.Unlock()
}

func (h *Hub) Unregister(streamID string) {
	h.mu.Lock()
	delete(h.streams, streamID)
	h.mu.Unlock()
}

// SetPaused forwards hover state and reports whether the stream exists.
func (h *Hub) SetPaused(streamID string, paused bool) bool {
	h.mu.Lock()
	p, ok := h.streams[streamID]
	h.mu.Unlock()
	if !ok {
		return false
	}
	p.SetPaused(paused)
	return true
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.streams)
}
