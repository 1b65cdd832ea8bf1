package popupstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/trustflow/trustflow-backend/internal/popup"
)

const (
	EventReady = "ready"
	EventShow  = "show"
	EventHide  = "hide"
)

var errStreamClosed = errors.New("popup stream closed")

// ReadyEvent is the first event of every stream.
type ReadyEvent struct {
	StreamID string `json:"stream_id"`
}

// HideEvent names the card being dismissed.
type HideEvent struct {
	TestimonialID string `json:"testimonial_id"`
}

// eventSink is a popup.Sink writing SSE frames. It stays alive until the
// request context ends, a write fails, or close is called.
type eventSink struct {
	ctx     context.Context
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	closed  bool
}

func newEventSink(ctx context.Context, w io.Writer, flusher http.Flusher) *eventSink {
	return &eventSink{ctx: ctx, w: w, flusher: flusher}
}

func (s *eventSink) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.ctx.Err() == nil
}

func (s *eventSink) Show(card popup.Card) error {
	return s.send(EventShow, card)
}

func (s *eventSink) Hide(card popup.Card) {
	_ = s.send(EventHide, HideEvent{TestimonialID: card.TestimonialID})
}

func (s *eventSink) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errStreamClosed
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		s.closed = true
		return fmt.Errorf("write %s event: %w", event, err)
	}
	s.flush()
	return nil
}

// comment writes an SSE comment line, used as a keep-alive.
func (s *eventSink) comment(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errStreamClosed
	}
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		s.closed = true
		return err
	}
	s.flush()
	return nil
}

func (s *eventSink) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

// close stops all further writes. Timers still in flight see a dead sink.
func (s *eventSink) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
