package popupstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/trustflow/trustflow-backend/internal/popup"
	"github.com/trustflow/trustflow-backend/pkg/logger"
	"github.com/trustflow/trustflow-backend/pkg/metrics"
)

// DefaultHeartbeat keeps idle streams open through proxies.
const DefaultHeartbeat = 15 * time.Second

type Options struct {
	Hub         *Hub
	Source      popup.Source
	Metrics     *metrics.PopupMetrics
	Logger      *logger.Logger
	Interval    time.Duration
	Heartbeat   time.Duration
	CardOptions popup.CardOptions
	// Clock drives the engine timers; nil uses the wall clock.
	Clock popup.Clock
	// NewStreamID is replaceable in tests.
	NewStreamID func() string
}

type Server struct {
	hub       *Hub
	source    popup.Source
	metrics   *metrics.PopupMetrics
	logg      *logger.Logger
	interval  time.Duration
	heartbeat time.Duration
	cardOpts  popup.CardOptions
	clock     popup.Clock
	newID     func() string
}

func NewServer(opts Options) (*Server, error) {
	if opts.Source == nil {
		return nil, errors.New("popupstream: source is required")
	}
	if opts.Logger == nil {
		return nil, errors.New("popupstream: logger is required")
	}
	if opts.Hub == nil {
		opts.Hub = NewHub()
	}
	if opts.Heartbeat == 0 {
		opts.Heartbeat = DefaultHeartbeat
	}
	if opts.NewStreamID == nil {
		opts.NewStreamID = uuid.NewString
	}
	return &Server{
		hub:       opts.Hub,
		source:    opts.Source,
		metrics:   opts.Metrics,
		logg:      opts.Logger,
		interval:  opts.Interval,
		heartbeat: opts.Heartbeat,
		cardOpts:  opts.CardOptions,
		clock:     opts.Clock,
		newID:     opts.NewStreamID,
	}, nil
}

func (s *Server) Hub() *Hub {
	return s.hub
}

// SetPaused forwards hover state to a stream; false means no such stream.
func (s *Server) SetPaused(streamID string, paused bool) bool {
	return s.hub.SetPaused(streamID, paused)
}

// Serve runs one popup engine for spaceID and streams its cards to w until
// ctx ends. A client disconnect is a normal return.
func (s *Server) Serve(ctx context.Context, w http.ResponseWriter, spaceID string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return errors.New("popupstream: response writer cannot flush")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	streamID := s.newID()
	ctx = s.logg.WithStreamID(ctx, streamID)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sink := newEventSink(ctx, w, flusher)
	defer sink.close()

	ctrl, err := popup.NewController(popup.Params{
		SpaceID:     spaceID,
		Source:      s.source,
		Sink:        sink,
		Clock:       s.clock,
		Interval:    s.interval,
		CardOptions: s.cardOpts,
		Observer:    s.metrics,
		Logger:      s.logg,
	})
	if err != nil {
		return fmt.Errorf("popupstream: %w", err)
	}

	if err := sink.send(EventReady, ReadyEvent{StreamID: streamID}); err != nil {
		return nil
	}

	s.hub.Register(streamID, ctrl)
	s.metrics.StreamOpened()
	s.logg.Debug(ctx, "popupstream.opened")
	defer func() {
		s.hub.Unregister(streamID)
		s.metrics.StreamClosed()
		s.logg.Debug(ctx, "popupstream.closed")
	}()

	if s.heartbeat > 0 {
		go s.keepAlive(ctx, cancel, sink)
	}

	if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// keepAlive writes comment frames and cancels the stream once a write
// fails, so dead connections end the engine.
func (s *Server) keepAlive(ctx context.Context, cancel context.CancelFunc, sink *eventSink) {
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sink.comment("ping"); err != nil {
				cancel()
				return
			}
		}
	}
}
