package popupstream

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustflow/trustflow-backend/internal/popup"
	"github.com/trustflow/trustflow-backend/pkg/logger"
	"github.com/trustflow/trustflow-backend/pkg/metrics"
	"github.com/trustflow/trustflow-backend/pkg/types"
)

type staticSource struct {
	data *popup.PublicData
}

func (s staticSource) PublicData(context.Context, string) (*popup.PublicData, error) {
	return s.data, nil
}

// streamRecorder is a flushable ResponseWriter safe for concurrent reads.
type streamRecorder struct {
	mu     sync.Mutex
	header http.Header
	status int
	buf    bytes.Buffer
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{header: http.Header{}}
}

func (r *streamRecorder) Header() http.Header { return r.header }

func (r *streamRecorder) WriteHeader(code int) {
	r.mu.Lock()
	r.status = code
	r.mu.Unlock()
}

func (r *streamRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

func (r *streamRecorder) Flush() {}

func (r *streamRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

type plainWriter struct{ header http.Header }

func (w plainWriter) Header() http.Header         { return w.header }
func (w plainWriter) Write(p []byte) (int, error) { return len(p), nil }
func (w plainWriter) WriteHeader(int)             {}

func enabledData() *popup.PublicData {
	return &popup.PublicData{
		WidgetSettings: &types.WidgetSettings{PopupsEnabled: true, PopupDelay: 1, PopupDuration: 2, PopupGap: 3, PopupPosition: "bottom-right"},
		Testimonials: []popup.Testimonial{
			{ID: "t1", IsLiked: true, RespondentName: "Ada", Content: "Great", CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestServeStreamsCardsAndPause(t *testing.T) {
	clock := popup.NewManualClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	reg := prometheus.NewRegistry()
	srv, err := NewServer(Options{
		Source:      staticSource{data: enabledData()},
		Metrics:     metrics.NewPopupMetrics(reg),
		Logger:      logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Interval:    30 * time.Second,
		Heartbeat:   -1,
		Clock:       clock,
		NewStreamID: func() string { return "stream-1" },
	})
	require.NoError(t, err)

	rec := newStreamRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, rec, "space-1") }()

	require.Eventually(t, func() bool {
		return strings.Contains(rec.String(), "event: ready") && clock.Pending() == 2
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.String(), `data: {"stream_id":"stream-1"}`)
	assert.Equal(t, 1, srv.Hub().Len())
	assert.Equal(t, float64(1), gaugeValue(t, reg, "trustflow_popup_streams_active"))

	assert.True(t, srv.SetPaused("stream-1", true))
	assert.True(t, srv.SetPaused("stream-1", false))
	assert.False(t, srv.SetPaused("missing", true))

	clock.Advance(time.Second)
	out := rec.String()
	assert.Contains(t, out, "event: show")
	assert.Contains(t, out, `"name":"Ada"`)
	assert.Contains(t, out, `"position":"bottom-right"`)

	clock.Advance(2 * time.Second)
	assert.Contains(t, rec.String(), "event: hide\ndata: {\"testimonial_id\":\"t1\"}")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.Zero(t, srv.Hub().Len())
	assert.Equal(t, float64(0), gaugeValue(t, reg, "trustflow_popup_streams_active"))
}

func TestServeRequiresFlusher(t *testing.T) {
	srv, err := NewServer(Options{
		Source: staticSource{data: enabledData()},
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	err = srv.Serve(context.Background(), plainWriter{header: http.Header{}}, "space-1")
	assert.Error(t, err)
}

func TestNewServerValidates(t *testing.T) {
	_, err := NewServer(Options{Logger: logger.New(logger.Options{Output: io.Discard})})
	assert.Error(t, err)
	_, err = NewServer(Options{Source: staticSource{}})
	assert.Error(t, err)
}

func TestSinkStopsAfterClose(t *testing.T) {
	rec := newStreamRecorder()
	sink := newEventSink(context.Background(), rec, rec)
	require.NoError(t, sink.Show(popup.Card{TestimonialID: "a"}))
	assert.True(t, sink.Alive())

	sink.close()
	assert.False(t, sink.Alive())
	assert.ErrorIs(t, sink.Show(popup.Card{TestimonialID: "b"}), errStreamClosed)
	assert.Equal(t, 1, strings.Count(rec.String(), "event: show"))
}

type countingPauser struct{ calls []bool }

func (c *countingPauser) SetPaused(p bool) { c.calls = append(c.calls, p) }

func TestHubRegisterAndForward(t *testing.T) {
	hub := NewHub()
	p := &countingPauser{}
	hub.Register("s", p)
	assert.True(t, hub.SetPaused("s", true))
	hub.Unregister("s")
	assert.False(t, hub.SetPaused("s", false))
	assert.Equal(t, []bool{true}, p.calls)
}
