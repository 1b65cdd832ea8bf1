package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustflow/trustflow-backend/internal/popup"
	"github.com/trustflow/trustflow-backend/pkg/logger"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

const publicPayload = `{
  "widget_settings": {"popupsEnabled": true, "popupDelay": 1, "popupDuration": 2, "popupGap": 3},
  "testimonials": [
    {"id": "t1", "is_liked": true, "created_at": "2025-03-01T00:00:00Z", "respondent_name": "Ada Lovelace", "rating": 5, "content": "Changed how we collect reviews"}
  ]
}`

func TestRunAgentPrintsCardsAndTogglesPause(t *testing.T) {
	var requested string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = r.URL.Path
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, publicPayload)
	}))
	defer srv.Close()

	clock := popup.NewManualClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	out := &syncBuffer{}
	toggles := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- runAgent(ctx, agentOptions{
			SpaceID:  "space-1",
			BaseURL:  srv.URL,
			Interval: 30 * time.Second,
			Out:      out,
			Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
			Clock:    clock,
		}, toggles)
	}()

	require.Eventually(t, func() bool { return clock.Pending() == 2 }, 2*time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.Equal(t, "/api/spaces/space-1/public-data", requested)
	mu.Unlock()

	clock.Advance(time.Second)
	assert.Contains(t, out.String(), "Ada Lovelace")
	assert.Contains(t, out.String(), "★★★★★")

	toggles <- struct{}{}
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "» paused") }, time.Second, 5*time.Millisecond)

	clock.Advance(2 * time.Second)
	assert.Contains(t, out.String(), "(hidden Ada Lovelace)")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("agent did not stop after cancel")
	}
}

func TestRunAgentValidatesOptions(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	err := runAgent(context.Background(), agentOptions{BaseURL: "http://x", Logger: logg}, nil)
	assert.ErrorContains(t, err, "--space")

	err = runAgent(context.Background(), agentOptions{SpaceID: "s", Logger: logg}, nil)
	assert.ErrorContains(t, err, "--base-url")
}

func TestRunAgentFloorsSubSecondInterval(t *testing.T) {
	var mu sync.Mutex
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		fetches++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, publicPayload)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	stop := time.AfterFunc(1100*time.Millisecond, cancel)
	defer stop.Stop()
	err := runAgent(ctx, agentOptions{
		SpaceID:  "space-1",
		BaseURL:  srv.URL,
		Interval: 100 * time.Millisecond,
		Out:      &syncBuffer{},
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	}, nil)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	if fetches > 2 {
		t.Fatalf("expected at most 2 fetches in 1.1s with a 100ms interval, got %d", fetches)
	}
}
