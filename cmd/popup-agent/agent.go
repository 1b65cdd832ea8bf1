package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/trustflow/trustflow-backend/internal/display"
	"github.com/trustflow/trustflow-backend/internal/popup"
	"github.com/trustflow/trustflow-backend/pkg/logger"
)

type agentOptions struct {
	SpaceID  string
	BaseURL  string
	Interval time.Duration
	Timeout  time.Duration
	Out      io.Writer
	Logger   *logger.Logger

	Clock      popup.Clock
	HTTPClient popup.HTTPClient
}

// runAgent drives one popup engine into a terminal sink until ctx ends.
// Every receive on toggles flips hover pause.
func runAgent(ctx context.Context, opts agentOptions, toggles <-chan struct{}) error {
	if opts.SpaceID == "" {
		return errors.New("--space is required")
	}
	if opts.BaseURL == "" {
		return errors.New("--base-url is required")
	}
	if opts.Logger == nil {
		return errors.New("logger is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	source := popup.NewHTTPSource(popup.WithBaseURL(opts.BaseURL), popup.WithHTTPClient(httpClient))

	sink := display.NewTerminalSink(opts.Out)
	defer sink.Close()

	ctrl, err := popup.NewController(popup.Params{
		SpaceID:     opts.SpaceID,
		Source:      source,
		Sink:        sink,
		Clock:       opts.Clock,
		Interval:    opts.Interval,
		CardOptions: popup.CardOptions{AvatarBaseURL: opts.BaseURL + "/api/avatars"},
		Logger:      opts.Logger,
	})
	if err != nil {
		return fmt.Errorf("create controller: %w", err)
	}

	go func() {
		paused := false
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-toggles:
				if !ok {
					return
				}
				paused = !paused
				ctrl.SetPaused(paused)
				if paused {
					sink.Notice("paused")
				} else {
					sink.Notice("resumed")
				}
			}
		}
	}()

	sink.Notice(fmt.Sprintf("watching space %s on %s", opts.SpaceID, opts.BaseURL))
	if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
