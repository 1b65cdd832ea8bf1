package popup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/trustflow/trustflow-backend/pkg/config"
	"github.com/trustflow/trustflow-backend/pkg/logger"
	"github.com/trustflow/trustflow-backend/pkg/types"
)

const (
	// DefaultPollInterval is used when Params.Interval is unset.
	DefaultPollInterval = 30 * time.Second
	// MinPollInterval is the floor for any positive interval.
	MinPollInterval = config.MinPollInterval
)

// Sink is the display surface. Show replaces any visible card.
type Sink interface {
	Alive() bool
	Show(card Card) error
	Hide(card Card)
}

type Params struct {
	SpaceID     string
	Source      Source
	Sink        Sink
	Clock       Clock
	Interval    time.Duration
	CardOptions CardOptions
	Observer    Observer
	Logger      *logger.Logger
}

// Controller owns one engine instance: the poller, the merged queue state and
// the display loop. All state is guarded by mu; sink calls happen outside it.
type Controller struct {
	spaceID  string
	source   Source
	sink     Sink
	clock    Clock
	interval time.Duration
	cardOpts CardOptions
	obs      Observer
	logg     *logger.Logger

	mu       sync.Mutex
	ctx      context.Context
	state    State
	loaded   bool
	running  bool
	paused   bool
	stopped  bool
	phase    Phase
	sched    Scheduler
	settings types.WidgetSettings
	timer    Timer
	current  Card
}

func NewController(p Params) (*Controller, error) {
	if p.SpaceID == "" {
		return nil, errors.New("popup: space id is required")
	}
	if p.Source == nil {
		return nil, errors.New("popup: source is required")
	}
	if p.Sink == nil {
		return nil, errors.New("popup: sink is required")
	}
	if p.Logger == nil {
		return nil, errors.New("popup: logger is required")
	}
	if p.Clock == nil {
		p.Clock = RealClock{}
	}
	switch {
	case p.Interval <= 0:
		p.Interval = DefaultPollInterval
	case p.Interval < MinPollInterval:
		p.Interval = MinPollInterval
	}
	if p.Observer == nil {
		p.Observer = nopObserver{}
	}
	return &Controller{
		spaceID:  p.SpaceID,
		source:   p.Source,
		sink:     p.Sink,
		clock:    p.Clock,
		interval: p.Interval,
		cardOpts: p.CardOptions,
		obs:      p.Observer,
		logg:     p.Logger,
		ctx:      context.Background(),
		phase:    PhaseIdle,
	}, nil
}

// Run polls immediately and then every interval until ctx is done. Poll
// failures never end the run. On return the display loop is stopped.
func (c *Controller) Run(ctx context.Context) error {
	ctx = c.logg.WithSpaceID(ctx, c.spaceID)
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()
	defer c.stop()

	for {
		_ = c.PollOnce(ctx)

		tick := make(chan struct{})
		t := c.clock.AfterFunc(c.interval, func() { close(tick) })
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-tick:
		}
	}
}

// PollOnce performs a single fetch and merge. The first successful enabled
// response is the initial load and never raises a priority item. A response
// with popups disabled leaves the queue untouched and does not start the loop.
func (c *Controller) PollOnce(ctx context.Context) error {
	data, err := c.source.PublicData(ctx, c.spaceID)
	if err != nil {
		c.obs.ObserveFetch(FetchResultError)
		warnCtx := c.logg.WithField(ctx, "error", err.Error())
		c.logg.Warn(warnCtx, "popup.fetch_failed")
		return err
	}
	if !data.PopupsEnabled() {
		c.obs.ObserveFetch(FetchResultDisabled)
		return nil
	}
	c.obs.ObserveFetch(FetchResultOK)

	c.mu.Lock()
	defer c.mu.Unlock()

	firstLoad := !c.loaded
	c.loaded = true
	c.state = Merge(c.state, data.Testimonials, firstLoad)

	if !c.running && !c.stopped {
		c.startLocked(*data.WidgetSettings)
	}
	return nil
}

// SetPaused records hover state. It only influences the next scheduling
// decision; the visible card's timers keep running.
func (c *Controller) SetPaused(paused bool) {
	c.mu.Lock()
	c.paused = paused
	c.mu.Unlock()
}

// Snapshot returns a copy of the queue state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// startLocked begins the display loop with the settings of the response
// that started it.
func (c *Controller) startLocked(settings types.WidgetSettings) {
	c.running = true
	c.settings = settings
	c.sched = NewScheduler(TimingFromSettings(settings))
	c.phase = PhaseIdle
	d := c.sched.Step(&c.state, PhaseIdle, Inputs{})
	c.phase = d.Next
	c.scheduleLocked(d.Delay)
	c.logg.Info(c.ctx, "popup.loop_started")
}

func (c *Controller) scheduleLocked(delay time.Duration) {
	if c.stopped {
		return
	}
	c.timer = c.clock.AfterFunc(delay, c.fire)
}

func (c *Controller) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.running = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// fire runs one scheduler transition. Any failure while selecting or
// rendering reschedules the cycle after RecoveryDelay.
func (c *Controller) fire() {
	alive := c.sinkAlive()

	c.mu.Lock()
	if c.stopped {
		c.running = false
		c.mu.Unlock()
		return
	}
	ctx := c.ctx
	d, err := c.stepLocked(Inputs{SinkAlive: alive, Paused: c.paused})
	if err == nil {
		c.phase = d.Next
		if d.Next == PhaseTerminated {
			c.running = false
		}
	}
	settings := c.settings
	c.mu.Unlock()

	if err == nil {
		err = c.apply(ctx, d, settings)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.obs.ObserveRecovery()
		c.logg.Error(ctx, "popup.cycle_recovered", err)
		c.phase = PhaseWaiting
		c.scheduleLocked(RecoveryDelay)
		return
	}
	if d.Next != PhaseTerminated {
		c.scheduleLocked(d.Delay)
	}
}

func (c *Controller) stepLocked(in Inputs) (d Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("popup step panic: %v", r)
		}
	}()
	return c.sched.Step(&c.state, c.phase, in), nil
}

func (c *Controller) apply(ctx context.Context, d Decision, settings types.WidgetSettings) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("popup render panic: %v", r)
		}
	}()

	switch d.Effect {
	case EffectShow:
		card := BuildCard(d.Item, settings, c.cardOpts, d.Priority)
		if err := c.sink.Show(card); err != nil {
			return fmt.Errorf("show card %s: %w", card.TestimonialID, err)
		}
		c.mu.Lock()
		c.current = card
		c.mu.Unlock()
		kind := CardKindRotation
		if d.Priority {
			kind = CardKindPriority
		}
		c.obs.ObserveCardShown(kind)
	case EffectHide:
		c.mu.Lock()
		card := c.current
		c.mu.Unlock()
		c.sink.Hide(card)
	case EffectTerminate:
		c.logg.Info(ctx, "popup.loop_terminated")
	}
	return nil
}

func (c *Controller) sinkAlive() (alive bool) {
	defer func() {
		if r := recover(); r != nil {
			alive = false
		}
	}()
	return c.sink.Alive()
}
