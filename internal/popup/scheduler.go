package popup

import (
	"time"

	"github.com/trustflow/trustflow-backend/pkg/types"
)

const (
	// EmptyRetryDelay is how long the loop idles when the queue is empty.
	EmptyRetryDelay = 5 * time.Second
	// PauseRetryDelay is the re-check interval while the card is hovered.
	PauseRetryDelay = time.Second
	// RecoveryDelay follows a failed display cycle.
	RecoveryDelay = 5 * time.Second

	DefaultDelay    = 2 * time.Second
	DefaultDuration = 5 * time.Second
	DefaultGap      = 10 * time.Second
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWaiting
	PhaseShowing
	PhaseAdvancing
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWaiting:
		return "waiting"
	case PhaseShowing:
		return "showing"
	case PhaseAdvancing:
		return "advancing"
	case PhaseTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

type Effect int

const (
	EffectNone Effect = iota
	EffectShow
	EffectHide
	EffectTerminate
)

// Inputs are the host conditions sampled when a phase timer fires.
type Inputs struct {
	SinkAlive bool
	Paused    bool
}

// Decision is what the loop must do next: perform Effect, enter Next, and
// fire again after Delay.
type Decision struct {
	Next     Phase
	Delay    time.Duration
	Effect   Effect
	Item     Testimonial
	Priority bool
}

// Timing holds the per-loop delays, fixed when the loop starts.
type Timing struct {
	Delay    time.Duration
	Duration time.Duration
	Gap      time.Duration
}

// TimingFromSettings converts second-based settings, treating missing or
// non-positive values as unset.
func TimingFromSettings(s types.WidgetSettings) Timing {
	return Timing{
		Delay:    secondsOr(s.PopupDelay, DefaultDelay),
		Duration: secondsOr(s.PopupDuration, DefaultDuration),
		Gap:      secondsOr(s.PopupGap, DefaultGap),
	}
}

func secondsOr(v float64, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return time.Duration(v * float64(time.Second))
}

// Scheduler is the display loop state machine. Step is called each time
// the current phase's timer fires and mutates only the rotation fields of
// state (Priority, Index).
type Scheduler struct {
	Timing Timing
}

func NewScheduler(t Timing) Scheduler {
	return Scheduler{Timing: t}
}

func (s Scheduler) Step(state *State, phase Phase, in Inputs) Decision {
	switch phase {
	case PhaseIdle:
		return Decision{Next: PhaseWaiting, Delay: s.Timing.Delay}
	case PhaseWaiting:
		return s.cycle(state, in)
	case PhaseShowing:
		return Decision{Next: PhaseAdvancing, Delay: s.Timing.Gap, Effect: EffectHide}
	case PhaseAdvancing:
		// A priority that arrived during the gap suppresses the advance; its
		// display resets the index anyway.
		if state.Priority == nil {
			state.Index++
		}
		return s.cycle(state, in)
	default:
		return Decision{Next: PhaseTerminated}
	}
}

func (s Scheduler) cycle(state *State, in Inputs) Decision {
	if !in.SinkAlive {
		return Decision{Next: PhaseTerminated, Effect: EffectTerminate}
	}
	if len(state.Queue) == 0 {
		return Decision{Next: PhaseWaiting, Delay: EmptyRetryDelay}
	}
	if in.Paused {
		return Decision{Next: PhaseWaiting, Delay: PauseRetryDelay}
	}

	if state.Priority != nil {
		item := *state.Priority
		state.Priority = nil
		state.Index = 0
		return Decision{Next: PhaseShowing, Delay: s.Timing.Duration, Effect: EffectShow, Item: item, Priority: true}
	}

	state.Index = state.Index % len(state.Queue)
	if state.Index < 0 {
		state.Index = 0
	}
	return Decision{
		Next:   PhaseShowing,
		Delay:  s.Timing.Duration,
		Effect: EffectShow,
		Item:   state.Queue[state.Index],
	}
}
