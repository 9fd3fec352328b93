package model

import (
	"encoding/json"
	"time"
)

// Phase is the lifecycle phase of a presentation session.
type Phase string

const (
	// PhaseInit is the process-start phase, before any slide is selected.
	PhaseInit Phase = "init"
	// PhaseRunning means the presentation is advancing and time accrues.
	PhaseRunning Phase = "running"
	// PhasePaused means the presentation is frozen with duration banked.
	PhasePaused Phase = "paused"
	// PhaseDone means the presenter navigated past the last slide.
	PhaseDone Phase = "done"
)

// DurationMillis serializes a time.Duration as integer milliseconds so the
// wire format stays stable across client runtimes.
type DurationMillis time.Duration

func (d DurationMillis) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).Milliseconds())
}

func (d *DurationMillis) UnmarshalJSON(data []byte) error {
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return err
	}
	*d = DurationMillis(time.Duration(ms) * time.Millisecond)
	return nil
}

// State is the authoritative position of a live presentation.
//
// Invariants: Current is set whenever Phase left PhaseInit (it may be nil
// only transiently while paused at the very start); Since is set only while
// running; Accrued never decreases and is frozen while paused or done,
// accruing live on top of Since while running.
type State struct {
	Phase   Phase          `json:"phase"`
	Current *SlideID       `json:"current,omitempty"`
	Step    int            `json:"step,omitempty"`
	Since   *time.Time     `json:"since,omitempty"`
	Accrued DurationMillis `json:"total_duration_ms"`
}

// NewState returns the initial state of a fresh session.
func NewState() State {
	return State{Phase: PhaseInit}
}

// CurrentSlide returns the current slide id, if one is selected.
func (s State) CurrentSlide() (SlideID, bool) {
	if s.Current == nil {
		return 0, false
	}
	return *s.Current, true
}

// TotalDuration is the wall-clock presenting time accrued so far: the
// banked duration plus, while running, the live time since the last resume.
func (s State) TotalDuration(now time.Time) time.Duration {
	total := time.Duration(s.Accrued)
	if s.Phase == PhaseRunning && s.Since != nil {
		total += now.Sub(*s.Since)
	}
	return total
}

// Running builds a Running state at the given slide. Duration is banked
// from the previous state: accrual happens when leaving Running, never
// when entering it, which keeps TotalDuration exact across pause cycles.
func (s State) Running(current SlideID, step int, now time.Time) State {
	since := now
	return State{
		Phase:   PhaseRunning,
		Current: &current,
		Step:    step,
		Since:   &since,
		Accrued: s.Accrued,
	}
}

// Paused freezes the state, banking the time accrued since Since.
func (s State) Paused(now time.Time) State {
	return State{
		Phase:   PhasePaused,
		Current: s.Current,
		Step:    s.Step,
		Accrued: DurationMillis(s.TotalDuration(now)),
	}
}

// Done marks the presentation finished past the last slide.
func (s State) Done(now time.Time) State {
	return State{
		Phase:   PhaseDone,
		Current: s.Current,
		Step:    s.Step,
		Accrued: DurationMillis(s.TotalDuration(now)),
	}
}

// WithSlide moves the current slide without changing phase, resetting the
// step. Used for navigation inside Running and for reload remapping.
func (s State) WithSlide(current SlideID) State {
	next := s
	next.Current = &current
	next.Step = 0
	return next
}

// WithStep changes the revealed step on the current slide.
func (s State) WithStep(step int) State {
	next := s
	next.Step = step
	return next
}
