// Package sched coalesces viewport-transform events into at most one
// recomputation per redraw tick and throttles the expensive sub-updates to
// independent cadences.
//
// Throttle bookkeeping lives in an explicit State value and time is read
// through an injected clock, so the behavior is testable without waiting on
// a real clock. Transform delivery is strictly last-write-wins: events
// arriving between ticks replace each other, nothing is queued.
package sched

import (
	"time"

	"github.com/matzehuels/pointscape/pkg/geom"
)

// Clock is an injectable monotonic time source.
type Clock func() time.Time

// Sub-update throttle windows. Label placement (collision) and card-set
// membership (spatial query, node creation) are the expensive passes;
// pure-opacity crossfades are not gated and run every tick.
const (
	IndicatorInterval = 90 * time.Millisecond
	MarkersInterval   = 70 * time.Millisecond
	LabelsInterval    = 90 * time.Millisecond
	CardsInterval     = 50 * time.Millisecond
)

// State holds the last-run timestamps of the throttled sub-updates.
// The zero value means "never ran": every sub-update fires on the first
// tick.
type State struct {
	LastIndicator time.Time
	LastMarkers   time.Time
	LastLabels    time.Time
	LastCards     time.Time
}

// Pass describes the work for one redraw tick: the coalesced transform and
// which throttled sub-updates are due.
type Pass struct {
	Transform geom.Transform

	Indicator bool
	Markers   bool
	Labels    bool
	Cards     bool

	// GestureEnded marks the unconditional final pass after a gesture.
	GestureEnded bool
}

// Scheduler coalesces transform events and gates sub-updates.
type Scheduler struct {
	clock   Clock
	state   State
	pending *geom.Transform
	last    geom.Transform
	primed  bool // at least one transform ever received
}

// New creates a scheduler reading time from clock. A nil clock uses
// time.Now.
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{clock: clock, last: geom.Identity}
}

// Request records a transform-change event. Multiple requests between
// ticks collapse to the latest one.
func (s *Scheduler) Request(t geom.Transform) {
	s.pending = &t
	s.primed = true
}

// State returns a copy of the current throttle state.
func (s *Scheduler) State() State { return s.state }

// Tick produces the work for one redraw tick. It reports false when there
// is nothing to do: no pending transform and no gesture-end flush.
//
// When gestureEnded is set, every sub-update runs unconditionally exactly
// once with the freshest transform, guaranteeing a final precise frame.
func (s *Scheduler) Tick(gestureEnded bool) (Pass, bool) {
	if s.pending == nil && !gestureEnded {
		return Pass{}, false
	}

	if s.pending != nil {
		s.last = *s.pending
		s.pending = nil
	}

	now := s.clock()
	p := Pass{Transform: s.last, GestureEnded: gestureEnded}

	if gestureEnded || now.Sub(s.state.LastIndicator) >= IndicatorInterval {
		p.Indicator = true
		s.state.LastIndicator = now
	}
	if gestureEnded || now.Sub(s.state.LastMarkers) >= MarkersInterval {
		p.Markers = true
		s.state.LastMarkers = now
	}
	if gestureEnded || now.Sub(s.state.LastLabels) >= LabelsInterval {
		p.Labels = true
		s.state.LastLabels = now
	}
	if gestureEnded || now.Sub(s.state.LastCards) >= CardsInterval {
		p.Cards = true
		s.state.LastCards = now
	}
	return p, true
}

// Current returns the freshest transform the scheduler has seen, whether
// or not it has been delivered by a tick yet.
func (s *Scheduler) Current() geom.Transform {
	if s.pending != nil {
		return *s.pending
	}
	return s.last
}
