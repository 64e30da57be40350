package reveal

import (
	"math"
	"strconv"
	"time"
)

// PctProperty is the custom property a ring reads its fill from.
const PctProperty = "--pct"

// Ease is the in-out cubic curve over normalized progress p in [0, 1].
func Ease(p float64) float64 {
	if p < 0.5 {
		return 4 * p * p * p
	}
	return 1 - math.Pow(-2*p+2, 3)/2
}

// Progress returns elapsed/duration clamped to [0, 1].
func Progress(start, now, duration time.Duration) float64 {
	if duration <= 0 {
		return 1
	}
	p := float64(now-start) / float64(duration)
	return min(max(p, 0), 1)
}

// Sample is the value displayed at now for a run from 0 to goal that began
// at start.
func Sample(start, now, duration time.Duration, goal float64) float64 {
	return Ease(Progress(start, now, duration)) * goal
}

// Rings counts each target from 0 up to its Goal, one sample per frame.
// Ring i starts i×stagger after trigger and runs independently of the others.
type Rings struct {
	name     string
	targets  []Target
	duration time.Duration
	stagger  time.Duration
}

// NewRings returns a ring program. Goals come from each target's Goal.
func NewRings(name string, targets []Target, duration, stagger time.Duration) *Rings {
	return &Rings{name: name, targets: targets, duration: duration, stagger: stagger}
}

func (r *Rings) Name() string { return r.name }

func (r *Rings) Start(s Scheduler, done func()) {
	remaining := len(r.targets)
	if remaining == 0 {
		done()
		return
	}
	for i, t := range r.targets {
		t.El.SetProperty(PctProperty, "0")
		s.After(Stagger(r.stagger).At(i)+t.Delay, func() {
			r.run(s, t, func() {
				remaining--
				if remaining == 0 {
					done()
				}
			})
		})
	}
}

func (r *Rings) run(s Scheduler, t Target, done func()) {
	start := s.Now()
	var frame func(now time.Duration)
	frame = func(now time.Duration) {
		p := Progress(start, now, r.duration)
		t.El.SetProperty(PctProperty, strconv.FormatFloat(Ease(p)*t.Goal, 'f', 2, 64))
		if p < 1 {
			s.AfterFrame(frame)
			return
		}
		done()
	}
	s.AfterFrame(frame)
}

// Highlight keeps at most one element of a group marked ClassActive.
// It is bound at install time and is not gated by visibility.
type Highlight struct {
	members []Element
}

// NewHighlight wires click and mouseenter on every member to Select.
func NewHighlight(members []Element) *Highlight {
	h := &Highlight{members: members}
	for _, m := range members {
		m.On("click", func() { h.Select(m) })
		m.On("mouseenter", func() { h.Select(m) })
	}
	return h
}

// Select marks el active and clears every other member.
func (h *Highlight) Select(el Element) {
	for _, m := range h.members {
		m.RemoveClass(ClassActive)
	}
	el.AddClass(ClassActive)
}

// Active returns the currently active member, if any.
func (h *Highlight) Active() (Element, bool) {
	for _, m := range h.members {
		if m.HasClass(ClassActive) {
			return m, true
		}
	}
	return nil, false
}
