package reveal

import "time"

// Class names shared with the page stylesheet.
const (
	ClassHidden    = "is-hidden"
	ClassShow      = "show"
	ClassFromRight = "from-right"
	ClassFromLeft  = "from-left"
	ClassTyping    = "typing"
	ClassActive    = "active"
)

// Delay computes a target's start offset from its index.
type Delay interface {
	At(i int) time.Duration
}

// Stagger delays target i by i×step.
type Stagger time.Duration

func (s Stagger) At(i int) time.Duration { return time.Duration(i) * time.Duration(s) }

// Fixed assigns explicit delays by index. Targets past the end reuse the
// last delay.
type Fixed []time.Duration

func (f Fixed) At(i int) time.Duration {
	switch {
	case len(f) == 0:
		return 0
	case i < len(f):
		return f[i]
	default:
		return f[len(f)-1]
	}
}

// Target is one element animated by a program.
type Target struct {
	El Element
	// Direction is an entry class such as ClassFromRight, applied while hidden.
	Direction string
	// OffsetX is the initial horizontal translation of a style reveal, in px.
	OffsetX float64
	// Goal is the terminal value of a numeric program.
	Goal float64
	// Delay is added to the delay policy's offset for this target.
	Delay time.Duration
}

// RevealMode selects how a Reveal reaches its terminal state.
type RevealMode int

const (
	// StyleMode writes opacity and translation directly and relies on a CSS
	// transition to interpolate.
	StyleMode RevealMode = iota
	// ClassMode removes ClassHidden and lets the stylesheet animate.
	ClassMode
)

// Reveal moves each target to its terminal state once its delay elapses.
type Reveal struct {
	name       string
	mode       RevealMode
	targets    []Target
	delay      Delay
	shownClass string
}

// StyleReveal hides targets at their offset and fades them in. transition,
// when non-empty, is written to the "transition" property during prepare.
func StyleReveal(name string, targets []Target, delay Delay, transition string) *Reveal {
	for _, t := range targets {
		t.El.SetOpacity(0)
		t.El.SetTranslate(t.OffsetX, 0)
		if transition != "" {
			t.El.SetProperty("transition", transition)
		}
	}
	return &Reveal{name: name, mode: StyleMode, targets: targets, delay: delay}
}

// ClassReveal hides targets with ClassHidden plus their direction class.
// On reveal ClassHidden is removed and shown, when non-empty, is added.
func ClassReveal(name string, targets []Target, delay Delay, shown string) *Reveal {
	for _, t := range targets {
		t.El.AddClass(ClassHidden)
		if t.Direction != "" {
			t.El.AddClass(t.Direction)
		}
	}
	return &Reveal{name: name, mode: ClassMode, targets: targets, delay: delay, shownClass: shown}
}

func (r *Reveal) Name() string { return r.name }

// Targets returns the targets in reveal order.
func (r *Reveal) Targets() []Target { return r.targets }

// Offset returns the scheduled delay of target i after trigger.
func (r *Reveal) Offset(i int) time.Duration {
	return r.delay.At(i) + r.targets[i].Delay
}

func (r *Reveal) Start(s Scheduler, done func()) {
	remaining := len(r.targets)
	if remaining == 0 {
		done()
		return
	}
	finish := func() {
		remaining--
		if remaining == 0 {
			done()
		}
	}
	for i, t := range r.targets {
		s.After(r.Offset(i), func() {
			switch r.mode {
			case ClassMode:
				t.El.RemoveClass(ClassHidden)
				if r.shownClass != "" {
					t.El.AddClass(r.shownClass)
				}
				finish()
			default:
				s.AfterFrame(func(time.Duration) {
					t.El.SetOpacity(1)
					t.El.SetTranslate(0, 0)
					finish()
				})
			}
		})
	}
}
