package reveal

import (
	"fmt"

	"go.uber.org/zap"
)

// State is a Section's position in its one-way lifecycle.
type State int

const (
	Unarmed State = iota
	Armed
	Triggered
	Settled
)

func (s State) String() string {
	switch s {
	case Unarmed:
		return "unarmed"
	case Armed:
		return "armed"
	case Triggered:
		return "triggered"
	case Settled:
		return "settled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Program is a one-shot animation started when its section triggers.
// Start must not block; done is called exactly once when the program's last
// mutation has been applied.
type Program interface {
	Name() string
	Start(s Scheduler, done func())
}

// Section owns the visibility subscription and the programs of one page
// region. It triggers at most once.
type Section struct {
	id        string
	threshold float64
	programs  []Program

	state   State
	sub     Subscription
	sched   Scheduler
	pending int
	runs    int

	logger *zap.Logger
}

// NewSection returns an unarmed section.
func NewSection(id string, threshold float64, programs ...Program) *Section {
	return &Section{
		id:        id,
		threshold: threshold,
		programs:  programs,
		logger:    zap.NewNop(),
	}
}

func (s *Section) ID() string { return s.id }
func (s *Section) Threshold() float64 { return s.threshold }
func (s *Section) State() State { return s.state }
func (s *Section) Programs() []Program { return s.programs }

// Runs reports how many times the section's programs were started.
func (s *Section) Runs() int { return s.runs }

// SetLogger replaces the section's logger.
func (s *Section) SetLogger(l *zap.Logger) { s.logger = l }

func (s *Section) transition(from, to State) bool {
	if s.state != from {
		return false
	}
	s.state = to
	return true
}

// Arm subscribes the section to visibility updates.
func (s *Section) Arm(obs Observer, sched Scheduler) error {
	if !s.transition(Unarmed, Armed) {
		return fmt.Errorf("arm section %q in state %s: %w", s.id, s.state, ErrAlreadyArmed)
	}
	s.sched = sched
	s.sub = obs.Observe(s.id, s.threshold, s.handle)
	return nil
}

func (s *Section) qualifies(ev VisibilityEvent) bool {
	return ev.Intersecting && ev.Ratio >= s.threshold
}

func (s *Section) handle(ev VisibilityEvent) {
	if !s.qualifies(ev) {
		return
	}
	s.fire()
}

func (s *Section) fire() {
	if !s.transition(Armed, Triggered) {
		return
	}
	s.sub.Unsubscribe()
	s.sub = nil
	s.runs++
	s.pending = len(s.programs)
	s.logger.Debug("section triggered",
		zap.String("section", s.id),
		zap.Int("programs", len(s.programs)),
		zap.Duration("at", s.sched.Now()))

	if s.pending == 0 {
		s.settle()
		return
	}
	for _, p := range s.programs {
		p.Start(s.sched, s.programDone)
	}
}

func (s *Section) programDone() {
	s.pending--
	if s.pending == 0 {
		s.settle()
	}
}

func (s *Section) settle() {
	if s.transition(Triggered, Settled) {
		s.logger.Debug("section settled", zap.String("section", s.id), zap.Duration("at", s.sched.Now()))
	}
}
