package reveal

import (
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Sequencer owns the sections installed on one page.
type Sequencer struct {
	sections   []*Section
	highlights map[string]*Highlight
	logger     *zap.Logger
}

// Sections returns the installed sections in page order.
func (q *Sequencer) Sections() []*Section { return q.sections }

// Section returns the installed section with id.
func (q *Sequencer) Section(id string) (*Section, bool) {
	for _, s := range q.sections {
		if s.ID() == id {
			return s, true
		}
	}
	return nil, false
}

// Highlight returns the highlight group bound in section id.
func (q *Sequencer) Highlight(id string) (*Highlight, bool) {
	h, ok := q.highlights[id]
	return h, ok
}

// Settled reports whether every installed section has settled.
func (q *Sequencer) Settled() bool {
	for _, s := range q.sections {
		if s.State() != Settled {
			return false
		}
	}
	return true
}

// Install prepares and arms every section of the portfolio page found in
// doc. Sections whose elements are missing are skipped.
func Install(doc Document, obs Observer, sched Scheduler, cfg Config, logger *zap.Logger) (*Sequencer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &Sequencer{highlights: make(map[string]*Highlight), logger: logger}

	builders := []func(Document, Config) *Section{
		q.hero,
		q.skills,
		q.certificates,
		q.education,
	}
	var errs []error
	for _, build := range builders {
		s := build(doc, cfg)
		if s == nil {
			continue
		}
		s.SetLogger(logger)
		if err := s.Arm(obs, sched); err != nil {
			errs = append(errs, err)
			continue
		}
		q.sections = append(q.sections, s)
	}
	logger.Debug("sequencer installed", zap.Int("sections", len(q.sections)))
	return q, errors.Join(errs...)
}

func (q *Sequencer) skip(section, reason string) {
	q.logger.Debug("section skipped", zap.String("section", section), zap.String("reason", reason))
}

func (q *Sequencer) hero(doc Document, cfg Config) *Section {
	c := cfg.Hero
	root, ok := doc.ByID(c.ID)
	if !ok {
		q.skip(c.ID, "missing section element")
		return nil
	}
	var targets []Target
	if text, ok := root.Find("hero-text"); ok {
		targets = append(targets, Target{El: text, OffsetX: c.TextOffset})
	}
	if mock, ok := root.Find("mockup"); ok {
		targets = append(targets, Target{El: mock, OffsetX: c.MockupOffset, Delay: c.MockupGap})
	}
	if len(targets) == 0 {
		q.skip(c.ID, "no hero-text or mockup")
		return nil
	}
	programs := []Program{StyleReveal("hero-reveal", targets, Fixed{0}, c.Transition)}
	if roles, ok := root.Find("roles"); ok {
		programs = append(programs, NewTyping(roles, c.TypingInterval))
	}
	return NewSection(c.ID, c.Threshold, programs...)
}

func (q *Sequencer) skills(doc Document, cfg Config) *Section {
	c := cfg.Skills
	root, ok := doc.ByID(c.ID)
	if !ok {
		q.skip(c.ID, "missing section element")
		return nil
	}
	rings := root.FindAll("ring")
	targets := make([]Target, 0, len(rings))
	for _, r := range rings {
		targets = append(targets, Target{El: r, Goal: ringGoal(r)})
	}
	q.highlights[c.ID] = NewHighlight(rings)
	return NewSection(c.ID, c.Threshold, NewRings("rings", targets, c.Duration, c.Stagger))
}

// ringGoal parses the integer prefix of data-pct; anything unparsable is 0.
func ringGoal(el Element) float64 {
	raw, _ := el.Attr("data-pct")
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[0] == '-' || raw[0] == '+') {
		end++
	}
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0
	}
	return float64(n)
}

func (q *Sequencer) certificates(doc Document, cfg Config) *Section {
	c := cfg.Certificates
	root, ok := doc.ByID(c.ID)
	if !ok {
		q.skip(c.ID, "missing section element")
		return nil
	}
	items := root.FindAll("cert-item")
	if len(items) == 0 {
		q.skip(c.ID, "no cert-item elements")
		return nil
	}
	targets := make([]Target, len(items))
	for i, el := range items {
		dir := ClassFromRight
		if i%2 == 1 {
			dir = ClassFromLeft
		}
		targets[i] = Target{El: el, Direction: dir}
	}
	return NewSection(c.ID, c.Threshold, ClassReveal("certificates", targets, Stagger(c.Stagger), ClassShow))
}

func (q *Sequencer) education(doc Document, cfg Config) *Section {
	c := cfg.Education
	root, ok := doc.ByID(c.ID)
	if !ok {
		q.skip(c.ID, "missing section element")
		return nil
	}
	photo, okPhoto := root.Find("side-photo")
	card, okCard := root.Find("card-dark")
	if !okPhoto || !okCard {
		q.skip(c.ID, "side-photo and card-dark are both required")
		return nil
	}
	targets := []Target{{El: photo}, {El: card}}
	return NewSection(c.ID, c.Threshold, ClassReveal("education", targets, Fixed{c.PhotoDelay, c.CardDelay}, ""))
}
