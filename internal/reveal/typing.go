package reveal

import (
	"strings"
	"time"
)

// Typing reveals a target's text one rune per interval. The source is the
// element's trimmed text when Start runs; Start clears it before typing.
type Typing struct {
	el       Element
	interval time.Duration

	started bool
	source  []rune
}

func NewTyping(el Element, interval time.Duration) *Typing {
	return &Typing{el: el, interval: interval}
}

func (t *Typing) Name() string { return "typing" }

// Source returns the full string being typed. Before Start it is the
// element's current trimmed text.
func (t *Typing) Source() string { return string(t.runes()) }

// Steps is the number of text writes the program performs: the empty prefix
// through the full string.
func (t *Typing) Steps() int { return len(t.runes()) + 1 }

func (t *Typing) runes() []rune {
	if t.started {
		return t.source
	}
	return []rune(strings.TrimSpace(t.el.Text()))
}

// Start writes step 0 immediately and each following step one interval later.
// ClassTyping is removed in the same step that writes the full string.
func (t *Typing) Start(s Scheduler, done func()) {
	t.source = t.runes()
	t.started = true
	t.el.SetText("")
	t.el.AddClass(ClassTyping)
	var step func(i int)
	step = func(i int) {
		t.el.SetText(string(t.source[:i]))
		if i == len(t.source) {
			t.el.RemoveClass(ClassTyping)
			done()
			return
		}
		s.After(t.interval, func() { step(i + 1) })
	}
	step(0)
}
