package reveal

import "time"

// Element is the subset of a DOM element the sequencer mutates.
// Reads are limited to authored content (text, attributes, children);
// computed layout is never read back.
type Element interface {
	ID() string
	Attr(name string) (string, bool)
	Text() string
	Find(class string) (Element, bool)
	FindAll(class string) []Element

	SetOpacity(v float64)
	SetTranslate(dx, dy float64)
	SetProperty(name, value string)
	SetText(s string)
	AddClass(class string)
	RemoveClass(class string)
	HasClass(class string) bool

	// On registers fn for a pointer event such as "click" or "mouseenter".
	On(event string, fn func())
}

// Document resolves section roots by id.
type Document interface {
	ByID(id string) (Element, bool)
}

// Scheduler is the host event loop. Both callbacks are fire-and-forget and
// cannot be cancelled once registered.
type Scheduler interface {
	// Now returns the time elapsed since the scheduler's origin.
	Now() time.Duration
	// After runs fn once d has elapsed.
	After(d time.Duration, fn func())
	// AfterFrame runs fn on the next display refresh with that frame's timestamp.
	AfterFrame(fn func(now time.Duration))
}

// VisibilityEvent is one intersection update for an observed element.
type VisibilityEvent struct {
	ElementID    string
	Ratio        float64
	Intersecting bool
}

// Observer delivers visibility updates for an element.
type Observer interface {
	Observe(elementID string, threshold float64, fn func(VisibilityEvent)) Subscription
}

// Subscription detaches an observer callback. Unsubscribe is synchronous and
// safe to call more than once.
type Subscription interface {
	Unsubscribe()
}
