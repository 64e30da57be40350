package reveal

import "slices"

// Viewport is an in-memory Observer. Events are pushed with Publish and
// delivered synchronously to the element's current subscribers.
type Viewport struct {
	subs map[string][]*viewportSub
}

// NewViewport returns a viewport with no subscribers.
func NewViewport() *Viewport {
	return &Viewport{subs: make(map[string][]*viewportSub)}
}

type viewportSub struct {
	v         *Viewport
	elementID string
	fn        func(VisibilityEvent)
	active    bool
}

func (s *viewportSub) Unsubscribe() {
	if !s.active {
		return
	}
	s.active = false
	s.v.subs[s.elementID] = slices.DeleteFunc(s.v.subs[s.elementID], func(o *viewportSub) bool {
		return o == s
	})
}

// Observe subscribes fn to every update for elementID. The viewport streams
// all ratio changes; comparing against threshold is left to the subscriber.
func (v *Viewport) Observe(elementID string, _ float64, fn func(VisibilityEvent)) Subscription {
	s := &viewportSub{v: v, elementID: elementID, fn: fn, active: true}
	v.subs[elementID] = append(v.subs[elementID], s)
	return s
}

// Subscribers returns the number of live subscriptions for elementID.
func (v *Viewport) Subscribers(elementID string) int { return len(v.subs[elementID]) }

// Publish delivers ev to every subscriber of ev.ElementID. A subscriber that
// unsubscribes during delivery receives nothing further, even within the
// same Publish call.
func (v *Viewport) Publish(ev VisibilityEvent) {
	for _, s := range slices.Clone(v.subs[ev.ElementID]) {
		if s.active {
			s.fn(ev)
		}
	}
}

// Scroll publishes an entering event at ratio followed by a leaving event,
// the pattern produced by scrolling a section through the viewport.
func (v *Viewport) Scroll(elementID string, ratio float64) {
	v.Publish(VisibilityEvent{ElementID: elementID, Ratio: ratio, Intersecting: true})
	v.Publish(VisibilityEvent{ElementID: elementID, Ratio: 0, Intersecting: false})
}
