package reveal

import (
	"container/heap"
	"time"
)

// DefaultFrameInterval approximates a 60Hz display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// VirtualClock is a deterministic Scheduler. Nothing runs until the clock
// is advanced. Timers fire in due order, ties broken by registration order.
// Frames fire on multiples of the frame interval; a frame callback requested
// at time t runs on the first frame strictly after t, and timers due at a
// frame instant run before that frame's callbacks.
type VirtualClock struct {
	now    time.Duration
	frame  time.Duration
	seq    uint64
	timers timerQueue
	frames []frameReq
	frameN int
}

type frameReq struct {
	due time.Duration
	fn  func(time.Duration)
}

// NewVirtualClock returns a clock at time zero. A non-positive frame interval
// selects DefaultFrameInterval.
func NewVirtualClock(frame time.Duration) *VirtualClock {
	if frame <= 0 {
		frame = DefaultFrameInterval
	}
	return &VirtualClock{frame: frame}
}

func (c *VirtualClock) Now() time.Duration { return c.now }

func (c *VirtualClock) After(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	c.seq++
	heap.Push(&c.timers, &timer{due: c.now + d, seq: c.seq, fn: fn})
}

func (c *VirtualClock) AfterFrame(fn func(now time.Duration)) {
	c.frames = append(c.frames, frameReq{due: c.nextFrame(), fn: fn})
}

// Frames returns how many display refreshes have run callbacks.
func (c *VirtualClock) Frames() int { return c.frameN }

// Pending reports whether any timer or frame callback is waiting.
func (c *VirtualClock) Pending() bool {
	return len(c.timers) > 0 || len(c.frames) > 0
}

func (c *VirtualClock) nextFrame() time.Duration {
	return (c.now/c.frame + 1) * c.frame
}

// Advance runs every callback due within d of the current time and leaves
// the clock at now+d. A negative d only runs callbacks already due.
func (c *VirtualClock) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.runUntil(c.now + d)
}

// AdvanceTo moves the clock to the absolute time t.
func (c *VirtualClock) AdvanceTo(t time.Duration) {
	if t > c.now {
		c.runUntil(t)
	}
}

// RunUntilIdle advances until nothing is pending or limit has elapsed, and
// returns the time of the last callback that ran.
func (c *VirtualClock) RunUntilIdle(limit time.Duration) time.Duration {
	end := c.now + limit
	last := c.now
	for c.Pending() {
		at, ok := c.step(end)
		if !ok {
			break
		}
		last = at
	}
	return last
}

func (c *VirtualClock) runUntil(end time.Duration) {
	for {
		if _, ok := c.step(end); !ok {
			break
		}
	}
	c.now = end
}

// step runs the earliest due batch at or before end.
func (c *VirtualClock) step(end time.Duration) (time.Duration, bool) {
	timerDue, haveTimer := time.Duration(0), len(c.timers) > 0
	if haveTimer {
		timerDue = c.timers[0].due
	}
	frameDue, haveFrame := time.Duration(0), len(c.frames) > 0
	if haveFrame {
		frameDue = c.frames[0].due
	}

	switch {
	case haveTimer && (!haveFrame || timerDue <= frameDue):
		if timerDue > end {
			return 0, false
		}
		t := heap.Pop(&c.timers).(*timer)
		c.now = t.due
		t.fn()
		return t.due, true
	case haveFrame:
		if frameDue > end {
			return 0, false
		}
		c.now = frameDue
		n := 0
		for n < len(c.frames) && c.frames[n].due <= frameDue {
			n++
		}
		batch := c.frames[:n:n]
		c.frames = c.frames[n:]
		c.frameN++
		for _, r := range batch {
			r.fn(frameDue)
		}
		return frameDue, true
	default:
		return 0, false
	}
}

type timer struct {
	due time.Duration
	seq uint64
	fn  func()
}

type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q timerQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *timerQueue) Push(x any) { *q = append(*q, x.(*timer)) }

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}
