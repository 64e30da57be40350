package reveal

import (
	"context"
	"sync"
	"time"
)

// LoopScheduler is a wall-clock Scheduler. Callbacks registered through it
// are serialized onto the goroutine running Run, so programs never observe
// concurrent mutation of an element.
type LoopScheduler struct {
	origin time.Time
	frame  time.Duration
	tasks  chan func()
	done   chan struct{}
	once   sync.Once

	mu     sync.Mutex
	frames []func(time.Duration)
	timers map[*time.Timer]struct{}
}

// NewLoopScheduler returns a scheduler whose origin is the moment of creation.
func NewLoopScheduler(frame time.Duration) *LoopScheduler {
	if frame <= 0 {
		frame = DefaultFrameInterval
	}
	return &LoopScheduler{
		origin: time.Now(),
		frame:  frame,
		tasks:  make(chan func(), 64),
		done:   make(chan struct{}),
		timers: make(map[*time.Timer]struct{}),
	}
}

func (l *LoopScheduler) Now() time.Duration { return time.Since(l.origin) }

func (l *LoopScheduler) After(d time.Duration, fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		l.mu.Lock()
		delete(l.timers, t)
		l.mu.Unlock()
		l.post(fn)
	})
	l.timers[t] = struct{}{}
}

func (l *LoopScheduler) AfterFrame(fn func(now time.Duration)) {
	l.mu.Lock()
	l.frames = append(l.frames, fn)
	l.mu.Unlock()
}

// Post queues fn to run on the loop goroutine.
func (l *LoopScheduler) Post(fn func()) { l.post(fn) }

func (l *LoopScheduler) post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// Run executes callbacks until ctx is cancelled. Timers still pending at
// that point are stopped and their callbacks dropped. A scheduler runs once;
// later calls return ErrLoopStopped.
func (l *LoopScheduler) Run(ctx context.Context) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}
	ticker := time.NewTicker(l.frame)
	defer ticker.Stop()
	defer l.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		case <-ticker.C:
			l.mu.Lock()
			batch := l.frames
			l.frames = nil
			l.mu.Unlock()
			now := l.Now()
			for _, fn := range batch {
				fn(now)
			}
		}
	}
}

func (l *LoopScheduler) stop() {
	l.once.Do(func() { close(l.done) })
	l.mu.Lock()
	defer l.mu.Unlock()
	for t := range l.timers {
		t.Stop()
	}
	clear(l.timers)
}
