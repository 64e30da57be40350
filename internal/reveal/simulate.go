package reveal

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scroll is a scripted visibility update for Simulate.
type Scroll struct {
	Section string
	At      time.Duration
	Ratio   float64
}

// PageOrder scrolls every configured section fully into view, one per gap,
// in the order the page lays them out.
func PageOrder(cfg Config, gap time.Duration) []Scroll {
	ids := []string{cfg.Hero.ID, cfg.Skills.ID, cfg.Certificates.ID, cfg.Education.ID}
	out := make([]Scroll, len(ids))
	for i, id := range ids {
		out[i] = Scroll{Section: id, At: time.Duration(i) * gap, Ratio: 1}
	}
	return out
}

// Result is the outcome of a simulated page visit.
type Result struct {
	Sequencer *Sequencer
	Journal   []Mutation
	End       time.Duration
}

// Simulate installs the sequencer on page against a virtual clock, replays
// scrolls and runs until every callback has drained or limit is reached.
func Simulate(page *Page, cfg Config, scrolls []Scroll, limit time.Duration, logger *zap.Logger) (*Result, error) {
	clock := NewVirtualClock(cfg.FrameInterval)
	page.SetClock(clock.Now)
	vp := NewViewport()

	q, err := Install(page, vp, clock, cfg, logger)
	if err != nil {
		return nil, err
	}
	for _, s := range scrolls {
		clock.After(s.At, func() { vp.Scroll(s.Section, s.Ratio) })
	}
	end := clock.RunUntilIdle(limit)
	return &Result{Sequencer: q, Journal: page.Journal(), End: end}, nil
}

// SimulateRealtime is Simulate on a LoopScheduler: scrolls and animations
// play out in wall-clock time. It returns once every section has settled or
// limit has passed. End is the time of the last mutation.
func SimulateRealtime(ctx context.Context, page *Page, cfg Config, scrolls []Scroll, limit time.Duration, logger *zap.Logger) (*Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	loop := NewLoopScheduler(cfg.FrameInterval)
	page.SetClock(loop.Now)
	vp := NewViewport()

	var (
		q          *Sequencer
		installErr error
	)
	var poll func()
	poll = func() {
		if q.Settled() {
			cancel()
			return
		}
		loop.After(loop.frame, poll)
	}
	loop.Post(func() {
		q, installErr = Install(page, vp, loop, cfg, logger)
		if installErr != nil {
			cancel()
			return
		}
		for _, s := range scrolls {
			loop.After(s.At, func() { vp.Scroll(s.Section, s.Ratio) })
		}
		poll()
	})

	_ = loop.Run(runCtx)
	if installErr != nil {
		return nil, installErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q == nil {
		return nil, runCtx.Err()
	}

	journal := page.Journal()
	var end time.Duration
	if len(journal) > 0 {
		end = journal[len(journal)-1].At
	}
	return &Result{Sequencer: q, Journal: journal, End: end}, nil
}
