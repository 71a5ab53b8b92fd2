package playback

import (
	"context"
	"errors"
	"time"

	"github.com/llehouerou/lumen/internal/media"
	"github.com/llehouerou/lumen/internal/streamplan"
)

const (
	activeReportInterval = 3 * time.Second
	pausedReportInterval = 15 * time.Second
)

// Reporter receives session progress. Calls are made in order from a single
// worker goroutine, never from the controller goroutine.
type Reporter interface {
	ReportStart(ctx context.Context, item *media.Item, plan *streamplan.Plan, pos media.Ticks) error
	ReportProgress(ctx context.Context, item *media.Item, plan *streamplan.Plan, pos media.Ticks, paused bool) error
	ReportStopped(ctx context.Context, item *media.Item, plan *streamplan.Plan, pos media.Ticks) error
}

// MultiReporter fans every report out to all of its reporters.
type MultiReporter []Reporter

func (m MultiReporter) ReportStart(ctx context.Context, item *media.Item, plan *streamplan.Plan, pos media.Ticks) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.ReportStart(ctx, item, plan, pos))
	}
	return errors.Join(errs...)
}

func (m MultiReporter) ReportProgress(ctx context.Context, item *media.Item, plan *streamplan.Plan, pos media.Ticks, paused bool) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.ReportProgress(ctx, item, plan, pos, paused))
	}
	return errors.Join(errs...)
}

func (m MultiReporter) ReportStopped(ctx context.Context, item *media.Item, plan *streamplan.Plan, pos media.Ticks) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.ReportStopped(ctx, item, plan, pos))
	}
	return errors.Join(errs...)
}

type loopKind int

const (
	loopNone loopKind = iota
	loopActive
	loopPaused
)

// startActiveLoop reports immediately, then every activeReportInterval while
// the engine renders. Starting one loop always stops the other.
func (c *Controller) startActiveLoop() {
	c.stopLoops()
	if c.plan == nil {
		return
	}
	c.loop = loopActive
	c.reportProgress(false)
	c.loopTimer.schedule(activeReportInterval, c.box.post, c.activeTick)
}

func (c *Controller) activeTick() {
	if c.state == StateIdle || c.state == StateUndefined {
		c.loop = loopNone
		return
	}
	if c.isPlaying() {
		c.refresh()
		c.reportProgress(false)
	}
	c.loopTimer.schedule(activeReportInterval, c.box.post, c.activeTick)
}

// startPausedLoop reports immediately, then every pausedReportInterval until
// playback leaves Paused.
func (c *Controller) startPausedLoop() {
	c.stopLoops()
	c.loop = loopPaused
	c.reportProgress(true)
	c.loopTimer.schedule(pausedReportInterval, c.box.post, c.pausedTick)
}

func (c *Controller) pausedTick() {
	if c.queue.Current() == nil || c.state != StatePaused {
		c.loop = loopNone
		return
	}
	c.refresh()
	c.reportProgress(true)
	c.loopTimer.schedule(pausedReportInterval, c.box.post, c.pausedTick)
}

func (c *Controller) stopLoops() {
	c.loopTimer.cancel()
	c.loop = loopNone
}

func (c *Controller) reportProgress(paused bool) {
	item, plan, ok := c.snapshot()
	if !ok {
		return
	}
	pos := c.pos.current
	if item.IsLive() {
		pos = c.pos.timeShifted(c.enginePosition(), c.now(), c.liveDirect)
	}
	ticks := media.ToTicks(pos)
	c.report("report progress", func(ctx context.Context, r Reporter) error {
		return r.ReportProgress(ctx, item, plan, ticks, paused)
	})
}

func (c *Controller) reportStart(pos time.Duration) {
	item, plan, ok := c.snapshot()
	if !ok {
		return
	}
	ticks := media.ToTicks(pos)
	c.report("report start", func(ctx context.Context, r Reporter) error {
		return r.ReportStart(ctx, item, plan, ticks)
	})
}

func (c *Controller) reportStopped() {
	item, plan, ok := c.snapshot()
	if !ok {
		return
	}
	ticks := media.ToTicks(c.pos.current)
	c.report("report stopped", func(ctx context.Context, r Reporter) error {
		return r.ReportStopped(ctx, item, plan, ticks)
	})
}

// report hands a job to the report worker. Jobs run in submission order.
func (c *Controller) report(what string, job func(ctx context.Context, r Reporter) error) {
	r, ctx, logger := c.reporter, c.reportCtx, c.logger
	c.reports.post(func() {
		if err := job(ctx, r); err != nil {
			logger.WithError(err).Warn(what)
		}
	})
}

// snapshot copies the current item and plan for use off the controller
// goroutine.
func (c *Controller) snapshot() (*media.Item, *streamplan.Plan, bool) {
	item := c.queue.Current()
	if item == nil || c.plan == nil {
		return nil, nil, false
	}
	it, plan := *item, *c.plan
	return &it, &plan, true
}

type nopReporter struct{}

func (nopReporter) ReportStart(context.Context, *media.Item, *streamplan.Plan, media.Ticks) error {
	return nil
}

func (nopReporter) ReportProgress(context.Context, *media.Item, *streamplan.Plan, media.Ticks, bool) error {
	return nil
}

func (nopReporter) ReportStopped(context.Context, *media.Item, *streamplan.Plan, media.Ticks) error {
	return nil
}
