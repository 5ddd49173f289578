package status

import (
	"context"
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"
)

// message is one event on the reporter's side channel.
type message int

const (
	addItem message = iota
	doneItem
)

// Reporter is the Status Reporter (C9): it accumulates total/done counts
// from add_item/done_item messages emitted by Producer and Consumer
// workers and renders a progress bar at ≥1 Hz. Debug mode suppresses
// rendering but keeps accounting and emits structured log lines instead.
type Reporter struct {
	ch      chan message
	done    chan struct{}
	debug   bool
	metrics *Metrics
	phase   string
}

// NewReporter builds a Reporter for the named phase (e.g. "backup",
// "expire-live"). debug suppresses the terminal progress bar in favor of
// structured log lines, matching the original's machine mode.
func NewReporter(phase string, debug bool, metrics *Metrics) *Reporter {
	return &Reporter{
		ch:      make(chan message, 64),
		done:    make(chan struct{}),
		debug:   debug,
		metrics: metrics,
		phase:   phase,
	}
}

// AddItem records one unit of expected work.
func (r *Reporter) AddItem() { r.ch <- addItem }

// DoneItem records the completion of one unit of work.
func (r *Reporter) DoneItem() { r.ch <- doneItem }

// LockContended records that a worker in this phase found an image lock
// already held and skipped it.
func (r *Reporter) LockContended() {
	if r.metrics != nil {
		r.metrics.LockContention.WithLabelValues(r.phase).Inc()
	}
}

// Run consumes the side channel until ctx is cancelled or Close is called,
// rendering progress as it goes. It is started on entering a phase and
// always terminated on exit (spec.md §4.9), typically via errgroup.
func (r *Reporter) Run(ctx context.Context) {
	start := time.Now()
	if r.metrics != nil {
		defer func() { r.metrics.PhaseDuration.WithLabelValues(r.phase).Observe(time.Since(start).Seconds()) }()
	}

	var total, completed int64
	var bar *pb.ProgressBar
	if !r.debug {
		bar = pb.New(0)
		bar.Start()
		defer bar.Finish()
	}

	for {
		select {
		case msg, ok := <-r.ch:
			if !ok {
				return
			}
			switch msg {
			case addItem:
				total++
				if bar != nil {
					bar.SetTotal(total)
				}
				if r.metrics != nil {
					r.metrics.ItemsTotal.WithLabelValues(r.phase).Inc()
				}
			case doneItem:
				completed++
				if bar != nil {
					bar.Increment()
				}
				if r.metrics != nil {
					r.metrics.ItemsDone.WithLabelValues(r.phase).Inc()
				}
			}
			if r.debug {
				slog.Debug("progress", "phase", r.phase, "total", total, "done", completed, "pending", total-completed)
			}
		case <-ctx.Done():
			return
		case <-r.done:
			return
		}
	}
}

// Close stops Run and releases the side channel. Safe to call once.
func (r *Reporter) Close() {
	close(r.done)
}
