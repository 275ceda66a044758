package countdown

import (
	"context"
	"time"

	"github.com/julianstephens/sundown/internal/constants"
)

// Runner drives an Engine headlessly with a repeating 1 Hz ticker. All engine
// and schedule-set access happens on the goroutine running Run; other
// goroutines hand work over with Submit.
type Runner struct {
	engine   *Engine
	clock    Clock
	interval time.Duration
	jobs     chan func()
	done     chan struct{}

	// OnTick, when set, receives the statuses of every tick
	OnTick func([]Status)
}

func NewRunner(engine *Engine, clock Clock) *Runner {
	return &Runner{
		engine:   engine,
		clock:    clock,
		interval: constants.TickInterval,
		jobs:     make(chan func(), 16),
		done:     make(chan struct{}),
	}
}

// Submit queues fn to run on the runner goroutine. It reports false once Run
// has returned.
func (r *Runner) Submit(fn func()) bool {
	select {
	case r.jobs <- fn:
		return true
	case <-r.done:
		return false
	}
}

// Run ticks until ctx is cancelled. Cancelling ctx is the cancellation token
// for the whole chain.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-r.jobs:
			fn()
		case <-ticker.C:
			statuses := r.engine.TickAll(ctx, r.clock.Now())
			if r.OnTick != nil {
				r.OnTick(statuses)
			}
		}
	}
}
