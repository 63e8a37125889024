package sync

import "context"

// Run is a supervised background sync invocation: cancellable, awaitable,
// never a dangling goroutine.
type Run struct {
	cancel  context.CancelFunc
	done    chan struct{}
	results []Result
}

// Start launches a sync run in the background. The run is detached from
// the caller's cancellation (a finished HTTP request must not kill it) but
// can be stopped through the returned handle.
func (o *Orchestrator) Start(ctx context.Context, opts Options) *Run {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := &Run{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(r.done)
		defer cancel()
		r.results = o.Sync(runCtx, opts)
	}()
	return r
}

// Done is closed when the run has finished.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Cancel stops the run at its next suspension point.
func (r *Run) Cancel() {
	r.cancel()
}

// Results returns the per-entity outcomes. Only valid after Done is closed.
func (r *Run) Results() []Result {
	select {
	case <-r.done:
		return r.results
	default:
		return nil
	}
}

// Wait blocks until the run finishes or ctx expires.
func (r *Run) Wait(ctx context.Context) ([]Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.done:
		return r.results, nil
	}
}
