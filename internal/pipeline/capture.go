package pipeline

import (
	"context"
	"sync"

	"github.com/starford/unpack/internal/extract"
)

// Capture is a pipeline run in progress. Cancelling it aborts the pending
// remote calls; nothing is saved by a capture, so a cancelled run leaves no
// trace.
type Capture struct {
	cancel context.CancelFunc
	done   chan struct{}

	once  sync.Once
	draft Draft
	err   error
}

// Start runs Process in the background.
func (o *Orchestrator) Start(ctx context.Context, pages []extract.Page, c Corrector) *Capture {
	ctx, cancel := context.WithCancel(ctx)
	cp := &Capture{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(cp.done)
		defer cancel()
		cp.draft, cp.err = o.Process(ctx, pages, c)
	}()
	return cp
}

// Cancel aborts the run. It is safe to call more than once.
func (c *Capture) Cancel() {
	c.once.Do(c.cancel)
}

// Done is closed when the run has finished.
func (c *Capture) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the run finishes and returns its draft.
func (c *Capture) Wait() (Draft, error) {
	<-c.done
	return c.draft, c.err
}
