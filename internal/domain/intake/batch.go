package intake

import (
	"context"
	"log/slog"
	"sync"
)

type hooks struct {
	onLoad    func(File, []File)
	onInvalid func(File, error)
	onFailed  func(File, error)
	onDone    func(Summary)
}

// Batch tracks the dispatches of one HandleFiles call. Hooks of a batch are
// called one at a time.
type Batch struct {
	id     string
	hooks  hooks
	logger *slog.Logger

	dispatchMu sync.Mutex

	mu      sync.Mutex
	results []Result
	summary Summary

	pending sync.WaitGroup
	done    chan struct{}
}

func newBatch(id string, h hooks, logger *slog.Logger) *Batch {
	return &Batch{
		id:      id,
		hooks:   h,
		logger:  logger,
		summary: Summary{BatchID: id},
		done:    make(chan struct{}),
	}
}

func (b *Batch) ID() string { return b.id }

// Done is closed once every dispatch of the batch, OnDone included, has run.
func (b *Batch) Done() <-chan struct{} { return b.done }

// Wait blocks until the batch is finished and returns its results in
// dispatch order.
func (b *Batch) Wait(ctx context.Context) ([]Result, error) {
	select {
	case <-b.done:
		return b.Results(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *Batch) Results() []Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Result, len(b.results))
	copy(out, b.results)
	return out
}

func (b *Batch) Summary() Summary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.summary
}

func (b *Batch) dispatch(r Result, source []File) {
	b.dispatchMu.Lock()
	defer b.dispatchMu.Unlock()

	b.mu.Lock()
	b.results = append(b.results, r)
	b.summary.add(r.Outcome)
	b.mu.Unlock()

	filesTotal.WithLabelValues(string(r.Kind), string(r.Outcome)).Inc()

	switch r.Outcome {
	case OutcomeLoaded:
		if b.hooks.onLoad != nil {
			b.hooks.onLoad(r.File, source)
		}
	case OutcomeInvalid:
		if b.hooks.onInvalid != nil {
			b.hooks.onInvalid(r.File, r.Err)
		}
	case OutcomeFailed:
		if b.hooks.onFailed != nil {
			b.hooks.onFailed(r.File, r.Err)
			return
		}
		b.logger.Warn("intake failure has no handler",
			"batch_id", b.id,
			"file", r.File.Name(),
			"archive", r.Archive,
			"error", r.Err,
		)
	}
}

// finish waits for outstanding archives, then runs OnDone and closes Done.
func (b *Batch) finish() {
	b.pending.Wait()

	b.dispatchMu.Lock()
	summary := b.Summary()
	if b.hooks.onDone != nil {
		b.hooks.onDone(summary)
	}
	b.dispatchMu.Unlock()

	b.logger.Debug("intake batch finished",
		"batch_id", b.id,
		"loaded", summary.Loaded,
		"invalid", summary.Invalid,
		"failed", summary.Failed,
	)
	close(b.done)
}
