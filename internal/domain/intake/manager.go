package intake

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Manager classifies a batch of files and dispatches each one to the hooks.
// Images are dispatched directly, zip archives go through an ArchiveLoader,
// everything else is reported invalid.
//
// All hooks are optional. A nil OnFailed means the caller chose to ignore
// archive decode and extraction failures; they are still logged and kept in
// the batch results.
type Manager struct {
	OnLoad    func(f File, source []File)
	OnInvalid func(f File, err error)
	OnFailed  func(f File, err error)
	OnDone    func(summary Summary)

	policy           Policy
	logger           *slog.Logger
	entryConcurrency int
	newID            func() string
}

type Option func(*Manager)

func WithPolicy(p Policy) Option {
	return func(m *Manager) { m.policy = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithEntryConcurrency bounds concurrent entry extraction per archive.
func WithEntryConcurrency(n int) Option {
	return func(m *Manager) { m.entryConcurrency = n }
}

// WithIDFunc replaces the batch ID generator.
func WithIDFunc(fn func() string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.newID = fn
		}
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		policy: DefaultPolicy(),
		logger: slog.Default(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Policy() Policy { return m.policy }

// HandleFiles classifies every file once and dispatches it. Images are
// dispatched before HandleFiles returns, in input order, followed by the
// invalid files. Archive contents are dispatched later from background
// goroutines in completion order; use the returned Batch to wait for them.
//
// source is passed through to OnLoad for directly dispatched images.
func (m *Manager) HandleFiles(ctx context.Context, files []File, source []File) *Batch {
	b := newBatch(m.newID(), hooks{
		onLoad:    m.OnLoad,
		onInvalid: m.OnInvalid,
		onFailed:  m.OnFailed,
		onDone:    m.OnDone,
	}, m.logger)

	var archives []File
	var invalid []Result
	for _, f := range files {
		kind, err := m.policy.Classify(f)
		switch kind {
		case KindImage:
			b.dispatch(Result{File: f, Kind: kind, Outcome: OutcomeLoaded}, source)
		case KindArchive:
			archives = append(archives, f)
		default:
			invalid = append(invalid, Result{File: f, Kind: kind, Outcome: OutcomeInvalid, Err: err})
		}
	}

	for _, archive := range archives {
		b.pending.Add(1)
		go func(archive File) {
			defer b.pending.Done()
			m.extract(ctx, b, archive)
		}(archive)
	}

	for _, r := range invalid {
		b.dispatch(r, source)
	}

	go b.finish()
	return b
}

func (m *Manager) extract(ctx context.Context, b *Batch, archive File) {
	start := time.Now()
	loader := NewArchiveLoader(archive)
	loader.Concurrency = m.entryConcurrency

	name := archive.Name()
	err := loader.ExtractImages(ctx, m.policy.Image.MaxBytes,
		func(f File) {
			b.dispatch(Result{File: f, Kind: KindImage, Archive: name, Outcome: OutcomeLoaded}, nil)
		},
		func(f File, err error) {
			b.dispatch(Result{File: f, Kind: KindImage, Archive: name, Outcome: OutcomeInvalid, Err: err}, nil)
		},
		func(f File, err error) {
			if errors.Is(err, ErrMalformedArchive) {
				b.dispatch(Result{File: f, Kind: KindArchive, Outcome: OutcomeFailed, Err: err}, nil)
				return
			}
			b.dispatch(Result{File: f, Kind: KindImage, Archive: name, Outcome: OutcomeFailed, Err: err}, nil)
		},
	)

	result := "ok"
	if err != nil {
		result = "error"
	}
	archiveDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	m.logger.Debug("archive extracted",
		"batch_id", b.id,
		"archive", name,
		"duration", time.Since(start),
		"error", err,
	)
}
