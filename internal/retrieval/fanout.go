package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/Ayash-Bera/aidline/internal/metrics"
	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimeout = 5 * time.Second
	DefaultK       = 5
)

// Request is what every backend receives for one evidence build.
type Request struct {
	// Query is the expanded search string.
	Query     string
	RawQuery  string
	Condition models.ConditionTag
}

// Backend is one retrieval source. Implementations return at most k passages with
// scores in the backend's own direction.
type Backend interface {
	ID() models.BackendID
	Search(ctx context.Context, req Request, k int) ([]models.RetrievalPassage, error)
}

// Source binds a backend to its result cap and time budget.
type Source struct {
	Backend Backend
	K       int
	Timeout time.Duration
}

// BackendResult is one slot of the fan-out. Err is kept for logging only; a failed
// backend always has an empty passage list.
type BackendResult struct {
	BackendID models.BackendID
	Passages  []models.RetrievalPassage
	Err       error
	Duration  time.Duration
}

type FanOut struct {
	sources []Source
	logger  *logrus.Logger
}

func NewFanOut(sources []Source, logger *logrus.Logger) *FanOut {
	if logger == nil {
		logger = logrus.New()
	}
	normalized := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.Backend == nil {
			continue
		}
		if s.K <= 0 {
			s.K = DefaultK
		}
		if s.Timeout <= 0 {
			s.Timeout = DefaultTimeout
		}
		normalized = append(normalized, s)
	}
	return &FanOut{sources: normalized, logger: logger}
}

// Backends returns the ids of the configured backends in slot order.
func (f *FanOut) Backends() []models.BackendID {
	ids := make([]models.BackendID, len(f.sources))
	for i, s := range f.sources {
		ids[i] = s.Backend.ID()
	}
	return ids
}

// Run queries every backend concurrently and waits for all of them. Results come back
// in configuration order regardless of completion order. Run never fails: errors,
// timeouts and panics leave an empty slot.
func (f *FanOut) Run(ctx context.Context, req Request) []BackendResult {
	results := make([]BackendResult, len(f.sources))

	var g errgroup.Group
	for i, src := range f.sources {
		i, src := i, src
		g.Go(func() error {
			start := time.Now()
			passages, err := f.call(ctx, src, req)
			elapsed := time.Since(start)

			id := src.Backend.ID()
			metrics.RecordBackendCall(string(id), elapsed, len(passages), err)

			if err != nil {
				f.logger.WithFields(logrus.Fields{
					"backend":     id,
					"duration_ms": elapsed.Milliseconds(),
					"error":       err.Error(),
				}).Warn("Backend search failed, continuing without it")
				passages = nil
			} else {
				f.logger.WithFields(logrus.Fields{
					"backend":     id,
					"duration_ms": elapsed.Milliseconds(),
					"results":     len(passages),
				}).Debug("Backend search completed")
			}

			results[i] = BackendResult{
				BackendID: id,
				Passages:  passages,
				Err:       err,
				Duration:  elapsed,
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

type outcome struct {
	passages []models.RetrievalPassage
	err      error
}

func (f *FanOut) call(parent context.Context, src Source, req Request) ([]models.RetrievalPassage, error) {
	id := src.Backend.ID()
	ctx, cancel := context.WithTimeout(parent, src.Timeout)
	defer cancel()

	// Buffered so a backend that ignores ctx can still finish and exit.
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("backend %s panicked: %v", id, r)}
			}
		}()
		p, err := src.Backend.Search(ctx, req, src.K)
		ch <- outcome{passages: p, err: err}
	}()

	select {
	case o := <-ch:
		if o.err != nil {
			return nil, fmt.Errorf("backend %s: %w", id, o.err)
		}
		return stamp(o.passages, id, src.K), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("backend %s: %w", id, ctx.Err())
	}
}

// stamp caps the list at k and records the originating backend on every passage.
func stamp(passages []models.RetrievalPassage, id models.BackendID, k int) []models.RetrievalPassage {
	if len(passages) > k {
		passages = passages[:k]
	}
	out := make([]models.RetrievalPassage, len(passages))
	for i, p := range passages {
		p.BackendID = id
		out[i] = p
	}
	return out
}
