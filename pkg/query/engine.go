package query

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"time"

	"github.com/adfharrison1/go-indexdb/pkg/domain"
	"github.com/adfharrison1/go-indexdb/pkg/indexing"
	"github.com/adfharrison1/go-indexdb/pkg/keyenc"
)

// Engine executes queries against index managers
type Engine struct {
	logger *slog.Logger
}

type EngineOption func(*Engine)

func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

func NewEngine(options ...EngineOption) *Engine {
	e := &Engine{}
	for _, option := range options {
		option(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("component", "query")
	return e
}

// Stream validates q and returns its results as an ordered sequence.
// Configuration errors (arity, unencodable bounds, missing codec) are
// returned here, before the index is touched. A non-nil error yielded by the
// sequence is terminal.
//
// Hits are resolved one at a time, in index order (or its reverse when
// q.Reverse is set). The caller may stop
// ranging at any point; entries found stale but not yet deleted are left for
// a later query.
func (e *Engine) Stream(ctx context.Context, mgr *indexing.Manager, q Query) (iter.Seq2[Item, error], error) {
	return e.stream(ctx, mgr, q, "stream")
}

// Find collects the whole result, or returns the first fatal error.
func (e *Engine) Find(ctx context.Context, mgr *indexing.Manager, q Query) ([]Item, error) {
	seq, err := e.stream(ctx, mgr, q, "find")
	if err != nil {
		return nil, err
	}

	items := []Item{}
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (e *Engine) stream(ctx context.Context, mgr *indexing.Manager, q Query, mode string) (iter.Seq2[Item, error], error) {
	start := bound(q.Start, mgr.Arity(), keyenc.Min)
	end := bound(q.End, mgr.Arity(), keyenc.Max)
	if err := mgr.CheckArity(len(start), len(end)); err != nil {
		return nil, err
	}

	lo, err := mgr.EncodeBounds(start, keyenc.Min)
	if err != nil {
		return nil, err
	}
	hi, err := mgr.EncodeBounds(end, keyenc.Max)
	if err != nil {
		return nil, err
	}

	seq := e.scan(ctx, mgr, domain.Range{Start: lo, End: hi, Reverse: q.Reverse}, q, mode)
	for _, stage := range q.Stages {
		seq = stage(seq)
	}
	return seq, nil
}

func (e *Engine) scan(ctx context.Context, mgr *indexing.Manager, r domain.Range, q Query, mode string) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		began := time.Now()
		defer func() {
			indexing.QueryDuration.WithLabelValues(mgr.Name(), mode).Observe(time.Since(began).Seconds())
		}()

		it, err := mgr.KeySpace().Iterate(ctx, r)
		if err != nil {
			yield(Item{}, err)
			return
		}
		defer it.Close()

		for it.Next() {
			item, ok, err := e.resolve(ctx, mgr, it, q)
			if err != nil {
				yield(Item{}, err)
				return
			}
			if !ok {
				continue
			}
			if !yield(item, nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(Item{}, err)
		}
	}
}

// resolve turns one index hit into a result. ok is false when the hit is
// skipped; err is only set for terminal failures.
func (e *Engine) resolve(ctx context.Context, mgr *indexing.Manager, it domain.Iterator, q Query) (item Item, ok bool, err error) {
	indexKey := it.Key()
	pk := string(it.RawValue())

	value, err := mgr.Primary().Get(ctx, []byte(pk))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return Item{}, false, e.repair(ctx, mgr, q, indexKey, pk, nil)
	case err != nil:
		e.skip(mgr, q, Skip{Index: mgr.Name(), PrimaryKey: pk, IndexKey: indexKey, Reason: SkipUnavailable, Err: err})
		return Item{}, false, nil
	}

	valid, err := mgr.Validate(indexKey, pk, value)
	if err != nil || !valid {
		return Item{}, false, e.repair(ctx, mgr, q, indexKey, pk, err)
	}

	switch q.Projection {
	case KeysOnly:
		return Item{Key: pk}, true, nil
	case ValuesOnly:
		return Item{Value: value}, true, nil
	}
	return Item{Key: pk, Value: value}, true, nil
}

// repair deletes a stale entry. A cancelled query leaves the entry alone.
func (e *Engine) repair(ctx context.Context, mgr *indexing.Manager, q Query, indexKey []byte, pk string, cause error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := mgr.KeySpace().Del(ctx, indexKey); err != nil {
		return &domain.StaleEntryRepairError{Index: mgr.Name(), PrimaryKey: pk, Err: err}
	}
	indexing.StaleRepaired.WithLabelValues(mgr.Name()).Inc()
	e.skip(mgr, q, Skip{Index: mgr.Name(), PrimaryKey: pk, IndexKey: indexKey, Reason: SkipStale, Err: cause})
	return nil
}

func (e *Engine) skip(mgr *indexing.Manager, q Query, s Skip) {
	indexing.HitsSkipped.WithLabelValues(mgr.Name(), string(s.Reason)).Inc()
	e.logger.Debug("index hit skipped", "index", s.Index, "key", s.PrimaryKey, "reason", s.Reason, "error", s.Err)
	if q.OnSkip != nil {
		q.OnSkip(s)
	}
}
