package workload

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/panjf2000/ants"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Blackdeer1524/lrukpool/src/bufferpool"
	"github.com/Blackdeer1524/lrukpool/src/pkg/common"
	"github.com/Blackdeer1524/lrukpool/src/storage/page"
)

var ErrTooManyWorkers = errors.New("more workers than frames")

type PagePool interface {
	GetPage(ctx context.Context, pageIdent common.PageIdentity, accessType common.AccessType) (*page.Page, error)
	Unpin(pageIdent common.PageIdentity, dirty bool) error
	Stats() bufferpool.Stats
	PoolSize() uint64
}

var _ PagePool = &bufferpool.Manager{}

type Report struct {
	RunID     uuid.UUID
	Accesses  uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Elapsed   time.Duration
}

func (r Report) HitRatio() float64 {
	if r.Accesses == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Accesses)
}

// Runner replays traces against a page pool. Each worker pins at most one
// page at a time, so with no more workers than frames GetPage always finds a
// victim.
type Runner struct {
	pool    PagePool
	workers int
	log     *zap.SugaredLogger
}

func NewRunner(pool PagePool, workers int, log *zap.SugaredLogger) (*Runner, error) {
	if workers < 1 {
		return nil, errors.Errorf("workers must be positive, got %d", workers)
	}
	if uint64(workers) > pool.PoolSize() {
		return nil, errors.Wrapf(ErrTooManyWorkers, "%d workers for %d frames", workers, pool.PoolSize())
	}

	return &Runner{pool: pool, workers: workers, log: log}, nil
}

// Run splits the trace into one contiguous chunk per worker and replays the
// chunks concurrently.
func (r *Runner) Run(ctx context.Context, trace []Access) (Report, error) {
	report := Report{RunID: uuid.New()}
	log := r.log.With("run", report.RunID.String())

	workers, err := ants.NewPool(r.workers)
	if err != nil {
		return report, errors.Wrap(err, "create worker pool")
	}
	defer workers.Release()

	before := r.pool.Stats()
	start := time.Now()

	eg, ctx := errgroup.WithContext(ctx)

	chunk := (len(trace) + r.workers - 1) / r.workers
	for lo := 0; lo < len(trace); lo += chunk {
		part := trace[lo:min(lo+chunk, len(trace))]

		done := make(chan error, 1)
		if err := workers.Submit(func() { done <- r.replay(ctx, part) }); err != nil {
			return report, errors.Wrap(err, "submit replay task")
		}
		eg.Go(func() error { return <-done })
	}

	if err := eg.Wait(); err != nil {
		return report, err
	}

	after := r.pool.Stats()
	report.Elapsed = time.Since(start)
	report.Hits = after.Hits - before.Hits
	report.Misses = after.Misses - before.Misses
	report.Evictions = after.Evictions - before.Evictions
	report.Accesses = report.Hits + report.Misses

	log.Infow(
		"trace replayed",
		"accesses", report.Accesses,
		"hit_ratio", report.HitRatio(),
		"evictions", report.Evictions,
		"elapsed", report.Elapsed,
	)

	return report, nil
}

func (r *Runner) replay(ctx context.Context, accesses []Access) error {
	for _, a := range accesses {
		if err := ctx.Err(); err != nil {
			return err
		}

		p, err := r.pool.GetPage(ctx, a.Page, a.Type)
		if err != nil {
			return errors.Wrapf(err, "get page %s", a.Page)
		}

		if a.Write {
			p.Lock()
			data := p.GetData()
			data[0]++
			p.Unlock()
		}

		if err := r.pool.Unpin(a.Page, a.Write); err != nil {
			return errors.Wrapf(err, "unpin page %s", a.Page)
		}
	}

	return nil
}
