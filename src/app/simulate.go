package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Blackdeer1524/lrukpool/src/bufferpool"
	"github.com/Blackdeer1524/lrukpool/src/cfg"
	"github.com/Blackdeer1524/lrukpool/src/storage/disk"
	"github.com/Blackdeer1524/lrukpool/src/workload"
)

const memDataDir = "/lruk"

// Overrides are command line values that win over the loaded config. Zero
// values mean "not set".
type Overrides struct {
	Policy   string
	K        uint64
	PoolSize uint64
	Workload string
	Accesses int
	Compare  bool
}

func (o Overrides) apply(c *cfg.Config) {
	if o.Policy != "" {
		c.Policy = o.Policy
	}
	if o.K != 0 {
		c.K = o.K
	}
	if o.PoolSize != 0 {
		c.PoolSize = o.PoolSize
	}
	if o.Workload != "" {
		c.Workload = workload.Kind(o.Workload)
	}
	if o.Accesses != 0 {
		c.Accesses = o.Accesses
	}
}

// SimulateEntrypoint replays a synthetic trace through a buffer pool and
// prints a report per replacement policy.
type SimulateEntrypoint struct {
	ConfigPath string
	Overrides  Overrides
	Out        io.Writer

	cfg   cfg.Config
	log   *zap.SugaredLogger
	fs    afero.Fs
	trace []workload.Access
	pools []*bufferpool.Manager
}

func (e *SimulateEntrypoint) Init(_ context.Context) error {
	env, err := loadEnv(e.ConfigPath)
	if err != nil {
		return err
	}

	config, err := cfg.LoadConfig(e.ConfigPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	e.Overrides.apply(&config)
	if err := config.Validate(); err != nil {
		return errors.Wrap(err, "validate overrides")
	}
	e.cfg = config

	e.log, err = newLogger(config.Environment, env.LogLevel)
	if err != nil {
		return err
	}

	if e.Out == nil {
		e.Out = os.Stdout
	}

	if config.DataDir == "" {
		e.fs = afero.NewMemMapFs()
	} else {
		e.fs = afero.NewOsFs()
	}

	gen, err := workload.NewGenerator(config.GeneratorConfig())
	if err != nil {
		return errors.Wrap(err, "init generator")
	}
	e.trace = gen.Trace(config.Accesses)

	return nil
}

func (e *SimulateEntrypoint) policies() []string {
	if e.Overrides.Compare {
		return []string{bufferpool.PolicyLRUK, bufferpool.PolicyLRU}
	}
	return []string{e.cfg.Policy}
}

func (e *SimulateEntrypoint) Run(ctx context.Context) error {
	e.log.Infow(
		"starting simulation",
		"workload", e.cfg.Workload,
		"accesses", len(e.trace),
		"pool_size", e.cfg.PoolSize,
		"k", e.cfg.K,
	)

	for _, policy := range e.policies() {
		report, err := e.runPolicy(ctx, policy)
		if err != nil {
			return errors.Wrapf(err, "policy %s", policy)
		}

		_, _ = fmt.Fprintf(
			e.Out,
			"%-6s k=%d frames=%d accesses=%d hits=%d misses=%d evictions=%d hit_ratio=%.4f elapsed=%s\n",
			policy,
			e.cfg.K,
			e.cfg.PoolSize,
			report.Accesses,
			report.Hits,
			report.Misses,
			report.Evictions,
			report.HitRatio(),
			report.Elapsed,
		)
	}

	return nil
}

func (e *SimulateEntrypoint) runPolicy(ctx context.Context, policy string) (workload.Report, error) {
	dataDir := e.cfg.DataDir
	if dataDir == "" {
		dataDir = memDataDir
	}

	dm := disk.New(dataDir, e.fs)
	if err := dm.RegisterFile(0, policy+".db"); err != nil {
		return workload.Report{}, err
	}

	replacer, err := bufferpool.NewReplacer(policy, e.cfg.PoolSize, e.cfg.K)
	if err != nil {
		return workload.Report{}, err
	}

	pool, err := bufferpool.New(e.cfg.PoolSize, replacer, dm, e.log.Named("bufferpool"))
	if err != nil {
		return workload.Report{}, err
	}
	e.pools = append(e.pools, pool)

	runner, err := workload.NewRunner(pool, e.cfg.Workers, e.log.Named("workload"))
	if err != nil {
		return workload.Report{}, err
	}

	return runner.Run(ctx, e.trace)
}

func (e *SimulateEntrypoint) Close() (err error) {
	for _, pool := range e.pools {
		err = multierr.Append(err, pool.FlushAllPages())
	}

	if e.log != nil {
		if err != nil {
			e.log.Errorw("failed to flush pages", zap.Error(err))
		}
		// Sync on a terminal returns ENOTTY, which is not worth reporting.
		_ = e.log.Sync()
	}

	return err
}
