package workload

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Blackdeer1524/lrukpool/src/bufferpool"
	"github.com/Blackdeer1524/lrukpool/src/pkg/common"
	"github.com/Blackdeer1524/lrukpool/src/storage/disk"
)

func newPool(t *testing.T, policy string, poolSize uint64) *bufferpool.Manager {
	t.Helper()

	dm := disk.New("/bench", afero.NewMemMapFs())
	require.NoError(t, dm.RegisterFile(0, "pages.db"))

	replacer, err := bufferpool.NewReplacer(policy, poolSize, 2)
	require.NoError(t, err)

	pool, err := bufferpool.New(poolSize, replacer, dm, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	return pool
}

func TestRunnerWorkingSetFitsInPool(t *testing.T) {
	pool := newPool(t, bufferpool.PolicyLRUK, 8)

	g, err := NewGenerator(GeneratorConfig{Kind: KindUniform, Pages: 8, Seed: 1, WriteRatio: 0.5})
	require.NoError(t, err)

	runner, err := NewRunner(pool, 4, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	report, err := runner.Run(context.Background(), g.Trace(2000))
	require.NoError(t, err)

	assert.Equal(t, uint64(2000), report.Accesses)
	assert.Equal(t, uint64(0), report.Evictions)
	assert.LessOrEqual(t, report.Misses, uint64(8))
	assert.Greater(t, report.HitRatio(), 0.99)
	assert.Equal(t, uint64(8), pool.EvictableFrames(), "every page must be unpinned afterwards")
}

func TestRunnerEvictsUnderPressure(t *testing.T) {
	for _, policy := range []string{bufferpool.PolicyLRUK, bufferpool.PolicyLRU} {
		t.Run(policy, func(t *testing.T) {
			pool := newPool(t, policy, 16)

			g, err := NewGenerator(GeneratorConfig{Kind: KindMixed, Pages: 256, Seed: 2, ZipfS: 1.3})
			require.NoError(t, err)

			runner, err := NewRunner(pool, 3, zaptest.NewLogger(t).Sugar())
			require.NoError(t, err)

			report, err := runner.Run(context.Background(), g.Trace(3000))
			require.NoError(t, err)

			assert.Equal(t, uint64(3000), report.Accesses)
			assert.Equal(t, report.Misses-16, report.Evictions)
			assert.NotEqual(t, report.RunID.String(), "00000000-0000-0000-0000-000000000000")
		})
	}
}

func TestRunnerWritesBackDirtyPages(t *testing.T) {
	pool := newPool(t, bufferpool.PolicyLRUK, 8)

	g, err := NewGenerator(GeneratorConfig{Kind: KindMixed, Pages: 128, Seed: 3, ZipfS: 1.2, WriteRatio: 0.3})
	require.NoError(t, err)

	runner, err := NewRunner(pool, 4, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	report, err := runner.Run(context.Background(), g.Trace(4000))
	require.NoError(t, err)

	assert.Equal(t, uint64(4000), report.Accesses)
	assert.Positive(t, report.Evictions)
	assert.Positive(t, pool.Stats().WriteBacks)
	assert.Equal(t, uint64(8), pool.EvictableFrames())
	require.NoError(t, pool.FlushAllPages())
}

func TestRunnerStopsOnCancel(t *testing.T) {
	pool := newPool(t, bufferpool.PolicyLRUK, 4)

	runner, err := NewRunner(pool, 2, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trace := []Access{{Page: common.PageIdentity{PageID: 1}}}
	_, err = runner.Run(ctx, trace)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRunnerRejectsTooManyWorkers(t *testing.T) {
	pool := newPool(t, bufferpool.PolicyLRUK, 2)

	_, err := NewRunner(pool, 3, zaptest.NewLogger(t).Sugar())
	assert.ErrorIs(t, err, ErrTooManyWorkers)

	_, err = NewRunner(pool, 0, zaptest.NewLogger(t).Sugar())
	assert.Error(t, err)
}
