package workload

import (
	"math"
	"math/rand"

	"github.com/go-faster/errors"

	"github.com/Blackdeer1524/lrukpool/src/pkg/common"
	"github.com/Blackdeer1524/lrukpool/src/pkg/utils"
)

type Kind string

const (
	KindUniform Kind = "uniform"
	KindZipf    Kind = "zipf"
	KindScan    Kind = "scan"
	// KindMixed interleaves skewed point lookups over a small hot set with
	// sequential sweeps over the cold pages.
	KindMixed Kind = "mixed"
)

const (
	mixedHotFraction = 10
	mixedScanLength  = 32
	mixedScanPercent = 20
)

var ErrBadGeneratorConfig = errors.New("bad generator config")

type Access struct {
	Page  common.PageIdentity
	Type  common.AccessType
	Write bool
}

type GeneratorConfig struct {
	Kind       Kind
	FileID     common.FileID
	Pages      uint64
	Seed       int64
	ZipfS      float64
	WriteRatio float64
}

func (c GeneratorConfig) Validate() error {
	switch c.Kind {
	case KindUniform, KindZipf, KindScan, KindMixed:
	default:
		return errors.Wrapf(ErrBadGeneratorConfig, "unknown workload %q", c.Kind)
	}

	if c.Pages == 0 {
		return errors.Wrap(ErrBadGeneratorConfig, "pages must be positive")
	}
	if c.Pages > math.MaxInt {
		return errors.Wrapf(ErrBadGeneratorConfig, "pages %d exceed %d", c.Pages, math.MaxInt)
	}
	if (c.Kind == KindZipf || c.Kind == KindMixed) && c.ZipfS <= 1 {
		return errors.Wrapf(ErrBadGeneratorConfig, "zipf exponent must be > 1, got %v", c.ZipfS)
	}
	if c.WriteRatio < 0 || c.WriteRatio > 1 {
		return errors.Wrapf(ErrBadGeneratorConfig, "write ratio %v not in [0, 1]", c.WriteRatio)
	}

	return nil
}

// Generator produces reproducible access traces: the same config always
// yields the same sequence.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand

	zipf *rand.Zipf
	hot  []common.PageID
	cold []common.PageID

	scanPos uint64
}

func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec
	g := &Generator{cfg: cfg, rng: rng}

	switch cfg.Kind {
	case KindZipf:
		g.zipf = rand.NewZipf(rng, cfg.ZipfS, 1, cfg.Pages-1)
	case KindMixed:
		hotCount := max(cfg.Pages/mixedHotFraction, 1)
		g.hot = utils.GenerateUniqueInts(int(hotCount), 0, common.PageID(cfg.Pages-1), rng) //nolint:gosec

		isHot := make(map[common.PageID]struct{}, len(g.hot))
		for _, p := range g.hot {
			isHot[p] = struct{}{}
		}
		for p := range common.PageID(cfg.Pages) {
			if _, ok := isHot[p]; !ok {
				g.cold = append(g.cold, p)
			}
		}
		g.zipf = rand.NewZipf(rng, cfg.ZipfS, 1, hotCount-1)
	}

	return g, nil
}

func (g *Generator) Trace(n int) []Access {
	trace := make([]Access, 0, n)

	for len(trace) < n {
		switch g.cfg.Kind {
		case KindUniform:
			trace = append(trace, g.access(common.PageID(g.rng.Int63n(int64(g.cfg.Pages))), common.AccessLookup)) //nolint:gosec
		case KindZipf:
			trace = append(trace, g.access(common.PageID(g.zipf.Uint64()), common.AccessLookup))
		case KindScan:
			trace = append(trace, g.access(common.PageID(g.scanPos), common.AccessScan))
			g.scanPos = (g.scanPos + 1) % g.cfg.Pages
		case KindMixed:
			trace = g.appendMixed(trace, n)
		}
	}

	return trace
}

func (g *Generator) appendMixed(trace []Access, n int) []Access {
	if len(g.cold) == 0 || g.rng.Intn(100) >= mixedScanPercent {
		return append(trace, g.access(g.hot[g.zipf.Uint64()], common.AccessLookup))
	}

	start := g.rng.Intn(len(g.cold))
	for i := 0; i < mixedScanLength && len(trace) < n; i++ {
		trace = append(trace, g.access(g.cold[(start+i)%len(g.cold)], common.AccessScan))
	}

	return trace
}

func (g *Generator) access(pageID common.PageID, accessType common.AccessType) Access {
	return Access{
		Page:  common.PageIdentity{FileID: g.cfg.FileID, PageID: pageID},
		Type:  accessType,
		Write: g.cfg.WriteRatio > 0 && g.rng.Float64() < g.cfg.WriteRatio,
	}
}
