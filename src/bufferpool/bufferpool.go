package bufferpool

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Blackdeer1524/lrukpool/src/pkg/assert"
	"github.com/Blackdeer1524/lrukpool/src/pkg/common"
	"github.com/Blackdeer1524/lrukpool/src/storage/page"
)

const instrumentationName = "github.com/Blackdeer1524/lrukpool/src/bufferpool"

var (
	ErrNoSuchPage  = errors.New("no such page")
	ErrNoFreeFrame = errors.New("all frames are pinned")
	ErrNotPinned   = errors.New("page is not pinned")
	ErrPagePinned  = errors.New("page is pinned")
)

type DiskManager interface {
	ReadPageInto(p *page.Page, pageIdent common.PageIdentity) error
	WritePage(p *page.Page, pageIdent common.PageIdentity) error
}

type frame struct {
	page      *page.Page
	pinCount  int
	pageIdent common.PageIdentity
}

type Stats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	WriteBacks uint64
}

type instruments struct {
	tracer    trace.Tracer
	hits      metric.Int64Counter
	misses    metric.Int64Counter
	evictions metric.Int64Counter
}

func newInstruments() (instruments, error) {
	meter := otel.Meter(instrumentationName)

	hits, err := meter.Int64Counter("bufferpool.hits", metric.WithDescription("page requests served from memory"))
	if err != nil {
		return instruments{}, errors.Wrap(err, "hits counter")
	}

	misses, err := meter.Int64Counter("bufferpool.misses", metric.WithDescription("page requests that went to disk"))
	if err != nil {
		return instruments{}, errors.Wrap(err, "misses counter")
	}

	evictions, err := meter.Int64Counter("bufferpool.evictions", metric.WithDescription("frames reclaimed by the replacer"))
	if err != nil {
		return instruments{}, errors.Wrap(err, "evictions counter")
	}

	return instruments{
		tracer:    otel.Tracer(instrumentationName),
		hits:      hits,
		misses:    misses,
		evictions: evictions,
	}, nil
}

// Manager caches pages in a fixed set of frames numbered 1..poolSize and
// asks the replacer for a victim once no frame is free. It keeps the
// replacer informed: every page touch is recorded and a frame is evictable
// exactly while its pin count is zero.
type Manager struct {
	poolSize    uint64
	pageToFrame map[common.PageIdentity]common.FrameID
	frames      []frame
	freeFrames  []common.FrameID

	replacer Replacer
	disk     DiskManager
	log      *zap.SugaredLogger
	inst     instruments

	stats Stats

	mu sync.Mutex
}

func New(
	poolSize uint64,
	replacer Replacer,
	disk DiskManager,
	log *zap.SugaredLogger,
) (*Manager, error) {
	assert.Assert(poolSize > 0, "pool size must be greater than zero")

	inst, err := newInstruments()
	if err != nil {
		return nil, errors.Wrap(err, "init instruments")
	}

	frames := make([]frame, poolSize+1)
	freeFrames := make([]common.FrameID, 0, poolSize)
	for id := common.FrameID(1); uint64(id) <= poolSize; id++ {
		frames[id].page = page.NewPage()
		freeFrames = append(freeFrames, id)
	}

	return &Manager{
		poolSize:    poolSize,
		pageToFrame: make(map[common.PageIdentity]common.FrameID),
		frames:      frames,
		freeFrames:  freeFrames,
		replacer:    replacer,
		disk:        disk,
		log:         log,
		inst:        inst,
	}, nil
}

// GetPage returns the page pinned. Every successful call must be paired with
// Unpin.
func (m *Manager) GetPage(
	ctx context.Context,
	pageIdent common.PageIdentity,
	accessType common.AccessType,
) (*page.Page, error) {
	ctx, span := m.inst.tracer.Start(
		ctx,
		"bufferpool.GetPage",
		trace.WithAttributes(
			attribute.String("page", pageIdent.String()),
			attribute.String("access", accessType.String()),
		),
	)
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	if frameID, ok := m.pageToFrame[pageIdent]; ok {
		m.pin(frameID, accessType)
		m.stats.Hits++
		m.inst.hits.Add(ctx, 1)
		span.SetAttributes(attribute.Bool("hit", true))

		return m.frames[frameID].page, nil
	}

	m.stats.Misses++
	m.inst.misses.Add(ctx, 1)
	span.SetAttributes(attribute.Bool("hit", false))

	frameID, err := m.reserveFrame(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	f := &m.frames[frameID]
	f.page.Lock()
	err = m.disk.ReadPageInto(f.page, pageIdent)
	f.page.Unlock()
	if err != nil {
		m.freeFrames = append(m.freeFrames, frameID)
		span.RecordError(err)
		return nil, errors.Wrapf(err, "read page %s", pageIdent)
	}

	f.pageIdent = pageIdent
	f.pinCount = 0
	m.pageToFrame[pageIdent] = frameID
	m.pin(frameID, accessType)

	return f.page, nil
}

func (m *Manager) pin(frameID common.FrameID, accessType common.AccessType) {
	f := &m.frames[frameID]
	f.pinCount++

	m.replacer.RecordAccess(frameID, accessType)
	m.replacer.SetEvictable(frameID, false)
}

// reserveFrame hands out a frame that holds no page, evicting one if needed.
func (m *Manager) reserveFrame(ctx context.Context) (common.FrameID, error) {
	if len(m.freeFrames) > 0 {
		frameID := m.freeFrames[0]
		m.freeFrames = m.freeFrames[1:]
		return frameID, nil
	}

	victim, ok := m.replacer.Evict().Get()
	if !ok {
		return common.NilFrameID, ErrNoFreeFrame
	}

	f := &m.frames[victim]
	assert.Assert(f.pinCount == 0, "replacer evicted pinned frame %d", victim)

	if f.page.IsDirty() {
		if err := m.writeBack(f); err != nil {
			// the victim stays cached, so hand it back to the replacer
			m.replacer.RecordAccess(victim, common.AccessUnknown)
			m.replacer.SetEvictable(victim, true)
			return common.NilFrameID, err
		}
	}

	m.log.Debugw("evicted page", "frame", victim, "page", f.pageIdent.String())

	delete(m.pageToFrame, f.pageIdent)
	m.stats.Evictions++
	m.inst.evictions.Add(ctx, 1)

	return victim, nil
}

func (m *Manager) writeBack(f *frame) error {
	f.page.RLock()
	err := m.disk.WritePage(f.page, f.pageIdent)
	f.page.RUnlock()
	if err != nil {
		return errors.Wrapf(err, "write back page %s", f.pageIdent)
	}

	f.page.SetDirtiness(false)
	m.stats.WriteBacks++

	return nil
}

func (m *Manager) Unpin(pageIdent common.PageIdentity, dirty bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameID, ok := m.pageToFrame[pageIdent]
	if !ok {
		return errors.Wrapf(ErrNoSuchPage, "unpin %s", pageIdent)
	}

	f := &m.frames[frameID]
	if f.pinCount == 0 {
		return errors.Wrapf(ErrNotPinned, "unpin %s", pageIdent)
	}

	if dirty {
		f.page.SetDirtiness(true)
	}

	f.pinCount--
	if f.pinCount == 0 {
		m.replacer.SetEvictable(frameID, true)
	}

	return nil
}

// DeletePage drops a cached page without writing it back. Pages that are not
// cached are ignored.
func (m *Manager) DeletePage(pageIdent common.PageIdentity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameID, ok := m.pageToFrame[pageIdent]
	if !ok {
		return nil
	}

	f := &m.frames[frameID]
	if f.pinCount > 0 {
		return errors.Wrapf(ErrPagePinned, "delete %s", pageIdent)
	}

	m.replacer.Remove(frameID)
	delete(m.pageToFrame, pageIdent)

	f.page.Lock()
	f.page.Reset()
	f.page.Unlock()
	f.pageIdent = common.PageIdentity{}

	m.freeFrames = append(m.freeFrames, frameID)

	return nil
}

func (m *Manager) FlushPage(pageIdent common.PageIdentity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameID, ok := m.pageToFrame[pageIdent]
	if !ok {
		return errors.Wrapf(ErrNoSuchPage, "flush %s", pageIdent)
	}

	f := &m.frames[frameID]
	if !f.page.IsDirty() {
		return nil
	}

	return m.writeBack(f)
}

func (m *Manager) FlushAllPages() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	for _, frameID := range m.pageToFrame {
		f := &m.frames[frameID]
		if f.page.IsDirty() {
			err = multierr.Append(err, m.writeBack(f))
		}
	}

	return err
}

func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stats
}

// EvictableFrames reports how many cached pages could be reclaimed right now.
func (m *Manager) EvictableFrames() uint64 {
	return m.replacer.Size()
}

func (m *Manager) PoolSize() uint64 {
	return m.poolSize
}
