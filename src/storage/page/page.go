package page

import (
	"sync"

	"github.com/Blackdeer1524/lrukpool/src/pkg/assert"
)

const PageSize = 4096

// Page is the in-memory image of one on-disk page. Data access goes through
// the page latch; the dirty flag is maintained by the owner of the frame.
type Page struct {
	latch sync.RWMutex
	dirty bool
	data  [PageSize]byte
}

func NewPage() *Page {
	return &Page{}
}

func (p *Page) GetData() []byte {
	return p.data[:]
}

func (p *Page) SetData(d []byte) {
	assert.Assert(len(d) <= PageSize, "page data is too big: %d bytes", len(d))

	n := copy(p.data[:], d)
	clear(p.data[n:])
}

func (p *Page) Reset() {
	clear(p.data[:])
	p.dirty = false
}

func (p *Page) SetDirtiness(val bool) {
	p.dirty = val
}

func (p *Page) IsDirty() bool {
	return p.dirty
}

func (p *Page) Lock() {
	p.latch.Lock()
}

func (p *Page) Unlock() {
	p.latch.Unlock()
}

func (p *Page) RLock() {
	p.latch.RLock()
}

func (p *Page) RUnlock() {
	p.latch.RUnlock()
}
