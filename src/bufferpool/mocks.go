package bufferpool

import (
	"github.com/stretchr/testify/mock"

	"github.com/Blackdeer1524/lrukpool/src/pkg/common"
	"github.com/Blackdeer1524/lrukpool/src/pkg/optional"
	"github.com/Blackdeer1524/lrukpool/src/storage/page"
)

type MockDiskManager struct {
	mock.Mock
}

var _ DiskManager = &MockDiskManager{}

func (m *MockDiskManager) ReadPageInto(p *page.Page, pageIdent common.PageIdentity) error {
	args := m.Called(p, pageIdent)
	return args.Error(0)
}

func (m *MockDiskManager) WritePage(p *page.Page, pageIdent common.PageIdentity) error {
	args := m.Called(p, pageIdent)
	return args.Error(0)
}

type MockReplacer struct {
	mock.Mock
}

var _ Replacer = &MockReplacer{}

func (m *MockReplacer) RecordAccess(frameID common.FrameID, accessType common.AccessType) {
	m.Called(frameID, accessType)
}

func (m *MockReplacer) SetEvictable(frameID common.FrameID, evictable bool) {
	m.Called(frameID, evictable)
}

func (m *MockReplacer) Evict() optional.Optional[common.FrameID] {
	args := m.Called()
	return args.Get(0).(optional.Optional[common.FrameID])
}

func (m *MockReplacer) Remove(frameID common.FrameID) {
	m.Called(frameID)
}

func (m *MockReplacer) Size() uint64 {
	args := m.Called()
	return args.Get(0).(uint64)
}
