package disk

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"
	"github.com/spf13/afero"

	"github.com/Blackdeer1524/lrukpool/src/pkg/common"
	"github.com/Blackdeer1524/lrukpool/src/storage/page"
)

var ErrUnknownFile = errors.New("unknown file id")

// Manager maps page identities onto fixed-size blocks of page files.
type Manager struct {
	fs           afero.Fs
	basePath     string
	fileIDToPath map[common.FileID]string

	mu sync.RWMutex
}

func New(basePath string, fs afero.Fs) *Manager {
	return &Manager{
		fs:           fs,
		basePath:     basePath,
		fileIDToPath: make(map[common.FileID]string),
	}
}

// RegisterFile binds a file id to a path relative to the base directory.
func (m *Manager) RegisterFile(id common.FileID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fs.MkdirAll(m.basePath, 0o755); err != nil {
		return errors.Wrapf(err, "create base dir %s", m.basePath)
	}

	m.fileIDToPath[id] = filepath.Join(m.basePath, filepath.Clean(name))

	return nil
}

func (m *Manager) path(id common.FileID) (string, error) {
	path, ok := m.fileIDToPath[id]
	if !ok {
		return "", errors.Wrapf(ErrUnknownFile, "file %d", id)
	}
	return path, nil
}

// ReadPageInto overwrites the contents of p. The caller holds p's latch.
// Blocks that were never written read back as zeroes.
func (m *Manager) ReadPageInto(p *page.Page, pageIdent common.PageIdentity) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path, err := m.path(pageIdent.FileID)
	if err != nil {
		return err
	}

	p.Reset()

	file, err := m.fs.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	//nolint:gosec
	offset := int64(pageIdent.PageID) * page.PageSize

	_, err = file.ReadAt(p.GetData(), offset)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.Wrapf(err, "read page %s", pageIdent)
	}

	return nil
}

// WritePage stores the contents of p. The caller holds p's latch.
func (m *Manager) WritePage(p *page.Page, pageIdent common.PageIdentity) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path, err := m.path(pageIdent.FileID)
	if err != nil {
		return err
	}

	file, err := m.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o600)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	//nolint:gosec
	offset := int64(pageIdent.PageID) * page.PageSize

	if _, err = file.WriteAt(p.GetData(), offset); err != nil {
		return errors.Wrapf(err, "write page %s", pageIdent)
	}

	return nil
}
