package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mesikahq/spitalverse/internal/encryption"
)

// DefaultSlotName is the slot a store persists to unless configured otherwise.
const DefaultSlotName = "spitalverse-storage"

// Slot is a single named durable location holding the serialized store.
// Load returns nil data and no error when nothing has been saved yet.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// MemorySlot keeps the snapshot in process memory.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (m *MemorySlot) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemorySlot) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

// FileSlot stores the snapshot as <dir>/<name>.json.
type FileSlot struct {
	path string
}

func NewFileSlot(dir, name string) *FileSlot {
	return &FileSlot{path: filepath.Join(dir, name+".json")}
}

func (f *FileSlot) Path() string {
	return f.path
}

func (f *FileSlot) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", f.path, err)
	}
	return data, nil
}

// Save writes to a temporary file, syncs it and renames it over the slot so
// a crash never leaves a half-written snapshot behind.
func (f *FileSlot) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create slot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp slot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp slot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp slot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp slot: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("chmod temp slot: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace slot: %w", err)
	}
	return nil
}

// EncryptedSlot encrypts snapshots before handing them to the wrapped slot.
type EncryptedSlot struct {
	inner Slot
	enc   encryption.Service
}

func NewEncryptedSlot(inner Slot, enc encryption.Service) *EncryptedSlot {
	return &EncryptedSlot{inner: inner, enc: enc}
}

func (e *EncryptedSlot) Load(ctx context.Context) ([]byte, error) {
	raw, err := e.inner.Load(ctx)
	if err != nil || raw == nil {
		return raw, err
	}
	data, err := e.enc.Decrypt(string(raw))
	if err != nil {
		return nil, fmt.Errorf("decrypt slot: %w", err)
	}
	return data, nil
}

func (e *EncryptedSlot) Save(ctx context.Context, data []byte) error {
	ct, err := e.enc.Encrypt(data)
	if err != nil {
		return fmt.Errorf("encrypt slot: %w", err)
	}
	return e.inner.Save(ctx, []byte(ct))
}
