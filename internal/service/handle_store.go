package service

import (
	"sync"

	"github.com/google/uuid"
)

// HandleStore 二进制句柄存储（object URL 的本地等价物）
// 句柄的所有权始终归报表历史；释放后底层内存可回收
type HandleStore interface {
	// Materialize stores content and returns an addressable key.
	Materialize(content []byte) string
	// Resolve returns the content for a key, if still held.
	Resolve(key string) ([]byte, bool)
	// Release frees the content behind a key. Unknown keys are a no-op.
	Release(key string)
}

// MemoryHandleStore keeps report blobs in a map guarded by RWMutex.
type MemoryHandleStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryHandleStore() *MemoryHandleStore {
	return &MemoryHandleStore{blobs: map[string][]byte{}}
}

func (s *MemoryHandleStore) Materialize(content []byte) string {
	key := uuid.NewString()
	buf := make([]byte, len(content))
	copy(buf, content)
	s.mu.Lock()
	s.blobs[key] = buf
	s.mu.Unlock()
	return key
}

func (s *MemoryHandleStore) Resolve(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	return b, ok
}

func (s *MemoryHandleStore) Release(key string) {
	s.mu.Lock()
	delete(s.blobs, key)
	s.mu.Unlock()
}

// Len reports how many blobs are currently held.
func (s *MemoryHandleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
