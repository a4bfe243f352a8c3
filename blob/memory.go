package blob

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/reelkit/reelkit/core"
)

// MemoryStore 是内存实现的 BlobStore，用于测试/开发。
// 记录取数次数，便于验证 single-flight 行为。
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	fetches atomic.Int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Name() string { return "memory" }

// Put 写入一个对象（仅测试装配用，不属于 core.BlobStore 契约）。
func (m *MemoryStore) Put(bucket, key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = data
}

func (m *MemoryStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.fetches.Add(1)

	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, core.NewDomainError(core.ModuleBlob, core.ErrorCodeNotFound,
			"blob: object not found: "+bucket+"/"+key)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Fetches 返回累计取数次数。
func (m *MemoryStore) Fetches() int64 {
	return m.fetches.Load()
}

var _ core.BlobStore = (*MemoryStore)(nil)
