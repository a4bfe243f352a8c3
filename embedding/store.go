package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/reelkit/reelkit/core"
)

// Format 是向量表的线上存储格式，由部署配置显式指定。
type Format string

const (
	// FormatJSONL 行式 JSON：{"movie_id": "...", "embedding": [...]}
	FormatJSONL Format = "jsonl"
	// FormatNPY 稠密 NumPy 矩阵：(N, D+1)，末列为数值型物品 ID
	FormatNPY Format = "npy"
)

// ValidFormat 校验格式取值。
func ValidFormat(f Format) bool {
	switch f {
	case FormatJSONL, FormatNPY:
		return true
	default:
		return false
	}
}

// Store 是向量表的懒加载缓存。
//
// 并发契约：
//   - 首次访问触发一次性整表拉取；并发访问通过 single-flight 合并，
//     同一时刻至多一次 I/O 在途，其余调用等待同一结果
//   - 加载成功后表不可变，读取无锁争用
//   - 加载失败不缓存：本次调用失败，下次访问重新尝试（可重试语义）
type Store struct {
	blobs  core.BlobStore
	bucket string
	key    string
	format Format

	// LoadTimeout 约束单次整表拉取+解析；0 使用默认值。
	// 在途加载与单个调用方的 deadline 解耦：一个调用方取消不应拖垮其他等待者。
	LoadTimeout time.Duration

	group singleflight.Group
	mu    sync.RWMutex
	table *Table
}

// defaultLoadTimeout 对应整表（几十 MB 级）从对象存储冷拉取的合理上界。
const defaultLoadTimeout = 2 * time.Minute

// NewStore 创建向量表缓存；此时不发生任何 I/O。
func NewStore(blobs core.BlobStore, bucket, key string, format Format) *Store {
	return &Store{
		blobs:  blobs,
		bucket: bucket,
		key:    key,
		format: format,
	}
}

// Table 返回加载完成的向量表，必要时触发首次加载。
// 加载失败返回 EMBEDDING_LOAD，对当前进程实例内的后续调用是可重试的。
func (s *Store) Table(ctx context.Context) (*Table, error) {
	s.mu.RLock()
	t := s.table
	s.mu.RUnlock()
	if t != nil {
		return t, nil
	}

	ch := s.group.DoChan("load", func() (any, error) {
		timeout := s.LoadTimeout
		if timeout <= 0 {
			timeout = defaultLoadTimeout
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return s.load(loadCtx)
	})

	select {
	case <-ctx.Done():
		// 调用方超时/取消：放弃等待，在途加载继续完成并服务后续调用
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Table), nil
	}
}

// Lookup 查找单个物品的向量；表未加载时先触发加载。
// 向量缺失返回 (nil, nil)：冷物品是合法的空数据，不是错误。
func (s *Store) Lookup(ctx context.Context, movieID string) ([]float64, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	v, ok := t.Lookup(movieID)
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (s *Store) load(ctx context.Context) (*Table, error) {
	if !ValidFormat(s.format) {
		return nil, core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeEmbeddingLoad,
			fmt.Sprintf("embedding: unknown table format %q", s.format))
	}

	start := time.Now()
	data, err := s.blobs.GetObject(ctx, s.bucket, s.key)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleEmbedding, core.ErrorCodeEmbeddingLoad,
			fmt.Sprintf("embedding: fetch s3://%s/%s", s.bucket, s.key), err)
	}

	var table *Table
	switch s.format {
	case FormatJSONL:
		table, err = decodeJSONL(data)
	case FormatNPY:
		table, err = decodeNPY(data)
	}
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleEmbedding, core.ErrorCodeEmbeddingLoad,
			fmt.Sprintf("embedding: decode %s table %q", s.format, s.key), err)
	}

	s.mu.Lock()
	s.table = table
	s.mu.Unlock()

	slog.Info("embedding table loaded",
		"bucket", s.bucket,
		"key", s.key,
		"format", string(s.format),
		"items", table.Len(),
		"dimension", table.Dimension(),
		"elapsed", time.Since(start))
	return table, nil
}
