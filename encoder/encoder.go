package encoder

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/reelkit/reelkit/core"
)

// poolingEpsilon 是池化分母的下限：全 pad 序列不会除零。
const poolingEpsilon = 1e-9

// TextEncoder 是 core.Encoder 的生产实现。
//
// 并发契约与 embedding.Store 相同：
//   - 制品（tokenizer + 配置 + 权重）首次使用时一次性加载，
//     single-flight 合并并发加载，失败不缓存
//   - 加载成功后制品只读，Encode 可并发调用
type TextEncoder struct {
	blobs   core.BlobStore
	keys    ArtifactKeys
	factory RuntimeFactory

	// LoadTimeout 约束单次制品拉取+装配；0 使用默认值。
	LoadTimeout time.Duration

	group singleflight.Group
	mu    sync.RWMutex
	art   *artifact
}

const defaultArtifactTimeout = 2 * time.Minute

// New 创建文本编码器；此时不发生任何 I/O。
// factory 传 nil 使用 ONNX 默认后端（带 token_type_ids 输入）。
func New(blobs core.BlobStore, keys ArtifactKeys, factory RuntimeFactory) *TextEncoder {
	if factory == nil {
		factory = DefaultRuntimeFactory(true)
	}
	return &TextEncoder{
		blobs:   blobs,
		keys:    keys,
		factory: factory,
	}
}

var _ core.Encoder = (*TextEncoder)(nil)

// Encode 实现 core.Encoder：文本 → L2 归一化向量。
func (e *TextEncoder) Encode(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, core.NewDomainError(core.ModuleEncoder, core.ErrorCodeInvalidQuery,
			"encoder: query text is empty")
	}

	art, err := e.artifact(ctx)
	if err != nil {
		return nil, err
	}

	encoding, err := art.tok.EncodeSingle(text, true)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleEncoder, core.ErrorCodeComputation,
			"encoder: tokenize query", err)
	}

	seqLen := len(encoding.Ids)
	inputIDs := make([]int64, seqLen)
	attentionMask := make([]int64, seqLen)
	typeIDs := make([]int64, seqLen)
	for i := 0; i < seqLen; i++ {
		inputIDs[i] = int64(encoding.Ids[i])
		attentionMask[i] = int64(encoding.AttentionMask[i])
		typeIDs[i] = int64(encoding.TypeIds[i])
	}

	hidden, err := art.runtime.Forward(ctx, inputIDs, attentionMask, typeIDs)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, core.WrapDomainError(core.ModuleEncoder, core.ErrorCodeComputation,
			"encoder: model forward pass", err)
	}
	if len(hidden) != seqLen {
		err := core.NewDomainError(core.ModuleEncoder, core.ErrorCodeComputation,
			"encoder: hidden state length mismatch")
		slog.Error("encoder computation error",
			"seq_len", seqLen, "hidden_rows", len(hidden))
		return nil, err
	}

	return normalize(meanPool(hidden, attentionMask)), nil
}

// Close 释放底层推理会话（若已加载）。
func (e *TextEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.art != nil {
		e.art.close()
		e.art = nil
	}
	return nil
}

func (e *TextEncoder) artifact(ctx context.Context) (*artifact, error) {
	e.mu.RLock()
	art := e.art
	e.mu.RUnlock()
	if art != nil {
		return art, nil
	}

	ch := e.group.DoChan("load", func() (any, error) {
		timeout := e.LoadTimeout
		if timeout <= 0 {
			timeout = defaultArtifactTimeout
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		start := time.Now()
		art, err := loadArtifact(loadCtx, e.blobs, e.keys, e.factory)
		if err != nil {
			return nil, err
		}

		e.mu.Lock()
		e.art = art
		e.mu.Unlock()

		slog.Info("encoder artifact loaded",
			"bucket", e.keys.Bucket,
			"model_key", e.keys.ModelKey,
			"max_seq_len", art.maxSeqLen,
			"elapsed", time.Since(start))
		return art, nil
	})

	select {
	case <-ctx.Done():
		// 调用方超时/取消：在途加载继续完成并服务后续调用
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*artifact), nil
	}
}

// meanPool 对逐 token 隐层做 attention mask 加权平均：
// pad 位贡献为零，分母为非 pad 位个数（下限 poolingEpsilon）。
func meanPool(hidden [][]float64, attentionMask []int64) []float64 {
	if len(hidden) == 0 {
		return nil
	}
	dim := len(hidden[0])
	pooled := make([]float64, dim)

	var maskSum float64
	for i, row := range hidden {
		if attentionMask[i] == 0 {
			continue
		}
		maskSum++
		for j := 0; j < dim; j++ {
			pooled[j] += row[j]
		}
	}

	denom := math.Max(maskSum, poolingEpsilon)
	for j := 0; j < dim; j++ {
		pooled[j] /= denom
	}
	return pooled
}

// normalize 做 L2 归一化；零向量原样返回（余弦计算对零向量已定义为 0）。
func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
	return v
}
