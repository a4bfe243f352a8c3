// Package recall 提供四种召回策略：语义检索、内容推荐、相似推荐、协同过滤。
// 每个策略是一个可独立使用的 Source 单元，依赖通过 core 接口注入。
package recall

import (
	"context"

	"github.com/reelkit/reelkit/core"
	"github.com/reelkit/reelkit/embedding"
	"github.com/reelkit/reelkit/pkg/utils"
	"github.com/reelkit/reelkit/similarity"
)

// Semantic 是语义检索召回源：自由文本 → 查询向量 → 全表余弦排序。
//
// 核心思想："理解查询语义，而不是匹配关键词"
//
// 工程特征：
//   - 首次调用触发编码器制品与向量表加载（随后均为内存计算）
//   - 排序为精确线性扫描，不做 ANN 近似
type Semantic struct {
	Encoder    core.Encoder
	Embeddings *embedding.Store
}

func (s *Semantic) Name() string {
	return "recall.semantic"
}

// Search 对查询文本做全表语义排序，不排除任何候选。
func (s *Semantic) Search(ctx context.Context, query string, topK int) (core.Result, error) {
	queryVector, err := s.Encoder.Encode(ctx, query)
	if err != nil {
		return nil, err
	}

	table, err := s.Embeddings.Table(ctx)
	if err != nil {
		return nil, err
	}

	out, err := similarity.Rank(queryVector, table.Candidates(), nil, topK)
	if err != nil {
		return nil, err
	}
	labelSource(out, "semantic")
	return out, nil
}

func labelSource(items core.Result, source string) {
	for _, it := range items {
		it.PutLabel("recall_source", utils.Label{Value: source, Source: "recall"})
	}
}
