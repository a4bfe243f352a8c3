package recall

import (
	"context"

	"github.com/reelkit/reelkit/core"
	"github.com/reelkit/reelkit/embedding"
	"github.com/reelkit/reelkit/similarity"
)

// Similar 是物品相似召回源（Item-to-Item）。
//
// 以目标物品自身的向量为查询，对全表做余弦排序并排除目标物品。
// 目标物品不在向量表中（新上架、表滞后）是合法状态，返回空结果而非错误。
type Similar struct {
	Embeddings *embedding.Store
}

func (s *Similar) Name() string {
	return "recall.similar"
}

// Recommend 返回与目标物品最相似的 topK 个物品。
func (s *Similar) Recommend(ctx context.Context, movieID string, topK int) (core.Result, error) {
	table, err := s.Embeddings.Table(ctx)
	if err != nil {
		return nil, err
	}

	vector, ok := table.Lookup(movieID)
	if !ok {
		return core.Result{}, nil
	}

	out, err := similarity.Rank(vector, table.Candidates(),
		map[string]struct{}{movieID: {}}, topK)
	if err != nil {
		return nil, err
	}
	labelSource(out, "similar")
	return out, nil
}
