package recall

import (
	"context"
	"sort"

	"github.com/reelkit/reelkit/core"
	"github.com/reelkit/reelkit/embedding"
	"github.com/reelkit/reelkit/similarity"
)

// TasteSource 按用户 ID 提供 (物品, 权重) 对，作为内容召回的输入来源。
// 典型实现是 Feature Store（feast.UserTasteSource）；
// 调用方也可以直接把评分对传给 Recommend，绕过此接口。
type TasteSource interface {
	// GetUserTastes 获取用户的加权物品集合；无数据时返回空切片
	GetUserTastes(ctx context.Context, userID string) ([]core.RatedMovie, error)
}

// Content 是基于内容的召回源（Content-Based Recommendation）。
//
// 核心思想："把用户评过分的物品向量按评分加权混合成口味向量，找方向最近的物品"
//
// 算法流程：
//  1. 输入 (物品, 权重) 对；不在向量表中的物品静默丢弃（表可能滞后于目录）
//  2. 口味向量 = Σ(weight_i * vector_i) / Σ(weight_i)
//  3. 全表余弦排序，排除全部输入物品本身
//
// 边界：权重和为零、或没有任何输入物品命中向量表 → 合法的空结果，不是错误。
type Content struct {
	Embeddings *embedding.Store

	// Tastes 可选：RecommendForUser 用它按用户 ID 拉取输入对
	Tastes TasteSource
}

func (c *Content) Name() string {
	return "recall.content"
}

// Recommend 按显式 (物品, 权重) 对做内容召回。
func (c *Content) Recommend(ctx context.Context, rated []core.RatedMovie, topK int) (core.Result, error) {
	if len(rated) == 0 {
		return core.Result{}, nil
	}

	table, err := c.Embeddings.Table(ctx)
	if err != nil {
		return nil, err
	}

	// 同一物品多次出现时权重合并；其后按物品 ID 定序累加，
	// 保证混合向量与输入顺序无关（浮点累加顺序固定）
	weights := make(map[string]float64, len(rated))
	exclude := make(map[string]struct{}, len(rated))
	for _, r := range rated {
		weights[r.MovieID] += r.Weight
		exclude[r.MovieID] = struct{}{}
	}
	ids := make([]string, 0, len(weights))
	for id := range weights {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var blended []float64
	var weightSum float64
	for _, id := range ids {
		vector, ok := table.Lookup(id)
		if !ok {
			continue
		}
		if blended == nil {
			blended = make([]float64, len(vector))
		}
		w := weights[id]
		for i, v := range vector {
			blended[i] += w * v
		}
		weightSum += w
	}

	if blended == nil || weightSum == 0 {
		return core.Result{}, nil
	}
	for i := range blended {
		blended[i] /= weightSum
	}

	out, err := similarity.Rank(blended, table.Candidates(), exclude, topK)
	if err != nil {
		return nil, err
	}
	labelSource(out, "content")
	return out, nil
}

// RecommendForUser 从 TasteSource 拉取用户口味后做内容召回。
func (c *Content) RecommendForUser(ctx context.Context, userID string, topK int) (core.Result, error) {
	if c.Tastes == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeNotSupported,
			"recall: no taste source configured")
	}
	rated, err := c.Tastes.GetUserTastes(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.Recommend(ctx, rated, topK)
}
