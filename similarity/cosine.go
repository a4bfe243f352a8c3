// Package similarity 提供纯函数式的相似度计算与 Top-K 排序。
// 无副作用、无隐藏状态，可独立测试。
package similarity

import (
	"fmt"
	"math"
	"sort"

	"github.com/reelkit/reelkit/core"
)

// Candidate 是一个待排序的候选：物品 ID 与其向量。
type Candidate struct {
	ID     string
	Vector []float64
}

// Cosine 计算余弦相似度：dot(a,b) / (||a|| * ||b||)。
// 任一向量范数为零时返回 0.0，绝不除零、绝不产生 NaN。
// 长度不一致时按零相似处理（排序入口 Rank 会在此之前做维度校验）。
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank 对候选集合按与查询向量的余弦相似度做确定性 Top-K 排序。
//
// 规则：
//   - exclude 中的 ID 在计分前被剔除
//   - 按分数降序；同分保持候选的迭代顺序（稳定排序，保证测试可复现）
//   - topK <= 0 时不截断；剔除后不足 topK 个则全量返回，不是错误
//   - 候选向量维度与查询不一致 → COMPUTATION 错误（表加载不变式被破坏，属 bug 信号）
func Rank(query []float64, candidates []Candidate, exclude map[string]struct{}, topK int) (core.Result, error) {
	if len(query) == 0 {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeComputation, "rank: empty query vector")
	}

	out := make(core.Result, 0, len(candidates))
	for _, c := range candidates {
		if _, skip := exclude[c.ID]; skip {
			continue
		}
		if len(c.Vector) != len(query) {
			return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeComputation,
				fmt.Sprintf("rank: dimension mismatch for %q: got %d, want %d", c.ID, len(c.Vector), len(query)))
		}
		out = append(out, core.NewScoredItem(c.ID, Cosine(query, c.Vector)))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out.Truncate(topK), nil
}
