package core

import "github.com/reelkit/reelkit/pkg/utils"

// ScoredItem 是推荐链路中的统一承载结构：物品 ID、分数、元信息、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
//
// 分数语义取决于产出它的策略：
//   - 语义检索 / 内容推荐 / 相似推荐：余弦相似度，取值 [-1, 1]
//   - 协同过滤：预测评分（与评分同量纲的实数）
type ScoredItem struct {
	ID     string
	Score  float64
	Meta   map[string]any
	Labels map[string]utils.Label
}

func NewScoredItem(id string, score float64) *ScoredItem {
	return &ScoredItem{
		ID:    id,
		Score: score,
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *ScoredItem) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Result 是一次推荐调用的有序结果：按 Score 降序，ID 不重复。
// 空结果是合法产出（冷物品、无评分用户等），不是错误。
type Result []*ScoredItem

// IDs 返回结果中物品 ID 的有序列表。
func (r Result) IDs() []string {
	ids := make([]string, len(r))
	for i, it := range r {
		ids[i] = it.ID
	}
	return ids
}

// Truncate 截取前 n 个结果；n <= 0 或超过长度时不截断。
func (r Result) Truncate(n int) Result {
	if n <= 0 || len(r) <= n {
		return r
	}
	return r[:n]
}
