// Package embedding 持有物品 ID → 向量的映射表：
// 从对象存储一次性拉取、进程生命周期内只读缓存、single-flight 懒加载。
package embedding

import (
	"github.com/reelkit/reelkit/similarity"
)

// Table 是加载完成后的向量表：所有向量同维度，加载后不可变。
// 内部同时维护插入顺序，保证全表排序的确定性。
type Table struct {
	dim     int
	ids     []string
	vectors map[string][]float64
}

func newTable(dim int, capacity int) *Table {
	return &Table{
		dim:     dim,
		ids:     make([]string, 0, capacity),
		vectors: make(map[string][]float64, capacity),
	}
}

// add 追加一条记录；重复 ID 或维度不符由 codec 在调用前拒绝。
func (t *Table) add(id string, vector []float64) {
	t.ids = append(t.ids, id)
	t.vectors[id] = vector
}

// Len 返回表中物品数量。
func (t *Table) Len() int {
	return len(t.ids)
}

// Dimension 返回向量维度 D。
func (t *Table) Dimension() int {
	return t.dim
}

// Lookup 查找单个物品的向量；不存在返回 (nil, false)。
// 冷物品/新物品缺失向量是预期情况，不是错误。
func (t *Table) Lookup(id string) ([]float64, bool) {
	v, ok := t.vectors[id]
	return v, ok
}

// Candidates 以加载时的插入顺序返回全表候选，供 similarity.Rank 消费。
// 返回的切片只读共享底层向量，调用方不得修改。
func (t *Table) Candidates() []similarity.Candidate {
	out := make([]similarity.Candidate, len(t.ids))
	for i, id := range t.ids {
		out[i] = similarity.Candidate{ID: id, Vector: t.vectors[id]}
	}
	return out
}
