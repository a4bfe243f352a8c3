package filter

import (
	"context"

	"github.com/reelkit/reelkit/core"
	"github.com/reelkit/reelkit/pkg/dsl"
)

// ExprFilter 是基于 CEL 表达式的过滤器。
// 表达式描述"保留条件"：求值为 false 的条目被过滤掉。
//
// 示例：
//   - `item.score > 0.5` → 只保留分数高于 0.5 的条目
//   - `label.recall_source != "collaborative"` → 排除协同过滤来源
type ExprFilter struct {
	prg *dsl.Program
}

// NewExprFilter 编译保留表达式并创建过滤器。
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

// ShouldFilter 表达式为 false 时过滤该条目
func (f *ExprFilter) ShouldFilter(ctx context.Context, item *core.ScoredItem) (bool, error) {
	keep, err := f.prg.Evaluate(item)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
