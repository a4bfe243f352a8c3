// Package filter 提供推荐结果的后置过滤。
package filter

import (
	"context"

	"github.com/reelkit/reelkit/core"
	"github.com/reelkit/reelkit/pkg/utils"
)

// Filter 是过滤器的抽象接口，用于判断一个条目是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断条目是否应该被过滤
	ShouldFilter(ctx context.Context, item *core.ScoredItem) (bool, error)
}

// Apply 依次应用多个过滤器；任一过滤器命中即移除该条目。
// 单个过滤器出错时跳过该过滤器，不中断流程。
func Apply(ctx context.Context, filters []Filter, items core.Result) core.Result {
	if len(filters) == 0 || len(items) == 0 {
		return items
	}

	out := make(core.Result, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		removed := false
		for _, f := range filters {
			ok, err := f.ShouldFilter(ctx, item)
			if err != nil {
				continue
			}
			if ok {
				removed = true
				item.PutLabel("filtered", utils.Label{Value: "true", Source: f.Name()})
				break
			}
		}
		if !removed {
			out = append(out, item)
		}
	}
	return out
}
