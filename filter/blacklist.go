package filter

import (
	"context"
	"encoding/json"

	"github.com/reelkit/reelkit/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉运营下架/屏蔽的物品。
//
// 名单来源两选一或叠加：
//   - MovieIDs：进程内静态名单
//   - Store + Key：KV 存储中的 JSON 字符串数组，支持运行时更新
type BlacklistFilter struct {
	// MovieIDs 是内存中的黑名单物品 ID 列表
	MovieIDs []string

	// Store 用于从存储中读取黑名单（可选）
	Store core.Store

	// Key 是 Store 中的黑名单 key（可选）
	Key string
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(ctx context.Context, item *core.ScoredItem) (bool, error) {
	if item == nil {
		return true, nil
	}

	for _, id := range f.MovieIDs {
		if item.ID == id {
			return true, nil
		}
	}

	if f.Store != nil && f.Key != "" {
		raw, err := f.Store.Get(ctx, f.Key)
		if err != nil {
			if core.IsStoreNotFound(err) {
				return false, nil
			}
			return false, err
		}
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			return false, core.WrapDomainError(core.ModuleStore, core.ErrorCodeInternalError,
				"store: malformed blacklist at "+f.Key, err)
		}
		for _, id := range ids {
			if item.ID == id {
				return true, nil
			}
		}
	}

	return false, nil
}
