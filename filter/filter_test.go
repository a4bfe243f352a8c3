package filter

import (
	"context"
	"testing"

	"github.com/reelkit/reelkit/core"
	"github.com/reelkit/reelkit/store"
)

func testItems() core.Result {
	return core.Result{
		core.NewScoredItem("1", 0.9),
		core.NewScoredItem("2", 0.6),
		core.NewScoredItem("3", 0.3),
	}
}

func TestExprFilter(t *testing.T) {
	ctx := context.Background()

	t.Run("保留表达式为假的条目被过滤", func(t *testing.T) {
		f, err := NewExprFilter(`item.score > 0.5`)
		if err != nil {
			t.Fatalf("NewExprFilter 失败: %v", err)
		}
		out := Apply(ctx, []Filter{f}, testItems())
		if len(out) != 2 {
			t.Fatalf("期望 2 条，实际 %d 条", len(out))
		}
		for _, item := range out {
			if item.Score <= 0.5 {
				t.Errorf("低分条目 %s 未被过滤", item.ID)
			}
		}
	})

	t.Run("非法表达式编译期报错", func(t *testing.T) {
		if _, err := NewExprFilter(`&&`); err == nil {
			t.Fatal("期望编译错误，实际为 nil")
		}
	})
}

func TestBlacklistFilter(t *testing.T) {
	ctx := context.Background()

	t.Run("内存名单", func(t *testing.T) {
		f := &BlacklistFilter{MovieIDs: []string{"2"}}
		out := Apply(ctx, []Filter{f}, testItems())
		for _, item := range out {
			if item.ID == "2" {
				t.Error("黑名单物品未被过滤")
			}
		}
		if len(out) != 2 {
			t.Errorf("期望 2 条，实际 %d 条", len(out))
		}
	})

	t.Run("存储名单", func(t *testing.T) {
		kv := store.NewMemoryStore()
		defer kv.Close()
		if err := kv.Set(ctx, "blacklist", []byte(`["1","3"]`)); err != nil {
			t.Fatal(err)
		}
		f := &BlacklistFilter{Store: kv, Key: "blacklist"}
		out := Apply(ctx, []Filter{f}, testItems())
		if len(out) != 1 || out[0].ID != "2" {
			t.Errorf("期望 [2]，实际 %v", out.IDs())
		}
	})

	t.Run("名单 key 不存在时不过滤", func(t *testing.T) {
		kv := store.NewMemoryStore()
		defer kv.Close()
		f := &BlacklistFilter{Store: kv, Key: "missing"}
		out := Apply(ctx, []Filter{f}, testItems())
		if len(out) != 3 {
			t.Errorf("期望 3 条，实际 %d 条", len(out))
		}
	})
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("无过滤器原样返回", func(t *testing.T) {
		items := testItems()
		out := Apply(ctx, nil, items)
		if len(out) != len(items) {
			t.Errorf("期望 %d 条，实际 %d 条", len(items), len(out))
		}
	})

	t.Run("被过滤条目带标签", func(t *testing.T) {
		items := testItems()
		f := &BlacklistFilter{MovieIDs: []string{"1"}}
		Apply(ctx, []Filter{f}, items)
		if label, ok := items[0].Labels["filtered"]; !ok || label.Source != "filter.blacklist" {
			t.Error("被过滤条目缺少 filtered 标签")
		}
	})

	t.Run("多过滤器任一命中即移除", func(t *testing.T) {
		f1 := &BlacklistFilter{MovieIDs: []string{"1"}}
		f2 := &BlacklistFilter{MovieIDs: []string{"3"}}
		out := Apply(ctx, []Filter{f1, f2}, testItems())
		if len(out) != 1 || out[0].ID != "2" {
			t.Errorf("期望 [2]，实际 %v", out.IDs())
		}
	})
}
