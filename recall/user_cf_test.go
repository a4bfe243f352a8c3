package recall

import (
	"context"
	"math"
	"testing"

	"github.com/reelkit/reelkit/core"
	"github.com/reelkit/reelkit/store"
)

func newRatingStore(t *testing.T, edges []core.RatingEdge) *StoreRatingAdapter {
	t.Helper()
	kv := store.NewMemoryStore()
	t.Cleanup(func() { kv.Close() })
	if err := SeedRatings(context.Background(), kv, edges); err != nil {
		t.Fatalf("SeedRatings 失败: %v", err)
	}
	return NewStoreRatingAdapter(kv)
}

func TestUserCFRecommend(t *testing.T) {
	ctx := context.Background()

	t.Run("目标用户无评分返回空", func(t *testing.T) {
		cf := &UserCF{Ratings: newRatingStore(t, []core.RatingEdge{
			{UserID: "other", MovieID: "1", Rating: 5},
		})}
		out, err := cf.Recommend(ctx, "nobody", 10)
		if err != nil {
			t.Fatalf("无评分不应报错: %v", err)
		}
		if len(out) != 0 {
			t.Errorf("期望空结果，实际 %d 条", len(out))
		}
	})

	t.Run("单个共同物品的邻居被排除", func(t *testing.T) {
		// 目标用户只评了 A；邻居 X 评了 A 和 B，共同物品数 1 < 2
		cf := &UserCF{Ratings: newRatingStore(t, []core.RatingEdge{
			{UserID: "u", MovieID: "A", Rating: 5},
			{UserID: "x", MovieID: "A", Rating: 5},
			{UserID: "x", MovieID: "B", Rating: 4},
		})}
		out, err := cf.Recommend(ctx, "u", 10)
		if err != nil {
			t.Fatalf("Recommend 失败: %v", err)
		}
		if len(out) != 0 {
			t.Errorf("期望空结果，实际 %v", out.IDs())
		}
	})

	t.Run("不推荐已评分物品且预测分正确", func(t *testing.T) {
		// 邻居 v 与目标用户在 1、2 上评分完全一致（sim = 1.0），另评了 4 给 4 分
		cf := &UserCF{Ratings: newRatingStore(t, []core.RatingEdge{
			{UserID: "u", MovieID: "1", Rating: 5},
			{UserID: "u", MovieID: "2", Rating: 3},
			{UserID: "v", MovieID: "1", Rating: 5},
			{UserID: "v", MovieID: "2", Rating: 3},
			{UserID: "v", MovieID: "4", Rating: 4},
		})}
		out, err := cf.Recommend(ctx, "u", 10)
		if err != nil {
			t.Fatalf("Recommend 失败: %v", err)
		}
		for _, item := range out {
			if item.ID == "1" || item.ID == "2" {
				t.Errorf("已评分物品 %s 不应被推荐", item.ID)
			}
		}
		if len(out) != 1 || out[0].ID != "4" {
			t.Fatalf("期望 [4]，实际 %v", out.IDs())
		}
		// 预测分 = (sim*4) / sim = 4.0
		if math.Abs(out[0].Score-4.0) > 1e-9 {
			t.Errorf("预测分期望 4.0，实际 %v", out[0].Score)
		}
	})

	t.Run("多邻居加权平均", func(t *testing.T) {
		// v、w 与目标用户的共同评分完全一致（sim 均为 1.0），
		// 对物品 9 分别给 5 和 3 → 预测 (5+3)/2 = 4.0
		cf := &UserCF{Ratings: newRatingStore(t, []core.RatingEdge{
			{UserID: "u", MovieID: "1", Rating: 4},
			{UserID: "u", MovieID: "2", Rating: 2},
			{UserID: "v", MovieID: "1", Rating: 4},
			{UserID: "v", MovieID: "2", Rating: 2},
			{UserID: "v", MovieID: "9", Rating: 5},
			{UserID: "w", MovieID: "1", Rating: 4},
			{UserID: "w", MovieID: "2", Rating: 2},
			{UserID: "w", MovieID: "9", Rating: 3},
		})}
		out, err := cf.Recommend(ctx, "u", 10)
		if err != nil {
			t.Fatalf("Recommend 失败: %v", err)
		}
		if len(out) != 1 || out[0].ID != "9" {
			t.Fatalf("期望 [9]，实际 %v", out.IDs())
		}
		if math.Abs(out[0].Score-4.0) > 1e-9 {
			t.Errorf("预测分期望 4.0，实际 %v", out[0].Score)
		}
	})

	t.Run("邻居数上限生效", func(t *testing.T) {
		// 限制只取 1 个邻居：v 与目标完全同向（sim=1.0），
		// w 的共同评分方向略偏（sim<1.0），w 独有的物品不应出现
		cf := &UserCF{
			Ratings: newRatingStore(t, []core.RatingEdge{
				{UserID: "u", MovieID: "1", Rating: 4},
				{UserID: "u", MovieID: "2", Rating: 2},
				{UserID: "v", MovieID: "1", Rating: 4},
				{UserID: "v", MovieID: "2", Rating: 2},
				{UserID: "v", MovieID: "8", Rating: 5},
				{UserID: "w", MovieID: "1", Rating: 2},
				{UserID: "w", MovieID: "2", Rating: 4},
				{UserID: "w", MovieID: "9", Rating: 5},
			}),
			TopKNeighbors: 1,
		}
		out, err := cf.Recommend(ctx, "u", 10)
		if err != nil {
			t.Fatalf("Recommend 失败: %v", err)
		}
		for _, item := range out {
			if item.ID == "9" {
				t.Error("被截断邻居的物品不应出现")
			}
		}
		if len(out) != 1 || out[0].ID != "8" {
			t.Errorf("期望 [8]，实际 %v", out.IDs())
		}
	})

	t.Run("结果确定有序", func(t *testing.T) {
		cf := &UserCF{Ratings: newRatingStore(t, []core.RatingEdge{
			{UserID: "u", MovieID: "1", Rating: 5},
			{UserID: "u", MovieID: "2", Rating: 5},
			{UserID: "v", MovieID: "1", Rating: 5},
			{UserID: "v", MovieID: "2", Rating: 5},
			{UserID: "v", MovieID: "a", Rating: 4},
			{UserID: "v", MovieID: "b", Rating: 4},
		})}
		first, err := cf.Recommend(ctx, "u", 10)
		if err != nil {
			t.Fatalf("Recommend 失败: %v", err)
		}
		second, err := cf.Recommend(ctx, "u", 10)
		if err != nil {
			t.Fatalf("Recommend 失败: %v", err)
		}
		// 同分物品按 ID 升序，重复调用结果一致
		if len(first) != 2 || first[0].ID != "a" || first[1].ID != "b" {
			t.Errorf("期望 [a b]，实际 %v", first.IDs())
		}
		for i := range first {
			if first[i].ID != second[i].ID || first[i].Score != second[i].Score {
				t.Errorf("重复调用结果不一致: %v vs %v", first.IDs(), second.IDs())
			}
		}
	})

	t.Run("取消信号中止计算", func(t *testing.T) {
		cf := &UserCF{Ratings: newRatingStore(t, []core.RatingEdge{
			{UserID: "u", MovieID: "1", Rating: 5},
			{UserID: "v", MovieID: "1", Rating: 5},
		})}
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := cf.Recommend(cancelled, "u", 10); err == nil {
			t.Fatal("期望取消错误，实际为 nil")
		}
	})
}
