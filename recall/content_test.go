package recall

import (
	"context"
	"testing"

	"github.com/reelkit/reelkit/blob"
	"github.com/reelkit/reelkit/core"
	"github.com/reelkit/reelkit/embedding"
)

const testJSONL = `{"movie_id": "1", "embedding": [1.0, 0.0]}
{"movie_id": "2", "embedding": [0.0, 1.0]}
{"movie_id": "3", "embedding": [0.9, 0.1]}
`

func newTestEmbeddings(t *testing.T) *embedding.Store {
	t.Helper()
	blobs := blob.NewMemoryStore()
	blobs.Put("movie-embeddings", "embeddings.jsonl", []byte(testJSONL))
	return embedding.NewStore(blobs, "movie-embeddings", "embeddings.jsonl", embedding.FormatJSONL)
}

func TestContentRecommend(t *testing.T) {
	ctx := context.Background()

	t.Run("排除输入物品且最佳匹配正确", func(t *testing.T) {
		c := &Content{Embeddings: newTestEmbeddings(t)}
		out, err := c.Recommend(ctx, []core.RatedMovie{{MovieID: "1", Weight: 5.0}}, 10)
		if err != nil {
			t.Fatalf("Recommend 失败: %v", err)
		}
		if len(out) == 0 {
			t.Fatal("期望非空结果")
		}
		for _, item := range out {
			if item.ID == "1" {
				t.Error("输入物品不应出现在结果中")
			}
		}
		// 与 [1,0] 方向最近的剩余向量是 "3"
		if out[0].ID != "3" {
			t.Errorf("最佳匹配期望 3，实际 %s", out[0].ID)
		}
	})

	t.Run("混合与输入顺序无关", func(t *testing.T) {
		c := &Content{Embeddings: newTestEmbeddings(t)}
		rated := []core.RatedMovie{
			{MovieID: "1", Weight: 5.0},
			{MovieID: "2", Weight: 2.0},
		}
		reversed := []core.RatedMovie{rated[1], rated[0]}

		a, err := c.Recommend(ctx, rated, 10)
		if err != nil {
			t.Fatalf("Recommend 失败: %v", err)
		}
		b, err := c.Recommend(ctx, reversed, 10)
		if err != nil {
			t.Fatalf("Recommend 失败: %v", err)
		}
		if len(a) != len(b) {
			t.Fatalf("结果长度不一致: %d vs %d", len(a), len(b))
		}
		for i := range a {
			if a[i].ID != b[i].ID || a[i].Score != b[i].Score {
				t.Errorf("位置 %d 不一致: (%s, %v) vs (%s, %v)",
					i, a[i].ID, a[i].Score, b[i].ID, b[i].Score)
			}
		}
	})

	t.Run("不在表中的物品静默丢弃", func(t *testing.T) {
		c := &Content{Embeddings: newTestEmbeddings(t)}
		out, err := c.Recommend(ctx, []core.RatedMovie{
			{MovieID: "1", Weight: 5.0},
			{MovieID: "no-such-movie", Weight: 4.0},
		}, 10)
		if err != nil {
			t.Fatalf("Recommend 失败: %v", err)
		}
		if len(out) == 0 {
			t.Error("剩余物品仍应产出结果")
		}
	})

	t.Run("无一命中向量表返回空", func(t *testing.T) {
		c := &Content{Embeddings: newTestEmbeddings(t)}
		out, err := c.Recommend(ctx, []core.RatedMovie{{MovieID: "ghost", Weight: 5.0}}, 10)
		if err != nil {
			t.Fatalf("Recommend 失败: %v", err)
		}
		if len(out) != 0 {
			t.Errorf("期望空结果，实际 %d 条", len(out))
		}
	})

	t.Run("权重和为零返回空", func(t *testing.T) {
		c := &Content{Embeddings: newTestEmbeddings(t)}
		out, err := c.Recommend(ctx, []core.RatedMovie{
			{MovieID: "1", Weight: 1.0},
			{MovieID: "2", Weight: -1.0},
		}, 10)
		if err != nil {
			t.Fatalf("Recommend 失败: %v", err)
		}
		if len(out) != 0 {
			t.Errorf("期望空结果，实际 %d 条", len(out))
		}
	})

	t.Run("空输入返回空", func(t *testing.T) {
		c := &Content{Embeddings: newTestEmbeddings(t)}
		out, err := c.Recommend(ctx, nil, 10)
		if err != nil {
			t.Fatalf("Recommend 失败: %v", err)
		}
		if len(out) != 0 {
			t.Errorf("期望空结果，实际 %d 条", len(out))
		}
	})

	t.Run("结果带召回来源标签", func(t *testing.T) {
		c := &Content{Embeddings: newTestEmbeddings(t)}
		out, err := c.Recommend(ctx, []core.RatedMovie{{MovieID: "1", Weight: 5.0}}, 10)
		if err != nil {
			t.Fatalf("Recommend 失败: %v", err)
		}
		for _, item := range out {
			if label, ok := item.Labels["recall_source"]; !ok || label.Value != "content" {
				t.Errorf("物品 %s 缺少 content 来源标签", item.ID)
			}
		}
	})
}

type fakeTastes struct {
	rated []core.RatedMovie
	err   error
}

func (f *fakeTastes) GetUserTastes(ctx context.Context, userID string) ([]core.RatedMovie, error) {
	return f.rated, f.err
}

func TestContentRecommendForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("按用户拉取口味", func(t *testing.T) {
		c := &Content{
			Embeddings: newTestEmbeddings(t),
			Tastes:     &fakeTastes{rated: []core.RatedMovie{{MovieID: "1", Weight: 5.0}}},
		}
		out, err := c.RecommendForUser(ctx, "u1", 10)
		if err != nil {
			t.Fatalf("RecommendForUser 失败: %v", err)
		}
		if len(out) == 0 || out[0].ID != "3" {
			t.Errorf("最佳匹配期望 3，实际 %v", out.IDs())
		}
	})

	t.Run("未配置口味来源报错", func(t *testing.T) {
		c := &Content{Embeddings: newTestEmbeddings(t)}
		if _, err := c.RecommendForUser(ctx, "u1", 10); !core.IsNotSupported(err) {
			t.Errorf("期望 NOT_SUPPORTED，实际 %v", err)
		}
	})
}
