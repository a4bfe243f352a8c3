package feast

import (
	"context"
	"testing"
)

// fakeClient 返回预置的特征向量，模拟 Feature Server
type fakeClient struct {
	values map[string]any
	err    error
}

func (f *fakeClient) GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &GetOnlineFeaturesResponse{
		FeatureVectors: []FeatureVector{
			{Values: f.values, EntityRow: req.EntityRows[0]},
		},
	}, nil
}

func (f *fakeClient) Close() error { return nil }

func TestGetUserTastes(t *testing.T) {
	ctx := context.Background()

	t.Run("平行列表翻译成评分对", func(t *testing.T) {
		src := &UserTasteSource{Client: &fakeClient{values: map[string]any{
			defaultMovieIDsFeature: []string{"1", "2"},
			defaultRatingsFeature:  []float64{5.0, 3.0},
		}}}
		got, err := src.GetUserTastes(ctx, "u1")
		if err != nil {
			t.Fatalf("GetUserTastes 失败: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("期望 2 个评分对，实际 %d 个", len(got))
		}
		if got[0].MovieID != "1" || got[0].Weight != 5.0 {
			t.Errorf("评分对 0 = %+v", got[0])
		}
		if got[1].MovieID != "2" || got[1].Weight != 3.0 {
			t.Errorf("评分对 1 = %+v", got[1])
		}
	})

	t.Run("冷启动用户返回空", func(t *testing.T) {
		src := &UserTasteSource{Client: &fakeClient{values: map[string]any{}}}
		got, err := src.GetUserTastes(ctx, "newcomer")
		if err != nil {
			t.Fatalf("冷启动不应报错: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("期望空结果，实际 %d 个", len(got))
		}
	})

	t.Run("列表长度不一致报错", func(t *testing.T) {
		src := &UserTasteSource{Client: &fakeClient{values: map[string]any{
			defaultMovieIDsFeature: []string{"1", "2"},
			defaultRatingsFeature:  []float64{5.0},
		}}}
		if _, err := src.GetUserTastes(ctx, "u1"); err == nil {
			t.Fatal("期望数据损坏错误，实际为 nil")
		}
	})

	t.Run("空白 ID 被跳过", func(t *testing.T) {
		src := &UserTasteSource{Client: &fakeClient{values: map[string]any{
			defaultMovieIDsFeature: []string{"1", "  "},
			defaultRatingsFeature:  []float64{5.0, 3.0},
		}}}
		got, err := src.GetUserTastes(ctx, "u1")
		if err != nil {
			t.Fatalf("GetUserTastes 失败: %v", err)
		}
		if len(got) != 1 || got[0].MovieID != "1" {
			t.Errorf("期望仅保留 1，实际 %+v", got)
		}
	})
}
