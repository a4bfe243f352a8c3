package feast

import (
	"context"
	"fmt"
	"strings"

	"github.com/reelkit/reelkit/core"
)

const (
	defaultEntityKey       = "user_id"
	defaultMovieIDsFeature = "user_ratings:movie_ids"
	defaultRatingsFeature  = "user_ratings:ratings"
)

// UserTasteSource 把在线特征翻译成内容召回的输入：(物品 ID, 权重) 对。
//
// 特征视图约定两个平行列表特征：物品 ID 列表 + 对应评分列表。
// 用户不存在或特征为空是合法状态（冷启动），返回空切片而非错误；
// 两个列表长度不一致视为特征面数据损坏，报错。
//
// 实现 recall.TasteSource。
type UserTasteSource struct {
	Client Client

	// EntityKey / MovieIDsFeature / RatingsFeature 为空时使用默认约定
	EntityKey       string
	MovieIDsFeature string
	RatingsFeature  string
}

// GetUserTastes 获取用户的加权物品集合。
func (s *UserTasteSource) GetUserTastes(ctx context.Context, userID string) ([]core.RatedMovie, error) {
	entityKey := s.EntityKey
	if entityKey == "" {
		entityKey = defaultEntityKey
	}
	idsFeature := s.MovieIDsFeature
	if idsFeature == "" {
		idsFeature = defaultMovieIDsFeature
	}
	ratingsFeature := s.RatingsFeature
	if ratingsFeature == "" {
		ratingsFeature = defaultRatingsFeature
	}

	resp, err := s.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   []string{idsFeature, ratingsFeature},
		EntityRows: []map[string]any{{entityKey: userID}},
	})
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleFeature, core.ErrorCodeUnavailable,
			"feature: fetch user tastes failed", err)
	}
	if len(resp.FeatureVectors) == 0 {
		return nil, nil
	}

	values := resp.FeatureVectors[0].Values
	ids := asStringList(values[idsFeature])
	ratings := asFloatList(values[ratingsFeature])
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) != len(ratings) {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInternalError,
			fmt.Sprintf("feature: taste lists misaligned: %d ids vs %d ratings", len(ids), len(ratings)))
	}

	out := make([]core.RatedMovie, 0, len(ids))
	for i, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		out = append(out, core.RatedMovie{MovieID: id, Weight: ratings[i]})
	}
	return out, nil
}

func asStringList(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	default:
		return nil
	}
}

func asFloatList(v any) []float64 {
	switch val := v.(type) {
	case []float64:
		return val
	case float64:
		return []float64{val}
	default:
		return nil
	}
}
