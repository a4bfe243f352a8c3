package recall

import (
	"context"
	"encoding/json"

	"github.com/reelkit/reelkit/core"
)

// 评分/元数据适配器：把通用 KV 存储（core.Store）适配成领域接口。
//
// Key 约定：
//   - rating:user:{userID}   -> JSON []core.RatingEdge（该用户的全部评分边）
//   - rating:movie:{movieID} -> JSON []core.RatingEdge（该物品的全部评分边，反向索引）
//   - movie:{movieID}        -> JSON core.Movie
//
// 两个方向各存一份，等价于外部数据面的物品维度二级索引；
// SeedRatings 负责同时写入两个方向，保证索引一致。

const (
	ratingUserKeyPrefix  = "rating:user:"
	ratingMovieKeyPrefix = "rating:movie:"
	movieKeyPrefix       = "movie:"
)

// StoreRatingAdapter 基于 core.Store 实现 core.RatingStore。
type StoreRatingAdapter struct {
	store core.Store
}

// NewStoreRatingAdapter 创建评分存储适配器
func NewStoreRatingAdapter(store core.Store) *StoreRatingAdapter {
	return &StoreRatingAdapter{store: store}
}

func (a *StoreRatingAdapter) Name() string {
	return "rating." + a.store.Name()
}

// GetRatingsByUser 获取某用户的全部评分边；key 不存在视为无评分
func (a *StoreRatingAdapter) GetRatingsByUser(ctx context.Context, userID string) ([]core.RatingEdge, error) {
	return a.getEdges(ctx, ratingUserKeyPrefix+userID)
}

// GetRatingsByMovie 获取对某物品评过分的全部用户及评分；key 不存在视为无评分
func (a *StoreRatingAdapter) GetRatingsByMovie(ctx context.Context, movieID string) ([]core.RatingEdge, error) {
	return a.getEdges(ctx, ratingMovieKeyPrefix+movieID)
}

func (a *StoreRatingAdapter) getEdges(ctx context.Context, key string) ([]core.RatingEdge, error) {
	raw, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var edges []core.RatingEdge
	if err := json.Unmarshal(raw, &edges); err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeInternalError,
			"store: malformed rating record at "+key, err)
	}
	return edges, nil
}

// SeedRatings 把评分边集合按两个方向写入存储（用户维度 + 物品维度索引）。
// 供示例和测试构造数据使用，线上评分数据由外部管道写入。
func SeedRatings(ctx context.Context, store core.Store, edges []core.RatingEdge) error {
	byUser := make(map[string][]core.RatingEdge)
	byMovie := make(map[string][]core.RatingEdge)
	for _, e := range edges {
		byUser[e.UserID] = append(byUser[e.UserID], e)
		byMovie[e.MovieID] = append(byMovie[e.MovieID], e)
	}

	kvs := make(map[string][]byte, len(byUser)+len(byMovie))
	for userID, es := range byUser {
		raw, err := json.Marshal(es)
		if err != nil {
			return err
		}
		kvs[ratingUserKeyPrefix+userID] = raw
	}
	for movieID, es := range byMovie {
		raw, err := json.Marshal(es)
		if err != nil {
			return err
		}
		kvs[ratingMovieKeyPrefix+movieID] = raw
	}
	return store.BatchSet(ctx, kvs)
}

// StoreMetadataAdapter 基于 core.Store 实现 core.MetadataStore。
type StoreMetadataAdapter struct {
	store core.Store
}

// NewStoreMetadataAdapter 创建元数据存储适配器
func NewStoreMetadataAdapter(store core.Store) *StoreMetadataAdapter {
	return &StoreMetadataAdapter{store: store}
}

func (a *StoreMetadataAdapter) Name() string {
	return "metadata." + a.store.Name()
}

// GetMovie 获取单个物品元数据；不存在时返回 NOT_FOUND
func (a *StoreMetadataAdapter) GetMovie(ctx context.Context, movieID string) (*core.Movie, error) {
	raw, err := a.store.Get(ctx, movieKeyPrefix+movieID)
	if err != nil {
		return nil, err
	}
	var m core.Movie
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeInternalError,
			"store: malformed movie record "+movieID, err)
	}
	if m.ID == "" {
		m.ID = movieID
	}
	return &m, nil
}

// SeedMovies 批量写入物品元数据，供示例和测试使用。
func SeedMovies(ctx context.Context, store core.Store, movies []core.Movie) error {
	kvs := make(map[string][]byte, len(movies))
	for _, m := range movies {
		raw, err := json.Marshal(m)
		if err != nil {
			return err
		}
		kvs[movieKeyPrefix+m.ID] = raw
	}
	return store.BatchSet(ctx, kvs)
}
