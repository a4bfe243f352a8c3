package recall

import (
	"context"
	"sort"

	"github.com/reelkit/reelkit/core"
	"github.com/reelkit/reelkit/similarity"
)

const (
	// defaultMinCommonItems 计算用户相似度要求的最少共同评分物品数。
	// 只有 1 个共同物品时单物品余弦恒为 1.0，没有区分度
	defaultMinCommonItems = 2

	// defaultTopKNeighbors 参与预测的相似邻居数上限
	defaultTopKNeighbors = 10
)

// UserCF 是基于用户的协同过滤召回源（User-Based Collaborative Filtering）。
//
// 核心思想："口味相似的用户，喜欢的物品也相似"
//
// 算法流程：
//  1. 取目标用户的评分集合；没有评分 → 空结果（冷启动走其他策略）
//  2. 对每个已评分物品做反向查询，汇出其他用户在这些物品上的部分评分向量
//  3. 在共同物品 ≥ MinCommonItems 的前提下算余弦相似度，只保留 sim > 0 的邻居
//  4. 取相似度最高的 TopKNeighbors 个邻居（同分按用户 ID 升序）
//  5. 对邻居未被目标用户评过的物品做加权平均预测：Σ(sim*rating) / Σ(sim)
//  6. 按预测分降序（同分按物品 ID 升序）返回前 topK 个
type UserCF struct {
	Ratings core.RatingStore

	// MinCommonItems / TopKNeighbors 为零时使用默认值
	MinCommonItems int
	TopKNeighbors  int
}

func (u *UserCF) Name() string {
	return "recall.user_cf"
}

type neighbor struct {
	userID string
	sim    float64
}

// Recommend 为目标用户产出协同过滤推荐。
func (u *UserCF) Recommend(ctx context.Context, userID string, topK int) (core.Result, error) {
	minCommon := u.MinCommonItems
	if minCommon <= 0 {
		minCommon = defaultMinCommonItems
	}
	topNeighbors := u.TopKNeighbors
	if topNeighbors <= 0 {
		topNeighbors = defaultTopKNeighbors
	}

	own, err := u.Ratings.GetRatingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(own) == 0 {
		return core.Result{}, nil
	}

	// 目标用户的评分向量，同一物品多条评分时保留最后一条
	ownRatings := make(map[string]float64, len(own))
	ratedIDs := make([]string, 0, len(own))
	for _, e := range own {
		if _, ok := ownRatings[e.MovieID]; !ok {
			ratedIDs = append(ratedIDs, e.MovieID)
		}
		ownRatings[e.MovieID] = e.Rating
	}
	sort.Strings(ratedIDs)

	// 反向查询：movieID -> 其他用户在共同物品上的部分评分向量
	others := make(map[string]map[string]float64)
	for _, movieID := range ratedIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		edges, err := u.Ratings.GetRatingsByMovie(ctx, movieID)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			if e.UserID == userID {
				continue
			}
			partial, ok := others[e.UserID]
			if !ok {
				partial = make(map[string]float64)
				others[e.UserID] = partial
			}
			partial[e.MovieID] = e.Rating
		}
	}

	neighbors := make([]neighbor, 0, len(others))
	for otherID, partial := range others {
		if len(partial) < minCommon {
			continue
		}
		a := make([]float64, 0, len(partial))
		b := make([]float64, 0, len(partial))
		for _, movieID := range ratedIDs {
			r, ok := partial[movieID]
			if !ok {
				continue
			}
			a = append(a, ownRatings[movieID])
			b = append(b, r)
		}
		sim := similarity.Cosine(a, b)
		if sim > 0 {
			neighbors = append(neighbors, neighbor{userID: otherID, sim: sim})
		}
	}
	if len(neighbors) == 0 {
		return core.Result{}, nil
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].sim != neighbors[j].sim {
			return neighbors[i].sim > neighbors[j].sim
		}
		return neighbors[i].userID < neighbors[j].userID
	})
	if len(neighbors) > topNeighbors {
		neighbors = neighbors[:topNeighbors]
	}

	// 加权平均预测：score/weight 分开累加，只计入目标用户未评过的物品
	score := make(map[string]float64)
	weight := make(map[string]float64)
	for _, n := range neighbors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		edges, err := u.Ratings.GetRatingsByUser(ctx, n.userID)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			if _, rated := ownRatings[e.MovieID]; rated {
				continue
			}
			score[e.MovieID] += n.sim * e.Rating
			weight[e.MovieID] += n.sim
		}
	}

	out := make(core.Result, 0, len(score))
	for movieID, s := range score {
		w := weight[movieID]
		if w <= 0 {
			continue
		}
		out = append(out, core.NewScoredItem(movieID, s/w))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	out = out.Truncate(topK)
	labelSource(out, "collaborative")
	return out, nil
}
