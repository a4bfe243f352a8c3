// Package recommend 是推荐编排层：校验请求、分发策略、组装结果。
package recommend

import (
	"context"
	"log/slog"
	"strings"

	"github.com/reelkit/reelkit/core"
	"github.com/reelkit/reelkit/filter"
	"github.com/reelkit/reelkit/recall"
)

// 策略名称常量
const (
	StrategySemantic      = "semantic"      // 语义搜索：自然语言查询
	StrategyContent       = "content"       // 基于内容：加权口味混合
	StrategySimilar       = "similar"       // 物品相似：以物找物
	StrategyCollaborative = "collaborative" // 协同过滤：相似用户
)

// defaultTopK 是未指定 top_k 时的默认返回条数
const defaultTopK = 10

// Request 是一次推荐请求的全部参数。
// 各策略只读取自己需要的字段，缺失必需字段 → INVALID_REQUEST。
type Request struct {
	// Strategy 策略名称（semantic / content / similar / collaborative）
	Strategy string

	// Query 查询文本（semantic 必需）
	Query string

	// MovieID 目标物品（similar 必需）
	MovieID string

	// UserID 目标用户（collaborative 必需；content 在未给 RatedMovies 时必需）
	UserID string

	// RatedMovies 显式口味输入（content 可用，优先于 UserID 拉取）
	RatedMovies []core.RatedMovie

	// TopK 返回条数；0 使用默认值 10，负数非法
	TopK int
}

// Engine 是推荐引擎，按策略分发到各召回源。
//
// 错误传播策略：
//   - 参数错误由 Engine 统一转成 INVALID_REQUEST
//   - 加载/计算错误（EMBEDDING_LOAD / ENCODER_LOAD / COMPUTATION）原样上抛，
//     由调用方决定失败请求还是重启进程
//   - 合法的空结果（冷启动、无邻居）不是错误
type Engine struct {
	Semantic      *recall.Semantic
	Content       *recall.Content
	Similar       *recall.Similar
	Collaborative *recall.UserCF

	// Metadata 可选：Enrich 用它补全展示数据
	Metadata core.MetadataStore

	// Filters 可选：召回后、返回前的结果过滤链
	Filters []filter.Filter

	// Logger 为空时使用 slog.Default()
	Logger *slog.Logger
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Execute 执行一次推荐请求，返回降序排列的 (物品 ID, 分数) 对。
func (e *Engine) Execute(ctx context.Context, req *Request) (core.Result, error) {
	if req == nil {
		return nil, invalidRequest("request is required")
	}

	topK := req.TopK
	if topK == 0 {
		topK = defaultTopK
	}
	if topK < 0 {
		return nil, invalidRequest("top_k must be a positive integer")
	}

	var out core.Result
	var err error
	switch req.Strategy {
	case StrategySemantic:
		if strings.TrimSpace(req.Query) == "" {
			return nil, invalidRequest("semantic strategy requires a non-empty query")
		}
		if e.Semantic == nil {
			return nil, notConfigured(StrategySemantic)
		}
		out, err = e.Semantic.Search(ctx, req.Query, topK)

	case StrategyContent:
		if e.Content == nil {
			return nil, notConfigured(StrategyContent)
		}
		switch {
		case len(req.RatedMovies) > 0:
			out, err = e.Content.Recommend(ctx, req.RatedMovies, topK)
		case req.UserID != "":
			out, err = e.Content.RecommendForUser(ctx, req.UserID, topK)
		default:
			return nil, invalidRequest("content strategy requires rated_movies or user_id")
		}

	case StrategySimilar:
		if req.MovieID == "" {
			return nil, invalidRequest("similar strategy requires movie_id")
		}
		if e.Similar == nil {
			return nil, notConfigured(StrategySimilar)
		}
		out, err = e.Similar.Recommend(ctx, req.MovieID, topK)

	case StrategyCollaborative:
		if req.UserID == "" {
			return nil, invalidRequest("collaborative strategy requires user_id")
		}
		if e.Collaborative == nil {
			return nil, notConfigured(StrategyCollaborative)
		}
		out, err = e.Collaborative.Recommend(ctx, req.UserID, topK)

	default:
		if req.Strategy == "" {
			return nil, invalidRequest("strategy is required")
		}
		return nil, invalidRequest("unknown strategy: " + req.Strategy)
	}
	if err != nil {
		return nil, err
	}

	if len(e.Filters) > 0 {
		before := len(out)
		out = filter.Apply(ctx, e.Filters, out)
		if removed := before - len(out); removed > 0 {
			e.logger().Debug("recommend: filters removed items",
				"strategy", req.Strategy, "removed", removed)
		}
	}
	return out, nil
}

// Enrich 用元数据存储补全展示数据，写入每个条目的 Meta。
// 没有元数据记录的物品从结果中剔除（目录与向量表可能短暂不一致）。
func (e *Engine) Enrich(ctx context.Context, items core.Result) (core.Result, error) {
	if e.Metadata == nil || len(items) == 0 {
		return items, nil
	}

	out := make(core.Result, 0, len(items))
	for _, item := range items {
		movie, err := e.Metadata.GetMovie(ctx, item.ID)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if item.Meta == nil {
			item.Meta = make(map[string]any)
		}
		item.Meta["title"] = movie.Title
		if movie.Overview != "" {
			item.Meta["overview"] = movie.Overview
		}
		if len(movie.Genres) > 0 {
			item.Meta["genres"] = movie.Genres
		}
		if movie.ReleaseDate != "" {
			item.Meta["release_date"] = movie.ReleaseDate
		}
		if movie.VoteAverage != 0 {
			item.Meta["vote_average"] = movie.VoteAverage
		}
		out = append(out, item)
	}
	return out, nil
}

func invalidRequest(message string) error {
	return core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidRequest, message)
}

func notConfigured(strategy string) error {
	return core.NewDomainError(core.ModuleRecommend, core.ErrorCodeNotSupported,
		"strategy not configured: "+strategy)
}
