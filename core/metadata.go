package core

import "context"

// Movie 是物品（电影）的展示元数据记录。
// 字段集合对齐目录数据源，核心只透传，不解释语义。
type Movie struct {
	ID          string         `json:"movie_id"`
	Title       string         `json:"title"`
	Overview    string         `json:"overview,omitempty"`
	Genres      []string       `json:"genres,omitempty"`
	ReleaseDate string         `json:"release_date,omitempty"`
	VoteAverage float64        `json:"vote_average,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// MetadataStore 是物品元数据的领域接口。
// 排序结果只含 (id, score)，由调用方用此接口补全展示数据。
type MetadataStore interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// GetMovie 获取单个物品的元数据；不存在时返回 NOT_FOUND
	GetMovie(ctx context.Context, movieID string) (*Movie, error)
}
