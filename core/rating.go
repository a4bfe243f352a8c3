package core

import "context"

// RatingEdge 是稀疏用户×物品评分关系中的一条边。
// 评分关系由外部用户数据服务持有，本核心只读快照，从不写入。
type RatingEdge struct {
	UserID    string  `json:"user_id"`
	MovieID   string  `json:"movie_id"`
	Rating    float64 `json:"rating"`
	Timestamp int64   `json:"timestamp,omitempty"` // Unix 秒，0 表示未知
}

// RatedMovie 是内容推荐的输入单元：(物品 ID, 权重)。
// 权重通常是用户评分，用于偏置向量混合。
type RatedMovie struct {
	MovieID string  `json:"movie_id"`
	Weight  float64 `json:"weight"`
}

// RatingStore 是评分关系的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store/recall adapter）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//
// 注意：
//   - GetRatingsByMovie 是按物品的反向查询，要求外部存储具备物品维度索引
//     （原始数据面的 GSI / 二级索引），核心不在内部做全表扫描优化
type RatingStore interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// GetRatingsByUser 获取某用户的全部评分边
	GetRatingsByUser(ctx context.Context, userID string) ([]RatingEdge, error)

	// GetRatingsByMovie 获取对某物品评过分的全部用户及评分
	GetRatingsByMovie(ctx context.Context, movieID string) ([]RatingEdge, error)
}
