// Package reelkit 是一个电影推荐核心（Recommendation Engine for Movies）。
//
// 设计要点：
// - 策略分发: 四种推荐策略（semantic / content / similar / collaborative）由 recommend.Engine 统一编排
// - 懒加载单飞: 向量表与编码器制品按需加载，并发首调只触发一次 I/O
// - 领域接口在 core: 存储/编码/对象存储均为接口，基础设施实现可插拔
package reelkit

import (
	"github.com/reelkit/reelkit/core"
	"github.com/reelkit/reelkit/recommend"
)

// 轻量 facade：便于用户直接 import "reelkit" 使用核心抽象。
type Engine = recommend.Engine
type Request = recommend.Request
type Result = core.Result
type ScoredItem = core.ScoredItem

const (
	StrategySemantic      = recommend.StrategySemantic
	StrategyContent       = recommend.StrategyContent
	StrategySimilar       = recommend.StrategySimilar
	StrategyCollaborative = recommend.StrategyCollaborative
)
