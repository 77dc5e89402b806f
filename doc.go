// Package coursekit 是一个基于内容的课程推荐工具包。
//
// 设计要点：
// - Snapshot-first: 目录、词表与相似度矩阵一起构建为不可变快照，重载时原子替换
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → ReRank），由 YAML 声明
// - Labels-first: labels 全链路透传，可用于 explain 与表达式过滤
package coursekit

import (
	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/engine"
	"github.com/rushteam/coursekit/pipeline"
)

// 轻量 facade：便于直接 import "coursekit" 使用核心抽象。
type (
	Pipeline = pipeline.Pipeline
	Node     = pipeline.Node
	Kind     = pipeline.Kind
	Course   = core.Course
	Snapshot = engine.Snapshot
	Holder   = engine.Holder
)

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindReRank = pipeline.KindReRank
)

// Recommend 对快照做一次纯相似度推荐，等价于 engine.Recommend。
func Recommend(snap *Snapshot, title string, k int) (engine.Recommendation, bool) {
	return engine.Recommend(snap, title, k)
}
