package pipeline

import (
	"context"

	"github.com/rushteam/coursekit/core"
)

// Kind 标记 Node 所在阶段，用于日志与按阶段打点。
type Kind string

const (
	KindRecall Kind = "recall" // 召回：从快照生成候选集
	KindFilter Kind = "filter" // 过滤：剔除不符合约束的候选
	KindReRank Kind = "rerank" // 重排：多样性、截断
)

// Node 是 Pipeline 的最小可扩展单元，统一为"输入 items -> 输出 items"。
// Node 只读 rctx.Snapshot，不得修改 Course。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}

// NodeBuilder 根据配置构建 Node。
type NodeBuilder func(config map[string]any) (Node, error)
