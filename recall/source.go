// Package recall 从钉住的快照中生成候选集。
package recall

import (
	"context"

	"github.com/rushteam/coursekit/core"
)

// Source 是一个召回源，可以单独使用，也可以作为 Pipeline 的首个 Node。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// LabelRecallSource 标记候选来自哪个召回源。
const LabelRecallSource = "recall_source"

func snapshotOf(rctx *core.RecommendContext) (core.Snapshot, error) {
	if rctx == nil || rctx.Snapshot == nil {
		return nil, core.ErrNoSnapshot
	}
	return rctx.Snapshot, nil
}
