// Package rerank 在召回/过滤后的候选上做多样性调整与截断。
package rerank

import (
	"context"

	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/pipeline"
)

// TopNNode 截取前 N 个候选，通常是链路的最后一个 Node。
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.ContentRecall{},
//	        &rerank.Diversity{MaxPerCategory: 2},
//	        &rerank.TopNNode{},
//	    },
//	}
type TopNNode struct {
	// N 保留的数量；N <= 0 时取 rctx.K，rctx.K 也 <= 0 则不截断
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.K
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
