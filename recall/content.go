package recall

import (
	"context"

	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/engine"
	"github.com/rushteam/coursekit/pipeline"
)

// ContentRecall 是基于标题相似度的召回源。
//
// rctx.Query 必须是目录中的精确标题；按相似度矩阵对应行降序输出除查询本身外的全部课程。
// 标题不在目录中时不输出任何候选（由 fallback 链路处理）。
type ContentRecall struct {
	// Limit 最多输出的候选数，<= 0 表示不截断（交给 rerank.topn）
	Limit int

	// MinScore 低于该分数的候选被丢弃
	MinScore float64
}

func (r *ContentRecall) Name() string        { return "recall.content" }
func (r *ContentRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *ContentRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *ContentRecall) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	snap, err := snapshotOf(rctx)
	if err != nil {
		return nil, err
	}
	idx, ok := snap.Lookup(rctx.Query)
	if !ok {
		return []*core.Item{}, nil
	}

	ranked := engine.Rank(snap, idx)
	out := make([]*core.Item, 0, len(ranked))
	for _, s := range ranked {
		if s.Score < r.MinScore {
			continue
		}
		it := core.NewItem(s.Index, s.Course)
		it.Score = s.Score
		it.PutLabel(LabelRecallSource, core.Label{Value: "content", Source: "recall"})
		out = append(out, it)
		if r.Limit > 0 && len(out) >= r.Limit {
			break
		}
	}
	return out, nil
}
