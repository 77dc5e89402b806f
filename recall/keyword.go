package recall

import (
	"context"

	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/engine"
	"github.com/rushteam/coursekit/pipeline"
)

// KeywordRecall 是关键词兜底召回：原始标题大小写不敏感子串匹配，按订阅数降序。
// 分数即订阅数。无匹配时返回空切片。
type KeywordRecall struct {
	// Limit 最多输出的候选数，<= 0 表示不截断（交给 rerank.topn）
	Limit int
}

func (r *KeywordRecall) Name() string        { return "recall.keyword" }
func (r *KeywordRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *KeywordRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *KeywordRecall) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	snap, err := snapshotOf(rctx)
	if err != nil {
		return nil, err
	}

	matches := engine.FallbackSearch(snap.Courses(), rctx.Query, r.Limit)
	out := make([]*core.Item, 0, len(matches))
	for _, s := range matches {
		it := core.NewItem(s.Index, s.Course)
		it.Score = s.Score
		it.PutLabel(LabelRecallSource, core.Label{Value: "keyword", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

var (
	_ Source        = (*KeywordRecall)(nil)
	_ Source        = (*ContentRecall)(nil)
	_ pipeline.Node = (*KeywordRecall)(nil)
	_ pipeline.Node = (*ContentRecall)(nil)
)
