package rerank

import (
	"context"

	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/pipeline"
)

// Diversity 限制同一类别的候选数量，保持原有顺序。
//
// 类别优先取 Label[LabelKey]，否则取课程的 Subject。类别为空的候选不受限制。
type Diversity struct {
	// LabelKey 类别所在的 Label，默认 "category"
	LabelKey string

	// MaxPerCategory 每个类别最多保留的数量，<= 0 时为 1
	MaxPerCategory int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.LabelKey
	if key == "" {
		key = "category"
	}
	limit := n.MaxPerCategory
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, 16)
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		cate := category(it, key)
		if cate == "" {
			out = append(out, it)
			continue
		}
		if seen[cate] >= limit {
			continue
		}
		seen[cate]++
		out = append(out, it)
	}
	return out, nil
}

func category(it *core.Item, key string) string {
	if lbl, ok := it.Labels[key]; ok && lbl.Value != "" {
		return lbl.Value
	}
	if it.Course != nil {
		return it.Course.Subject
	}
	return ""
}
