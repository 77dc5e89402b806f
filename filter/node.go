package filter

import (
	"context"

	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/pipeline"
	"github.com/rushteam/coursekit/pkg/logging"
)

// FilterNode 组合多个过滤器，任一过滤器返回 true 即剔除该候选。
// 过滤器出错时记录日志并保留候选，不中断查询。实现 Preparer 的过滤器每次请求只预取一次。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	filters := n.prepare(ctx, rctx)
	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if reason := check(ctx, rctx, filters, item); reason != "" {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// prepare 为本次请求预取过滤器数据。Prepare 出错但仍返回过滤器时照常使用，返回 nil 则本次跳过。
func (n *FilterNode) prepare(ctx context.Context, rctx *core.RecommendContext) []Filter {
	filters := make([]Filter, 0, len(n.Filters))
	for _, f := range n.Filters {
		p, ok := f.(Preparer)
		if !ok {
			filters = append(filters, f)
			continue
		}
		prepared, err := p.Prepare(ctx, rctx)
		if err != nil {
			logging.Warn().Err(err).Str("filter", f.Name()).Msg("filter prepare failed")
		}
		if prepared != nil {
			filters = append(filters, prepared)
		}
	}
	return filters
}

// check 返回剔除该候选的过滤器名，保留时返回空串。
func check(ctx context.Context, rctx *core.RecommendContext, filters []Filter, item *core.Item) string {
	for _, f := range filters {
		drop, err := f.ShouldFilter(ctx, rctx, item)
		if err != nil {
			logging.Warn().Err(err).Str("filter", f.Name()).Int("index", item.Index).Msg("filter failed, item kept")
			continue
		}
		if drop {
			return f.Name()
		}
	}
	return ""
}
