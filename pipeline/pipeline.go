// Package pipeline 把一次查询拆成可组合的 Node 链：召回 → 过滤 → 重排。
package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/pkg/logging"
)

// Pipeline 顺序执行 Nodes，上一个 Node 的输出是下一个的输入。
type Pipeline struct {
	Name  string
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: node %s: %w", p.Name, node.Name(), err)
		}
		logging.Debug().
			Str("pipeline", p.Name).
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", len(cur)).
			Int("out", len(next)).
			Msg("node processed")
		cur = next
	}
	return cur, nil
}
