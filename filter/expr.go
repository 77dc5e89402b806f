package filter

import (
	"context"

	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/pkg/dsl"
)

// ExprFilter 保留表达式为 true 的候选，其余剔除。
//
//	course.price == 0.0
//	course.level == "Beginner Level" && item.score > 0.1
type ExprFilter struct {
	program *dsl.Program
}

// NewExprFilter 编译表达式，语法错误在此返回。
func NewExprFilter(expr string) (*ExprFilter, error) {
	p, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{program: p}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	keep, err := f.program.Eval(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}

var (
	_ Filter = (*ExprFilter)(nil)
	_ Filter = (*BlacklistFilter)(nil)
)
