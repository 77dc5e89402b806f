// Package filter 剔除不符合约束的候选课程。
package filter

import (
	"context"

	"github.com/rushteam/coursekit/core"
)

// Filter 判断一个候选是否应被剔除：返回 true 表示剔除，false 表示保留。
type Filter interface {
	Name() string

	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// Preparer 由需要按请求预取数据的过滤器实现。FilterNode 每次 Process 只调用一次 Prepare，
// 之后用返回的请求级 Filter 逐条判断。
type Preparer interface {
	Prepare(ctx context.Context, rctx *core.RecommendContext) (Filter, error)
}
