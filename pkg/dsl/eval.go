// Package dsl 用 CEL (Common Expression Language) 对候选课程求值布尔表达式。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/coursekit/core"
)

var (
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func env() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("course", cel.DynType),
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("params", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译好的表达式，线程安全，可并发复用。
//
// 可用变量：
//   - course.title / url / price / is_paid / subscribers / reviews / lectures /
//     duration / subject / level / published_year
//   - item.index / item.score
//   - label.<key>：候选上的 Label 值，例如 label.recall_source == "keyword"
//   - params.<key>：请求级参数
//
// 示例：
//   - `course.price == 0.0`
//   - `course.subject == "Web Development" && course.subscribers > 1000`
//   - `item.score >= 0.2`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式；表达式必须返回 bool。
func Compile(expr string) (*Program, error) {
	e, err := env()
	if err != nil {
		return nil, fmt.Errorf("dsl: init env: %w", err)
	}
	ast, issues := e.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.WrapDomainError(core.ModuleFilter, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dsl: compile %q", expr), issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, core.NewDomainError(core.ModuleFilter, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dsl: %q must return bool, got %s", expr, t))
	}
	prg, err := e.Program(ast)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleFilter, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dsl: program %q", expr), err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

func (p *Program) String() string { return p.expr }

// Eval 对一个候选求值。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(activation(item, rctx))
	if err != nil {
		return false, fmt.Errorf("dsl: eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("dsl: %q must return bool, got %T", p.expr, out.Value())
	}
	return result, nil
}

// Evaluate 编译并求值一次，适合只用一次的表达式；空表达式视为 true。
func Evaluate(expr string, item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if expr == "" {
		return true, nil
	}
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Eval(item, rctx)
}

func activation(item *core.Item, rctx *core.RecommendContext) map[string]any {
	course := map[string]any{}
	if c := item.Course; c != nil {
		course = map[string]any{
			"title":       c.Title,
			"url":         c.URL,
			"price":       c.Price,
			"is_paid":     c.IsPaid,
			"subscribers": c.Subscribers,
			"reviews":     c.Reviews,
			"lectures":    c.Lectures,
			"duration":    c.Duration,
			"subject":     c.Subject,
			"level":       c.Level,
		}
		if c.HasPublished {
			course["published_year"] = int64(c.Published.Year())
		}
	}

	labels := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = v.Value
	}

	params := map[string]any{}
	if rctx != nil && rctx.Params != nil {
		params = rctx.Params
	}

	return map[string]any{
		"course": course,
		"item": map[string]any{
			"index": int64(item.Index),
			"score": item.Score,
		},
		"label":  labels,
		"params": params,
	}
}
