// Package builders 在 init 中向 config 注册全部内置 Node 类型。
package builders

import (
	"github.com/rushteam/coursekit/config"
	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/filter"
	"github.com/rushteam/coursekit/pipeline"
	"github.com/rushteam/coursekit/pkg/conv"
	"github.com/rushteam/coursekit/recall"
	"github.com/rushteam/coursekit/rerank"
)

func init() {
	config.Register("recall.content", BuildContentNode)
	config.Register("recall.keyword", BuildKeywordNode)
	config.Register("filter.expr", BuildExprNode)
	config.RegisterWithDeps("filter.blacklist", BuildBlacklistNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("rerank.topn", BuildTopNNode)
}

// BuildContentNode 配置项：limit、min_score。
func BuildContentNode(cfg map[string]any) (pipeline.Node, error) {
	return &recall.ContentRecall{
		Limit:    conv.ConfigGetInt(cfg, "limit", 0),
		MinScore: conv.ConfigGetFloat(cfg, "min_score", 0),
	}, nil
}

// BuildKeywordNode 配置项：limit。
func BuildKeywordNode(cfg map[string]any) (pipeline.Node, error) {
	return &recall.KeywordRecall{Limit: conv.ConfigGetInt(cfg, "limit", 0)}, nil
}

// BuildExprNode 配置项：expr（必填）。
func BuildExprNode(cfg map[string]any) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, core.NewDomainError(core.ModulePipeline, core.ErrorCodeInvalidInput, "filter.expr: expr is required")
	}
	f, err := filter.NewExprFilter(expr)
	if err != nil {
		return nil, err
	}
	return &filter.FilterNode{Filters: []filter.Filter{f}}, nil
}

// BuildBlacklistNode 配置项：urls、titles、store_key（从 Store 读取 JSON 数组）。
func BuildBlacklistNode(cfg map[string]any, deps config.Dependencies) (pipeline.Node, error) {
	key := conv.ConfigGet(cfg, "store_key", "")
	var store core.Store
	if key != "" {
		store = deps.Store
	}
	f := filter.NewBlacklistFilter(conv.ConfigGetStrings(cfg, "urls"), conv.ConfigGetStrings(cfg, "titles"), store, key)
	return &filter.FilterNode{Filters: []filter.Filter{f}}, nil
}

// BuildDiversityNode 配置项：label_key、max_per_category。
func BuildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.Diversity{
		LabelKey:       conv.ConfigGet(cfg, "label_key", ""),
		MaxPerCategory: conv.ConfigGetInt(cfg, "max_per_category", 1),
	}, nil
}

// BuildTopNNode 配置项：n（缺省时取请求的 K）。
func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
}
