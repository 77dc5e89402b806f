package pipeline

import (
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/coursekit/core"
)

// 内置的两条链路名称
const (
	NameSimilar  = "similar"  // 标题命中：内容相似召回
	NameFallback = "fallback" // 标题未命中：关键词兜底
)

// Config 是命名 Pipeline 的集合（支持 YAML/JSON）：
//
//	pipelines:
//	  similar:
//	    - type: recall.content
//	    - type: rerank.topn
//	  fallback:
//	    - type: recall.keyword
//	    - type: filter.expr
//	      config:
//	        expr: course.price == 0.0
//	    - type: rerank.topn
type Config struct {
	Pipelines map[string][]NodeConfig `yaml:"pipelines" json:"pipelines"`
}

// NodeConfig 是单个 Node 的配置。
type NodeConfig struct {
	Type   string         `yaml:"type" json:"type"`     // recall.content / filter.expr / rerank.topn 等
	Config map[string]any `yaml:"config" json:"config"` // Node 特定配置
}

// DefaultConfig 是不带配置文件时使用的链路：相似推荐与关键词兜底均只做召回 + 截断。
func DefaultConfig() *Config {
	return &Config{
		Pipelines: map[string][]NodeConfig{
			NameSimilar:  {{Type: "recall.content"}, {Type: "rerank.topn"}},
			NameFallback: {{Type: "recall.keyword"}, {Type: "rerank.topn"}},
		},
	}
}

// LoadFromYAML 从 YAML 文件加载配置。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML 解析 YAML 配置。
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, core.WrapDomainError(core.ModulePipeline, core.ErrorCodeInvalidInput, "pipeline: parse yaml", err)
	}
	return &cfg, nil
}

// LoadFromJSON 从 JSON 文件加载配置。
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, core.WrapDomainError(core.ModulePipeline, core.ErrorCodeInvalidInput, "pipeline: parse json", err)
	}
	return &cfg, nil
}

// Names 返回已声明的链路名（排序）。
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Pipelines))
	for name := range c.Pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildPipeline 用 factory 构建名为 name 的链路。
// factory 放在独立的 config 包中，避免循环依赖。
func (c *Config) BuildPipeline(name string, factory *NodeFactory) (*Pipeline, error) {
	ncs, ok := c.Pipelines[name]
	if !ok {
		return nil, core.NewDomainError(core.ModulePipeline, core.ErrorCodeNotFound,
			fmt.Sprintf("pipeline: %q not declared", name))
	}

	nodes := make([]Node, 0, len(ncs))
	for i, nc := range ncs {
		node, err := factory.Build(nc.Type, nc.Config)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: build node #%d %s: %w", name, i, nc.Type, err)
		}
		nodes = append(nodes, node)
	}
	return &Pipeline{Name: name, Nodes: nodes}, nil
}

// BuildAll 构建全部链路。
func (c *Config) BuildAll(factory *NodeFactory) (map[string]*Pipeline, error) {
	out := make(map[string]*Pipeline, len(c.Pipelines))
	for _, name := range c.Names() {
		p, err := c.BuildPipeline(name, factory)
		if err != nil {
			return nil, err
		}
		out[name] = p
	}
	return out, nil
}

// NodeFactory 根据类型名构建 Node 实例。
type NodeFactory struct {
	builders map[string]NodeBuilder
}

func NewNodeFactory() *NodeFactory {
	return &NodeFactory{builders: make(map[string]NodeBuilder)}
}

// Register 注册 Node 构建器。
func (f *NodeFactory) Register(nodeType string, builder NodeBuilder) {
	f.builders[nodeType] = builder
}

// Build 根据类型和配置构建 Node。
func (f *NodeFactory) Build(nodeType string, config map[string]any) (Node, error) {
	builder, ok := f.builders[nodeType]
	if !ok {
		return nil, core.NewDomainError(core.ModulePipeline, core.ErrorCodeNotSupported,
			fmt.Sprintf("pipeline: unknown node type %q", nodeType))
	}
	return builder(config)
}
