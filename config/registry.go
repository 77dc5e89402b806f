// Package config 提供 Node 类型注册表与进程配置（Settings）。
//
// 使用配置驱动的 Pipeline 时，需在入口处 import _ "github.com/rushteam/coursekit/config/builders"
// 以触发内置 Node（recall.content、recall.keyword、filter.expr 等）的 init 注册。
package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/pipeline"
)

// NodeBuilder 与 pipeline.NodeBuilder 一致：根据 config 构建 Node。
type NodeBuilder = pipeline.NodeBuilder

// Dependencies 是运行期才能确定、无法写进 YAML 的依赖。
type Dependencies struct {
	// Store 供需要外部数据的 Node 使用（例如从 Store 读取黑名单），可为 nil
	Store core.Store
}

// DependentBuilder 是需要 Dependencies 的 Node 构建器。
type DependentBuilder func(config map[string]any, deps Dependencies) (pipeline.Node, error)

var (
	registry   = make(map[string]DependentBuilder)
	registryMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑，在各组件的 init 中调用。
func Register(typeName string, builder NodeBuilder) {
	if builder == nil {
		return
	}
	RegisterWithDeps(typeName, func(cfg map[string]any, _ Dependencies) (pipeline.Node, error) {
		return builder(cfg)
	})
}

// RegisterWithDeps 注册需要运行期依赖的 Node 构建逻辑。
func RegisterWithDeps(typeName string, builder DependentBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[typeName] = builder
}

// SupportedTypes 返回已注册的 Node 类型（排序），用于错误提示与校验。
func SupportedTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// NewFactory 返回绑定了 deps 的 NodeFactory，包含全部已注册类型。
func NewFactory(deps Dependencies) *pipeline.NodeFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range registry {
		builder := builder
		f.Register(typeName, func(cfg map[string]any) (pipeline.Node, error) {
			return builder(cfg, deps)
		})
	}
	return f
}

// DefaultFactory 等价于 NewFactory(Dependencies{})。
func DefaultFactory() *pipeline.NodeFactory {
	return NewFactory(Dependencies{})
}

// ValidatePipelineConfig 校验配置中所有 node 类型均已注册。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, name := range cfg.Names() {
		for _, nc := range cfg.Pipelines[name] {
			if _, ok := registry[nc.Type]; !ok {
				return core.NewDomainError(core.ModulePipeline, core.ErrorCodeNotSupported,
					fmt.Sprintf("pipeline %s: unsupported node type %q (supported: %v)", name, nc.Type, sortedKeys()))
			}
		}
	}
	return nil
}

// sortedKeys 要求调用方已持有读锁。
func sortedKeys() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
