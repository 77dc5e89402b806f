package core

import "time"

// RecommendConfig 是推荐相关的配置接口，用于提供默认值。
type RecommendConfig interface {
	// DefaultTopK 返回相似推荐默认的 TopK
	DefaultTopK() int

	// DefaultFallbackLimit 返回关键词兜底默认的返回数量
	DefaultFallbackLimit() int

	// DefaultCacheTTL 返回结果缓存的默认过期时间
	DefaultCacheTTL() time.Duration
}

// DefaultRecommendConfig 是默认的推荐配置实现。
type DefaultRecommendConfig struct{}

func (c *DefaultRecommendConfig) DefaultTopK() int {
	return 6
}

func (c *DefaultRecommendConfig) DefaultFallbackLimit() int {
	return 6
}

func (c *DefaultRecommendConfig) DefaultCacheTTL() time.Duration {
	return 5 * time.Minute
}
