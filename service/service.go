// Package service 是查询入口：钉住快照、选择链路、缓存结果。
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/coursekit/analytics"
	"github.com/rushteam/coursekit/config"
	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/engine"
	"github.com/rushteam/coursekit/pipeline"
	"github.com/rushteam/coursekit/pkg/logging"
	"github.com/rushteam/coursekit/pkg/metrics"

	_ "github.com/rushteam/coursekit/config/builders"
)

// 结果的解析方式
const (
	ModeSimilar = "similar" // 标题命中，按相似度推荐
	ModeKeyword = "keyword" // 标题未命中或显式搜索，按关键词兜底
)

// QueriesKey 是查询排行所在的有序集合。
const QueriesKey = "coursekit:queries"

// ResultItem 是返回给调用方的一条推荐。
type ResultItem struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Price       float64 `json:"price"`
	Subscribers int64   `json:"subscribers"`
	Subject     string  `json:"subject"`
	Level       string  `json:"level"`
	Score       float64 `json:"score"`
}

// Response 是一次推荐或搜索的结果。Items 为空时是空数组而不是 null。
type Response struct {
	Query   string       `json:"query"`
	Mode    string       `json:"mode"`
	Version uint64       `json:"version"`
	Items   []ResultItem `json:"items"`
}

// QueryCount 是查询排行中的一项。
type QueryCount struct {
	Query string  `json:"query"`
	Count float64 `json:"count"`
}

// Service 组合 Holder、两条链路与结果缓存。
type Service struct {
	holder    *engine.Holder
	pipelines *pipeline.Config
	similar   *pipeline.Pipeline
	fallback  *pipeline.Pipeline
	cache     core.Store
	ranking   core.KeyValueStore
	defaults  core.RecommendConfig
	ttl       time.Duration
}

// Option 配置 Service。
type Option func(*Service)

// WithPipelines 使用自定义链路配置，需包含 similar 与 fallback。
func WithPipelines(cfg *pipeline.Config) Option {
	return func(s *Service) {
		s.pipelines = cfg
	}
}

// WithCache 设置结果缓存；若同时实现 core.KeyValueStore，也用于查询排行。
func WithCache(store core.Store) Option {
	return func(s *Service) {
		s.cache = store
		if kv, ok := store.(core.KeyValueStore); ok {
			s.ranking = kv
		}
	}
}

// WithDefaults 设置默认 TopK、兜底数量与缓存 TTL。
func WithDefaults(cfg core.RecommendConfig) Option {
	return func(s *Service) {
		s.defaults = cfg
	}
}

// QueryOption 调整单次查询。
type QueryOption func(*query)

type query struct {
	params map[string]any
}

// WithParams 把请求级参数交给链路，CEL 表达式中以 params.<name> 读取。参数是缓存 key 的一部分。
func WithParams(params map[string]any) QueryOption {
	return func(q *query) {
		q.params = params
	}
}

func newQuery(opts []QueryOption) *query {
	q := &query{}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// cacheSuffix 把参数按名字排序编码，无参数时为空串。
func (q *query) cacheSuffix() string {
	if len(q.params) == 0 {
		return ""
	}
	names := make([]string, 0, len(q.params))
	for name := range q.params {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "|%s=%v", name, q.params[name])
	}
	return b.String()
}

// New 创建 Service 并构建链路；链路中有未知 Node 类型或非法表达式时返回错误。
func New(holder *engine.Holder, opts ...Option) (*Service, error) {
	s := &Service{
		holder:    holder,
		pipelines: pipeline.DefaultConfig(),
		defaults:  &core.DefaultRecommendConfig{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ttl = s.defaults.DefaultCacheTTL()

	if err := config.ValidatePipelineConfig(s.pipelines); err != nil {
		return nil, err
	}
	factory := config.NewFactory(config.Dependencies{Store: s.cache})
	var err error
	if s.similar, err = s.pipelines.BuildPipeline(pipeline.NameSimilar, factory); err != nil {
		return nil, err
	}
	if s.fallback, err = s.pipelines.BuildPipeline(pipeline.NameFallback, factory); err != nil {
		return nil, err
	}
	return s, nil
}

// Recommend 按标题推荐。标题精确命中时走相似链路，否则以标题为关键词走兜底链路。
// k <= 0 使用默认 TopK。
func (s *Service) Recommend(ctx context.Context, title string, k int, opts ...QueryOption) (*Response, error) {
	q := newQuery(opts)
	if k <= 0 {
		k = s.defaults.DefaultTopK()
	}
	snap, err := s.holder.Snapshot()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	mode, p := ModeKeyword, s.fallback
	if _, ok := snap.Lookup(title); ok {
		mode, p = ModeSimilar, s.similar
	}

	key := fmt.Sprintf("coursekit:v%d:rec:%d:%s%s", snap.Version(), k, title, q.cacheSuffix())
	resp, err := s.cached(ctx, "recommend", key, func() (*Response, error) {
		return s.run(ctx, p, snap, title, k, mode, q)
	})
	if err != nil {
		return nil, err
	}

	s.countQuery(ctx, title)
	metrics.QueriesTotal.WithLabelValues(mode).Inc()
	metrics.QueryDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	return resp, nil
}

// Search 直接走关键词兜底链路。limit <= 0 使用默认兜底数量。
func (s *Service) Search(ctx context.Context, term string, limit int, opts ...QueryOption) (*Response, error) {
	q := newQuery(opts)
	if limit <= 0 {
		limit = s.defaults.DefaultFallbackLimit()
	}
	snap, err := s.holder.Snapshot()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	key := fmt.Sprintf("coursekit:v%d:search:%d:%s%s", snap.Version(), limit, term, q.cacheSuffix())
	resp, err := s.cached(ctx, "search", key, func() (*Response, error) {
		return s.run(ctx, s.fallback, snap, term, limit, ModeKeyword, q)
	})
	if err != nil {
		return nil, err
	}

	metrics.QueriesTotal.WithLabelValues("search").Inc()
	metrics.QueryDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	return resp, nil
}

// Analytics 返回当前快照目录的聚合统计。
func (s *Service) Analytics(ctx context.Context) (*analytics.Report, error) {
	snap, err := s.holder.Snapshot()
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("coursekit:v%d:analytics", snap.Version())
	if rep, ok := lookup[analytics.Report](ctx, s.cache, "analytics", key); ok {
		return rep, nil
	}
	rep := analytics.Build(snap.Courses())
	storeCached(ctx, s.cache, key, rep, s.ttl)
	return rep, nil
}

// TopQueries 返回被查询最多的 n 个标题；缓存后端不支持有序集合时返回 NOT_SUPPORTED。
func (s *Service) TopQueries(ctx context.Context, n int) ([]QueryCount, error) {
	if s.ranking == nil {
		return nil, core.ErrStoreNotSupported
	}
	if n <= 0 {
		n = s.defaults.DefaultTopK()
	}
	members, err := s.ranking.ZRange(ctx, QueriesKey, 0, int64(n-1))
	if err != nil {
		return nil, fmt.Errorf("top queries: %w", err)
	}
	out := make([]QueryCount, 0, len(members))
	for _, m := range members {
		score, err := s.ranking.ZScore(ctx, QueriesKey, m)
		if err != nil {
			continue
		}
		out = append(out, QueryCount{Query: m, Count: score})
	}
	return out, nil
}

// Reload 重新加载目录。新快照的版本号不同，旧缓存 key 自然失效。
func (s *Service) Reload(ctx context.Context) (uint64, error) {
	snap, err := s.holder.Reload(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("reload failed, previous snapshot kept")
		return 0, err
	}
	return snap.Version(), nil
}

// Version 返回当前快照版本，尚未加载时为 0。
func (s *Service) Version() uint64 {
	if snap := s.holder.Current(); snap != nil {
		return snap.Version()
	}
	return 0
}

func (s *Service) run(ctx context.Context, p *pipeline.Pipeline, snap *engine.Snapshot, text string, k int, mode string, q *query) (*Response, error) {
	rctx := &core.RecommendContext{Query: text, K: k, Snapshot: snap, Params: q.params}
	rctx.PutLabel("match_mode", core.Label{Value: mode, Source: "service"})

	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	resp := &Response{Query: text, Mode: mode, Version: snap.Version(), Items: make([]ResultItem, 0, len(items))}
	for _, it := range items {
		c := it.Course
		resp.Items = append(resp.Items, ResultItem{
			Title:       c.Title,
			URL:         c.URL,
			Price:       c.Price,
			Subscribers: c.Subscribers,
			Subject:     c.Subject,
			Level:       c.Level,
			Score:       it.Score,
		})
	}
	return resp, nil
}

func (s *Service) cached(ctx context.Context, kind, key string, compute func() (*Response, error)) (*Response, error) {
	if resp, ok := lookup[Response](ctx, s.cache, kind, key); ok {
		return resp, nil
	}
	resp, err := compute()
	if err != nil {
		return nil, err
	}
	storeCached(ctx, s.cache, key, resp, s.ttl)
	return resp, nil
}

func (s *Service) countQuery(ctx context.Context, title string) {
	if s.ranking == nil || title == "" {
		return
	}
	if err := s.ranking.ZIncrBy(ctx, QueriesKey, 1, title); err != nil {
		logging.Warn().Err(err).Msg("query ranking update failed")
	}
}

// lookup 读取缓存；缓存缺失或出错都视为未命中。
func lookup[T any](ctx context.Context, cache core.Store, kind, key string) (*T, bool) {
	if cache == nil {
		return nil, false
	}
	data, err := cache.Get(ctx, key)
	if err != nil {
		if !core.IsStoreNotFound(err) {
			logging.Warn().Err(err).Str("store", cache.Name()).Str("key", key).Msg("cache read failed")
		}
		metrics.CacheMisses.WithLabelValues(kind).Inc()
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("cache entry undecodable")
		metrics.CacheMisses.WithLabelValues(kind).Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues(kind).Inc()
	return &v, true
}

func storeCached(ctx context.Context, cache core.Store, key string, v any, ttl time.Duration) {
	if cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := cache.Set(ctx, key, data, int(ttl/time.Second)); err != nil {
		logging.Warn().Err(err).Str("store", cache.Name()).Str("key", key).Msg("cache write failed")
	}
}
