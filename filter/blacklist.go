package filter

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/pkg/logging"
)

// BlacklistFilter 剔除 URL 或标题在黑名单中的课程。
//
// 黑名单来自两处：配置中的静态列表，以及 Store 中 Key 对应的 JSON 字符串数组（可选）。
// 经 FilterNode 调用时，Store 名单每次请求只读一次（见 Prepare）。
type BlacklistFilter struct {
	urls   map[string]struct{}
	titles map[string]struct{}
	stored map[string]struct{} // Prepare 预取的 Store 名单，URL 与标题混存

	Store core.Store
	Key   string
}

// NewBlacklistFilter 创建黑名单过滤器；store 可为 nil。
func NewBlacklistFilter(urls, titles []string, store core.Store, key string) *BlacklistFilter {
	return &BlacklistFilter{
		urls:   toSet(urls),
		titles: toSet(titles),
		Store:  store,
		Key:    key,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || item.Course == nil {
		return true, nil
	}
	if f.listed(f.urls, f.titles, item.Course) {
		return true, nil
	}

	stored := f.stored
	if stored == nil && f.Store != nil && f.Key != "" {
		var err error
		if stored, err = f.loadStored(ctx); err != nil {
			return false, err
		}
	}
	return f.listed(stored, stored, item.Course), nil
}

// Prepare 读取一次 Store 名单，返回本次请求使用的过滤器；f 本身不被修改。
func (f *BlacklistFilter) Prepare(ctx context.Context, _ *core.RecommendContext) (Filter, error) {
	if f.Store == nil || f.Key == "" {
		return f, nil
	}
	stored, err := f.loadStored(ctx)
	if stored == nil {
		stored = map[string]struct{}{}
	}
	// 读取失败时仍返回只含静态名单的过滤器
	return &BlacklistFilter{urls: f.urls, titles: f.titles, stored: stored}, err
}

func (f *BlacklistFilter) listed(urls, titles map[string]struct{}, c *core.Course) bool {
	if _, ok := urls[c.URL]; ok {
		return true
	}
	_, ok := titles[c.Title]
	return ok
}

// loadStored 读取 Store 中的黑名单；key 不存在视为空名单。
func (f *BlacklistFilter) loadStored(ctx context.Context) (map[string]struct{}, error) {
	data, err := f.Store.Get(ctx, f.Key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		logging.Warn().Err(err).Str("key", f.Key).Msg("blacklist: malformed stored list ignored")
		return nil, nil
	}
	return toSet(entries), nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
