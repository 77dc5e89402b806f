package core

// Snapshot 是一次目录加载的只读视图：课程目录 + 相似度矩阵 + 标题索引。
//
// 设计原则：
//   - 定义在领域层（core），由 engine.Snapshot 实现
//   - 一次请求只钉住一个 Snapshot，矩阵的行号与目录位置始终一致
//   - 构建完成后不可变，并发读无需加锁
type Snapshot interface {
	// Version 每次重新加载递增，用于缓存 key
	Version() uint64

	// Len 返回目录中的课程数量
	Len() int

	// Course 返回位置 i 的课程
	Course(i int) *Course

	// Courses 返回目录（只读，不得修改）
	Courses() []*Course

	// Lookup 按原始标题精确查找首次出现的位置
	Lookup(title string) (int, bool)

	// Row 返回相似度矩阵第 i 行（只读，不得修改）
	Row(i int) []float64
}

// RecommendContext 承载一次查询的全部上下文，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	// Query 查询标题或关键词
	Query string

	// K 期望返回的结果数量
	K int

	// Snapshot 本次请求钉住的快照
	Snapshot Snapshot

	// Labels 请求级标签，例如 match_mode
	Labels map[string]Label

	// Params 请求级参数，CEL 过滤器中为 params.*；HTTP 层从 param.<name> 查询参数填充
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (Label, bool) {
	if rctx.Labels == nil {
		return Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
