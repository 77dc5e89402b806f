package engine

import (
	"sort"
	"strings"

	"github.com/rushteam/coursekit/core"
)

// Scored 是一条带相似度分数的候选。
type Scored struct {
	Index  int
	Course *core.Course
	Score  float64
}

// Recommendation 是相似推荐结果：按分数降序，不含查询本身，长度 <= K。
type Recommendation struct {
	Query string
	Index int
	Items []Scored
}

// Rank 取矩阵第 idx 行，返回除 idx 本身外的全部候选，按分数降序排列。
//
// 同分时保持目录顺序（稳定排序）。
// 自身按下标剔除而不是"跳过第一个"：目录中的同名课程也会以 1 分并列第一。
func Rank(snap core.Snapshot, idx int) []Scored {
	row := snap.Row(idx)
	out := make([]Scored, 0, len(row))
	for j, score := range row {
		if j == idx {
			continue
		}
		out = append(out, Scored{Index: j, Course: snap.Course(j), Score: score})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score > out[b].Score
	})
	return out
}

// Recommend 查找 title 并返回最相似的 k 门课程。
//
// 第二个返回值是 Found/NotFound 标记：标题不在索引中时返回 false，调用方应转入 FallbackSearch。
// 候选不足 k 个时返回全部候选。k <= 0 时返回全部候选。
func Recommend(snap core.Snapshot, title string, k int) (Recommendation, bool) {
	idx, ok := snap.Lookup(title)
	if !ok {
		return Recommendation{Query: title, Index: -1}, false
	}
	items := Rank(snap, idx)
	if k > 0 && len(items) > k {
		items = items[:k]
	}
	return Recommendation{Query: title, Index: idx, Items: items}, true
}

// FallbackSearch 在原始（未规范化）标题上做大小写不敏感的子串匹配，
// 按订阅数降序（同数保持目录顺序）返回前 limit 条。无匹配时返回空切片而不是错误。
// limit <= 0 表示不截断；空 term 匹配全部课程。
func FallbackSearch(courses []*core.Course, term string, limit int) []Scored {
	needle := strings.ToLower(term)
	out := make([]Scored, 0)
	for i, c := range courses {
		if strings.Contains(strings.ToLower(c.Title), needle) {
			out = append(out, Scored{Index: i, Course: c, Score: float64(c.Subscribers)})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Course.Subscribers > out[b].Course.Subscribers
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
