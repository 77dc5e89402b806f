package core

import "strconv"

// Label 是推荐链路中的一等公民：可解释、可追踪、可透传。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rerank ...
}

// MergeLabel 合并同名 Label：Value 以 '|' 累积，Source 以 ',' 累积。
func MergeLabel(existing, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}

// Item 是推荐链路中的统一承载结构。
// Index 是课程在目录中的位置，也是相似度矩阵的行号；Score 用于排序决策。
type Item struct {
	Index  int
	Course *Course
	Score  float64
	Labels map[string]Label
}

func NewItem(index int, course *Course) *Item {
	return &Item{
		Index:  index,
		Course: course,
		Labels: make(map[string]Label),
	}
}

// ID 返回物品在目录中的位置（字符串形式），用于日志与去重。
func (it *Item) ID() string {
	return strconv.Itoa(it.Index)
}

// PutLabel 写入 Label；若已存在同名 key，则按 MergeLabel 累积。
func (it *Item) PutLabel(key string, lbl Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
