package core

import "time"

// Course 是课程目录中的一行记录（CatalogItem）。
//
// Title 是自然键，但允许重复；建立标题索引时以首次出现的位置为准。
// 目录加载完成后，Course 的字段不再修改。
type Course struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Price       float64   `json:"price"`
	IsPaid      bool      `json:"is_paid"`
	Subscribers int64     `json:"subscribers"`
	Reviews     int64     `json:"reviews,omitempty"`
	Lectures    int64     `json:"lectures,omitempty"`
	Duration    float64   `json:"duration,omitempty"` // 小时
	Subject     string    `json:"subject"`
	Level       string    `json:"level"`
	Published   time.Time `json:"published,omitempty"`

	// HasPublished 为 false 表示发布时间无法解析，该行不参与按时间的统计。
	HasPublished bool `json:"-"`
}

// Profit 返回 price × subscribers。
func (c *Course) Profit() float64 {
	return c.Price * float64(c.Subscribers)
}
