// Package analytics 对课程目录做聚合统计：分类计数、订阅数汇总、按年/月的收入与订阅汇总。
//
// 所有函数都是纯函数，只读输入，与推荐引擎不共享状态。
package analytics

import (
	"strconv"
	"time"

	"github.com/rushteam/coursekit/core"
)

// Field 是可分组的分类字段。
type Field string

const (
	FieldSubject Field = "subject"
	FieldLevel   Field = "level"
	FieldIsPaid  Field = "is_paid"
)

// Valid 判断字段是否受支持。
func (f Field) Valid() bool {
	switch f {
	case FieldSubject, FieldLevel, FieldIsPaid:
		return true
	}
	return false
}

// Value 取课程在该字段上的分组键；is_paid 取 "true"/"false"。
func (f Field) Value(c *core.Course) string {
	switch f {
	case FieldSubject:
		return c.Subject
	case FieldLevel:
		return c.Level
	case FieldIsPaid:
		return strconv.FormatBool(c.IsPaid)
	}
	return ""
}

// SubjectLevelKey 是学科×难度组合的分组键。
func SubjectLevelKey(c *core.Course) string {
	return c.Subject + "_" + c.Level
}

// CountByCategory 统计每个分组值出现的次数。未知字段返回空 map。
func CountByCategory(courses []*core.Course, field Field) map[string]int {
	out := make(map[string]int)
	if !field.Valid() {
		return out
	}
	for _, c := range courses {
		out[field.Value(c)]++
	}
	return out
}

// CountBySubjectLevel 统计每个 "subject_level" 组合的课程数。
func CountBySubjectLevel(courses []*core.Course) map[string]int {
	out := make(map[string]int)
	for _, c := range courses {
		out[SubjectLevelKey(c)]++
	}
	return out
}

// SubscribersByCategory 按分组值汇总订阅数。
func SubscribersByCategory(courses []*core.Course, field Field) map[string]int64 {
	out := make(map[string]int64)
	if !field.Valid() {
		return out
	}
	for _, c := range courses {
		out[field.Value(c)] += c.Subscribers
	}
	return out
}

// SubscribersBySubjectLevel 按 "subject_level" 组合汇总订阅数。
func SubscribersBySubjectLevel(courses []*core.Course) map[string]int64 {
	out := make(map[string]int64)
	for _, c := range courses {
		out[SubjectLevelKey(c)] += c.Subscribers
	}
	return out
}

// Rollup 是按发布年份、发布月份（英文月名）的收入与订阅汇总。
type Rollup struct {
	ProfitByYear       map[int]float64    `json:"profit_by_year"`
	SubscribersByYear  map[int]int64      `json:"subscribers_by_year"`
	ProfitByMonth      map[string]float64 `json:"profit_by_month"`
	SubscribersByMonth map[string]int64   `json:"subscribers_by_month"`

	// Excluded 是发布时间缺失而被排除的行数
	Excluded int `json:"excluded"`
}

// YearlyAndMonthlyRollup 计算 profit = price × subscribers，按年和按月汇总。
// 没有可解析发布时间的行在汇总前剔除，不做插补。月份跨年合并。
func YearlyAndMonthlyRollup(courses []*core.Course) Rollup {
	r := Rollup{
		ProfitByYear:       make(map[int]float64),
		SubscribersByYear:  make(map[int]int64),
		ProfitByMonth:      make(map[string]float64),
		SubscribersByMonth: make(map[string]int64),
	}
	for _, c := range courses {
		if !c.HasPublished {
			r.Excluded++
			continue
		}
		year := c.Published.Year()
		month := c.Published.Month().String()
		profit := c.Profit()

		r.ProfitByYear[year] += profit
		r.SubscribersByYear[year] += c.Subscribers
		r.ProfitByMonth[month] += profit
		r.SubscribersByMonth[month] += c.Subscribers
	}
	return r
}

// MonthOrder 是按日历顺序排列的英文月名，用于输出有序序列。
var MonthOrder = func() []string {
	out := make([]string, 12)
	for m := time.January; m <= time.December; m++ {
		out[m-1] = m.String()
	}
	return out
}()

// MonthValue 是有序月度序列中的一项。
type MonthValue[T int64 | float64] struct {
	Month string `json:"month"`
	Value T      `json:"value"`
}

// OrderedMonths 把按月名索引的 map 转成日历顺序的序列，缺失月份跳过。
func OrderedMonths[T int64 | float64](m map[string]T) []MonthValue[T] {
	out := make([]MonthValue[T], 0, len(m))
	for _, name := range MonthOrder {
		if v, ok := m[name]; ok {
			out = append(out, MonthValue[T]{Month: name, Value: v})
		}
	}
	return out
}
