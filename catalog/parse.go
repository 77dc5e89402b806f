package catalog

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rushteam/coursekit/core"
)

// ParsePrice 把源表中混合表示的价格转换为数值。
//
//   - 数字字符串按浮点解析，允许 "$" 前缀与千分位逗号
//   - "Free" 与布尔字面量（TRUE/FALSE，大小写不敏感）视为 0
//   - 其他无法解析的值返回 0 和 MALFORMED_RECORD 错误，由调用方计数后丢弃错误
func ParsePrice(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "free", "true", "false":
		return 0, nil
	case "":
		return 0, malformed("price", raw)
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) || v < 0 {
		return 0, malformed("price", raw)
	}
	return v, nil
}

// ParseCount 解析订阅数、评论数等非负整数；允许 "1,234" 与 "12.0" 形式。
// 非有限值与超出 int64 的值视为畸形。
func ParseCount(field, raw string) (int64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, malformed(field, raw)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
		return n, nil
	}
	// float64(math.MaxInt64) 是 2^63，本身已越界
	if f, err := strconv.ParseFloat(s, 64); err == nil && finite(f) && f >= 0 && f < math.MaxInt64 {
		return int64(f), nil
	}
	return 0, malformed(field, raw)
}

// ParseBool 解析 is_paid 一类的布尔列。
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, malformed("bool", raw)
}

// ParseFloat 解析课程时长一类的数值列，末尾的单位（如 "hours"）会被忽略。
func ParseFloat(field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if fields := strings.Fields(s); len(fields) > 0 {
		s = fields[0]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, malformed(field, raw)
	}
	return v, nil
}

// finite 排除 ParseFloat 接受的 NaN 与 ±Inf。
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp 解析发布时间：先尝试完整时间戳，再退回到前 10 个字符的 YYYY-MM-DD 日期部分。
// 无法解析时返回 MALFORMED_RECORD，该行不参与按时间的统计（丢弃，不插补）。
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	if len(s) >= 10 {
		if ts, err := time.Parse(time.DateOnly, s[:10]); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, malformed("published_timestamp", raw)
}

func malformed(field, raw string) error {
	return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeMalformedRecord,
		"catalog: malformed "+field+" "+strconv.Quote(raw))
}
