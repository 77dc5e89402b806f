// Package catalog 从表格数据源（CSV）一次性加载课程目录。
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/pkg/logging"
	"github.com/rushteam/coursekit/pkg/metrics"
)

// 源表列名
const (
	ColumnID          = "course_id"
	ColumnTitle       = "course_title"
	ColumnURL         = "url"
	ColumnPrice       = "price"
	ColumnSubscribers = "num_subscribers"
	ColumnSubject     = "subject"
	ColumnLevel       = "level"
	ColumnPublished   = "published_timestamp"
	ColumnIsPaid      = "is_paid"
	ColumnReviews     = "num_reviews"
	ColumnLectures    = "num_lectures"
	ColumnDuration    = "content_duration"
)

// RequiredColumns 是加载所必需的列，缺少任何一列都会导致加载失败。
var RequiredColumns = []string{
	ColumnTitle, ColumnURL, ColumnPrice, ColumnSubscribers, ColumnSubject, ColumnLevel, ColumnPublished,
}

// Report 记录一次加载中被恢复（归零或排除）的畸形字段。
type Report struct {
	Rows        int            `json:"rows"`
	SkippedRows int            `json:"skipped_rows"`
	Malformed   map[string]int `json:"malformed"`
}

func (r *Report) markMalformed(field string) {
	if r.Malformed == nil {
		r.Malformed = make(map[string]int)
	}
	r.Malformed[field]++
	metrics.MalformedRecords.WithLabelValues(field).Inc()
}

// LoadFile 打开并加载 CSV 文件。
func LoadFile(path string) ([]*core.Course, *Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable, "catalog: open "+path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load 解析带表头的 CSV。
//
// 畸形字段不会中断加载：价格/计数归零，发布时间标记为缺失（之后在按时间统计时被排除）。
// 列数不足的行整行跳过。缺少必需列或 CSV 语法错误则返回错误。
func Load(r io.Reader) ([]*core.Course, *Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: empty source")
		}
		return nil, nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: read header", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
			"catalog: missing required columns: "+strings.Join(missing, ", "))
	}

	width := 0
	for _, name := range RequiredColumns {
		if cols[name] >= width {
			width = cols[name] + 1
		}
	}

	report := &Report{}
	courses := make([]*core.Course, 0, 1024)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
				fmt.Sprintf("catalog: line %d", line), err)
		}
		if len(record) < width {
			report.SkippedRows++
			logging.Warn().Int("line", line).Int("fields", len(record)).Msg("catalog: short row skipped")
			continue
		}
		courses = append(courses, parseRecord(record, cols, report, line))
		report.Rows++
	}

	for field, n := range report.Malformed {
		logging.Warn().Str("field", field).Int("count", n).Msg("catalog: malformed fields recovered")
	}
	return courses, report, nil
}

func parseRecord(record []string, cols map[string]int, report *Report, line int) *core.Course {
	get := func(name string) (string, bool) {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return "", false
		}
		return record[i], true
	}
	warn := func(field string, err error) {
		report.markMalformed(field)
		logging.Debug().Int("line", line).Str("field", field).Err(err).Msg("catalog: malformed field recovered")
	}

	title, _ := get(ColumnTitle)
	url, _ := get(ColumnURL)
	subject, _ := get(ColumnSubject)
	level, _ := get(ColumnLevel)
	c := &core.Course{
		Title:   strings.TrimSpace(title),
		URL:     strings.TrimSpace(url),
		Subject: strings.TrimSpace(subject),
		Level:   strings.TrimSpace(level),
	}
	if id, ok := get(ColumnID); ok {
		c.ID = strings.TrimSpace(id)
	}

	rawPrice, _ := get(ColumnPrice)
	price, err := ParsePrice(rawPrice)
	if err != nil {
		warn(ColumnPrice, err)
	}
	c.Price = price
	c.IsPaid = price > 0

	rawSubs, _ := get(ColumnSubscribers)
	if c.Subscribers, err = ParseCount(ColumnSubscribers, rawSubs); err != nil {
		warn(ColumnSubscribers, err)
	}

	rawPublished, _ := get(ColumnPublished)
	if ts, err := ParseTimestamp(rawPublished); err != nil {
		warn(ColumnPublished, err)
	} else {
		c.Published = ts
		c.HasPublished = true
	}

	if raw, ok := get(ColumnIsPaid); ok {
		if paid, err := ParseBool(raw); err == nil {
			c.IsPaid = paid
		} else {
			warn(ColumnIsPaid, err)
		}
	}
	if raw, ok := get(ColumnReviews); ok {
		if c.Reviews, err = ParseCount(ColumnReviews, raw); err != nil {
			warn(ColumnReviews, err)
		}
	}
	if raw, ok := get(ColumnLectures); ok {
		if c.Lectures, err = ParseCount(ColumnLectures, raw); err != nil {
			warn(ColumnLectures, err)
		}
	}
	if raw, ok := get(ColumnDuration); ok {
		if c.Duration, err = ParseFloat(ColumnDuration, raw); err != nil {
			warn(ColumnDuration, err)
		}
	}
	return c
}
