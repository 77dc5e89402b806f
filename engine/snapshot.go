// Package engine 实现基于内容相似度的课程推荐。
//
// 一次目录加载产生一个不可变的 Snapshot（目录 + 词表 + 相似度矩阵 + 标题索引），
// 由 Holder 原子发布；查询只读 Snapshot，不需要加锁。
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/coursekit/catalog"
	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/similarity"
	"github.com/rushteam/coursekit/text"
)

// Snapshot 是一次目录加载的不可变视图，实现 core.Snapshot。
// 目录顺序与矩阵行号一一对应，二者同生共灭。
type Snapshot struct {
	version    uint64
	builtAt    time.Time
	courses    []*core.Course
	normalized []string
	vocabulary []string
	matrix     *similarity.Matrix
	titleIndex map[string]int
	report     *catalog.Report
}

// BuildOptions 控制快照构建。
type BuildOptions struct {
	// Workers 相似度矩阵并发构建的 worker 数，<= 0 表示 GOMAXPROCS
	Workers int

	// MaxItems 目录规模上限，<= 0 使用 similarity.DefaultMaxItems
	MaxItems int

	// Report 加载报告（可选），随快照一起暴露
	Report *catalog.Report
}

// Build 规范化标题 → 拟合词表并编码 → 构建相似度矩阵 → 建立首次出现优先的标题索引。
// 传入的 courses 切片被快照持有，调用方之后不得修改。
func Build(ctx context.Context, version uint64, courses []*core.Course, opts BuildOptions) (*Snapshot, error) {
	titles := make([]string, len(courses))
	for i, c := range courses {
		titles[i] = c.Title
	}
	normalized := text.NormalizeAll(titles)

	vectorizer := text.NewCountVectorizer()
	vectors := vectorizer.FitTransform(normalized)

	maxItems := opts.MaxItems
	if maxItems <= 0 {
		maxItems = similarity.DefaultMaxItems
	}
	matrix, err := similarity.Build(ctx, vectors,
		similarity.WithWorkers(opts.Workers),
		similarity.WithMaxItems(maxItems),
	)
	if err != nil {
		return nil, fmt.Errorf("build snapshot v%d: %w", version, err)
	}

	index := make(map[string]int, len(courses))
	for i, title := range titles {
		if _, dup := index[title]; !dup {
			index[title] = i
		}
	}

	return &Snapshot{
		version:    version,
		builtAt:    time.Now(),
		courses:    courses,
		normalized: normalized,
		vocabulary: vectorizer.Vocabulary(),
		matrix:     matrix,
		titleIndex: index,
		report:     opts.Report,
	}, nil
}

func (s *Snapshot) Version() uint64 { return s.version }

func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

func (s *Snapshot) Len() int { return len(s.courses) }

func (s *Snapshot) Course(i int) *core.Course { return s.courses[i] }

func (s *Snapshot) Courses() []*core.Course { return s.courses }

// Lookup 按原始标题精确查找；重复标题返回首次出现的位置。
func (s *Snapshot) Lookup(title string) (int, bool) {
	i, ok := s.titleIndex[title]
	return i, ok
}

func (s *Snapshot) Row(i int) []float64 { return s.matrix.Row(i) }

// Similarity 返回 (i, j) 的相似度。
func (s *Snapshot) Similarity(i, j int) float64 { return s.matrix.At(i, j) }

// NormalizedTitle 返回位置 i 的规范化标题。
func (s *Snapshot) NormalizedTitle(i int) string { return s.normalized[i] }

// VocabularySize 返回词表大小。
func (s *Snapshot) VocabularySize() int { return len(s.vocabulary) }

// MatrixBytes 返回矩阵占用的内存。
func (s *Snapshot) MatrixBytes() int64 { return s.matrix.Bytes() }

// Report 返回加载报告，可能为 nil。
func (s *Snapshot) Report() *catalog.Report { return s.report }

var _ core.Snapshot = (*Snapshot)(nil)
