// Package similarity 计算全量两两余弦相似度矩阵。
//
// 这是每次目录加载只付一次的批量成本：O(N²·V) 构建，之后每次查询只需取一行并排序。
// 矩阵是稠密的 N×N float64，内存占用 N²×8 字节，这也是可支持目录规模的上限，
// 由 WithMaxItems 显式限制。
package similarity

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/text"
)

// DefaultMaxItems 默认的目录规模上限（约 800MB 矩阵）。
const DefaultMaxItems = 10000

// Matrix 是对称的相似度矩阵，行优先存储。构建完成后只读。
type Matrix struct {
	n    int
	data []float64
}

// Len 返回矩阵边长 N。
func (m *Matrix) Len() int {
	return m.n
}

// At 返回 (i, j) 的相似度。
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

// Row 返回第 i 行的切片视图，调用方不得修改。
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.n : (i+1)*m.n]
}

// Bytes 返回矩阵数据占用的字节数。
func (m *Matrix) Bytes() int64 {
	return int64(len(m.data)) * 8
}

type options struct {
	workers  int
	maxItems int
}

// Option 配置矩阵构建。
type Option func(*options)

// WithWorkers 设置并发构建的 worker 数，<= 0 表示 GOMAXPROCS。
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithMaxItems 设置目录规模上限，<= 0 表示不限制。
func WithMaxItems(n int) Option {
	return func(o *options) { o.maxItems = n }
}

// Cosine 计算两个稀疏向量的余弦相似度；任一向量范数为 0 时返回 0。
func Cosine(a, b text.Vector) float64 {
	sa, sb := a.SquaredNorm(), b.SquaredNorm()
	if sa == 0 || sb == 0 {
		return 0
	}
	return cosine(a.Dot(b), sa, sb)
}

// Build 计算 sim(i,j) = dot(vi,vj) / (‖vi‖·‖vj‖)。
//
//   - 任一向量为零向量时相似度为 0（包括对角线）
//   - 非零向量的对角线精确为 1
//   - 只计算上三角，镜像写入下三角，保证严格对称
//
// 行按 worker 分片并发计算；每个 (i,j) 单元只由负责第 min(i,j) 行的 goroutine 写入。
func Build(ctx context.Context, vectors []text.Vector, opts ...Option) (*Matrix, error) {
	o := options{maxItems: DefaultMaxItems}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}

	n := len(vectors)
	if o.maxItems > 0 && n > o.maxItems {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			fmt.Sprintf("similarity: catalog has %d items, limit is %d", n, o.maxItems))
	}

	// 保存范数平方，相同向量的 dot/sqrt(sq·sq) 精确为 1
	sq := make([]float64, n)
	for i, v := range vectors {
		sq[i] = v.SquaredNorm()
	}

	m := &Matrix{n: n, data: make([]float64, n*n)}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(o.workers)
	for i := 0; i < n; i++ {
		row := i
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			if sq[row] == 0 {
				return nil
			}
			m.data[row*n+row] = 1
			for j := row + 1; j < n; j++ {
				if sq[j] == 0 {
					continue
				}
				sim := cosine(vectors[row].Dot(vectors[j]), sq[row], sq[j])
				m.data[row*n+j] = sim
				m.data[j*n+row] = sim
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("build similarity matrix: %w", err)
	}
	return m, nil
}

func cosine(dot, sqA, sqB float64) float64 {
	sim := dot / math.Sqrt(sqA*sqB)
	if sim > 1 {
		return 1
	}
	return sim
}
