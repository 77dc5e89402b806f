package text

import (
	"math"
	"sort"
	"strings"
)

// Vector 是稀疏词频向量：Terms 为升序的词表下标，Counts 为对应的出现次数。
type Vector struct {
	Terms  []int
	Counts []float64
}

// IsZero 判断是否为零向量（空文档或全部词不在词表中）。
func (v Vector) IsZero() bool {
	return len(v.Terms) == 0
}

// Norm 返回 L2 范数。
func (v Vector) Norm() float64 {
	return math.Sqrt(v.SquaredNorm())
}

// SquaredNorm 返回范数的平方；词频为整数时结果精确。
func (v Vector) SquaredNorm() float64 {
	var sum float64
	for _, c := range v.Counts {
		sum += c * c
	}
	return sum
}

// Dot 计算两个稀疏向量的点积（按下标归并）。
func (v Vector) Dot(o Vector) float64 {
	var (
		dot  float64
		i, j int
	)
	for i < len(v.Terms) && j < len(o.Terms) {
		switch {
		case v.Terms[i] == o.Terms[j]:
			dot += v.Counts[i] * o.Counts[j]
			i++
			j++
		case v.Terms[i] < o.Terms[j]:
			i++
		default:
			j++
		}
	}
	return dot
}

// CountVectorizer 是词袋模型：从整个语料拟合词表，再把每个文档编码为原始词频向量。
//
// 词表只能一次性从完整语料构建，不支持增量插入单个文档；
// 语料变化后必须重新 Fit，之前生成的向量与相似度矩阵随之失效。
// 不做 TF-IDF 加权，也不做 n-gram。
type CountVectorizer struct {
	vocabulary map[string]int
	terms      []string
}

func NewCountVectorizer() *CountVectorizer {
	return &CountVectorizer{vocabulary: make(map[string]int)}
}

// Fit 以空白切词，收集语料中所有不同的 token 作为词表。
// 下标按 token 字典序分配，保证同一语料多次构建结果一致。
func (v *CountVectorizer) Fit(corpus []string) {
	seen := make(map[string]struct{})
	for _, doc := range corpus {
		for _, tok := range strings.Fields(doc) {
			seen[tok] = struct{}{}
		}
	}

	terms := make([]string, 0, len(seen))
	for tok := range seen {
		terms = append(terms, tok)
	}
	sort.Strings(terms)

	v.terms = terms
	v.vocabulary = make(map[string]int, len(terms))
	for i, tok := range terms {
		v.vocabulary[tok] = i
	}
}

// Transform 把单个文档编码为词频向量，词表外的 token 被忽略。
func (v *CountVectorizer) Transform(doc string) Vector {
	counts := make(map[int]float64)
	for _, tok := range strings.Fields(doc) {
		if idx, ok := v.vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return Vector{}
	}

	vec := Vector{
		Terms:  make([]int, 0, len(counts)),
		Counts: make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Terms = append(vec.Terms, idx)
	}
	sort.Ints(vec.Terms)
	for _, idx := range vec.Terms {
		vec.Counts = append(vec.Counts, counts[idx])
	}
	return vec
}

// FitTransform 先拟合词表，再编码整个语料。
func (v *CountVectorizer) FitTransform(corpus []string) []Vector {
	v.Fit(corpus)
	out := make([]Vector, len(corpus))
	for i, doc := range corpus {
		out[i] = v.Transform(doc)
	}
	return out
}

// Vocabulary 返回按下标排列的词表。
func (v *CountVectorizer) Vocabulary() []string {
	return v.terms
}

// Len 返回词表大小。
func (v *CountVectorizer) Len() int {
	return len(v.terms)
}

// Index 返回 token 在词表中的下标。
func (v *CountVectorizer) Index(token string) (int, bool) {
	idx, ok := v.vocabulary[token]
	return idx, ok
}
