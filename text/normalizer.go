// Package text 把课程标题转换为可比较的形式：规范化 + 词袋向量。
package text

import (
	"strings"
	"unicode"
)

// Normalize 把原始标题转换为规范比较形式。
//
// 步骤：
//  1. 转小写
//  2. 删除所有非字母、数字、空白的字符（直接删除而不是替换为空格：Node.js -> nodejs）
//  3. 按空白切词，去掉停用词
//  4. 以单个空格拼接
//
// 特殊字符先于停用词处理，因此 Normalize 是幂等的：Normalize(Normalize(x)) == Normalize(x)。
// 全部由停用词/特殊字符组成的标题返回空串。
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	tokens := strings.Fields(b.String())
	kept := tokens[:0]
	for _, tok := range tokens {
		if IsStopword(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// NormalizeAll 对整个语料做规范化，保持顺序。
func NormalizeAll(raw []string) []string {
	out := make([]string, len(raw))
	for i, s := range raw {
		out[i] = Normalize(s)
	}
	return out
}
