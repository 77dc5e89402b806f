package similarity

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/text"
)

func buildFromTitles(t *testing.T, titles []string, opts ...Option) *Matrix {
	t.Helper()
	vecs := text.NewCountVectorizer().FitTransform(text.NormalizeAll(titles))
	m, err := Build(context.Background(), vecs, opts...)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return m
}

var sampleTitles = []string{
	"Intro to Python",
	"Python for Beginners",
	"Advanced Cooking",
	"The of and",
	"Python Data Science Bootcamp",
	"Complete Python Bootcamp",
}

func TestBuild_DiagonalAndSymmetry(t *testing.T) {
	m := buildFromTitles(t, sampleTitles)
	if m.Len() != len(sampleTitles) {
		t.Fatalf("Len() = %d, want %d", m.Len(), len(sampleTitles))
	}

	for i := 0; i < m.Len(); i++ {
		want := 1.0
		if i == 3 { // 全停用词标题是零向量
			want = 0
		}
		if got := m.At(i, i); got != want {
			t.Errorf("At(%d,%d) = %v, want %v", i, i, got, want)
		}
		for j := 0; j < m.Len(); j++ {
			if m.At(i, j) != m.At(j, i) {
				t.Errorf("asymmetric at (%d,%d): %v vs %v", i, j, m.At(i, j), m.At(j, i))
			}
			if v := m.At(i, j); v < 0 || v > 1 {
				t.Errorf("At(%d,%d) = %v out of [0,1]", i, j, v)
			}
		}
	}
}

func TestBuild_KnownValues(t *testing.T) {
	m := buildFromTitles(t, sampleTitles)

	// "intro python" vs "python beginners": 1 / (sqrt2 * sqrt2)
	if got := m.At(0, 1); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("At(0,1) = %v, want 0.5", got)
	}
	if got := m.At(0, 2); got != 0 {
		t.Errorf("At(0,2) = %v, want 0", got)
	}
	if got := m.At(3, 0); got != 0 {
		t.Errorf("zero vector similarity = %v, want 0", got)
	}
}

func TestBuild_WorkerCountDoesNotChangeResult(t *testing.T) {
	serial := buildFromTitles(t, sampleTitles, WithWorkers(1))
	parallel := buildFromTitles(t, sampleTitles, WithWorkers(8))
	for i := 0; i < serial.Len(); i++ {
		for j := 0; j < serial.Len(); j++ {
			if serial.At(i, j) != parallel.At(i, j) {
				t.Fatalf("(%d,%d): serial %v != parallel %v", i, j, serial.At(i, j), parallel.At(i, j))
			}
		}
	}
}

func TestBuild_MaxItems(t *testing.T) {
	vecs := text.NewCountVectorizer().FitTransform([]string{"a1", "b2", "c3"})
	_, err := Build(context.Background(), vecs, WithMaxItems(2))
	if !core.IsInvalidInput(err) {
		t.Fatalf("Build() error = %v, want INVALID_INPUT", err)
	}
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	vecs := text.NewCountVectorizer().FitTransform([]string{"go", "rust", "zig"})
	if _, err := Build(ctx, vecs); err == nil {
		t.Fatal("Build() with cancelled context should fail")
	}
}

func TestBuild_Empty(t *testing.T) {
	m, err := Build(context.Background(), nil)
	if err != nil {
		t.Fatalf("Build(nil) error = %v", err)
	}
	if m.Len() != 0 || m.Bytes() != 0 {
		t.Errorf("empty matrix Len=%d Bytes=%d", m.Len(), m.Bytes())
	}
}

func TestCosine(t *testing.T) {
	a := text.Vector{Terms: []int{0, 2}, Counts: []float64{1, 1}}
	b := text.Vector{Terms: []int{2}, Counts: []float64{3}}
	if got := Cosine(a, b); math.Abs(got-1/math.Sqrt2) > 1e-12 {
		t.Errorf("Cosine() = %v", got)
	}
	if got := Cosine(a, text.Vector{}); got != 0 {
		t.Errorf("Cosine with zero vector = %v, want 0", got)
	}
}

func TestBuild_IdenticalTitlesExactlyOne(t *testing.T) {
	titles := []string{
		"Go Basics", "Go Basics",
		"Complete Python Bootcamp", "Complete Python Bootcamp",
		"Learn Go Go Go Learn", "Learn Go Go Go Learn",
	}
	m := buildFromTitles(t, titles)
	for i := 0; i < len(titles); i += 2 {
		if got := m.At(i, i+1); got != 1 {
			t.Errorf("sim(%q, duplicate) = %v, want exactly 1", titles[i], got)
		}
		if got := m.At(i+1, i); got != 1 {
			t.Errorf("sim(duplicate, %q) = %v, want exactly 1", titles[i], got)
		}
	}

	v := text.Vector{Terms: []int{0, 1}, Counts: []float64{1, 1}}
	if got := Cosine(v, v); got != 1 {
		t.Errorf("Cosine(v, v) = %v, want exactly 1", got)
	}
}
