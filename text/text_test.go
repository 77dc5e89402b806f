package text

import (
	"math"
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "stopwords removed case-insensitively", raw: "Intro to Python", want: "intro python"},
		{name: "special characters stripped", raw: "Learn C++ & Node.js!", want: "learn c nodejs"},
		{name: "hyphen joins words", raw: "In-Depth Guide", want: "indepth guide"},
		{name: "whitespace collapsed", raw: "  Web\tDesign \n Basics ", want: "web design basics"},
		{name: "only stopwords", raw: "The Of And", want: ""},
		{name: "only specials", raw: "!!! ### ???", want: ""},
		{name: "digits kept", raw: "Top 10 Excel Tips 2017", want: "top 10 excel tips 2017"},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Intro to Python",
		"to. the! of?",
		"Ultimate Investment Banking Course",
		"Complete GST Course & Certification - Grow Your CA Practice",
		"Beginner's Guide: Photoshop CC (2018)",
		"İstanbul ÇAĞ",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestCountVectorizer_FitTransform(t *testing.T) {
	corpus := []string{"python python beginners", "python", "", "cooking advanced"}
	v := NewCountVectorizer()
	vecs := v.FitTransform(corpus)

	wantVocab := []string{"advanced", "beginners", "cooking", "python"}
	if !reflect.DeepEqual(v.Vocabulary(), wantVocab) {
		t.Fatalf("Vocabulary() = %v, want %v", v.Vocabulary(), wantVocab)
	}
	if v.Len() != 4 {
		t.Errorf("Len() = %d, want 4", v.Len())
	}

	first := vecs[0]
	if !reflect.DeepEqual(first.Terms, []int{1, 3}) || !reflect.DeepEqual(first.Counts, []float64{1, 2}) {
		t.Errorf("vecs[0] = %+v", first)
	}
	if !vecs[2].IsZero() {
		t.Errorf("empty document should be zero vector, got %+v", vecs[2])
	}
	if got := first.Dot(vecs[1]); got != 2 {
		t.Errorf("Dot() = %v, want 2", got)
	}
	if got := first.Norm(); math.Abs(got-math.Sqrt(5)) > 1e-12 {
		t.Errorf("Norm() = %v, want sqrt(5)", got)
	}
}

func TestCountVectorizer_TransformIgnoresUnknownTokens(t *testing.T) {
	v := NewCountVectorizer()
	v.Fit([]string{"go concurrency"})
	vec := v.Transform("rust concurrency concurrency")
	idx, _ := v.Index("concurrency")
	if !reflect.DeepEqual(vec.Terms, []int{idx}) || vec.Counts[0] != 2 {
		t.Errorf("Transform() = %+v", vec)
	}
	if !v.Transform("haskell").IsZero() {
		t.Error("out-of-vocabulary document should be zero vector")
	}
}
