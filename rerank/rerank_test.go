package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/coursekit/core"
)

func subjects(subjects ...string) []*core.Item {
	out := make([]*core.Item, len(subjects))
	for i, s := range subjects {
		out[i] = core.NewItem(i, &core.Course{Subject: s})
	}
	return out
}

func TestTopNNode(t *testing.T) {
	items := subjects("a", "b", "c", "d")
	tests := []struct {
		name string
		n, k int
		want int
	}{
		{"explicit N", 2, 6, 2},
		{"falls back to K", 0, 3, 3},
		{"no limit", 0, 0, 4},
		{"N larger than items", 10, 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := (&TopNNode{N: tt.n}).Process(context.Background(), &core.RecommendContext{K: tt.k}, items)
			if err != nil {
				t.Fatal(err)
			}
			if len(out) != tt.want {
				t.Errorf("len = %d, want %d", len(out), tt.want)
			}
		})
	}
}

func TestDiversity(t *testing.T) {
	items := subjects("Web", "Web", "Finance", "Web", "", "Finance", "")
	out, err := (&Diversity{MaxPerCategory: 2}).Process(context.Background(), nil, items)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{0, 1, 2, 4, 5, 6}
	if len(out) != len(want) {
		t.Fatalf("len = %d, want %d", len(out), len(want))
	}
	for i, it := range out {
		if it.Index != want[i] {
			t.Errorf("out[%d].Index = %d, want %d", i, it.Index, want[i])
		}
	}

	// Label 优先于 Subject
	labelled := subjects("Web", "Web")
	labelled[1].PutLabel("category", core.Label{Value: "other"})
	out, _ = (&Diversity{}).Process(context.Background(), nil, labelled)
	if len(out) != 2 {
		t.Errorf("label override len = %d, want 2", len(out))
	}
}
