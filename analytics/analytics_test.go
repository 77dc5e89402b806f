package analytics

import (
	"testing"
	"time"

	"github.com/rushteam/coursekit/core"
)

func published(year int, month time.Month) (time.Time, bool) {
	return time.Date(year, month, 15, 10, 0, 0, 0, time.UTC), true
}

func sample() []*core.Course {
	mk := func(subject, level string, price float64, subs int64, year int, month time.Month) *core.Course {
		c := &core.Course{Subject: subject, Level: level, Price: price, IsPaid: price > 0, Subscribers: subs}
		if year > 0 {
			c.Published, c.HasPublished = published(year, month)
		}
		return c
	}
	return []*core.Course{
		mk("Web Development", "All Levels", 20, 100, 2016, time.March),
		mk("Web Development", "Beginner Level", 0, 500, 2016, time.January),
		mk("Business Finance", "All Levels", 50, 10, 2017, time.March),
		mk("Business Finance", "All Levels", 30, 5, 0, 0), // 发布时间缺失
		mk("Musical Instruments", "Expert Level", 100, 2, 2015, time.December),
	}
}

func TestCountByCategory(t *testing.T) {
	courses := sample()
	tests := []struct {
		field Field
		want  map[string]int
	}{
		{FieldSubject, map[string]int{"Web Development": 2, "Business Finance": 2, "Musical Instruments": 1}},
		{FieldLevel, map[string]int{"All Levels": 3, "Beginner Level": 1, "Expert Level": 1}},
		{FieldIsPaid, map[string]int{"true": 4, "false": 1}},
		{Field("unknown"), map[string]int{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			got := CountByCategory(courses, tt.field)
			assertMap(t, got, tt.want)
			if tt.field.Valid() {
				total := 0
				for _, n := range got {
					total += n
				}
				if total != len(courses) {
					t.Errorf("counts sum to %d, want %d", total, len(courses))
				}
			}
		})
	}
}

func TestCountBySubjectLevel(t *testing.T) {
	got := CountBySubjectLevel(sample())
	want := map[string]int{
		"Web Development_All Levels":       1,
		"Web Development_Beginner Level":   1,
		"Business Finance_All Levels":      2,
		"Musical Instruments_Expert Level": 1,
	}
	assertMap(t, got, want)
}

func TestSubscribersAggregates(t *testing.T) {
	courses := sample()
	assertMap(t, SubscribersByCategory(courses, FieldSubject), map[string]int64{
		"Web Development": 600, "Business Finance": 15, "Musical Instruments": 2,
	})
	got := SubscribersBySubjectLevel(courses)
	if got["Business Finance_All Levels"] != 15 {
		t.Errorf("Business Finance_All Levels = %d, want 15", got["Business Finance_All Levels"])
	}
}

func TestYearlyAndMonthlyRollup(t *testing.T) {
	r := YearlyAndMonthlyRollup(sample())

	if r.Excluded != 1 {
		t.Errorf("Excluded = %d, want 1", r.Excluded)
	}
	assertMap(t, r.ProfitByYear, map[int]float64{2015: 200, 2016: 2000, 2017: 500})
	assertMap(t, r.SubscribersByYear, map[int]int64{2015: 2, 2016: 600, 2017: 10})
	// 月份跨年合并
	assertMap(t, r.ProfitByMonth, map[string]float64{"March": 2500, "January": 0, "December": 200})
	assertMap(t, r.SubscribersByMonth, map[string]int64{"March": 110, "January": 500, "December": 2})

	var sum float64
	for _, p := range r.ProfitByYear {
		sum += p
	}
	if sum != 2700 {
		t.Errorf("total profit = %v, want 2700 (row without timestamp excluded)", sum)
	}
}

func TestOrderedMonths(t *testing.T) {
	got := OrderedMonths(map[string]int64{"December": 1, "March": 2, "January": 3})
	want := []string{"January", "March", "December"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, mv := range got {
		if mv.Month != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, mv.Month, want[i])
		}
	}
	if len(MonthOrder) != 12 || MonthOrder[0] != "January" || MonthOrder[11] != "December" {
		t.Errorf("MonthOrder = %v", MonthOrder)
	}
}

func TestBuild(t *testing.T) {
	rep := Build(sample())
	if rep.Courses != 5 {
		t.Errorf("Courses = %d", rep.Courses)
	}
	if rep.CoursesByPaid["false"] != 1 {
		t.Errorf("CoursesByPaid = %v", rep.CoursesByPaid)
	}
	if len(rep.ProfitMonthly) != 3 || rep.ProfitMonthly[0].Month != "January" {
		t.Errorf("ProfitMonthly = %+v", rep.ProfitMonthly)
	}

	empty := Build(nil)
	if empty.Courses != 0 || len(empty.CoursesBySubject) != 0 || empty.Rollup.Excluded != 0 {
		t.Errorf("Build(nil) = %+v", empty)
	}
}

func assertMap[K comparable, V comparable](t *testing.T, got, want map[K]V) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("len = %d, want %d (got %v)", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("[%v] = %v, want %v", k, got[k], v)
		}
	}
}
