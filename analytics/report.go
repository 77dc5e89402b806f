package analytics

import "github.com/rushteam/coursekit/core"

// Report 汇总仪表盘所需的全部统计。
type Report struct {
	Courses int `json:"courses"`

	CoursesBySubject      map[string]int `json:"courses_by_subject"`
	CoursesByLevel        map[string]int `json:"courses_by_level"`
	CoursesByPaid         map[string]int `json:"courses_by_paid"`
	CoursesBySubjectLevel map[string]int `json:"courses_by_subject_level"`

	SubscribersBySubject      map[string]int64 `json:"subscribers_by_subject"`
	SubscribersBySubjectLevel map[string]int64 `json:"subscribers_by_subject_level"`

	Rollup Rollup `json:"rollup"`

	// 日历顺序的月度序列
	ProfitMonthly      []MonthValue[float64] `json:"profit_monthly"`
	SubscribersMonthly []MonthValue[int64]   `json:"subscribers_monthly"`
}

// Build 一次性计算全部统计。
func Build(courses []*core.Course) *Report {
	rollup := YearlyAndMonthlyRollup(courses)
	return &Report{
		Courses:                   len(courses),
		CoursesBySubject:          CountByCategory(courses, FieldSubject),
		CoursesByLevel:            CountByCategory(courses, FieldLevel),
		CoursesByPaid:             CountByCategory(courses, FieldIsPaid),
		CoursesBySubjectLevel:     CountBySubjectLevel(courses),
		SubscribersBySubject:      SubscribersByCategory(courses, FieldSubject),
		SubscribersBySubjectLevel: SubscribersBySubjectLevel(courses),
		Rollup:                    rollup,
		ProfitMonthly:             OrderedMonths(rollup.ProfitByMonth),
		SubscribersMonthly:        OrderedMonths(rollup.SubscribersByMonth),
	}
}
