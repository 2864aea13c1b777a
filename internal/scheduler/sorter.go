package scheduler

import "sort"

// CanonicalSort orders schedule rows deterministically:
// 1. Early start: earliest first
// 2. Slack: least first
// 3. Early finish: earliest first
// 4. Task ID: ascending
func CanonicalSort(rows []TaskSchedule) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]

		if !a.ES.Equal(b.ES) {
			return a.ES.Before(b.ES)
		}
		if a.Slack != b.Slack {
			return a.Slack < b.Slack
		}
		if !a.EF.Equal(b.EF) {
			return a.EF.Before(b.EF)
		}
		return a.TaskID < b.TaskID
	})
}
