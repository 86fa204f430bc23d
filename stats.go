package main

import "time"

// AggregateStats computes age and active-duration averages over the
// actionable set. Items with a zero StateChangedDate are excluded from the
// active-duration mean only. Both averages are 0 when their sample is
// empty; an empty actionable set is a defined boundary case, not an error.
func AggregateStats(actionable []WorkItem, questionableCount int, now time.Time) StatSummary {
	summary := StatSummary{
		ActionableCount:   len(actionable),
		QuestionableCount: questionableCount,
	}

	var ageSum, activeSum float64
	ageCount, activeCount := 0, 0
	for _, item := range actionable {
		if !item.CreatedDate.IsZero() {
			ageSum += now.Sub(item.CreatedDate).Hours() / 24
			ageCount++
		}
		if !item.StateChangedDate.IsZero() {
			activeSum += now.Sub(item.StateChangedDate).Hours() / 24
			activeCount++
		}
	}

	if ageCount > 0 {
		summary.AverageAgeDays = ageSum / float64(ageCount)
	}
	if activeCount > 0 {
		summary.AverageActiveDurationDays = activeSum / float64(activeCount)
	}
	return summary
}
