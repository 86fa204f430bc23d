package main

import (
	"database/sql"
	"fmt"

	"github.com/slack-go/slack"
)

// PostReportSummary posts a short run summary to the report channel. Full
// detail lives in the markdown file; Slack gets the headline numbers, the
// top category, and movement since the previous recorded run.
func PostReportSummary(api *slack.Client, channelID string, db *sql.DB, report *Report, reportPath string) error {
	summary := fmt.Sprintf(
		"Bug triage complete (%s mode): %d actionable, %d questionable, avg age %.1f days.",
		report.Mode, report.Stats.ActionableCount, report.Stats.QuestionableCount,
		report.Stats.AverageAgeDays,
	)
	if top := report.TopCategory(); top != nil {
		summary += fmt.Sprintf(" Largest category: %s (%d bugs).", top.Name, len(top.Items))
	}
	if report.Mode == ModeAI && report.FallbackCount > 0 {
		summary += fmt.Sprintf(" %d items fell back to heuristics.", report.FallbackCount)
	}
	if note := historyNote(db, report); note != "" {
		summary += " " + note
	}
	if reportPath != "" {
		summary += fmt.Sprintf(" Report: %s", reportPath)
	}

	_, _, err := api.PostMessage(channelID, slack.MsgOptionText(summary, false))
	return err
}

// historyNote compares the just-recorded run against the one before it.
// Returns "" on the first run or when history is unavailable; the summary
// is still useful without it.
func historyNote(db *sql.DB, report *Report) string {
	if db == nil {
		return ""
	}
	runs, err := GetRecentRuns(db, 2)
	if err != nil || len(runs) < 2 {
		return ""
	}
	prev := runs[1]
	note := fmt.Sprintf("Since %s: actionable %+d, questionable %+d.",
		prev.RunAt.Format("Jan 2"),
		report.Stats.ActionableCount-prev.ActionableCount,
		report.Stats.QuestionableCount-prev.QuestionableCount)

	top := report.TopCategory()
	if top == nil {
		return note
	}
	prevCategories, err := GetRunCategories(db, prev.ID)
	if err != nil {
		return note
	}
	known := make(map[int64]bool, len(prevCategories[top.Name]))
	for _, id := range prevCategories[top.Name] {
		known[id] = true
	}
	fresh := 0
	for _, item := range top.Items {
		if !known[item.ID] {
			fresh++
		}
	}
	if fresh > 0 {
		note += fmt.Sprintf(" %d of the %s bugs are new.", fresh, top.Name)
	}
	return note
}
