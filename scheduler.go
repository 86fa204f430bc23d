package main

import (
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
)

// StartAnalysisScheduler runs the full analysis on a cron schedule and
// posts a summary to the report channel after each run. The schedule is a
// standard 5-field cron expression (minute hour day-of-month month
// day-of-week). Examples: "0 8 * * *" (daily 8am), "0 8 * * 1" (Mondays
// 8am). Blocks forever; callers decide whether to run it.
func StartAnalysisScheduler(cfg Config, db *sql.DB, api *slack.Client) {
	schedule := strings.TrimSpace(cfg.AnalyzeSchedule)

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Fatalf("Invalid analyze_schedule '%s': %v", schedule, err)
	}
	log.Printf("Analysis scheduled (cron: %s)", schedule)

	for {
		now := time.Now()
		next := sched.Next(now)
		wait := next.Sub(now)
		log.Printf("Next analysis at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

		time.Sleep(wait)

		reportPath, report, runErr := runAnalysisOnce(cfg, db)
		if runErr != nil {
			log.Printf("Scheduled analysis error: %v", runErr)
			continue
		}
		log.Printf("Scheduled analysis complete: report=%s", reportPath)

		if api != nil && cfg.SlackChannelID != "" {
			if postErr := PostReportSummary(api, cfg.SlackChannelID, db, report, reportPath); postErr != nil {
				log.Printf("Scheduled analysis post error: %v", postErr)
			}
		}
	}
}
