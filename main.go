package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/slack-go/slack"
)

func main() {
	cfg := LoadConfig()

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	var api *slack.Client
	if cfg.SlackBotToken != "" {
		api = slack.New(cfg.SlackBotToken)
	}

	if cfg.AnalyzeSchedule != "" {
		log.Println("Starting Bug Triage Bot (scheduled mode)...")
		StartAnalysisScheduler(cfg, db, api)
		return
	}

	reportPath, report, err := runAnalysisOnce(cfg, db)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}
	log.Printf("Report written to %s", reportPath)

	if api != nil && cfg.SlackChannelID != "" {
		if err := PostReportSummary(api, cfg.SlackChannelID, db, report, reportPath); err != nil {
			log.Printf("Slack post error: %v", err)
		}
	}
}

// runAnalysisOnce runs the complete pipeline: fetch, analyze, render, write
// the report file, and record the run in the database.
func runAnalysisOnce(cfg Config, db *sql.DB) (string, *Report, error) {
	items, err := FetchActiveBugs(cfg)
	if err != nil {
		return "", nil, fmt.Errorf("fetching bugs: %w", err)
	}

	rules, err := LoadCategoryRules(cfg.RulesPath)
	if err != nil {
		return "", nil, fmt.Errorf("loading category rules: %w", err)
	}

	var classifier Classifier
	if llm := NewLLMClassifier(cfg); llm != nil {
		classifier = llm
	}

	report, err := RunAnalysis(context.Background(), cfg, items, rules, classifier, time.Now().UTC())
	if err != nil {
		return "", nil, fmt.Errorf("running analysis: %w", err)
	}

	reportPath, err := WriteReportFile(RenderMarkdown(report), cfg.ReportOutputDir, report.GeneratedAt)
	if err != nil {
		return "", nil, fmt.Errorf("writing report: %w", err)
	}

	if _, err := InsertAnalysisRun(db, report, reportPath); err != nil {
		log.Printf("Failed to record analysis run: %v", err)
	}
	return reportPath, report, nil
}
