package main

import (
	"path/filepath"
	"testing"
	"time"
)

func testDBReport(now time.Time) *Report {
	return &Report{
		GeneratedAt: now,
		Stats: StatSummary{
			AverageAgeDays:            12.5,
			AverageActiveDurationDays: 4.25,
			ActionableCount:           3,
			QuestionableCount:         1,
		},
		Categories: []CategorySection{
			{Name: CategoryCrashes, Items: []WorkItem{{ID: 10}, {ID: 11}}},
			{Name: CategoryPerformance, Items: []WorkItem{{ID: 12}}},
			{Name: CategoryUncategorized},
		},
		Mode:          ModeAI,
		FallbackCount: 1,
	}
}

func TestInsertAndGetAnalysisRuns(t *testing.T) {
	db, err := InitDB(filepath.Join(t.TempDir(), "triage.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	runID, err := InsertAnalysisRun(db, testDBReport(now), "/reports/bug_triage_20260301.md")
	if err != nil {
		t.Fatalf("InsertAnalysisRun: %v", err)
	}
	if runID <= 0 {
		t.Fatalf("unexpected run id %d", runID)
	}

	runs, err := GetRecentRuns(db, 10)
	if err != nil {
		t.Fatalf("GetRecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.Mode != string(ModeAI) {
		t.Errorf("mode = %q, want ai", run.Mode)
	}
	if run.ActionableCount != 3 || run.QuestionableCount != 1 {
		t.Errorf("counts = %d/%d, want 3/1", run.ActionableCount, run.QuestionableCount)
	}
	if run.AvgAgeDays != 12.5 || run.AvgActiveDays != 4.25 {
		t.Errorf("averages = %f/%f", run.AvgAgeDays, run.AvgActiveDays)
	}
	if run.FallbackCount != 1 {
		t.Errorf("fallback count = %d, want 1", run.FallbackCount)
	}
	if run.ReportPath != "/reports/bug_triage_20260301.md" {
		t.Errorf("report path = %q", run.ReportPath)
	}
}

func TestGetRunCategories(t *testing.T) {
	db, err := InitDB(filepath.Join(t.TempDir(), "triage.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer db.Close()

	now := time.Now()
	runID, err := InsertAnalysisRun(db, testDBReport(now), "")
	if err != nil {
		t.Fatalf("InsertAnalysisRun: %v", err)
	}

	byCategory, err := GetRunCategories(db, runID)
	if err != nil {
		t.Fatalf("GetRunCategories: %v", err)
	}
	if len(byCategory[CategoryCrashes]) != 2 {
		t.Fatalf("crashes = %v", byCategory[CategoryCrashes])
	}
	if byCategory[CategoryCrashes][0] != 10 || byCategory[CategoryCrashes][1] != 11 {
		t.Fatalf("crash ids out of order: %v", byCategory[CategoryCrashes])
	}
	if len(byCategory[CategoryPerformance]) != 1 || byCategory[CategoryPerformance][0] != 12 {
		t.Fatalf("performance = %v", byCategory[CategoryPerformance])
	}
	// Empty categories write no rows.
	if _, ok := byCategory[CategoryUncategorized]; ok {
		t.Fatal("empty category should not appear in stored classifications")
	}
}

func TestGetRecentRunsOrderAndLimit(t *testing.T) {
	db, err := InitDB(filepath.Join(t.TempDir(), "triage.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer db.Close()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		report := testDBReport(base.Add(time.Duration(i) * time.Hour))
		if _, err := InsertAnalysisRun(db, report, ""); err != nil {
			t.Fatalf("insert run %d: %v", i, err)
		}
	}

	runs, err := GetRecentRuns(db, 2)
	if err != nil {
		t.Fatalf("GetRecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].RunAt.After(runs[1].RunAt) {
		t.Fatalf("runs not newest first: %v then %v", runs[0].RunAt, runs[1].RunAt)
	}
}
