package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrInputContract marks caller contract violations (duplicate ids, missing
// timestamps). These are surfaced immediately; the engine does not attempt
// partial repair. Every other condition degrades to a complete report.
var ErrInputContract = errors.New("input contract violation")

// flagExplanations is the per-kind wording used for questionable sections.
var flagExplanations = map[FlagKind]string{
	FlagEmptyDescription:      "No description or repro steps - impossible to understand the issue",
	FlagShortDescription:      "Description too short to explain the actual problem",
	FlagBrokenReference:       "Points at attachments, links, or documents that cannot be followed from the bug report",
	FlagBotCreated:            "Created by an automated system or bot account",
	FlagNotActionable:         "Judged non-actionable - the report does not describe a concrete problem anyone could fix",
	FlagSimilarTitleDuplicate: "Nearly identical title to other flagged bugs - likely duplicates that should be consolidated",
}

// categoryAdvice carries the rendered explanation and next step per category.
var categoryAdvice = map[string][2]string{
	CategoryCrashes:       {"System crashes and blue screen errors that require immediate investigation", "Analyze crash dumps, check driver compatibility, and review recent system changes"},
	CategoryBoot:          {"Issues preventing system or application startup", "Check boot configuration, startup dependencies, and initialization sequences"},
	CategoryPerformance:   {"Performance degradation and system responsiveness issues", "Profile performance bottlenecks, check resource usage, and optimize critical paths"},
	CategoryDrivers:       {"Hardware driver compatibility and device management problems", "Update drivers, check hardware compatibility, and review device manager errors"},
	CategoryMemory:        {"Memory management problems including leaks and allocation failures", "Run memory analysis tools, check for leaks, and optimize memory usage"},
	CategorySecurity:      {"Security vulnerabilities and access control issues", "Review security policies, check permissions, and audit access controls"},
	CategoryFileSystem:    {"File system corruption and storage-related problems", "Run disk checks, verify file system integrity, and check storage health"},
	CategoryUncategorized: {"Bugs that do not match any known pattern", "Review manually or extend the category rules"},
}

// RunAnalysis is the report assembler: it validates the input contract, runs
// the detector, grouper, categorizer, aggregator, and link builder, and
// merges everything into one immutable Report. classifier may be nil for
// the heuristic path. Cancelling ctx abandons the run; no partial report is
// returned.
func RunAnalysis(ctx context.Context, cfg Config, items []WorkItem, rules []CategoryRule, classifier Classifier, now time.Time) (*Report, error) {
	if err := validateInput(items); err != nil {
		return nil, err
	}

	mode := ModeHeuristic
	var decisions map[int64]Decision
	fallbacks := 0
	if classifier != nil {
		mode = ModeAI
		decisions, fallbacks = classifyItems(ctx, classifier, items, time.Duration(cfg.LLMTimeoutSecs)*time.Second)
		log.Printf("analysis classify mode=ai items=%d fallbacks=%d", len(items), fallbacks)
	}

	questionable, actionable := DetectQuestionable(items, decisions)
	groups := GroupSimilarTitles(questionable, cfg.SimilarityThreshold)
	markSimilarTitleDuplicates(groups)

	byCategory := Categorize(actionable, decisions, rules)
	stats := AggregateStats(actionable, len(questionable), now)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt:   now,
		Stats:         stats,
		Mode:          mode,
		FallbackCount: fallbacks,
	}

	for _, name := range CategoryOrder {
		members := byCategory[name]
		ids := make([]int64, len(members))
		for i, item := range members {
			ids[i] = item.ID
		}
		report.Categories = append(report.Categories, CategorySection{
			Name:  name,
			Items: members,
			Links: BuildQueryLinks(cfg, name, ids, cfg.BatchSize),
		})
	}

	for _, group := range groups {
		ids := make([]int64, len(group.Members))
		for i, member := range group.Members {
			ids[i] = member.Item.ID
		}
		report.Questionable = append(report.Questionable, QuestionableSection{
			Group:  group,
			Reason: groupReason(group),
			Links:  BuildQueryLinks(cfg, group.Representative, ids, cfg.BatchSize),
		})
	}

	log.Printf("analysis done mode=%s actionable=%d questionable=%d groups=%d",
		mode, stats.ActionableCount, stats.QuestionableCount, len(groups))
	return report, nil
}

func validateInput(items []WorkItem) error {
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if item.ID <= 0 {
			return fmt.Errorf("%w: item has non-positive id %d", ErrInputContract, item.ID)
		}
		if seen[item.ID] {
			return fmt.Errorf("%w: duplicate item id %d", ErrInputContract, item.ID)
		}
		seen[item.ID] = true
		if item.CreatedDate.IsZero() {
			return fmt.Errorf("%w: item %d has no created date", ErrInputContract, item.ID)
		}
	}
	return nil
}

// markSimilarTitleDuplicates adds the duplicate flag to every member of a
// multi-item group. Singleton groups carry only their original flags.
func markSimilarTitleDuplicates(groups []TitleGroup) {
	for gi := range groups {
		if len(groups[gi].Members) < 2 {
			continue
		}
		for mi := range groups[gi].Members {
			member := &groups[gi].Members[mi]
			member.Flags = append(member.Flags, QuestionableFlag{
				Kind:   FlagSimilarTitleDuplicate,
				Reason: fmt.Sprintf("title is nearly identical to %d other flagged bugs", len(groups[gi].Members)-1),
			})
		}
	}
}

// groupReason picks the most common flag kind across a group's members and
// returns its explanation. Ties resolve to the kind seen first.
func groupReason(group TitleGroup) string {
	counts := make(map[FlagKind]int)
	var order []FlagKind
	for _, member := range group.Members {
		for _, flag := range member.Flags {
			if counts[flag.Kind] == 0 {
				order = append(order, flag.Kind)
			}
			counts[flag.Kind]++
		}
	}

	var dominant FlagKind
	best := 0
	for _, kind := range order {
		if counts[kind] > best {
			dominant = kind
			best = counts[kind]
		}
	}
	if explanation, ok := flagExplanations[dominant]; ok {
		return explanation
	}
	return "Flagged as non-actionable"
}
