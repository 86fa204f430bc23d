package main

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

// CategoryRule maps keyword matches to one category. Rules are evaluated in
// slice order; the first match wins.
type CategoryRule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// builtinRules mirror the common Windows/OS bug patterns this tool triages.
// Order matters: a crash keyword outranks a generic performance keyword.
var builtinRules = []CategoryRule{
	{CategoryCrashes, []string{"bsod", "blue screen", "crash", "exception", "fault", "bugcheck", "stop error"}},
	{CategoryBoot, []string{"boot", "startup", "initialization", "init", "loading"}},
	{CategoryPerformance, []string{"slow", "hang", "freeze", "performance", "timeout", "unresponsive"}},
	{CategoryDrivers, []string{"driver", "device", "hardware", "pnp", "plug and play"}},
	{CategoryMemory, []string{"memory", "leak", "heap", "allocation", "out of memory", "oom"}},
	{CategorySecurity, []string{"security", "permission", "access", "privilege", "auth", "token"}},
	{CategoryFileSystem, []string{"file", "disk", "storage", "ntfs", "fat32", "corruption"}},
}

// Decision is one delegated-classifier verdict for a single item.
type Decision struct {
	Category   string
	Actionable bool
	BotAuthor  bool
}

// Classifier is the optional delegated classification capability. Its
// absence (a nil Classifier) selects the pure heuristic path.
type Classifier interface {
	Classify(ctx context.Context, item WorkItem) (Decision, error)
}

// heuristicCategory returns the first rule whose keywords match the item's
// title or description, or Uncategorized.
func heuristicCategory(rules []CategoryRule, item WorkItem) string {
	text := strings.ToLower(item.Title + " " + item.Description)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Category
			}
		}
	}
	return CategoryUncategorized
}

// validCategory reports whether name is in the fixed category set.
func validCategory(name string) bool {
	for _, c := range CategoryOrder {
		if c == name {
			return true
		}
	}
	return false
}

// classifyWorkers bounds concurrent delegated-classifier calls.
const classifyWorkers = 4

// classifyItems runs the delegated classifier over every item with a fixed
// worker pool and a per-item timeout. Failures are logged and left out of
// the result map; callers fall back to the heuristic for those items. The
// returned count is the number of per-item fallbacks. Results are keyed by
// item id, so the assembled mapping is deterministic regardless of
// completion order.
func classifyItems(ctx context.Context, classifier Classifier, items []WorkItem, perItemTimeout time.Duration) (map[int64]Decision, int) {
	type result struct {
		id       int64
		decision Decision
		err      error
	}

	jobs := make(chan WorkItem)
	results := make(chan result, len(items))

	var wg sync.WaitGroup
	for w := 0; w < classifyWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				itemCtx, cancel := context.WithTimeout(ctx, perItemTimeout)
				decision, err := classifier.Classify(itemCtx, item)
				cancel()
				results <- result{id: item.ID, decision: decision, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, item := range items {
			select {
			case jobs <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	decisions := make(map[int64]Decision, len(items))
	for r := range results {
		if r.err != nil {
			log.Printf("classify fallback item=%d err=%v", r.id, r.err)
			continue
		}
		if !validCategory(r.decision.Category) {
			log.Printf("classify fallback item=%d unknown category=%q", r.id, r.decision.Category)
			continue
		}
		decisions[r.id] = r.decision
	}
	// Items never submitted because the run was cancelled are also missing
	// from the map and take the heuristic path.
	return decisions, len(items) - len(decisions)
}

// Categorize assigns every actionable item to exactly one category.
// decisions may be nil (heuristic mode) or hold delegated verdicts; items
// without a verdict use the heuristic rules. The returned map always
// contains every category in CategoryOrder, empty ones included, and the
// per-category item order follows the input order.
func Categorize(actionable []WorkItem, decisions map[int64]Decision, rules []CategoryRule) map[string][]WorkItem {
	byCategory := make(map[string][]WorkItem, len(CategoryOrder))
	for _, name := range CategoryOrder {
		byCategory[name] = nil
	}

	for _, item := range actionable {
		category := ""
		if decision, ok := decisions[item.ID]; ok {
			category = decision.Category
		}
		if category == "" {
			category = heuristicCategory(rules, item)
		}
		byCategory[category] = append(byCategory[category], item)
	}
	return byCategory
}
