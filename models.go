package main

import "time"

// WorkItem is one active bug record fetched from Azure DevOps.
type WorkItem struct {
	ID               int64
	Title            string
	Description      string // System.Description plus repro steps, merged
	URL              string // direct edit link into Azure DevOps
	CreatedBy        string // display name or email of the creator
	State            string
	CreatedDate      time.Time
	StateChangedDate time.Time // last transition into Active
}

// FlagKind identifies why an item was judged non-actionable.
type FlagKind string

const (
	FlagEmptyDescription      FlagKind = "empty_description"
	FlagShortDescription      FlagKind = "short_description"
	FlagBrokenReference       FlagKind = "broken_reference"
	FlagBotCreated            FlagKind = "bot_created"
	FlagNotActionable         FlagKind = "not_actionable"
	FlagSimilarTitleDuplicate FlagKind = "similar_title_duplicate"
)

// QuestionableFlag annotates a WorkItem with one non-actionability reason.
type QuestionableFlag struct {
	Kind   FlagKind
	Reason string
}

// QuestionableItem pairs an item with every flag raised against it.
type QuestionableItem struct {
	Item  WorkItem
	Flags []QuestionableFlag
}

// Category names form a fixed, ordered set. Order is classification
// priority: an earlier rule claims an item even if a later one also matches.
const (
	CategoryCrashes       = "BSoD/Crashes"
	CategoryBoot          = "Boot/Startup"
	CategoryPerformance   = "Performance/Hangs"
	CategoryDrivers       = "Driver Issues"
	CategoryMemory        = "Memory Issues"
	CategorySecurity      = "Security/Access"
	CategoryFileSystem    = "File System"
	CategoryUncategorized = "Uncategorized"
)

// CategoryOrder lists every category in rule-priority order.
// Uncategorized is the catch-all and is always last.
var CategoryOrder = []string{
	CategoryCrashes,
	CategoryBoot,
	CategoryPerformance,
	CategoryDrivers,
	CategoryMemory,
	CategorySecurity,
	CategoryFileSystem,
	CategoryUncategorized,
}

// TitleGroup is a cluster of questionable items with near-duplicate titles.
type TitleGroup struct {
	Representative string // original title of the first member
	Normalized     string // normalized form the group matches against
	Members        []QuestionableItem
}

// StatSummary holds aggregate metrics over one analysis run. Averages are
// full precision; rounding happens at render time.
type StatSummary struct {
	AverageAgeDays            float64
	AverageActiveDurationDays float64
	ActionableCount           int
	QuestionableCount         int
}

// QueryLink is one bounded id-membership query into Azure DevOps.
type QueryLink struct {
	Label      string
	URL        string
	ItemCount  int
	BatchIndex int
}

// AnalysisMode records which classification path produced a report.
type AnalysisMode string

const (
	ModeHeuristic AnalysisMode = "heuristic"
	ModeAI        AnalysisMode = "ai"
)

// CategorySection is one category's slice of the report.
type CategorySection struct {
	Name  string
	Items []WorkItem // assembly order, matches link chunk order
	Links []QueryLink
}

// QuestionableSection is one title group's slice of the report.
type QuestionableSection struct {
	Group  TitleGroup
	Reason string // dominant flag reason for the group
	Links  []QueryLink
}

// Report is the terminal artifact of one analysis run. It is never mutated
// after assembly and never persisted by the engine itself.
type Report struct {
	GeneratedAt   time.Time
	Stats         StatSummary
	Categories    []CategorySection // CategoryOrder, empty sections included
	Questionable  []QuestionableSection
	Mode          AnalysisMode
	FallbackCount int // items that fell back to the heuristic in AI mode
}

// TopCategory returns the largest non-empty category section, or nil.
func (r *Report) TopCategory() *CategorySection {
	var top *CategorySection
	for i := range r.Categories {
		sec := &r.Categories[i]
		if len(sec.Items) == 0 {
			continue
		}
		if top == nil || len(sec.Items) > len(top.Items) {
			top = sec
		}
	}
	return top
}
