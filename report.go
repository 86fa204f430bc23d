package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// RenderMarkdown turns a Report into the markdown document shown to the
// user: questionable groups first, then stats and the actionable breakdown.
// Averages are rounded to one decimal here; the Report keeps full precision.
func RenderMarkdown(report *Report) string {
	var md []string

	if len(report.Questionable) > 0 {
		md = append(md, "## Questionable Non-Actionable Bugs")
		md = append(md, fmt.Sprintf("**Total Count:** %d bugs with insufficient or problematic descriptions", report.Stats.QuestionableCount))
		md = append(md, "**Recommendation:** Review these first to clean up your backlog before focusing on actionable bugs.\n")

		for _, section := range report.Questionable {
			md = append(md, fmt.Sprintf("### %s (%d bugs)", section.Group.Representative, len(section.Group.Members)))
			md = append(md, fmt.Sprintf("**Issue:** %s", section.Reason))
			md = append(md, renderLinks(section.Links, "Review these bugs")...)
			md = append(md, "\n**Examples:**")
			for i, member := range section.Group.Members {
				if i >= 2 {
					break
				}
				md = append(md, fmt.Sprintf("- Bug %d: *%q*", member.Item.ID, descPreview(member.Item.Description)))
			}
			md = append(md, "")
		}
		md = append(md, "---", "")
	}

	md = append(md, "## Bug Stats")
	md = append(md, fmt.Sprintf("- **Total active bugs:** %d", report.Stats.ActionableCount+report.Stats.QuestionableCount))
	md = append(md, fmt.Sprintf("- **Actionable:** %d, **Questionable:** %d", report.Stats.ActionableCount, report.Stats.QuestionableCount))
	md = append(md, fmt.Sprintf("- **Average bug age:** %.1f days", report.Stats.AverageAgeDays))
	md = append(md, fmt.Sprintf("- **Average length of being active:** %.1f days", report.Stats.AverageActiveDurationDays))
	modeLine := fmt.Sprintf("- **Analysis mode:** %s", report.Mode)
	if report.Mode == ModeAI && report.FallbackCount > 0 {
		modeLine += fmt.Sprintf(" (%d items fell back to heuristics)", report.FallbackCount)
	}
	md = append(md, modeLine+"\n")

	nonEmpty := sortedNonEmptyCategories(report)
	if len(nonEmpty) > 0 {
		md = append(md, "## Actionable Bug Analysis by Issue Type")
		for _, section := range nonEmpty {
			advice := categoryAdvice[section.Name]
			md = append(md, fmt.Sprintf("### %d bugs likely related to: %s", len(section.Items), section.Name))
			md = append(md, fmt.Sprintf("**What these bugs are about:** %s", advice[0]))
			md = append(md, fmt.Sprintf("**Recommended next steps:** %s", advice[1]))
			md = append(md, renderLinks(section.Links, fmt.Sprintf("View all %s bugs", section.Name))...)

			md = append(md, "\n**Sample bugs:**")
			for i, item := range section.Items {
				if i >= 3 {
					break
				}
				md = append(md, fmt.Sprintf("- [%s](%s)", item.Title, item.URL))
			}
			if len(section.Items) > 3 {
				md = append(md, fmt.Sprintf("...and %d more", len(section.Items)-3))
			}
			md = append(md, "")
		}

		md = append(md, "## Priority Recommendations for Actionable Bugs")
		top := nonEmpty[0]
		advice := categoryAdvice[top.Name]
		md = append(md, fmt.Sprintf("1. **Focus on %s** - This is your largest actionable category with %d bugs", top.Name, len(top.Items)))
		md = append(md, fmt.Sprintf("2. **%s**", advice[1]))
		if report.Stats.AverageAgeDays > 60 {
			md = append(md, "3. **Triage old bugs** - Some actionable bugs are quite old and may need to be closed or deprioritized")
		}
	} else {
		md = append(md, "## No clear patterns found in actionable bugs")
		md = append(md, "Your actionable bugs don't fit common categories. Consider manual review or different grouping criteria.")
	}

	return strings.Join(md, "\n")
}

// sortedNonEmptyCategories returns the non-empty sections largest first.
// Ties keep CategoryOrder so rendering is deterministic.
func sortedNonEmptyCategories(report *Report) []CategorySection {
	var sections []CategorySection
	for _, section := range report.Categories {
		if len(section.Items) > 0 {
			sections = append(sections, section)
		}
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return len(sections[i].Items) > len(sections[j].Items)
	})
	return sections
}

func renderLinks(links []QueryLink, singleLabel string) []string {
	if len(links) == 0 {
		return nil
	}
	if len(links) == 1 {
		return []string{fmt.Sprintf("**[-> %s](%s)**", singleLabel, links[0].URL)}
	}
	out := []string{"**Query links (batched due to size):**"}
	for _, link := range links {
		out = append(out, fmt.Sprintf("  - [Batch %d (%d bugs)](%s)", link.BatchIndex+1, link.ItemCount, link.URL))
	}
	return out
}

func descPreview(description string) string {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return "No description"
	}
	runes := []rune(desc)
	if len(runes) > 80 {
		return string(runes[:80]) + "..."
	}
	return desc
}

// WriteReportFile writes the rendered report under outputDir, named by date.
func WriteReportFile(content, outputDir string, reportDate time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bug_triage_%s.md", reportDate.Format("20060102"))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, []byte(content), 0644)
}
