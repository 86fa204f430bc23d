package main

import (
	"fmt"
	"net/url"
	"strings"
)

// minDescriptionChars is the threshold below which a non-empty description
// is still considered too short to act on.
const minDescriptionChars = 20

// brokenReferencePhrases mark descriptions that point at material which is
// not actually present in the bug report.
var brokenReferencePhrases = []string{
	"see attachment",
	"attached file",
	"see link",
	"linked document",
	"see document",
	"external reference",
	"refer to the attachment",
}

// botNameIndicators are substrings of creator names that suggest an
// automated account rather than a person.
var botNameIndicators = []string{
	"bot", "system", "auto", "service", "script", "automation",
	"dummy", "fake", "webhook", "deploy",
}

// DetectQuestionable splits items into questionable and actionable pools.
// Both output slices preserve the input's relative order and together
// partition it exactly. verdicts carries delegated per-item judgments keyed
// by item id; items missing from the map use the heuristics alone, so a nil
// map is the pure heuristic path.
func DetectQuestionable(items []WorkItem, verdicts map[int64]Decision) ([]QuestionableItem, []WorkItem) {
	var questionable []QuestionableItem
	var actionable []WorkItem

	for _, item := range items {
		flags := flagItem(item, verdicts)
		if len(flags) > 0 {
			questionable = append(questionable, QuestionableItem{Item: item, Flags: flags})
		} else {
			actionable = append(actionable, item)
		}
	}
	return questionable, actionable
}

// flagItem applies every detection rule independently and returns the union.
func flagItem(item WorkItem, verdicts map[int64]Decision) []QuestionableFlag {
	var flags []QuestionableFlag

	desc := strings.TrimSpace(item.Description)
	if desc == "" {
		flags = append(flags, QuestionableFlag{
			Kind:   FlagEmptyDescription,
			Reason: "no description or repro steps",
		})
	} else if len(desc) < minDescriptionChars {
		flags = append(flags, QuestionableFlag{
			Kind:   FlagShortDescription,
			Reason: fmt.Sprintf("description is only %d characters", len(desc)),
		})
	}

	if reason := brokenReferenceReason(desc); reason != "" {
		flags = append(flags, QuestionableFlag{Kind: FlagBrokenReference, Reason: reason})
	}

	if verdict, judged := verdicts[item.ID]; judged {
		if verdict.BotAuthor {
			flags = append(flags, QuestionableFlag{
				Kind:   FlagBotCreated,
				Reason: fmt.Sprintf("classifier judged creator %q to be automated", item.CreatedBy),
			})
		}
		if !verdict.Actionable {
			flags = append(flags, QuestionableFlag{
				Kind:   FlagNotActionable,
				Reason: "classifier judged the report non-actionable",
			})
		}
	} else if looksLikeBotName(item.CreatedBy) {
		flags = append(flags, QuestionableFlag{
			Kind:   FlagBotCreated,
			Reason: fmt.Sprintf("creator %q matches an automated-account pattern", item.CreatedBy),
		})
	}

	return flags
}

// brokenReferenceReason checks the description for references that cannot be
// followed: phrases pointing at absent attachments, or URL tokens that are
// syntactically malformed. No network lookup is performed.
func brokenReferenceReason(desc string) string {
	lower := strings.ToLower(desc)
	for _, phrase := range brokenReferencePhrases {
		if strings.Contains(lower, phrase) {
			return fmt.Sprintf("references missing material (%q)", phrase)
		}
	}
	for _, field := range strings.Fields(desc) {
		token := strings.Trim(field, ".,;:()[]<>\"'")
		if !strings.HasPrefix(token, "http://") && !strings.HasPrefix(token, "https://") {
			continue
		}
		u, err := url.Parse(token)
		if err != nil || u.Host == "" || !strings.Contains(u.Host, ".") {
			return fmt.Sprintf("contains malformed link %q", token)
		}
	}
	return ""
}

// looksLikeBotName is the heuristic person/bot check used when no delegated
// judgment is available.
func looksLikeBotName(createdBy string) bool {
	name := strings.ToLower(strings.TrimSpace(createdBy))
	if name == "" {
		return false
	}
	for _, indicator := range botNameIndicators {
		if strings.Contains(name, indicator) {
			return true
		}
	}
	// first.last@ addresses read as real people.
	if at := strings.Index(name, "@"); at > 0 && strings.Contains(name[:at], ".") {
		return false
	}
	// Generic accounts like "user123" or "admin01".
	trimmed := strings.TrimRight(name, "0123456789")
	if trimmed != name {
		switch trimmed {
		case "user", "test", "admin", "temp", "qa":
			return true
		}
	}
	return false
}
