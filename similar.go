package main

import "strings"

// defaultSimilarityThreshold is the token-overlap ratio at or above which
// two normalized titles are considered near-duplicates.
const defaultSimilarityThreshold = 0.8

// GroupSimilarTitles clusters questionable items by near-duplicate title.
// Clustering is greedy and single-pass: each item joins the first existing
// group whose representative is similar enough, otherwise it starts its own
// group. The result is deterministic for a given input order but not
// globally optimal; an early representative claims later near-duplicates.
// Singleton groups are kept.
func GroupSimilarTitles(questionable []QuestionableItem, threshold float64) []TitleGroup {
	if threshold <= 0 {
		threshold = defaultSimilarityThreshold
	}

	var groups []TitleGroup
	for _, qi := range questionable {
		normalized := normalizeTitle(qi.Item.Title)
		placed := false
		for i := range groups {
			if titleSimilarity(groups[i].Normalized, normalized) >= threshold {
				groups[i].Members = append(groups[i].Members, qi)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, TitleGroup{
				Representative: qi.Item.Title,
				Normalized:     normalized,
				Members:        []QuestionableItem{qi},
			})
		}
	}
	return groups
}

// normalizeTitle lowercases, replaces digit runs with "n" so versioned
// titles collapse together, strips punctuation, and collapses whitespace.
func normalizeTitle(title string) string {
	var b strings.Builder
	prevDigit := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= '0' && r <= '9':
			if !prevDigit {
				b.WriteByte('n')
			}
			prevDigit = true
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			prevDigit = false
		default:
			b.WriteByte(' ')
			prevDigit = false
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// titleSimilarity returns the token-overlap ratio of two normalized titles:
// shared tokens divided by the larger token set. Symmetric; 1.0 for
// identical token sets, 0 when either title has no tokens.
func titleSimilarity(a, b string) float64 {
	if a == b && a != "" {
		return 1.0
	}
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(tokensA))
	for _, tok := range tokensA {
		setA[tok] = true
	}
	setB := make(map[string]bool, len(tokensB))
	for _, tok := range tokensB {
		setB[tok] = true
	}

	shared := 0
	for tok := range setA {
		if setB[tok] {
			shared++
		}
	}
	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	return float64(shared) / float64(larger)
}
