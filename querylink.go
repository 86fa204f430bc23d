package main

import (
	"fmt"
	"net/url"
	"strings"
)

// defaultBatchSize caps the number of item ids per generated query link.
const defaultBatchSize = 50

// BuildQueryLinks turns a label and its member item ids into one or more
// ready-to-open Azure DevOps query URLs. Ids are split into consecutive
// chunks of at most batchSize, one link per chunk, BatchIndex 0-based.
// The links filter by explicit id membership rather than keywords so the
// result count always matches the report's count. Concatenating the chunks
// in order reproduces ids exactly.
func BuildQueryLinks(cfg Config, label string, ids []int64, batchSize int) []QueryLink {
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}

	var links []QueryLink
	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		links = append(links, QueryLink{
			Label:      label,
			URL:        idMembershipQueryURL(cfg, chunk),
			ItemCount:  len(chunk),
			BatchIndex: start / batchSize,
		})
	}
	return links
}

// idMembershipQueryURL encodes a WIQL id-IN query into a work-items query
// view URL.
func idMembershipQueryURL(cfg Config, ids []int64) string {
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = fmt.Sprintf("%d", id)
	}
	wiql := fmt.Sprintf(
		"SELECT [System.Id], [System.Title], [System.State] "+
			"FROM WorkItems "+
			"WHERE [System.WorkItemType] = 'Bug' "+
			"AND [System.AssignedTo] = '%s' "+
			"AND [System.State] = 'Active' "+
			"AND [System.Id] IN (%s)",
		cfg.AzureUserEmail, strings.Join(idStrs, ","),
	)
	return fmt.Sprintf("https://dev.azure.com/%s/%s/_workitems?_a=query&wiql=%s",
		cfg.AzureOrg, cfg.AzureProject, url.QueryEscape(wiql))
}
