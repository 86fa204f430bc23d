package main

import (
	"fmt"
	"net/url"
	"strings"
	"testing"
)

func linkTestConfig() Config {
	return Config{
		AzureOrg:       "contoso",
		AzureProject:   "windows",
		AzureUserEmail: "dev@contoso.com",
	}
}

func TestBuildQueryLinksChunking(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		batchSize int
		wantLinks int
	}{
		{"empty", 0, 50, 0},
		{"single partial batch", 10, 50, 1},
		{"exact batch", 50, 50, 1},
		{"one over", 51, 50, 2},
		{"sixty over fifty", 60, 50, 2},
		{"small batches", 7, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := make([]int64, tt.count)
			for i := range ids {
				ids[i] = int64(i + 100)
			}

			links := BuildQueryLinks(linkTestConfig(), "Test", ids, tt.batchSize)

			if len(links) != tt.wantLinks {
				t.Fatalf("got %d links, want %d", len(links), tt.wantLinks)
			}
			total := 0
			for i, link := range links {
				if link.BatchIndex != i {
					t.Fatalf("link %d has batch index %d", i, link.BatchIndex)
				}
				if link.ItemCount > tt.batchSize {
					t.Fatalf("link %d item count %d exceeds batch size %d", i, link.ItemCount, tt.batchSize)
				}
				total += link.ItemCount
			}
			if total != tt.count {
				t.Fatalf("links cover %d ids, want %d", total, tt.count)
			}
		})
	}
}

func TestBuildQueryLinksChunksReproduceIDs(t *testing.T) {
	ids := []int64{5, 3, 9, 1, 7, 2, 8}
	links := BuildQueryLinks(linkTestConfig(), "Test", ids, 3)

	var reassembled []int64
	for _, link := range links {
		decoded, err := url.QueryUnescape(link.URL)
		if err != nil {
			t.Fatalf("unescape link: %v", err)
		}
		start := strings.Index(decoded, "IN (")
		if start < 0 {
			t.Fatalf("no id filter in %q", decoded)
		}
		inList := decoded[start+len("IN (") : strings.Index(decoded[start:], ")")+start]
		for _, s := range strings.Split(inList, ",") {
			var id int64
			if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
				t.Fatalf("bad id %q in link", s)
			}
			reassembled = append(reassembled, id)
		}
	}

	if len(reassembled) != len(ids) {
		t.Fatalf("reassembled %d ids, want %d", len(reassembled), len(ids))
	}
	for i, id := range ids {
		if reassembled[i] != id {
			t.Fatalf("id order changed at %d: got %d, want %d", i, reassembled[i], id)
		}
	}
}

func TestIDMembershipQueryURLShape(t *testing.T) {
	links := BuildQueryLinks(linkTestConfig(), CategoryCrashes, []int64{12, 34}, 50)
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	link := links[0]

	if link.Label != CategoryCrashes {
		t.Fatalf("label = %q, want %q", link.Label, CategoryCrashes)
	}
	if !strings.HasPrefix(link.URL, "https://dev.azure.com/contoso/windows/_workitems?_a=query&wiql=") {
		t.Fatalf("unexpected url prefix: %q", link.URL)
	}

	decoded, err := url.QueryUnescape(link.URL)
	if err != nil {
		t.Fatalf("unescape: %v", err)
	}
	for _, want := range []string{
		"[System.WorkItemType] = 'Bug'",
		"[System.AssignedTo] = 'dev@contoso.com'",
		"[System.State] = 'Active'",
		"[System.Id] IN (12,34)",
	} {
		if !strings.Contains(decoded, want) {
			t.Errorf("decoded wiql missing %q:\n%s", want, decoded)
		}
	}
}

func TestBuildQueryLinksDefaultsBatchSize(t *testing.T) {
	ids := make([]int64, defaultBatchSize+1)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	links := BuildQueryLinks(linkTestConfig(), "Test", ids, 0)
	if len(links) != 2 {
		t.Fatalf("expected default batch size to apply, got %d links", len(links))
	}
	if links[0].ItemCount != defaultBatchSize || links[1].ItemCount != 1 {
		t.Fatalf("unexpected chunk sizes: %d, %d", links[0].ItemCount, links[1].ItemCount)
	}
}
