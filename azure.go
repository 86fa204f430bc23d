package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const azureAPIVersion = "7.0"

// detailsChunkSize is the Azure DevOps limit on ids per work-items request.
const detailsChunkSize = 200

type wiqlResponse struct {
	WorkItems []struct {
		ID int64 `json:"id"`
	} `json:"workItems"`
}

type workItemsResponse struct {
	Value []azureWorkItem `json:"value"`
}

type azureWorkItem struct {
	ID     int64           `json:"id"`
	Fields azureItemFields `json:"fields"`
}

type azureItemFields struct {
	Title         string        `json:"System.Title"`
	State         string        `json:"System.State"`
	Description   string        `json:"System.Description"`
	ReproSteps    string        `json:"Microsoft.VSTS.TCM.ReproSteps"`
	CreatedDate   string        `json:"System.CreatedDate"`
	ActivatedDate string        `json:"Microsoft.VSTS.Common.ActivatedDate"`
	CreatedBy     azureIdentity `json:"System.CreatedBy"`
}

type azureIdentity struct {
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
}

// FetchActiveBugs returns every active bug assigned to the configured user,
// with details resolved. This is the engine's input boundary; the engine
// itself never touches the network.
func FetchActiveBugs(cfg Config) ([]WorkItem, error) {
	ids, err := fetchActiveBugIDs(cfg)
	if err != nil {
		return nil, fmt.Errorf("fetching active bug ids: %w", err)
	}
	log.Printf("azure fetch ids=%d", len(ids))
	if len(ids) == 0 {
		return nil, nil
	}

	var items []WorkItem
	for start := 0; start < len(ids); start += detailsChunkSize {
		end := start + detailsChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk, err := fetchBugDetails(cfg, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("fetching bug details: %w", err)
		}
		items = append(items, chunk...)
	}
	log.Printf("azure fetch done total=%d", len(items))
	return items, nil
}

func fetchActiveBugIDs(cfg Config) ([]int64, error) {
	wiql := fmt.Sprintf(
		"SELECT [System.Id] FROM WorkItems "+
			"WHERE [System.WorkItemType] = 'Bug' "+
			"AND [System.AssignedTo] = '%s' "+
			"AND [System.State] = 'Active'",
		cfg.AzureUserEmail,
	)
	body, err := json.Marshal(map[string]string{"query": wiql})
	if err != nil {
		return nil, fmt.Errorf("marshaling wiql: %w", err)
	}

	apiURL := fmt.Sprintf("https://dev.azure.com/%s/%s/_apis/wit/wiql?api-version=%s",
		cfg.AzureOrg, cfg.AzureProject, azureAPIVersion)
	req, err := http.NewRequest("POST", apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("", cfg.AzurePAT)

	var result wiqlResponse
	if err := doAzureRequest(req, &result); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(result.WorkItems))
	for _, wi := range result.WorkItems {
		ids = append(ids, wi.ID)
	}
	return ids, nil
}

func fetchBugDetails(cfg Config, ids []int64) ([]WorkItem, error) {
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = fmt.Sprintf("%d", id)
	}
	fields := strings.Join([]string{
		"System.Id",
		"System.Title",
		"System.State",
		"System.CreatedDate",
		"Microsoft.VSTS.Common.ActivatedDate",
		"System.Description",
		"Microsoft.VSTS.TCM.ReproSteps",
		"System.CreatedBy",
	}, ",")
	apiURL := fmt.Sprintf("https://dev.azure.com/%s/%s/_apis/wit/workitems?ids=%s&fields=%s&api-version=%s",
		cfg.AzureOrg, cfg.AzureProject, strings.Join(idStrs, ","), fields, azureAPIVersion)

	req, err := http.NewRequest("GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth("", cfg.AzurePAT)

	var result workItemsResponse
	if err := doAzureRequest(req, &result); err != nil {
		return nil, err
	}

	items := make([]WorkItem, 0, len(result.Value))
	for _, raw := range result.Value {
		items = append(items, convertAzureItem(cfg, raw))
	}
	return items, nil
}

func doAzureRequest(req *http.Request, out any) error {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("Azure DevOps API returned %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func convertAzureItem(cfg Config, raw azureWorkItem) WorkItem {
	createdDate, _ := time.Parse(time.RFC3339, raw.Fields.CreatedDate)
	activatedDate, _ := time.Parse(time.RFC3339, raw.Fields.ActivatedDate)

	// Description and repro steps both describe the problem; the analyzer
	// treats them as one text.
	description := strings.TrimSpace(raw.Fields.Description)
	if repro := strings.TrimSpace(raw.Fields.ReproSteps); repro != "" {
		if description != "" {
			description += "\n"
		}
		description += repro
	}

	createdBy := raw.Fields.CreatedBy.DisplayName
	if createdBy == "" {
		createdBy = raw.Fields.CreatedBy.UniqueName
	}

	return WorkItem{
		ID:               raw.ID,
		Title:            raw.Fields.Title,
		Description:      description,
		URL:              fmt.Sprintf("https://dev.azure.com/%s/%s/_workitems/edit/%d", cfg.AzureOrg, cfg.AzureProject, raw.ID),
		CreatedBy:        createdBy,
		State:            raw.Fields.State,
		CreatedDate:      createdDate,
		StateChangedDate: activatedDate,
	}
}
