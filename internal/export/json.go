package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"taskdeck/internal/store"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Count      int        `json:"count"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonTask struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Group            string  `json:"group,omitempty"`
	GroupID          string  `json:"group_id,omitempty"`
	Description      string  `json:"description,omitempty"`
	WhyItMatters     string  `json:"why_it_matters,omitempty"`
	DefinitionOfDone string  `json:"definition_of_done,omitempty"`
	DueDate          string  `json:"due_date,omitempty"`
	FundsNeeded      float64 `json:"funds_needed,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func ToJSON(tasks []store.Task, groups map[string]store.Group, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(tasks),
	}

	for _, t := range tasks {
		export.Tasks = append(export.Tasks, jsonTask{
			ID:               t.ID,
			Title:            t.Title,
			Group:            groupName(groups, t.GroupID),
			GroupID:          t.GroupID,
			Description:      t.Description,
			WhyItMatters:     t.WhyItMatters,
			DefinitionOfDone: t.DefinitionOfDone,
			DueDate:          t.DueDate,
			FundsNeeded:      t.FundsNeeded,
			CreatedAt:        t.CreatedAt.Local().Format(time.RFC3339),
			UpdatedAt:        t.UpdatedAt.Local().Format(time.RFC3339),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// groupName resolves a task's group reference. An ungrouped task gets an
// empty name; a dangling reference gets "Unknown".
func groupName(groups map[string]store.Group, id string) string {
	if id == "" {
		return ""
	}
	if g, ok := groups[id]; ok {
		return g.Name
	}
	return "Unknown"
}
