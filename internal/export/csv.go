package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"taskdeck/internal/store"
)

func ToCSV(tasks []store.Task, groups map[string]store.Group, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Title", "Group", "Due", "Funds", "Created", "Updated", "Description"}); err != nil {
		return err
	}

	for _, t := range tasks {
		funds := ""
		if t.FundsNeeded != 0 {
			funds = fmt.Sprintf("%.2f", t.FundsNeeded)
		}

		row := []string{
			t.ID,
			t.Title,
			groupName(groups, t.GroupID),
			t.DueDate,
			funds,
			t.CreatedAt.Local().Format(time.RFC3339),
			t.UpdatedAt.Local().Format(time.RFC3339),
			t.Description,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
