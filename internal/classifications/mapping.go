package classifications

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sapulidi/sapulidi/pkg/query"
	"github.com/sapulidi/sapulidi/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "classification_history", "h").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("image_url", "ImageURL").
	Project("image_key", "ImageKey").
	Project("result", "Result").
	Project("accuracy", "Accuracy").
	Project("prompt_version", "PromptVersion").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

func scanHistoryItem(s repository.Scanner) (HistoryItem, error) {
	var h HistoryItem
	var resultRaw []byte

	err := s.Scan(
		&h.ID,
		&h.UserID,
		&h.ImageURL,
		&h.ImageKey,
		&resultRaw,
		&h.Accuracy,
		&h.PromptVersion,
		&h.CreatedAt,
	)
	if err != nil {
		return h, err
	}

	if len(resultRaw) > 0 {
		if err := json.Unmarshal(resultRaw, &h.Result); err != nil {
			return h, fmt.Errorf("unmarshal result: %w", err)
		}
	}

	return h, nil
}

// Search keeps the items whose waste names, categories, or overall
// assessment contain term, case-insensitively. A blank term keeps all.
func Search(items []HistoryItem, term string) []HistoryItem {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}

	matched := make([]HistoryItem, 0, len(items))
	for _, item := range items {
		if matches(item, term) {
			matched = append(matched, item)
		}
	}
	return matched
}

func matches(item HistoryItem, term string) bool {
	if strings.Contains(strings.ToLower(item.Result.OverallAssessment), term) {
		return true
	}
	for _, w := range item.Result.WasteTypes {
		if strings.Contains(strings.ToLower(w.Name), term) ||
			strings.Contains(strings.ToLower(w.Category), term) {
			return true
		}
	}
	return false
}
