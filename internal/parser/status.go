package parser

import (
	"fmt"
	"strings"

	"github.com/balkashynov/studyfocus/internal/models"
)

// ParseStatus accepts the spellings people type for a task status
// Accepts formats like:
// - "todo", "Todo"
// - "inprogress", "in-progress", "in progress", "doing"
// - "completed", "done"
// - "expired", "overdue"
func ParseStatus(input string) (models.TaskStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.NewReplacer("-", "", "_", "", " ", "").Replace(normalized)

	switch normalized {
	case "todo":
		return models.StatusTodo, nil
	case "inprogress", "doing", "active":
		return models.StatusInProgress, nil
	case "completed", "complete", "done":
		return models.StatusCompleted, nil
	case "expired", "overdue":
		return models.StatusExpired, nil
	default:
		return "", fmt.Errorf("invalid status '%s'. Use: todo, inprogress, completed, or expired", input)
	}
}
