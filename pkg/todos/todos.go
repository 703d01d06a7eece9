// Package todos models the todo lists stored in Firestore and retrieves
// them in a deterministic order.
package todos

import (
	"sort"
	"strings"
	"time"
)

// Todo is a single todo item extracted from a list's notes subcollection.
type Todo struct {
	ID       string
	Title    string
	DueDate  *time.Time
	Status   string
	Metadata map[string]any
}

// TodoList is one todo list document together with its todo items.
type TodoList struct {
	ID           string
	DisplayTitle string
	Data         map[string]any
	Todos        []Todo
}

// SortTodos orders todos for presentation: dated items first by due date,
// undated items after them, ties broken by case-folded title.
func SortTodos(items []Todo) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if (a.DueDate != nil) != (b.DueDate != nil) {
			return a.DueDate != nil
		}
		if a.DueDate != nil && !a.DueDate.Equal(*b.DueDate) {
			return a.DueDate.Before(*b.DueDate)
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
}

// NormalizeDueDate coerces the various shapes Firestore documents store due
// dates in (timestamps, unix seconds, ISO or RFC 2822 strings) into a UTC
// time. Unparseable values yield nil.
func NormalizeDueDate(value any) *time.Time {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		t := v.UTC()
		return &t
	case int64:
		t := time.Unix(v, 0).UTC()
		return &t
	case float64:
		t := time.Unix(int64(v), 0).UTC()
		return &t
	case string:
		return parseDueString(v)
	}
	return nil
}

var dueLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

func parseDueString(value string) *time.Time {
	for _, layout := range dueLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// DetermineStatus derives a todo status from the raw document fields: an
// explicit status string wins, then completed/done booleans, then unknown.
func DetermineStatus(data map[string]any) string {
	if status, ok := data["status"].(string); ok && strings.TrimSpace(status) != "" {
		return strings.TrimSpace(status)
	}
	for _, key := range []string{"completed", "done"} {
		if value, ok := data[key]; ok {
			if done, _ := value.(bool); done {
				return "completed"
			}
			return "pending"
		}
	}
	return "unknown"
}
