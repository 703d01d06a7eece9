package todos

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
)

// notesSubcollection is where the companion mobile app keeps a list's items.
const notesSubcollection = "notes"

// FetchTodoLists retrieves every todo list in collection, in the store's
// natural document order. When summaryGroup is non-empty only lists whose
// summaryGroup field matches are returned.
func FetchTodoLists(ctx context.Context, client *firestore.Client, collection, summaryGroup string) ([]TodoList, error) {
	docs, err := client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing collection %s: %w", collection, err)
	}

	var lists []TodoList
	for _, doc := range docs {
		data := doc.Data()
		if data == nil {
			data = map[string]any{}
		}
		if summaryGroup != "" {
			group, _ := data["summaryGroup"].(string)
			if group != summaryGroup {
				continue
			}
		}

		items, err := fetchTodos(ctx, doc.Ref)
		if err != nil {
			return nil, err
		}
		lists = append(lists, BuildTodoList(doc.Ref.ID, data, items))
	}

	logrus.WithFields(logrus.Fields{
		"collection": collection,
		"lists":      len(lists),
	}).Debug("Fetched todo lists")
	return lists, nil
}

// BuildTodoList assembles a TodoList from a raw list document and its
// already-extracted items, deriving the display title from the usual
// candidate fields with the document ID as last resort.
func BuildTodoList(id string, data map[string]any, items []Todo) TodoList {
	title := firstNonEmpty(data, "name", "title", "label", "createdAt")
	if title == "" {
		title = id
	}
	return TodoList{
		ID:           id,
		DisplayTitle: title,
		Data:         data,
		Todos:        items,
	}
}

func fetchTodos(ctx context.Context, ref *firestore.DocumentRef) ([]Todo, error) {
	snapshots, err := ref.Collection(notesSubcollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing notes of %s: %w", ref.ID, err)
	}

	var items []Todo
	for _, snapshot := range snapshots {
		data := snapshot.Data()
		if data == nil {
			continue
		}
		noteType, _ := data["type"].(string)
		if !strings.EqualFold(noteType, "todo") {
			continue
		}
		items = append(items, BuildTodo(snapshot.Ref.ID, data))
	}
	SortTodos(items)
	return items, nil
}

// BuildTodo converts one raw note document into a Todo. Fields consumed for
// the title and type are excluded from the metadata map.
func BuildTodo(id string, data map[string]any) Todo {
	title := firstNonEmpty(data, "title", "name", "text", "content")
	if title == "" {
		title = id
	}

	due := data["dueDate"]
	if due == nil {
		due = data["due_date"]
	}

	metadata := map[string]any{}
	for key, value := range data {
		switch key {
		case "title", "name", "text", "content", "type":
		default:
			metadata[key] = value
		}
	}

	return Todo{
		ID:       id,
		Title:    title,
		DueDate:  NormalizeDueDate(due),
		Status:   DetermineStatus(data),
		Metadata: metadata,
	}
}

func firstNonEmpty(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringValue(data[key]); s != "" {
			return s
		}
	}
	return ""
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
