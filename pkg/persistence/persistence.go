// Package persistence serializes todo dumps and the per-list run markers
// the pipeline uses to skip work it already did today.
package persistence

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fcrescio/minerva/pkg/todos"
)

// dueDateFormat matches the minute-precision stamps stored in dumps.
const dueDateFormat = "2006-01-02T15:04Z07:00"

// TodoRecord is the JSON shape of one todo item in a dump.
type TodoRecord struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	DueDate  *string        `json:"due_date"`
	Status   string         `json:"status"`
	Metadata map[string]any `json:"metadata"`
}

// TodoListRecord is the JSON shape of one todo list in a dump.
type TodoListRecord struct {
	ID           string       `json:"id"`
	DisplayTitle string       `json:"display_title"`
	Todos        []TodoRecord `json:"todos"`
}

// DumpMetadata describes how and when a dump was produced.
type DumpMetadata struct {
	GeneratedAt  string `json:"generated_at"`
	Collection   string `json:"collection"`
	SummaryGroup string `json:"summary_group,omitempty"`
	RunCacheFile string `json:"run_cache_file,omitempty"`
}

// Dump is the on-disk JSON document linking the fetch and summarize steps.
type Dump struct {
	Metadata   DumpMetadata      `json:"metadata"`
	RunMarkers map[string]string `json:"run_markers"`
	TodoLists  []TodoListRecord  `json:"todo_lists"`
}

// SerializeTodoList converts a todo list into its dump record.
func SerializeTodoList(list todos.TodoList) TodoListRecord {
	records := make([]TodoRecord, 0, len(list.Todos))
	for _, item := range list.Todos {
		records = append(records, SerializeTodo(item))
	}
	return TodoListRecord{
		ID:           list.ID,
		DisplayTitle: list.DisplayTitle,
		Todos:        records,
	}
}

// SerializeTodo converts a todo into its dump record. Metadata values are
// normalized to JSON-friendly scalars.
func SerializeTodo(item todos.Todo) TodoRecord {
	var due *string
	if item.DueDate != nil {
		text := item.DueDate.Format(dueDateFormat)
		due = &text
	}

	metadata := make(map[string]any, len(item.Metadata))
	for key, value := range item.Metadata {
		metadata[key] = NormalizeMetadataValue(value)
	}

	return TodoRecord{
		ID:       item.ID,
		Title:    item.Title,
		DueDate:  due,
		Status:   item.Status,
		Metadata: metadata,
	}
}

// DeserializeTodoList reconstructs a todo list from its dump record.
func DeserializeTodoList(record TodoListRecord) todos.TodoList {
	items := make([]todos.Todo, 0, len(record.Todos))
	for _, todo := range record.Todos {
		items = append(items, DeserializeTodo(todo))
	}
	return todos.TodoList{
		ID:           record.ID,
		DisplayTitle: record.DisplayTitle,
		Todos:        items,
	}
}

// DeserializeTodo reconstructs a todo from its dump record. Unparseable due
// dates degrade to nil.
func DeserializeTodo(record TodoRecord) todos.Todo {
	var due *time.Time
	if record.DueDate != nil && *record.DueDate != "" {
		due = todos.NormalizeDueDate(*record.DueDate)
		if due == nil {
			logrus.WithField("due_date", *record.DueDate).Debug("Unable to parse todo due date")
		}
	}

	metadata := record.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	return todos.Todo{
		ID:       record.ID,
		Title:    record.Title,
		DueDate:  due,
		Status:   record.Status,
		Metadata: metadata,
	}
}

// NormalizeMetadataValue flattens a metadata value to a JSON-stable scalar.
func NormalizeMetadataValue(value any) any {
	switch v := value.(type) {
	case nil, string, bool, int, int64, float64:
		return v
	case time.Time:
		return v.Format(dueDateFormat)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ComputeRunMarkers hashes today's todos per list. A marker changes whenever
// the UTC date or any todo in the list changes, which is exactly when a new
// summary is worth generating.
func ComputeRunMarkers(lists []todos.TodoList) map[string]string {
	today := time.Now().UTC().Format("2006-01-02")
	markers := make(map[string]string, len(lists))
	for _, list := range lists {
		todosPayload := make([]TodoRecord, 0, len(list.Todos))
		for _, item := range list.Todos {
			todosPayload = append(todosPayload, SerializeTodo(item))
		}
		payload, _ := json.Marshal(map[string]any{
			"date":     today,
			"document": list.ID,
			"todos":    todosPayload,
		})
		digest := sha256.Sum256(payload)
		markers[list.ID] = hex.EncodeToString(digest[:])
	}
	return markers
}

// WriteRunMarkers persists markers as sorted tab-separated lines, creating
// the parent directory when needed.
func WriteRunMarkers(markers map[string]string, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating run marker directory: %w", err)
	}

	ids := make([]string, 0, len(markers))
	for id := range markers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(id)
		sb.WriteByte('\t')
		sb.WriteString(markers[id])
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing run markers: %w", err)
	}
	return nil
}

// ReadRunMarkers returns previously stored per-list run markers. Legacy
// single-marker files yield an empty map so a fresh run regenerates the
// cache in the current format.
func ReadRunMarkers(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run markers: %w", err)
	}

	markers := map[string]string{}
	for _, rawLine := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		var id, marker string
		if tab := strings.IndexByte(line, '\t'); tab >= 0 {
			id, marker = line[:tab], line[tab+1:]
		} else if fields := strings.Fields(line); len(fields) >= 2 {
			id, marker = fields[0], strings.Join(fields[1:], " ")
		} else {
			logrus.WithField("line", line).Debug("Ignoring legacy run marker line without delimiter")
			return map[string]string{}, nil
		}
		markers[id] = strings.TrimSpace(marker)
	}
	return markers, nil
}

// WriteDump writes a dump document as indented JSON, creating the parent
// directory when needed.
func WriteDump(dump Dump, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating dump directory: %w", err)
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding todo dump: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing todo dump: %w", err)
	}
	return nil
}

// ReadDump loads a dump document from path.
func ReadDump(path string) (Dump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Dump{}, fmt.Errorf("todo dump file not found: %s", path)
		}
		return Dump{}, fmt.Errorf("reading todo dump: %w", err)
	}

	var dump Dump
	if err := json.Unmarshal(data, &dump); err != nil {
		return Dump{}, fmt.Errorf("parsing todo dump: %w", err)
	}
	return dump, nil
}
