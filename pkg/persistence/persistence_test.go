package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcrescio/minerva/pkg/todos"
)

func sampleList() todos.TodoList {
	due := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return todos.TodoList{
		ID:           "lists/groceries",
		DisplayTitle: "Groceries",
		Todos: []todos.Todo{
			{
				ID:       "t1",
				Title:    "Buy milk",
				DueDate:  &due,
				Status:   "pending",
				Metadata: map[string]any{"priority": "high", "createdAt": due},
			},
			{
				ID:       "t2",
				Title:    "Call plumber",
				Status:   "completed",
				Metadata: map[string]any{},
			},
		},
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	list := sampleList()

	record := SerializeTodoList(list)
	require.Len(t, record.Todos, 2)
	require.NotNil(t, record.Todos[0].DueDate)
	assert.Equal(t, "2026-03-14T09:30Z", *record.Todos[0].DueDate)
	assert.Equal(t, "2026-03-14T09:30Z", record.Todos[0].Metadata["createdAt"])
	assert.Nil(t, record.Todos[1].DueDate)

	restored := DeserializeTodoList(record)
	assert.Equal(t, list.ID, restored.ID)
	assert.Equal(t, list.DisplayTitle, restored.DisplayTitle)
	require.Len(t, restored.Todos, 2)
	require.NotNil(t, restored.Todos[0].DueDate)
	assert.Equal(t, "2026-03-14T09:30:00Z", restored.Todos[0].DueDate.Format(time.RFC3339))
	assert.Nil(t, restored.Todos[1].DueDate)
	assert.Equal(t, "completed", restored.Todos[1].Status)
}

func TestDeserializeTodoBadDueDate(t *testing.T) {
	bad := "not-a-date"
	item := DeserializeTodo(TodoRecord{ID: "t1", Title: "x", DueDate: &bad})
	assert.Nil(t, item.DueDate)
	assert.NotNil(t, item.Metadata)
}

func TestComputeRunMarkersStableAndSensitive(t *testing.T) {
	list := sampleList()

	first := ComputeRunMarkers([]todos.TodoList{list})
	second := ComputeRunMarkers([]todos.TodoList{list})
	assert.Equal(t, first, second)

	changed := sampleList()
	changed.Todos[0].Title = "Buy oat milk"
	third := ComputeRunMarkers([]todos.TodoList{changed})
	assert.NotEqual(t, first[list.ID], third[list.ID])
}

func TestRunMarkersRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "markers")
	markers := map[string]string{
		"lists/b": "bbb",
		"lists/a": "aaa",
	}

	require.NoError(t, WriteRunMarkers(markers, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "lists/a\taaa\nlists/b\tbbb\n", string(data))

	restored, err := ReadRunMarkers(path)
	require.NoError(t, err)
	assert.Equal(t, markers, restored)
}

func TestReadRunMarkersLegacySingleValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers")
	require.NoError(t, os.WriteFile(path, []byte("deadbeef\n"), 0o644))

	markers, err := ReadRunMarkers(path)
	require.NoError(t, err)
	assert.Empty(t, markers)
}

func TestDumpRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "todos.json")
	dump := Dump{
		Metadata: DumpMetadata{
			GeneratedAt: "2026-03-14T09:30:00Z",
			Collection:  "todo_lists",
		},
		RunMarkers: map[string]string{"lists/groceries": "abc"},
		TodoLists:  []TodoListRecord{SerializeTodoList(sampleList())},
	}

	require.NoError(t, WriteDump(dump, path))

	restored, err := ReadDump(path)
	require.NoError(t, err)
	assert.Equal(t, dump.Metadata.Collection, restored.Metadata.Collection)
	assert.Equal(t, dump.RunMarkers, restored.RunMarkers)
	require.Len(t, restored.TodoLists, 1)
	assert.Equal(t, "Groceries", restored.TodoLists[0].DisplayTitle)
}

func TestReadDumpMissingFile(t *testing.T) {
	_, err := ReadDump(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
