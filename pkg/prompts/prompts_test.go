package prompts

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcrescio/minerva/pkg/todos"
)

func TestLoadSystemPromptDefault(t *testing.T) {
	prompt, err := LoadSystemPrompt("")
	require.NoError(t, err)
	assert.Equal(t, SystemPrompt, prompt)
}

func TestLoadSystemPromptFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("  Custom prompt.\n"), 0o644))

	prompt, err := LoadSystemPrompt(path)
	require.NoError(t, err)
	assert.Equal(t, "Custom prompt.", prompt)
}

func TestLoadSystemPromptEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("   \n\t\n"), 0o644))

	_, err := LoadSystemPrompt(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty after stripping whitespace")
}

func TestLoadPodcastTemplateMissingFile(t *testing.T) {
	_, err := LoadPodcastUserPromptTemplate(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
}

func TestRenderPodcastUserPrompt(t *testing.T) {
	out, err := RenderPodcastUserPrompt(
		"Speak about {previous_topics}.{language_clause}",
		PodcastPromptValues{
			LanguageClause: " Answer in Italian.",
			PreviousTopics: []string{"Bees", "Trains"},
		})
	require.NoError(t, err)
	assert.Equal(t, "Speak about Bees\nTrains. Answer in Italian.", out)
}

func TestRenderPodcastUserPromptUnknownPlaceholder(t *testing.T) {
	_, err := RenderPodcastUserPrompt("Hello {who}", PodcastPromptValues{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{who}")
	assert.Contains(t, err.Error(), "{previous_topics_clause}")
}

func TestBuildPrompt(t *testing.T) {
	due := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	lists := []todos.TodoList{
		{
			ID:           "lists/a",
			DisplayTitle: "Errands",
			Todos: []todos.Todo{
				{
					ID:       "t1",
					Title:    "Post letter",
					DueDate:  &due,
					Status:   "pending",
					Metadata: map[string]any{"priority": "low"},
				},
				{ID: "t2", Title: "Water plants"},
			},
		},
		{ID: "lists/b", DisplayTitle: "Empty"},
	}

	prompt := BuildPrompt(lists)
	assert.Contains(t, prompt, "Provide a summary for the following todo lists:")
	assert.Contains(t, prompt, "\nList: Errands (id=lists/a)")
	assert.Contains(t, prompt, "  - Post letter (due 2026-04-01T08:00Z, status: pending, details: priority=low)")
	assert.Contains(t, prompt, "  - Water plants (no due date)")
	assert.Contains(t, prompt, "\nList: Empty (id=lists/b)\n  - No todos recorded.")
}

func TestFormatTodoMetadataSorted(t *testing.T) {
	item := todos.Todo{
		Title:    "Review",
		Metadata: map[string]any{"zeta": 1, "alpha": "x"},
	}
	line := FormatTodoForPrompt(item)
	assert.Equal(t, "  - Review (no due date, details: alpha=x, zeta=1)", line)
}
