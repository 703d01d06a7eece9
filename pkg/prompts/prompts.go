// Package prompts builds the LLM prompts used by the summary and podcast
// pipeline steps.
package prompts

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fcrescio/minerva/pkg/todos"
)

const SystemPrompt = "You are a helpful assistant that generates concise summaries of todo lists. " +
	"Highlight overdue or upcoming items and mention items lacking due dates when relevant. " +
	"Provide the summary as a podcast-like monologue . Be playful and creative with moderation." +
	"Answer in italian language"

const PodcastSystemPrompt = "You are a creative podcast host who can pick engaging, wholesome topics at random. " +
	"Generate a concise script for a 2-3 minute episode that includes a title, a short " +
	"intro hook, two or three key talking points, and a friendly sign-off. " +
	"Keep the tone upbeat and curious, use clear language, and avoid sensitive subjects."

const PodcastUserPromptTemplate = "Pick a surprising, family-friendly topic at random and craft a brief script " +
	"for a 2-3 minute podcast episode. Include a catchy title, an inviting " +
	"opening, a handful of vivid talking points, and a warm sign-off. Avoid " +
	"reusing the same subject across runs. " +
	"{previous_topics_clause}" +
	"{language_clause}"

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// LoadSystemPrompt returns the summary system prompt, optionally read from
// path. Files that are empty after trimming are rejected.
func LoadSystemPrompt(path string) (string, error) {
	return loadPromptFile(path, SystemPrompt, "system prompt")
}

// LoadPodcastUserPromptTemplate returns the podcast user prompt template,
// optionally read from path.
func LoadPodcastUserPromptTemplate(path string) (string, error) {
	return loadPromptFile(path, PodcastUserPromptTemplate, "podcast prompt template")
}

func loadPromptFile(path, fallback, kind string) (string, error) {
	if path == "" {
		return fallback, nil
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s file %s: %w", kind, path, err)
	}
	stripped := strings.TrimSpace(string(contents))
	if stripped == "" {
		return "", fmt.Errorf("%s file %s is empty after stripping whitespace", kind, path)
	}
	return stripped, nil
}

// PodcastPromptValues carries the substitutions a podcast prompt template
// may reference.
type PodcastPromptValues struct {
	Language             string
	LanguageClause       string
	PreviousTopics       []string
	PreviousTopicsClause string
}

// RenderPodcastUserPrompt substitutes the supported placeholders into a
// template. Unknown placeholders are an error so typos in custom templates
// surface immediately.
func RenderPodcastUserPrompt(template string, values PodcastPromptValues) (string, error) {
	substitutions := map[string]string{
		"language":               values.Language,
		"language_clause":        values.LanguageClause,
		"previous_topics":        strings.Join(values.PreviousTopics, "\n"),
		"previous_topics_clause": values.PreviousTopicsClause,
	}

	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if _, ok := substitutions[match[1]]; !ok {
			return "", fmt.Errorf(
				"unknown placeholder in podcast prompt template: {%s}; supported placeholders are: "+
					"{language}, {language_clause}, {previous_topics}, {previous_topics_clause}",
				match[1])
		}
	}

	rendered := placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := token[1 : len(token)-1]
		return substitutions[name]
	})
	return rendered, nil
}

// BuildPrompt renders the user prompt covering every fetched todo list.
func BuildPrompt(lists []todos.TodoList) string {
	today := time.Now().UTC().Format("2006-01-02")
	lines := []string{
		fmt.Sprintf("The current date and time is %s", today),
		"Provide a summary for the following todo lists:",
	}
	for _, list := range lists {
		logrus.WithField("list", list.ID).Debug("Adding todo list to prompt")
		lines = append(lines, fmt.Sprintf("\nList: %s (id=%s)", list.DisplayTitle, list.ID))
		if len(list.Todos) == 0 {
			lines = append(lines, "  - No todos recorded.")
			continue
		}
		for _, item := range list.Todos {
			lines = append(lines, FormatTodoForPrompt(item))
		}
	}
	return strings.Join(lines, "\n")
}

// FormatTodoForPrompt renders one todo as a prompt bullet with its due date,
// status and metadata details.
func FormatTodoForPrompt(item todos.Todo) string {
	headline := fmt.Sprintf("  - %s", item.Title)
	var parts []string
	if item.DueDate != nil {
		parts = append(parts, fmt.Sprintf("due %s", item.DueDate.Format("2006-01-02T15:04Z07:00")))
	} else {
		parts = append(parts, "no due date")
	}
	if item.Status != "" {
		parts = append(parts, fmt.Sprintf("status: %s", item.Status))
	}
	if len(item.Metadata) > 0 {
		keys := make([]string, 0, len(item.Metadata))
		for key := range item.Metadata {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		meta := make([]string, 0, len(keys))
		for _, key := range keys {
			meta = append(meta, fmt.Sprintf("%s=%v", key, item.Metadata[key]))
		}
		parts = append(parts, fmt.Sprintf("details: %s", strings.Join(meta, ", ")))
	}
	return fmt.Sprintf("%s (%s)", headline, strings.Join(parts, ", "))
}
