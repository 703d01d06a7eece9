// Package llm talks to the chat-completion providers used for todo
// summaries and podcast scripts.
package llm

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fcrescio/minerva/pkg/prompts"
	"github.com/fcrescio/minerva/pkg/todos"
)

// DefaultModels maps each provider to the model used when none is given.
var DefaultModels = map[string]string{
	"openrouter": "mistralai/mistral-nemo",
	"groq":       "mixtral-8x7b-32768",
}

// Endpoints are package variables so tests can point them at a local server.
var (
	openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	groqEndpoint       = "https://api.groq.com/openai/v1/chat/completions"
)

const requestTimeout = 60 * time.Second

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model           string        `json:"model"`
	Temperature     float64       `json:"temperature"`
	Messages        []chatMessage `json:"messages"`
	MaxOutputTokens int           `json:"max_output_tokens,omitempty"`
	TopP            float64       `json:"top_p,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Options configures a summary request.
type Options struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
	SystemPrompt    string
}

// SummarizeWithOpenRouter generates a summary of the todo lists through the
// OpenRouter chat-completion API.
func SummarizeWithOpenRouter(lists []todos.TodoList, opts Options) (string, error) {
	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENROUTER_API_KEY environment variable is not set")
	}

	systemPrompt := opts.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = prompts.SystemPrompt
	}

	body := chatRequest{
		Model:       opts.Model,
		Temperature: opts.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompts.BuildPrompt(lists)},
		},
		MaxOutputTokens: opts.MaxOutputTokens,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + apiKey,
		"HTTP-Referer":  envOrDefault("OPENROUTER_APP_URL", "https://github.com/fcrescio/Minerva"),
		"X-Title":       envOrDefault("OPENROUTER_APP_TITLE", "Minerva Todo Summarizer"),
	}

	return completeChat("openrouter", openRouterEndpoint, headers, body)
}

// SummarizeWithGroq generates a summary of the todo lists through the Groq
// OpenAI-compatible chat-completion API.
func SummarizeWithGroq(lists []todos.TodoList, opts Options) (string, error) {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GROQ_API_KEY environment variable is not set")
	}

	systemPrompt := opts.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = prompts.SystemPrompt
	}

	body := chatRequest{
		Model:       opts.Model,
		Temperature: opts.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompts.BuildPrompt(lists)},
		},
		MaxOutputTokens: opts.MaxOutputTokens,
		TopP:            1,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + apiKey,
	}

	return completeChat("groq", groqEndpoint, headers, body)
}

// PodcastOptions configures a random podcast script request.
type PodcastOptions struct {
	Model              string
	Temperature        float64
	MaxOutputTokens    int
	Language           string
	PreviousTopics     []string
	UserPromptTemplate string
}

// GeneratePodcastScript asks OpenRouter for a short podcast script about a
// random topic, avoiding the previously used topics.
func GeneratePodcastScript(opts PodcastOptions) (string, error) {
	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENROUTER_API_KEY environment variable is not set")
	}

	languageClause := ""
	if opts.Language != "" {
		languageClause = fmt.Sprintf("Write the entire script in %s. ", opts.Language)
	}

	var previousTopics []string
	for _, topic := range opts.PreviousTopics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			previousTopics = append(previousTopics, trimmed)
		}
	}
	previousTopicsClause := ""
	if len(previousTopics) > 0 {
		var bullets []string
		for _, topic := range previousTopics {
			bullets = append(bullets, "- "+topic)
		}
		previousTopicsClause = fmt.Sprintf(
			"Do not reuse any of these previously generated topics:\n%s\n",
			strings.Join(bullets, "\n"))
	}

	template := opts.UserPromptTemplate
	if template == "" {
		template = prompts.PodcastUserPromptTemplate
	}
	userPrompt, err := prompts.RenderPodcastUserPrompt(template, prompts.PodcastPromptValues{
		Language:             opts.Language,
		LanguageClause:       languageClause,
		PreviousTopics:       previousTopics,
		PreviousTopicsClause: previousTopicsClause,
	})
	if err != nil {
		return "", err
	}

	body := chatRequest{
		Model:       opts.Model,
		Temperature: opts.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: prompts.PodcastSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxOutputTokens: opts.MaxOutputTokens,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + apiKey,
		"HTTP-Referer":  envOrDefault("OPENROUTER_APP_URL", "https://github.com/fcrescio/Minerva"),
		"X-Title":       envOrDefault("OPENROUTER_APP_TITLE", "Minerva Random Podcast"),
	}

	return completeChat("openrouter", openRouterEndpoint, headers, body)
}

func completeChat(provider, endpoint string, headers map[string]string, body chatRequest) (string, error) {
	requestID := "req-" + uuid.New().String()[:8]
	log := logrus.WithFields(logrus.Fields{
		"request_id": requestID,
		"provider":   provider,
		"model":      body.Model,
	})
	log.Debug("Submitting chat completion request")

	var parsed chatResponse
	resp, err := resty.New().
		SetTimeout(requestTimeout).
		R().
		SetHeader("Content-Type", "application/json").
		SetHeaders(headers).
		SetBody(body).
		SetResult(&parsed).
		Post(endpoint)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", provider, err)
	}
	if resp.IsError() {
		log.WithField("status", resp.StatusCode()).Warn("Chat completion request rejected")
		return "", fmt.Errorf("%s request failed with status %d: %s", provider, resp.StatusCode(), resp.String())
	}
	log.WithField("status", resp.StatusCode()).Debug("Chat completion request completed")

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("unexpected response from %s", provider)
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}
