package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fcrescio/minerva/pkg/llm"
	"github.com/fcrescio/minerva/pkg/persistence"
	"github.com/fcrescio/minerva/pkg/prompts"
	"github.com/fcrescio/minerva/pkg/todos"
)

// NewSummarizeTodosCmd creates the summarize-todos command.
func NewSummarizeTodosCmd() *cobra.Command {
	var (
		todosPath        string
		outputPath       string
		provider         string
		model            string
		temperature      float64
		maxOutputTokens  int
		systemPromptFile string
	)

	cmd := &cobra.Command{
		Use:   "summarize-todos",
		Short: "Generate a natural language summary for dumped todo lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			dump, err := persistence.ReadDump(todosPath)
			if err != nil {
				return err
			}
			if len(dump.TodoLists) == 0 {
				logrus.WithField("path", todosPath).Info("Todo dump does not contain any lists to summarize")
				fmt.Fprintln(cmd.OutOrStdout(), "Todo dump does not contain any lists to summarize.")
				return nil
			}

			defaultModel, ok := llm.DefaultModels[provider]
			if !ok {
				return fmt.Errorf("unknown provider %q; supported providers are: groq, openrouter", provider)
			}
			if model == "" {
				model = defaultModel
			}
			logrus.WithFields(logrus.Fields{
				"provider": provider,
				"model":    model,
			}).Debug("Selected summarization backend")

			systemPrompt, err := prompts.LoadSystemPrompt(systemPromptFile)
			if err != nil {
				return err
			}

			lists := make([]todos.TodoList, 0, len(dump.TodoLists))
			for _, record := range dump.TodoLists {
				lists = append(lists, persistence.DeserializeTodoList(record))
			}

			opts := llm.Options{
				Model:           model,
				Temperature:     temperature,
				MaxOutputTokens: maxOutputTokens,
				SystemPrompt:    systemPrompt,
			}
			var summary string
			if provider == "groq" {
				summary, err = llm.SummarizeWithGroq(lists, opts)
			} else {
				summary, err = llm.SummarizeWithOpenRouter(lists, opts)
			}
			if err != nil {
				return err
			}

			if err := os.WriteFile(outputPath, []byte(summary), 0o644); err != nil {
				return fmt.Errorf("writing summary: %w", err)
			}
			logrus.WithField("path", outputPath).Info("Summary written")
			fmt.Fprintln(cmd.OutOrStdout(), summary)

			if dump.Metadata.RunCacheFile != "" && len(dump.RunMarkers) > 0 {
				merged := map[string]string{}
				if _, statErr := os.Stat(dump.Metadata.RunCacheFile); statErr == nil {
					existing, readErr := persistence.ReadRunMarkers(dump.Metadata.RunCacheFile)
					if readErr != nil {
						logrus.WithError(readErr).Warn("Unable to read existing run markers")
					} else {
						merged = existing
					}
				}
				for id, marker := range dump.RunMarkers {
					merged[id] = marker
				}
				if err := persistence.WriteRunMarkers(merged, dump.Metadata.RunCacheFile); err != nil {
					return err
				}
				logrus.WithFields(logrus.Fields{
					"markers": len(merged),
					"path":    dump.Metadata.RunCacheFile,
				}).Debug("Persisted run markers")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&todosPath, "todos", "todo_dump.json", "Path to the JSON dump produced by fetch-todos")
	cmd.Flags().StringVar(&outputPath, "output", "todo_summary.txt", "Path to the file where the generated summary will be stored")
	cmd.Flags().StringVar(&provider, "provider", "openrouter", "LLM provider to use for summarization (groq or openrouter)")
	cmd.Flags().StringVar(&model, "model", "", "Model identifier to use for summarization (defaults depend on the provider)")
	cmd.Flags().Float64Var(&temperature, "temperature", 0.2, "Sampling temperature supplied to the chat completion request")
	cmd.Flags().IntVar(&maxOutputTokens, "max-output-tokens", 1024, "Maximum number of tokens the model is allowed to generate")
	cmd.Flags().StringVar(&systemPromptFile, "system-prompt-file", "", "Path to a text file that overrides the default system prompt")

	return cmd
}
