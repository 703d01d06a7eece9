package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fcrescio/minerva/pkg/llm"
	"github.com/fcrescio/minerva/pkg/media"
	"github.com/fcrescio/minerva/pkg/notify"
)

const topicSummaryMaxLength = 160

var whitespaceRuns = regexp.MustCompile(`\s+`)

// NewGeneratePodcastCmd creates the generate-podcast command.
func NewGeneratePodcastCmd() *cobra.Command {
	var (
		outputPath        string
		speechOutput      string
		speech            bool
		model             string
		temperature       float64
		maxOutputTokens   int
		language          string
		topicHistoryFile  string
		topicHistoryLimit int
		telegram          bool
		telegramToken     string
		telegramChats     []string
		caption           string
	)

	cmd := &cobra.Command{
		Use:   "generate-podcast",
		Short: "Generate a short podcast on a random topic and optionally narrate it",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()

			if model == "" {
				model = llm.DefaultModels["openrouter"]
			}
			logrus.WithField("model", model).Info("Generating random podcast script")

			if telegramToken == "" {
				telegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
			}
			rawChats := telegramChats
			if len(rawChats) == 0 {
				rawChats = []string{os.Getenv("TELEGRAM_CHAT_ID")}
			}
			chatIDs := notify.ResolveChatIDs(rawChats)

			limit := topicHistoryLimit
			if limit < 0 {
				limit = 0
			}
			previousTopics := loadTopicHistory(topicHistoryFile, limit)

			script, err := llm.GeneratePodcastScript(llm.PodcastOptions{
				Model:           model,
				Temperature:     temperature,
				MaxOutputTokens: maxOutputTokens,
				Language:        language,
				PreviousTopics:  previousTopics,
			})
			if err != nil {
				logrus.WithError(err).Error("Failed to generate podcast script")
				fmt.Fprintln(errOut, err)
				return nil
			}

			if err := os.WriteFile(outputPath, []byte(script), 0o644); err != nil {
				return fmt.Errorf("writing podcast script: %w", err)
			}
			logrus.WithField("path", outputPath).Info("Podcast script written")

			topicSummary := summarizeGeneratedTopic(script)
			if err := saveTopicHistory(topicHistoryFile, append(previousTopics, topicSummary)); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"path":  topicHistoryFile,
				"topic": topicSummary,
			}).Info("Saved topic summary")

			fmt.Fprintln(out, script)

			var speechPath string
			if speech {
				speechPath, err = media.SynthesizeSpeech(script, speechOutput)
				if err != nil {
					return err
				}
				if speechPath != "" {
					logrus.WithField("path", speechPath).Info("Podcast narration saved")
				} else {
					logrus.Info("Speech synthesis skipped or failed; no audio generated")
				}
			} else {
				logrus.Debug("Speech synthesis disabled via CLI option")
			}

			if !telegram {
				logrus.Debug("Telegram posting disabled via CLI option")
				return nil
			}
			if telegramToken == "" || len(chatIDs) == 0 {
				logrus.Warn("Telegram credentials missing; skipping Telegram upload")
				return nil
			}

			captionText := caption
			if captionText == "" {
				captionText = "Random podcast"
			}
			for _, chatID := range chatIDs {
				if speechPath != "" {
					err = notify.PostSummary(speechPath, telegramToken, chatID, captionText)
				} else {
					err = notify.PostText(script, telegramToken, chatID)
				}
				if err != nil {
					logrus.WithError(err).Error("Failed to post podcast to Telegram")
					fmt.Fprintf(errOut, "Failed to send podcast to Telegram: %v\n", err)
					return nil
				}
			}
			logrus.WithField("chats", len(chatIDs)).Info("Podcast posted to Telegram")
			return nil
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "random_podcast.txt", "Path to the text file where the generated script will be stored")
	cmd.Flags().StringVar(&speechOutput, "speech-output", "random-podcast.wav", "Path to the audio file that will store the narrated script")
	cmd.Flags().BoolVar(&speech, "speech", true, "Enable or disable speech synthesis")
	cmd.Flags().StringVar(&model, "model", "", "OpenRouter model identifier to use (defaults to the provider default)")
	cmd.Flags().Float64Var(&temperature, "temperature", 0.7, "Sampling temperature supplied to the chat completion request")
	cmd.Flags().IntVar(&maxOutputTokens, "max-output-tokens", 800, "Maximum number of tokens the model is allowed to generate")
	cmd.Flags().StringVar(&language, "language", "", "Optional language to write and narrate the podcast in (e.g. italian, french)")
	cmd.Flags().StringVar(&topicHistoryFile, "topic-history-file", "random_podcast_topics.txt", "Path to the file that stores one-line summaries of previous podcast topics")
	cmd.Flags().IntVar(&topicHistoryLimit, "topic-history-limit", 25, "Number of recent topics to include in the next generation prompt")
	cmd.Flags().BoolVar(&telegram, "telegram", true, "Post the generated podcast to Telegram (voice if available, otherwise text)")
	cmd.Flags().StringVar(&telegramToken, "telegram-token", "", "Telegram bot token (defaults to TELEGRAM_BOT_TOKEN)")
	cmd.Flags().StringArrayVar(&telegramChats, "telegram-chat-id", nil, "Telegram chat or channel ID; repeat the flag or use a comma-separated list for multiple channels")
	cmd.Flags().StringVar(&caption, "caption", "", "Optional caption to include with the Telegram message")

	return cmd
}

// normalizeTopicSummary compacts a topic into a single trimmed line bounded
// by the history entry length.
func normalizeTopicSummary(text string) string {
	clean := strings.Trim(whitespaceRuns.ReplaceAllString(text, " "), " -:\t")
	runes := []rune(clean)
	if len(runes) <= topicSummaryMaxLength {
		return clean
	}
	return strings.TrimRight(string(runes[:topicSummaryMaxLength-1]), " ") + "…"
}

// summarizeGeneratedTopic extracts a one-line topic summary from a script,
// preferring an explicit "Title:" first line.
func summarizeGeneratedTopic(script string) string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return "Untitled topic"
	}

	first := lines[0]
	if strings.HasPrefix(strings.ToLower(first), "title:") {
		if title := strings.TrimSpace(first[len("title:"):]); title != "" {
			return normalizeTopicSummary(title)
		}
	}
	return normalizeTopicSummary(first)
}

// loadTopicHistory reads previous topic summaries, keeping the most recent
// maxEntries when the limit is positive.
func loadTopicHistory(path string, maxEntries int) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var topics []string
	for _, line := range strings.Split(string(data), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			topics = append(topics, trimmed)
		}
	}
	if maxEntries > 0 && len(topics) > maxEntries {
		topics = topics[len(topics)-maxEntries:]
	}
	return topics
}

func saveTopicHistory(path string, topics []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating topic history directory: %w", err)
	}
	data := strings.Join(topics, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("writing topic history: %w", err)
	}
	return nil
}
