package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fcrescio/minerva/pkg/media"
	"github.com/fcrescio/minerva/pkg/notify"
)

// NewPublishSummaryCmd creates the publish-summary command.
func NewPublishSummaryCmd() *cobra.Command {
	var (
		summaryPath   string
		speechOutput  string
		existingAudio string
		voice         bool
		telegram      bool
		telegramToken string
		telegramChat  string
		caption       string
	)

	cmd := &cobra.Command{
		Use:   "publish-summary",
		Short: "Publish a summary to Telegram as a voice note or plain text message",
		RunE: func(cmd *cobra.Command, args []string) error {
			errOut := cmd.ErrOrStderr()
			if telegramToken == "" {
				telegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
			}
			if telegramChat == "" {
				telegramChat = os.Getenv("TELEGRAM_CHAT_ID")
			}

			if voice {
				speechPath := existingAudio
				if speechPath != "" {
					if _, err := os.Stat(speechPath); err != nil {
						fmt.Fprintf(errOut, "Existing audio file not found: %s\n", speechPath)
						return nil
					}
					logrus.WithField("path", speechPath).Info("Using existing audio file")
				} else {
					summaryText, err := os.ReadFile(summaryPath)
					if err != nil {
						fmt.Fprintf(errOut, "Summary file not found: %s\n", summaryPath)
						return nil
					}
					speechPath, err = media.SynthesizeSpeech(string(summaryText), speechOutput)
					if err != nil {
						return err
					}
					if speechPath == "" {
						logrus.Info("Speech synthesis skipped or failed; no audio generated")
						return nil
					}
					logrus.WithField("path", speechPath).Info("Speech saved")
				}

				if !telegram {
					logrus.Debug("Telegram upload disabled via CLI option")
					return nil
				}
				if telegramToken == "" || telegramChat == "" {
					fmt.Fprintln(errOut, "Telegram bot token or chat ID missing; skipping Telegram upload.")
					return nil
				}

				captionText := caption
				if captionText == "" {
					captionText = time.Now().UTC().Format(time.RFC3339)
				}
				if err := notify.PostSummary(speechPath, telegramToken, telegramChat, captionText); err != nil {
					fmt.Fprintf(errOut, "Failed to upload summary to Telegram: %v\n", err)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Telegram upload completed successfully.")
				return nil
			}

			if existingAudio != "" {
				logrus.Warn("--existing-audio provided but --voice=false selected; the audio file will be ignored")
			}
			if !telegram {
				logrus.Debug("Telegram upload disabled via CLI option")
				return nil
			}

			summaryText, err := os.ReadFile(summaryPath)
			if err != nil {
				fmt.Fprintf(errOut, "Summary file not found: %s\n", summaryPath)
				return nil
			}

			var parts []string
			if trimmed := strings.TrimSpace(caption); trimmed != "" {
				parts = append(parts, trimmed)
			}
			if trimmed := strings.TrimSpace(string(summaryText)); trimmed != "" {
				parts = append(parts, trimmed)
			}
			message := strings.Join(parts, "\n\n")
			if message == "" {
				fmt.Fprintln(errOut, "Summary text is empty; nothing to send to Telegram.")
				return nil
			}
			if telegramToken == "" || telegramChat == "" {
				fmt.Fprintln(errOut, "Telegram bot token or chat ID missing; skipping Telegram upload.")
				return nil
			}

			if err := notify.PostText(message, telegramToken, telegramChat); err != nil {
				fmt.Fprintf(errOut, "Failed to send summary text to Telegram: %v\n", err)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Telegram text message sent successfully.")
			return nil
		},
	}

	cmd.Flags().StringVar(&summaryPath, "summary", "todo_summary.txt", "Path to the text file containing the summary to narrate")
	cmd.Flags().StringVar(&speechOutput, "speech-output", "todo-summary.wav", "Path to the audio file that will store the generated narration")
	cmd.Flags().StringVar(&existingAudio, "existing-audio", "", "Use an existing audio file instead of synthesizing a new narration")
	cmd.Flags().BoolVar(&voice, "voice", true, "Generate speech from the summary and send it as a voice message (disable to send text)")
	cmd.Flags().BoolVar(&telegram, "telegram", true, "Post the generated audio to Telegram")
	cmd.Flags().StringVar(&telegramToken, "telegram-token", "", "Telegram bot token (defaults to TELEGRAM_BOT_TOKEN)")
	cmd.Flags().StringVar(&telegramChat, "telegram-chat-id", "", "Telegram chat or channel ID where the audio should be posted (defaults to TELEGRAM_CHAT_ID)")
	cmd.Flags().StringVar(&caption, "caption", "", "Optional caption to include with the Telegram voice message")

	return cmd
}
