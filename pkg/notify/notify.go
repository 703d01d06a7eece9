// Package notify delivers summaries and podcasts to Telegram.
package notify

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/fcrescio/minerva/pkg/media"
)

const (
	maxCaptionLength = 1024
	maxTextLength    = 4096
)

// PostSummary uploads an audio file to a Telegram chat as a voice note,
// converting it to OGG/Opus first when needed.
func PostSummary(audioPath, token, chatID, caption string) error {
	logrus.WithFields(logrus.Fields{
		"audio": audioPath,
		"chat":  chatID,
	}).Debug("Posting audio to Telegram")

	if _, err := os.Stat(audioPath); err != nil {
		return fmt.Errorf("audio file not found: %s", audioPath)
	}

	captionText := caption
	if captionText == "" {
		captionText = "Todo summary"
	}
	captionText = TruncateCaption(captionText)

	voicePath, err := media.ConvertToOggOpus(audioPath)
	if err != nil {
		return fmt.Errorf("preparing audio for Telegram voice message: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("creating Telegram bot client: %w", err)
	}

	voice := tgbotapi.NewVoice(0, tgbotapi.FilePath(voicePath))
	voice.Caption = captionText
	applyChatTarget(&voice.BaseChat, chatID)

	if _, err := bot.Send(voice); err != nil {
		return fmt.Errorf("sending voice message to Telegram: %w", err)
	}
	logrus.Debug("Telegram upload completed")
	return nil
}

// PostText sends a plain text message to a Telegram chat.
func PostText(message, token, chatID string) error {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return fmt.Errorf("telegram message must not be empty")
	}
	trimmed = truncateRunes(trimmed, maxTextLength)

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("creating Telegram bot client: %w", err)
	}

	msg := tgbotapi.NewMessage(0, trimmed)
	applyChatTarget(&msg.BaseChat, chatID)

	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("sending text message to Telegram: %w", err)
	}
	logrus.Debug("Telegram text message sent")
	return nil
}

// applyChatTarget routes a message to a numeric chat ID or an @channel name.
func applyChatTarget(chat *tgbotapi.BaseChat, chatID string) {
	if numeric, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		chat.ChatID = numeric
		return
	}
	if !strings.HasPrefix(chatID, "@") {
		chatID = "@" + chatID
	}
	chat.ChannelUsername = chatID
}

// ResolveChatIDs flattens flag values into clean chat IDs, splitting
// comma-separated entries and dropping blanks.
func ResolveChatIDs(rawValues []string) []string {
	var chatIDs []string
	for _, raw := range rawValues {
		for _, value := range strings.Split(raw, ",") {
			if chatID := strings.TrimSpace(value); chatID != "" {
				chatIDs = append(chatIDs, chatID)
			}
		}
	}
	return chatIDs
}

// TruncateCaption shortens a caption to the Telegram limit.
func TruncateCaption(caption string) string {
	return truncateRunes(caption, maxCaptionLength)
}

// truncateRunes bounds text to max characters. Telegram limits count
// characters, not bytes, and summaries are routinely non-ASCII, so slicing
// must never split a rune.
func truncateRunes(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-3]) + "..."
}
