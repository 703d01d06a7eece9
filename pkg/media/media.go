// Package media handles speech synthesis through fal.ai and audio
// conversion for Telegram voice notes.
package media

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Endpoint is a package variable so tests can point it at a local server.
var falEndpoint = "https://fal.run/fal-ai/vibevoice/7b"

const (
	synthesisTimeout = 60 * time.Second
	downloadTimeout  = 120 * time.Second
)

// SynthesizeSpeech narrates script through fal.ai and stores the audio at
// outputPath. A missing FAL_KEY is not an error; the pipeline degrades to
// text-only and an empty path is returned.
func SynthesizeSpeech(script, outputPath string) (string, error) {
	log := logrus.WithField("request_id", "req-"+uuid.New().String()[:8])
	log.WithField("characters", len(script)).Debug("Starting speech synthesis")

	apiKey := os.Getenv("FAL_KEY")
	if apiKey == "" {
		log.Debug("FAL_KEY environment variable is missing; skipping speech synthesis")
		fmt.Fprintln(os.Stderr, "FAL_KEY environment variable is not set; skipping speech synthesis.")
		return "", nil
	}

	var payload any
	resp, err := resty.New().
		SetTimeout(synthesisTimeout).
		R().
		SetHeader("Authorization", "Key "+apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"script": script,
			"speakers": []map[string]any{
				{"preset": "Anchen [ZH] (Background Music)"},
			},
			"cfg_scale": 1.3,
		}).
		SetResult(&payload).
		Post(falEndpoint)
	if err != nil {
		return "", fmt.Errorf("speech synthesis request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("speech synthesis failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	urls := ExtractAudioURLs(payload)
	log.WithField("urls", len(urls)).Debug("Extracted audio URLs from synthesis response")
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "Speech synthesis response did not contain audio URLs; skipping speech synthesis.")
		return "", nil
	}

	if err := downloadAudio(urls[0], outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

func downloadAudio(url, outputPath string) error {
	resp, err := resty.New().
		SetTimeout(downloadTimeout).
		R().
		Get(url)
	if err != nil {
		return fmt.Errorf("downloading synthesized audio: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("downloading synthesized audio failed with status %d", resp.StatusCode())
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating audio output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, resp.Body(), 0o644); err != nil {
		return fmt.Errorf("writing synthesized audio: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"path":  outputPath,
		"bytes": len(resp.Body()),
	}).Debug("Audio download completed")
	return nil
}

// ExtractAudioURLs walks a decoded JSON payload and collects every http URL
// found under audio/url keys or nested containers.
func ExtractAudioURLs(payload any) []string {
	var urls []string
	collectAudioURLs(payload, &urls)
	return urls
}

func collectAudioURLs(payload any, urls *[]string) {
	switch value := payload.(type) {
	case map[string]any:
		for _, key := range []string{"audio", "url"} {
			if nested, ok := value[key]; ok {
				collectAudioURLs(nested, urls)
			}
		}
		keys := make([]string, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			switch value[key].(type) {
			case map[string]any, []any:
				collectAudioURLs(value[key], urls)
			}
		}
	case []any:
		for _, item := range value {
			collectAudioURLs(item, urls)
		}
	case string:
		if strings.HasPrefix(value, "http") {
			*urls = append(*urls, value)
		}
	}
}

// ConvertToOggOpus converts an audio file to the OGG/Opus format Telegram
// expects for voice notes. Files already ending in .ogg pass through.
func ConvertToOggOpus(audioPath string) (string, error) {
	if strings.EqualFold(filepath.Ext(audioPath), ".ogg") {
		logrus.WithField("path", audioPath).Debug("Audio already in OGG format")
		return audioPath, nil
	}

	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("ffmpeg is required to convert audio to Telegram voice message format")
	}

	outputPath := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".ogg"
	cmd := exec.Command(ffmpegPath,
		"-y",
		"-i", audioPath,
		"-c:a", "libopus",
		"-b:a", "64k",
		"-ac", "1",
		outputPath,
	)
	logrus.WithFields(logrus.Fields{
		"input":  audioPath,
		"output": outputPath,
	}).Debug("Running ffmpeg conversion")
	if output, err := cmd.CombinedOutput(); err != nil {
		logrus.WithField("output", string(output)).Debug("ffmpeg conversion failed")
		return "", fmt.Errorf("failed to convert audio to OGG/Opus with ffmpeg: %w", err)
	}
	return outputPath, nil
}
