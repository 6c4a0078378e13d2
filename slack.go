package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type slackPayload struct {
	Text    string `json:"text"`
	Channel string `json:"channel,omitempty"`
}

// SlackNotifier posts messages to a Slack incoming webhook.
type SlackNotifier struct {
	WebhookURL string
	Channel    string
	Client     *http.Client
}

func NewSlackNotifier(appConfig AppConfig) *SlackNotifier {
	return &SlackNotifier{
		WebhookURL: appConfig.SlackWebhookURL,
		Channel:    appConfig.SlackChannel,
		Client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SlackNotifier) Notify(message string) error {
	body, err := json.Marshal(slackPayload{Text: message, Channel: s.Channel})
	if err != nil {
		return err
	}

	resp, err := s.Client.Post(s.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("slack webhook returned %d: %s", resp.StatusCode, detail)
	}

	return nil
}
