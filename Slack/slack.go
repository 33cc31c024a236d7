package Slack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// SlackClient holds the Slack bot token and base URL
type SlackClient struct {
	Token   string
	BaseURL string
	Channel string
}

// SlackMessage represents a message payload
type SlackMessage struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
	Parse   string `json:"parse,omitempty"`
}

// SlackResponse represents the API response
type SlackResponse struct {
	OK      bool   `json:"ok"`
	Channel string `json:"channel,omitempty"`
	TS      string `json:"ts,omitempty"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// NewClientFromEnv reads SLACK_BOT_TOKEN and SLACK_OPS_CHANNEL. Returns nil
// when Slack is not configured.
func NewClientFromEnv() *SlackClient {
	token := os.Getenv("SLACK_BOT_TOKEN")
	channel := os.Getenv("SLACK_OPS_CHANNEL")
	if token == "" || channel == "" {
		return nil
	}
	return &SlackClient{
		Token:   token,
		BaseURL: "https://slack.com/api",
		Channel: channel,
	}
}

// PostMessage sends a text message to the client's ops channel.
func (s *SlackClient) PostMessage(text string) error {
	payload := SlackMessage{
		Channel: s.Channel,
		Text:    text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.BaseURL+"/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.Token)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var slackResp SlackResponse
	if err := json.Unmarshal(raw, &slackResp); err != nil {
		return err
	}
	if !slackResp.OK {
		return fmt.Errorf("slack API error: %s", slackResp.Error)
	}
	return nil
}

// NotifyOps posts to the ops channel in the background; failures are logged.
func (s *SlackClient) NotifyOps(format string, args ...interface{}) {
	if s == nil {
		return
	}
	go func() {
		if err := s.PostMessage(fmt.Sprintf(format, args...)); err != nil {
			log.Printf("Slack notify failed: %v", err)
		}
	}()
}
