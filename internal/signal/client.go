// Package signal adapts a signal-cli-rest-api instance to the bot's
// message channel: poll for new inbound texts, send outbound texts.
// Delivery is at-least-once; duplicates are not filtered here.
package signal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client talks to the REST API of a registered Signal number.
type Client struct {
	httpClient *http.Client
	baseURL    string
	number     string
	recipient  string
}

func NewClient(baseURL, number, recipient string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		number:     number,
		recipient:  recipient,
	}
}

type envelope struct {
	Envelope struct {
		DataMessage struct {
			Message string `json:"message"`
		} `json:"dataMessage"`
		SyncMessage struct {
			SentMessage struct {
				Message string `json:"message"`
			} `json:"sentMessage"`
		} `json:"syncMessage"`
	} `json:"envelope"`
}

// ReceiveNew fetches the messages queued since the previous call.
// Texts sent from the owner's own device arrive as sync messages
// rather than data messages, so both envelope shapes are checked. A
// malformed response body counts as "no messages this cycle".
func (c *Client) ReceiveNew(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/v1/receive/%s", c.baseURL, c.number)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build receive request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("receive messages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("receive messages: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read receive body: %w", err)
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var envelopes []envelope
	if err := json.Unmarshal(body, &envelopes); err != nil {
		slog.WarnContext(ctx, "Discarding malformed receive payload", "error", err)
		return nil, nil
	}

	var texts []string
	for _, e := range envelopes {
		text := e.Envelope.DataMessage.Message
		if text == "" {
			text = e.Envelope.SyncMessage.SentMessage.Message
		}
		if text != "" {
			texts = append(texts, text)
		}
	}
	return texts, nil
}

type sendRequest struct {
	Message    string   `json:"message"`
	Number     string   `json:"number"`
	Recipients []string `json:"recipients"`
}

// Send delivers one outbound text. Best-effort: callers log failures
// and move on, there is no retry here.
func (c *Client) Send(ctx context.Context, text string) error {
	payload, err := json.Marshal(sendRequest{
		Message:    text,
		Number:     c.number,
		Recipients: []string{c.recipient},
	})
	if err != nil {
		return fmt.Errorf("marshal send payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("send message: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
