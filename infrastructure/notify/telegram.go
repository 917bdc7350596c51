package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ipo_automation/domain/entities"
	"ipo_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const (
	telegramAPIBase = "https://api.telegram.org"
	// Telegram rejects messages over 4096 characters
	maxMessageLength = 4000
)

// TelegramConfig configures the bot client
type TelegramConfig struct {
	Token   string
	ChatID  string
	BaseURL string
	Client  *http.Client
}

// TelegramNotifier sends notifications through the Telegram Bot API
type TelegramNotifier struct {
	token    string
	chatID   string
	baseURL  string
	client   *http.Client
	redactor interfaces.Redactor
	logger   logrus.FieldLogger
}

type telegramResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

type botUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// NewTelegramNotifier - creates the bot client and checks the token with getMe
func NewTelegramNotifier(ctx context.Context, cfg TelegramConfig, redactor interfaces.Redactor, logger logrus.FieldLogger) (*TelegramNotifier, error) {
	if cfg.Token == "" || cfg.ChatID == "" {
		return nil, errors.New("telegram token and chat id are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = telegramAPIBase
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 15 * time.Second}
	}

	n := &TelegramNotifier{
		token:    cfg.Token,
		chatID:   cfg.ChatID,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   cfg.Client,
		redactor: redactor,
		logger:   logger,
	}

	var me botUser
	if err := n.call(ctx, "getMe", nil, &me); err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}
	logger.WithField("bot", me.Username).Info("telegram bot ready")
	return n, nil
}

// Notify - formats and sends a notification
func (n *TelegramNotifier) Notify(ctx context.Context, msg entities.Notification) error {
	text := Format(msg)
	if n.redactor != nil {
		text = n.redactor.Redact(text)
	}
	text = truncate(text, maxMessageLength)

	err := n.send(ctx, text, "Markdown")
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.status == http.StatusBadRequest {
		n.logger.WithField("kind", msg.Kind).Warn("telegram Markdown rejected, retrying as plain text")
		err = n.send(ctx, text, "")
	}
	if err != nil {
		return fmt.Errorf("failed to send %s notification: %w", msg.Kind, err)
	}
	n.logger.WithField("kind", msg.Kind).Info("notification sent")
	return nil
}

func (n *TelegramNotifier) send(ctx context.Context, text, parseMode string) error {
	payload := map[string]interface{}{
		"chat_id": n.chatID,
		"text":    text,
	}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}
	return n.call(ctx, "sendMessage", payload, nil)
}

type apiError struct {
	status      int
	description string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("telegram API error: %d %s", e.status, e.description)
}

// call - invokes a Bot API method and decodes its result into out
func (n *TelegramNotifier) call(ctx context.Context, method string, payload interface{}, out interface{}) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", method, err)
		}
		body = bytes.NewReader(data)
	}

	url := fmt.Sprintf("%s/bot%s/%s", n.baseURL, n.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		// the URL carries the token
		return fmt.Errorf("%s request failed: %s", method, strings.ReplaceAll(err.Error(), n.token, "<token>"))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var tr telegramResponse
	if err := json.Unmarshal(raw, &tr); err != nil || resp.StatusCode != http.StatusOK || !tr.OK {
		desc := tr.Description
		if desc == "" {
			desc = strings.TrimSpace(string(raw))
		}
		return &apiError{status: resp.StatusCode, description: desc}
	}

	if out != nil && len(tr.Result) > 0 {
		if err := json.Unmarshal(tr.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

// truncate - shortens text to maxLen characters with a marker
func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	const marker = "\n\n... (truncated)"
	return string(runes[:maxLen-len([]rune(marker))]) + marker
}

var _ interfaces.Notifier = (*TelegramNotifier)(nil)
