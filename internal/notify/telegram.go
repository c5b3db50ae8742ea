// Package notify delivers free-text alerts to Telegram chats.
package notify

import (
	"context"

	"go.uber.org/zap"
	"resty.dev/v3"
)

const defaultBaseURL = "https://api.telegram.org"

// Telegram sends a message to every configured chat, best effort: a failed
// recipient is logged and skipped, delivery to the rest continues, nothing
// is retried and no error reaches the caller.
type Telegram struct {
	client  *resty.Client
	token   string
	chatIDs []string
	baseURL string
	logger  *zap.Logger
}

// Option configures a Telegram dispatcher.
type Option func(*Telegram)

// WithBaseURL overrides the Telegram API origin. Used by tests.
func WithBaseURL(u string) Option {
	return func(t *Telegram) { t.baseURL = u }
}

// NewTelegram returns a dispatcher for the given bot token and chat ids.
// An empty token or an empty chat list is valid: Send becomes a logged no-op
// so that a misconfigured deployment never breaks the scheduler.
func NewTelegram(token string, chatIDs []string, logger *zap.Logger, opts ...Option) *Telegram {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Telegram{
		client:  resty.New(),
		token:   token,
		chatIDs: chatIDs,
		baseURL: defaultBaseURL,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send posts the text to every configured chat.
func (t *Telegram) Send(ctx context.Context, text string) {
	if t.token == "" || len(t.chatIDs) == 0 {
		t.logger.Warn("telegram not configured, skipping alert")
		return
	}
	url := t.baseURL + "/bot" + t.token + "/sendMessage"
	for _, chatID := range t.chatIDs {
		resp, err := t.client.R().
			SetContext(ctx).
			SetFormData(map[string]string{
				"chat_id": chatID,
				"text":    text,
			}).
			Post(url)
		if err != nil {
			t.logger.Error("telegram send failed", zap.String("chat_id", chatID), zap.Error(err))
			continue
		}
		if !resp.IsSuccess() {
			t.logger.Error("telegram send rejected",
				zap.String("chat_id", chatID),
				zap.Int("status", resp.StatusCode()))
			continue
		}
		t.logger.Info("telegram alert sent", zap.String("chat_id", chatID))
	}
}

// Close releases the underlying HTTP client resources.
func (t *Telegram) Close() error {
	return t.client.Close()
}
