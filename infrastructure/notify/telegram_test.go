package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"ipo_automation/domain/entities"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	mu           sync.Mutex
	requests     []map[string]interface{}
	paths        []string
	rejectMarkup bool
	rejectToken  bool
}

func (b *fakeBot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paths = append(b.paths, r.URL.Path)

	if b.rejectToken {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"description":"Unauthorized"}`))
		return
	}

	if strings.HasSuffix(r.URL.Path, "/getMe") {
		w.Write([]byte(`{"ok":true,"result":{"id":1,"username":"ipo_bot"}}`))
		return
	}

	var payload map[string]interface{}
	data, _ := io.ReadAll(r.Body)
	json.Unmarshal(data, &payload)
	b.requests = append(b.requests, payload)

	if _, markdown := payload["parse_mode"]; markdown && b.rejectMarkup {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: can't parse entities"}`))
		return
	}
	w.Write([]byte(`{"ok":true,"result":{}}`))
}

type upperRedactor struct{}

func (upperRedactor) Redact(s string) string {
	return strings.ReplaceAll(s, "hunter2", "****")
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestNotifier(t *testing.T, bot *fakeBot) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(bot)
	t.Cleanup(srv.Close)

	n, err := NewTelegramNotifier(context.Background(), TelegramConfig{
		Token:   "123:abc",
		ChatID:  "42",
		BaseURL: srv.URL,
	}, upperRedactor{}, quietLogger())
	require.NoError(t, err)
	return n
}

func TestTelegramNotify(t *testing.T) {
	bot := &fakeBot{}
	n := newTestNotifier(t, bot)

	err := n.Notify(context.Background(), entities.Notification{
		Kind:    entities.NotifyError,
		Message: "login failed for password hunter2",
	})

	require.NoError(t, err)
	require.Len(t, bot.requests, 1)
	assert.Equal(t, "42", bot.requests[0]["chat_id"])
	assert.Equal(t, "Markdown", bot.requests[0]["parse_mode"])
	assert.Contains(t, bot.requests[0]["text"], "login failed for password ****")
	assert.Equal(t, []string{"/bot123:abc/getMe", "/bot123:abc/sendMessage"}, bot.paths)
}

func TestTelegramRetriesAsPlainText(t *testing.T) {
	bot := &fakeBot{rejectMarkup: true}
	n := newTestNotifier(t, bot)

	err := n.Notify(context.Background(), entities.Notification{Kind: entities.NotifyIPONotFound})

	require.NoError(t, err)
	require.Len(t, bot.requests, 2)
	_, hasMode := bot.requests[1]["parse_mode"]
	assert.False(t, hasMode)
}

func TestTelegramInitFailure(t *testing.T) {
	srv := httptest.NewServer(&fakeBot{rejectToken: true})
	defer srv.Close()

	_, err := NewTelegramNotifier(context.Background(), TelegramConfig{
		Token: "bad", ChatID: "42", BaseURL: srv.URL,
	}, nil, quietLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	_, err = NewTelegramNotifier(context.Background(), TelegramConfig{}, nil, quietLogger())
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	long := strings.Repeat("é", 50)
	out := truncate(long, 30)
	assert.Len(t, []rune(out), 30)
	assert.True(t, strings.HasSuffix(out, "(truncated)"))
}
