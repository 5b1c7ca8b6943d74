package telegram_test

import (
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"support-logbook/pkg/telegram"
)

// newFakeAPI spins up a fake Telegram API server capturing request bodies per method.
func newFakeAPI(t *testing.T, status int, reply string) (*telegram.Bot, *map[string][]byte, *httptest.Server) {
	t.Helper()

	captured := map[string][]byte{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		parts := strings.Split(r.URL.Path, "/")
		captured[parts[len(parts)-1]] = body
		w.WriteHeader(status)
		w.Write([]byte(reply))
	}))

	bot := telegram.NewBot("test-token")
	bot.SetAPIURL(srv.URL)
	return bot, &captured, srv
}

func TestSendMessage(t *testing.T) {
	bot, captured, srv := newFakeAPI(t, http.StatusOK, `{"ok": true}`)
	defer srv.Close()

	if err := bot.SendMessage(42, "hello"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	var req telegram.SendMessageRequest
	if err := json.Unmarshal((*captured)["sendMessage"], &req); err != nil {
		t.Fatalf("failed to decode captured payload: %v", err)
	}
	if req.ChatID != 42 || req.Text != "hello" {
		t.Errorf("unexpected payload: %+v", req)
	}
	if req.ReplyMarkup != nil {
		t.Errorf("expected no reply markup, got %+v", req.ReplyMarkup)
	}
}

func TestSendMessageWithKeyboard(t *testing.T) {
	bot, captured, srv := newFakeAPI(t, http.StatusOK, `{"ok": true}`)
	defer srv.Close()

	kb := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: "A", CallbackData: "a"}, {Text: "B", CallbackData: "b"}},
		},
	}
	if err := bot.SendMessageWithKeyboard(7, "pick one", kb); err != nil {
		t.Fatalf("SendMessageWithKeyboard failed: %v", err)
	}

	var req telegram.SendMessageRequest
	json.Unmarshal((*captured)["sendMessage"], &req)
	if req.ReplyMarkup == nil || len(req.ReplyMarkup.InlineKeyboard) != 1 {
		t.Fatalf("keyboard missing from payload: %+v", req)
	}
	if req.ReplyMarkup.InlineKeyboard[0][1].CallbackData != "b" {
		t.Errorf("unexpected keyboard: %+v", req.ReplyMarkup)
	}
}

func TestSendMessageAPIError(t *testing.T) {
	bot, _, srv := newFakeAPI(t, http.StatusBadRequest, `{"ok": false, "description": "chat not found"}`)
	defer srv.Close()

	err := bot.SendMessage(42, "hello")
	if err == nil {
		t.Fatalf("expected error on non-200 response")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("error should carry API body, got: %v", err)
	}
}

func TestSetWebhookSecretToken(t *testing.T) {
	bot, captured, srv := newFakeAPI(t, http.StatusOK, `{"ok": true}`)
	defer srv.Close()

	if err := bot.SetWebhook("https://example.com/webhook/telegram", "s3cret"); err != nil {
		t.Fatalf("SetWebhook failed: %v", err)
	}

	var req telegram.SetWebhookRequest
	json.Unmarshal((*captured)["setWebhook"], &req)
	if req.URL != "https://example.com/webhook/telegram" || req.SecretToken != "s3cret" {
		t.Errorf("unexpected setWebhook payload: %+v", req)
	}
}

func TestAnswerCallbackQuery(t *testing.T) {
	bot, captured, srv := newFakeAPI(t, http.StatusOK, `{"ok": true}`)
	defer srv.Close()

	if err := bot.AnswerCallbackQuery("cb-1"); err != nil {
		t.Fatalf("AnswerCallbackQuery failed: %v", err)
	}

	var req telegram.AnswerCallbackQueryRequest
	json.Unmarshal((*captured)["answerCallbackQuery"], &req)
	if req.CallbackQueryID != "cb-1" {
		t.Errorf("unexpected payload: %+v", req)
	}
}

func TestSendDocument(t *testing.T) {
	var contentType string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	bot := telegram.NewBot("test-token")
	bot.SetAPIURL(srv.URL)

	if err := bot.SendDocument(9, "export.csv", []byte("a,b\n1,2\n"), "your export"); err != nil {
		t.Fatalf("SendDocument failed: %v", err)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("expected multipart/form-data, got %q (%v)", contentType, err)
	}

	reader := multipart.NewReader(strings.NewReader(string(body)), params["boundary"])
	form, err := reader.ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("failed to parse multipart body: %v", err)
	}
	if got := form.Value["chat_id"]; len(got) != 1 || got[0] != "9" {
		t.Errorf("chat_id = %v, want [9]", got)
	}
	if got := form.Value["caption"]; len(got) != 1 || got[0] != "your export" {
		t.Errorf("caption = %v", got)
	}
	files := form.File["document"]
	if len(files) != 1 || files[0].Filename != "export.csv" {
		t.Fatalf("document part missing or misnamed: %+v", files)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		user *telegram.User
		want string
	}{
		{&telegram.User{Username: "ana_dev", FirstName: "Ana"}, "ana_dev"},
		{&telegram.User{FirstName: "Ana"}, "Ana"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := telegram.DisplayName(tt.user); got != tt.want {
			t.Errorf("DisplayName(%+v) = %q, want %q", tt.user, got, tt.want)
		}
	}
}
