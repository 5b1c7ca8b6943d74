package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
)

// Bot is the Telegram Bot API client.
type Bot struct {
	token      string
	apiURL     string
	httpClient *http.Client
}

// NewBot creates a new Telegram Bot client with the given token.
func NewBot(token string) *Bot {
	return &Bot{
		token:      token,
		apiURL:     fmt.Sprintf("https://api.telegram.org/bot%s", token),
		httpClient: &http.Client{},
	}
}

// SetAPIURL overrides the default Telegram API URL for testing purposes.
func (b *Bot) SetAPIURL(url string) {
	b.apiURL = url
}

// SetWebhook registers the webhook URL with Telegram. When secretToken is
// non-empty, Telegram echoes it back in the X-Telegram-Bot-Api-Secret-Token
// header of every update, which lets the server reject spoofed requests.
func (b *Bot) SetWebhook(webhookURL, secretToken string) error {
	payload := SetWebhookRequest{URL: webhookURL, SecretToken: secretToken}

	var apiResp APIResponse
	if err := b.post("setWebhook", payload, &apiResp); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram setWebhook failed: %s", apiResp.Description)
	}
	return nil
}

// SendMessage sends a plain text message to a Telegram chat.
func (b *Bot) SendMessage(chatID int64, text string) error {
	return b.send(SendMessageRequest{ChatID: chatID, Text: text})
}

// SendMessageWithMode sends a message with optional parse mode (e.g. "Markdown").
func (b *Bot) SendMessageWithMode(chatID int64, text string, parseMode string) error {
	return b.send(SendMessageRequest{ChatID: chatID, Text: text, ParseMode: parseMode})
}

// SendMessageWithKeyboard sends a message with an inline keyboard attached.
func (b *Bot) SendMessageWithKeyboard(chatID int64, text string, keyboard *InlineKeyboardMarkup) error {
	return b.send(SendMessageRequest{ChatID: chatID, Text: text, ReplyMarkup: keyboard})
}

// AnswerCallbackQuery acknowledges an inline keyboard button press so the
// client stops showing its loading spinner.
func (b *Bot) AnswerCallbackQuery(callbackQueryID string) error {
	var apiResp APIResponse
	if err := b.post("answerCallbackQuery", AnswerCallbackQueryRequest{CallbackQueryID: callbackQueryID}, &apiResp); err != nil {
		return fmt.Errorf("failed to answer callback query: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram answerCallbackQuery failed: %s", apiResp.Description)
	}
	return nil
}

// SendDocument uploads a file (e.g. a CSV export) to a chat via multipart form data.
func (b *Bot) SendDocument(chatID int64, filename string, content []byte, caption string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("failed to write chat_id field: %w", err)
	}
	if caption != "" {
		if err := w.WriteField("caption", caption); err != nil {
			return fmt.Errorf("failed to write caption field: %w", err)
		}
	}
	part, err := w.CreateFormFile("document", filename)
	if err != nil {
		return fmt.Errorf("failed to create document part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("failed to write document content: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/sendDocument", b.apiURL)
	resp, err := b.httpClient.Post(url, w.FormDataContentType(), &buf)
	if err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram sendDocument API error %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

// send posts a sendMessage payload and checks the HTTP status.
func (b *Bot) send(payload SendMessageRequest) error {
	url := fmt.Sprintf("%s/sendMessage", b.apiURL)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	resp, err := b.httpClient.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram sendMessage API error %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

// post marshals payload to the given method and decodes the API envelope.
func (b *Bot) post(method string, payload any, out *APIResponse) error {
	url := fmt.Sprintf("%s/%s", b.apiURL, method)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	resp, err := b.httpClient.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	return nil
}

// DisplayName returns the best human-readable name for a user:
// the handle when present, otherwise the first name.
func DisplayName(u *User) string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}
