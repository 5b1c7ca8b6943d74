package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"support-logbook/internal/logbook"
	"support-logbook/internal/model"
	"support-logbook/internal/wizard"
	pkgResponse "support-logbook/pkg/response"
	pkgTelegram "support-logbook/pkg/telegram"
)

const (
	msgWelcome = "👋 Hi, I'm the support logbook bot.\n\n" +
		"Send /task to record an activity, /summary to see your totals or /export for a CSV of your entries."
	msgHelp = "Commands:\n" +
		"/task — record a new activity\n" +
		"/cancel — discard the entry in progress\n" +
		"/summary [today|YYYY-MM-DD] — your totals\n" +
		"/summary_all [today|YYYY-MM-DD] — everyone's totals\n" +
		"/export [today|YYYY-MM-DD] — your entries as CSV\n" +
		"/export_all [today|YYYY-MM-DD] — everyone's entries as CSV"
	msgBadDate      = "📅 I couldn't read that date. Use YYYY-MM-DD or \"today\"."
	msgStoreFailure = "⚠️ Something went wrong saving or reading the logbook. Please try again."
	msgNothingToDo  = "There is no entry in progress. Send /task to start one."
)

// HandleWebhook is the Gin handler for incoming Telegram webhook updates.
// It responds with HTTP 200 immediately and processes the update in a
// background goroutine so slow store calls never trip Telegram's webhook
// timeout.
func (h *handler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	var update pkgTelegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to parse update: %v", err)
		pkgResponse.Error(c, err)
		return
	}

	// Ignore update kinds this bot never produces (polls, edits, etc.).
	if update.Message == nil && update.CallbackQuery == nil {
		pkgResponse.OK(c, map[string]string{"status": "ignored"})
		return
	}
	// Message is optional on callback queries (absent for inaccessible or
	// too-old messages); without it there is no chat to reply into.
	if update.CallbackQuery != nil && update.CallbackQuery.Message == nil {
		pkgResponse.OK(c, map[string]string{"status": "ignored"})
		return
	}

	// Snapshot before spawning the goroutine to avoid races on gin context.
	msg := update.Message
	callback := update.CallbackQuery

	go func() {
		bgCtx := context.Background()
		var err error
		var chatID int64
		switch {
		case callback != nil:
			chatID = callback.Message.Chat.ID
			err = h.processCallback(bgCtx, callback)
		default:
			chatID = msg.Chat.ID
			err = h.processMessage(bgCtx, msg)
		}
		if err != nil {
			h.l.Errorf(bgCtx, "telegram handler: background processing failed: %v", err)
			_ = h.bot.SendMessage(chatID, msgStoreFailure)
		}
	}()

	pkgResponse.OK(c, map[string]string{"status": "accepted"})
}

// processCallback handles an inline keyboard press (category selection).
func (h *handler) processCallback(ctx context.Context, cb *pkgTelegram.CallbackQuery) error {
	if err := h.bot.AnswerCallbackQuery(cb.ID); err != nil {
		h.l.Warnf(ctx, "telegram handler: failed to answer callback query: %v", err)
	}

	chatID := cb.Message.Chat.ID
	reply, err := h.wizard.HandleCategory(ctx, chatID, cb.Data)
	if errors.Is(err, wizard.ErrNoSession) {
		return h.bot.SendMessage(chatID, reply.Text)
	}
	if err != nil {
		return err
	}
	return h.sendReply(chatID, reply)
}

// processMessage handles one text message: commands first, otherwise the
// text feeds the entry dialogue.
func (h *handler) processMessage(ctx context.Context, msg *pkgTelegram.Message) error {
	if msg.Text == "" {
		return nil
	}

	chatID := msg.Chat.ID
	sc := scopeFrom(msg.From)

	fields := strings.Fields(msg.Text)
	command := fields[0]
	if i := strings.Index(command, "@"); i >= 0 {
		// Commands in group chats arrive as /summary@BotName.
		command = command[:i]
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch command {
	case "/start":
		return h.bot.SendMessage(chatID, msgWelcome)
	case "/help":
		return h.bot.SendMessage(chatID, msgHelp)
	case "/task":
		return h.sendReply(chatID, h.wizard.Start(chatID))
	case "/cancel":
		return h.sendReply(chatID, h.wizard.Cancel(chatID))
	case "/summary":
		return h.sendSummary(ctx, chatID, sc, arg, false)
	case "/summary_all":
		return h.sendSummary(ctx, chatID, sc, arg, true)
	case "/export":
		return h.sendExport(ctx, chatID, sc, arg, false)
	case "/export_all":
		return h.sendExport(ctx, chatID, sc, arg, true)
	}

	reply, _, err := h.wizard.HandleText(ctx, chatID, sc, msg.Text)
	if errors.Is(err, wizard.ErrNoSession) {
		return h.bot.SendMessage(chatID, msgNothingToDo)
	}
	if err != nil {
		// Store failure: the wizard kept the session on the duration step,
		// so the user retries instead of being advanced past a lost record.
		return err
	}
	return h.sendReply(chatID, reply)
}

// sendSummary runs the summary operation and relays the rendered text.
func (h *handler) sendSummary(ctx context.Context, chatID int64, sc model.Scope, arg string, allUsers bool) error {
	input, ok, err := h.reportInput(chatID, arg, allUsers)
	if !ok {
		return err
	}

	text, err := h.uc.Summary(ctx, sc, input)
	if err != nil {
		return err
	}
	return h.bot.SendMessage(chatID, text)
}

// sendExport runs the export operation and uploads the CSV.
func (h *handler) sendExport(ctx context.Context, chatID int64, sc model.Scope, arg string, allUsers bool) error {
	input, ok, err := h.reportInput(chatID, arg, allUsers)
	if !ok {
		return err
	}

	out, err := h.uc.Export(ctx, sc, input)
	if err != nil {
		return err
	}
	if out.RecordCount == 0 {
		return h.bot.SendMessage(chatID, "📭 Nothing to export.")
	}

	caption := fmt.Sprintf("📎 %d entries", out.RecordCount)
	return h.bot.SendDocument(chatID, out.Filename, out.Content, caption)
}

// reportInput parses the optional date argument of a report command.
// A malformed date sends the format error to the user and reports ok=false
// so no query is executed.
func (h *handler) reportInput(chatID int64, arg string, allUsers bool) (logbook.ReportInput, bool, error) {
	input := logbook.ReportInput{AllUsers: allUsers}
	if arg == "" {
		return input, true, nil
	}

	day, err := h.dates.ParseDay(arg, time.Now())
	if err != nil {
		return logbook.ReportInput{}, false, h.bot.SendMessage(chatID, msgBadDate)
	}
	input.Day = &day
	return input, true, nil
}

// sendReply relays a wizard reply, attaching the keyboard when present.
func (h *handler) sendReply(chatID int64, reply wizard.Reply) error {
	if len(reply.Choices) > 0 {
		return h.bot.SendMessageWithKeyboard(chatID, reply.Text, buildKeyboard(reply.Choices))
	}
	return h.bot.SendMessage(chatID, reply.Text)
}

// scopeFrom builds the request scope from the Telegram sender. The author
// prefers the handle and falls back to the first name.
func scopeFrom(u *pkgTelegram.User) model.Scope {
	if u == nil {
		return model.Scope{}
	}
	return model.Scope{
		UserID:   fmt.Sprintf("telegram_%d", u.ID),
		Username: u.Username,
		Author:   pkgTelegram.DisplayName(u),
	}
}
