package telegram

import (
	"github.com/gin-gonic/gin"

	"support-logbook/internal/logbook"
	"support-logbook/internal/wizard"
	"support-logbook/pkg/datemath"
	pkgLog "support-logbook/pkg/log"
	pkgTelegram "support-logbook/pkg/telegram"
)

// Handler is the interface for the Telegram delivery handler.
type Handler interface {
	HandleWebhook(c *gin.Context)
}

type handler struct {
	l      pkgLog.Logger
	uc     logbook.UseCase
	wizard *wizard.Wizard
	bot    *pkgTelegram.Bot
	dates  *datemath.Parser
}

// New creates a new Telegram delivery handler.
func New(
	l pkgLog.Logger,
	uc logbook.UseCase,
	wiz *wizard.Wizard,
	bot *pkgTelegram.Bot,
	dates *datemath.Parser,
) Handler {
	return &handler{
		l:      l,
		uc:     uc,
		wizard: wiz,
		bot:    bot,
		dates:  dates,
	}
}
