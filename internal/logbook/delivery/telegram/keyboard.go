package telegram

import (
	"support-logbook/internal/wizard"
	pkgTelegram "support-logbook/pkg/telegram"
)

// keyboardColumns is how many category buttons share a row.
const keyboardColumns = 2

// buildKeyboard lays wizard choices out as an inline keyboard.
func buildKeyboard(choices []wizard.Choice) *pkgTelegram.InlineKeyboardMarkup {
	if len(choices) == 0 {
		return nil
	}

	var rows [][]pkgTelegram.InlineKeyboardButton
	var row []pkgTelegram.InlineKeyboardButton
	for _, c := range choices {
		row = append(row, pkgTelegram.InlineKeyboardButton{Text: c.Label, CallbackData: c.Data})
		if len(row) == keyboardColumns {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return &pkgTelegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}
