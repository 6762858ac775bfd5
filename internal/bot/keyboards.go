package bot

import (
	"context"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"textsummarizer/internal/domain"
)

const (
	callbackMenu          = "menu"
	callbackMenuSummarize = "menu_summarize"
	callbackMenuText      = "menu_text"
	callbackMenuSettings  = "menu_settings"
	callbackMenuClear     = "menu_clear"

	settingsProviderCallbackPrefix = "settings_provider_"
	settingsModelCallbackPrefix    = "settings_model_"
	settingsLengthCallbackPrefix   = "settings_length_"

	settingsModelKeyboardRowSize  = 2
	settingsLengthKeyboardRowSize = 5
	selectedMark                  = "✅ "
)

func (b *Bot) sendMessageWithKeyboard(
	ctx context.Context,
	chatID int64,
	text string,
	keyboard [][]models.InlineKeyboardButton,
) error {
	normalizedText := strings.ToValidUTF8(text, "?")
	if normalizedText != text {
		b.log.WarnContext(ctx, "Message text had invalid UTF-8 and was normalized",
			"chatID", chatID,
			"originalLen", len(text),
			"normalizedLen", len(normalizedText))
	}

	params := &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   normalizedText,
		// See https://core.telegram.org/bots/api#markdownv2-style.
		ParseMode:          models.ParseModeMarkdown,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: tgbot.True()},
	}
	if len(keyboard) > 0 {
		params.ReplyMarkup = &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
	}

	return b.rateLimiter.Do(ctx, chatID, func(ctx context.Context) error {
		_, err := b.api.SendMessage(ctx, params)
		return err
	})
}

func button(text string, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: data}
}

func getReturnKeyboard() [][]models.InlineKeyboardButton {
	return [][]models.InlineKeyboardButton{
		{button("⬅️ Return to menu", callbackMenu)},
	}
}

func getMenuKeyboard() [][]models.InlineKeyboardButton {
	return [][]models.InlineKeyboardButton{
		{
			button("📝 Summarize", callbackMenuSummarize),
			button("📊 Metrics", callbackMenuText),
		},
		{
			button("⚙️ Settings", callbackMenuSettings),
			button("🧹 Clear", callbackMenuClear),
		},
	}
}

// getSettingsKeyboard renders the choices for settings, marking the current
// provider, model and length.
func getSettingsKeyboard(settings domain.Settings) [][]models.InlineKeyboardButton {
	var keyboard [][]models.InlineKeyboardButton

	var providerRow []models.InlineKeyboardButton
	for _, p := range domain.Providers() {
		providerRow = append(providerRow, button(
			markSelected(p.Title(), p == settings.Provider),
			settingsProviderCallbackPrefix+string(p),
		))
	}
	keyboard = append(keyboard, providerRow)

	modelNames := settings.Provider.Models()
	for i := 0; i < len(modelNames); i += settingsModelKeyboardRowSize {
		var row []models.InlineKeyboardButton

		for j := i; j < i+settingsModelKeyboardRowSize && j < len(modelNames); j++ {
			row = append(row, button(
				markSelected(modelNames[j], modelNames[j] == settings.Model),
				settingsModelCallbackPrefix+strconv.Itoa(j),
			))
		}

		keyboard = append(keyboard, row)
	}

	lengths := domain.SummaryLengths()
	for i := 0; i < len(lengths); i += settingsLengthKeyboardRowSize {
		var row []models.InlineKeyboardButton

		for j := i; j < i+settingsLengthKeyboardRowSize && j < len(lengths); j++ {
			length := strconv.Itoa(lengths[j])
			row = append(row, button(
				markSelected(length, lengths[j] == settings.SummaryLength),
				settingsLengthCallbackPrefix+length,
			))
		}

		keyboard = append(keyboard, row)
	}

	return append(keyboard, getReturnKeyboard()...)
}

func markSelected(text string, selected bool) string {
	if selected {
		return selectedMark + text
	}
	return text
}
