package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"textsummarizer/internal/domain"
)

var errInvalidCallbackData = errors.New("invalid callback data")

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *models.CallbackQuery, chatID int64) error {
	data := strings.TrimSpace(callback.Data)
	userID := callback.From.ID

	switch data {
	case callbackMenu:
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleMenuCommand(ctx, chatID)
		})
	case callbackMenuSummarize:
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleSummarizeCommand(ctx, chatID, userID)
		})
	case callbackMenuText:
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleTextCommand(ctx, chatID)
		})
	case callbackMenuSettings:
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleSettingsCommand(ctx, chatID, userID)
		})
	case callbackMenuClear:
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleClearCommand(ctx, chatID)
		})
	}

	if value, ok := strings.CutPrefix(data, settingsProviderCallbackPrefix); ok {
		return b.handleSettingsQuery(ctx, callback, chatID, func(s *domain.Settings) error {
			provider, ok := domain.ParseProvider(value)
			if !ok {
				return fmt.Errorf("%w: provider %q", errInvalidCallbackData, value)
			}

			s.Provider = provider
			s.Model = provider.DefaultModel()

			return nil
		})
	}

	if value, ok := strings.CutPrefix(data, settingsModelCallbackPrefix); ok {
		return b.handleSettingsQuery(ctx, callback, chatID, func(s *domain.Settings) error {
			index, err := strconv.Atoi(value)
			modelNames := s.Provider.Models()
			if err != nil || index < 0 || index >= len(modelNames) {
				return fmt.Errorf("%w: model index %q", errInvalidCallbackData, value)
			}

			s.Model = modelNames[index]

			return nil
		})
	}

	if value, ok := strings.CutPrefix(data, settingsLengthCallbackPrefix); ok {
		return b.handleSettingsQuery(ctx, callback, chatID, func(s *domain.Settings) error {
			length, err := strconv.Atoi(value)
			if err != nil || !domain.ValidSummaryLength(length) {
				return fmt.Errorf("%w: summary length %q", errInvalidCallbackData, value)
			}

			s.SummaryLength = length

			return nil
		})
	}

	return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("%w: %q", errInvalidCallbackData, data))
}

// handleSettingsQuery applies update to the stored settings of the user and
// shows the settings again.
func (b *Bot) handleSettingsQuery(
	ctx context.Context,
	callback *models.CallbackQuery,
	chatID int64,
	update func(s *domain.Settings) error,
) error {
	userID := callback.From.ID

	settings, err := b.settings.GetUserSettingsWithDefault(ctx, userID)
	if err != nil {
		return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("get user settings with default: %w", err))
	}

	settings.UserID = userID
	if err = update(&settings); err != nil {
		return b.errorCallbackAnswer(ctx, callback, err)
	}

	if err = b.settings.UpsertUserSettings(ctx, &settings); err != nil {
		return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("upsert user settings: %w", err))
	}

	if err = b.answerCallback(ctx, callback, "✅ Settings are updated."); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}

	return b.handleSettingsCommand(ctx, chatID, userID)
}

func (b *Bot) withEmptyCallbackAnswer(
	ctx context.Context,
	callback *models.CallbackQuery,
	fn func() error,
) error {
	var errs []error

	if err := b.answerCallback(ctx, callback, ""); err != nil {
		errs = append(errs, fmt.Errorf("answer callback query: %w", err))
	}

	if err := fn(); err != nil {
		errs = append(errs, fmt.Errorf("call fn: %w", err))
	}

	return errors.Join(errs...)
}

func (b *Bot) errorCallbackAnswer(
	ctx context.Context,
	callback *models.CallbackQuery,
	err error,
) error {
	if sendErr := b.answerCallback(ctx, callback, "❌ Failed."); sendErr != nil {
		return errors.Join(err, fmt.Errorf("answer callback query: %w", sendErr))
	}
	return err
}

// Callback answers are not chat messages and skip the rate limiter.
func (b *Bot) answerCallback(ctx context.Context, callback *models.CallbackQuery, text string) error {
	_, err := b.api.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: callback.ID,
		Text:            text,
	})
	return err
}
