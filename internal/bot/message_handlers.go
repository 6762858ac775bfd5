package bot

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"textsummarizer/internal/assistant"
	"textsummarizer/internal/extractor"
)

const unknownCommandText = `✖️ Unknown command\. See /help\.`

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) error {
	chatID := message.Chat.ID
	userID := message.From.ID

	if message.Document != nil {
		return b.handleDocument(ctx, chatID, message.Document)
	}

	text := strings.TrimSpace(message.Text)

	if command, ok := parseCommand(text); ok {
		switch command {
		case "/start":
			return b.handleStartCommand(ctx, chatID)
		case "/menu":
			return b.handleMenuCommand(ctx, chatID)
		case "/help":
			return b.handleHelpCommand(ctx, chatID)
		case "/settings":
			return b.handleSettingsCommand(ctx, chatID, userID)
		case "/text":
			return b.handleTextCommand(ctx, chatID)
		case "/summarize":
			return b.handleSummarizeCommand(ctx, chatID, userID)
		case "/clear":
			return b.handleClearCommand(ctx, chatID)
		default:
			return b.sendMessageWithKeyboard(ctx, chatID, unknownCommandText, b.menuKeyboard)
		}
	}

	if rawURL, ok := extractor.IsOnlyURL(text); ok {
		return b.handleURL(ctx, chatID, rawURL)
	}

	return b.handleRawText(ctx, chatID, message.Text)
}

// parseCommand returns the command of a "/command@botname args" message.
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}

	command := strings.Fields(text)[0]
	command, _, _ = strings.Cut(command, "@")

	return strings.ToLower(command), true
}

func (b *Bot) handleRawText(ctx context.Context, chatID int64, text string) error {
	if err := b.assistant.SetText(chatID, text); err != nil {
		return b.replyFailure(ctx, chatID, err)
	}

	return b.replyStored(ctx, chatID, "✅ Text is saved\\.")
}

func (b *Bot) handleURL(ctx context.Context, chatID int64, rawURL string) error {
	err := b.withSpinner(ctx, chatID, func() error {
		_, err := b.assistant.FetchURL(ctx, chatID, rawURL)
		return err
	})
	if err != nil {
		return b.replyFailure(ctx, chatID, err)
	}

	return b.replyStored(ctx, chatID, "✅ Web page text is saved\\.")
}

func (b *Bot) handleDocument(ctx context.Context, chatID int64, document *models.Document) error {
	if b.maxUploadBytes > 0 && int64(document.FileSize) > b.maxUploadBytes {
		return b.replyFailure(ctx, chatID,
			fmt.Errorf("%w (size = %d bytes)", extractor.ErrTooLarge, document.FileSize))
	}

	err := b.withSpinner(ctx, chatID, func() error {
		file, err := b.api.GetFile(ctx, &tgbot.GetFileParams{FileID: document.FileID})
		if err != nil {
			return fmt.Errorf("get file: %w", err)
		}

		data, err := b.files.Download(ctx, b.api.FileDownloadLink(file))
		if err != nil {
			return fmt.Errorf("download file: %w", err)
		}

		_, err = b.assistant.UploadFile(ctx, chatID, document.FileName, data)
		return err
	})
	if err != nil {
		return b.replyFailure(ctx, chatID, err)
	}

	return b.replyStored(ctx, chatID, "✅ Document text is saved\\.")
}

func (b *Bot) replyStored(ctx context.Context, chatID int64, header string) error {
	metrics, ok := b.assistant.Metrics(chatID)
	if !ok {
		return b.replyFailure(ctx, chatID, assistant.ErrEmptyInput)
	}

	return b.sendMessageWithKeyboard(ctx, chatID, header+"\n\n"+formatMetrics(metrics), b.menuKeyboard)
}
