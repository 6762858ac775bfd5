package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"textsummarizer/internal/assistant"
	"textsummarizer/internal/domain"
	"textsummarizer/internal/extractor"
	"textsummarizer/internal/markdown"
	"textsummarizer/internal/summarizer"
)

const (
	telegramMessageMaxRunes = 4096
	textPreviewMaxRunes     = 500
)

const welcomeText = `🤖 *Welcome to Text Summarizer\!*

I can help you:

– Keep a text by pasting it into the chat
– Fetch the paragraphs of a web page by sending its URL
– Read a txt, pdf or docx document you upload
– Show metrics of the current text with /text
– Summarize the current text with /summarize
– Choose the provider, model and summary length with /settings
– Start over with /clear`

const helpText = `❔ *How it works*

Send text, a web page URL or a txt / pdf / docx document\. Every new source replaces the current text\.

/text – current text and its metrics
/summarize – summarize the current text
/settings – provider, model and summary length
/clear – forget the current text
/menu – main menu`

const settingsText = `*⚙️ Settings*

Provider: *%s*
Model: *%s*
Summary length: about *%d* words

You can choose different settings below:`

func (b *Bot) handleStartCommand(ctx context.Context, chatID int64) error {
	return b.sendMessageWithKeyboard(ctx, chatID, welcomeText, b.menuKeyboard)
}

func (b *Bot) handleMenuCommand(ctx context.Context, chatID int64) error {
	return b.sendMessageWithKeyboard(ctx, chatID, "❔ *Choose an option:*", b.menuKeyboard)
}

func (b *Bot) handleHelpCommand(ctx context.Context, chatID int64) error {
	return b.sendMessageWithKeyboard(ctx, chatID, helpText, b.menuKeyboard)
}

func (b *Bot) handleSettingsCommand(ctx context.Context, chatID int64, userID int64) error {
	settings, err := b.settings.GetUserSettingsWithDefault(ctx, userID)
	if err != nil {
		errs := []error{fmt.Errorf("get user settings with default: %w", err)}

		sendErr := b.sendMessageWithKeyboard(ctx, chatID, "❌ Failed\\.", b.returnKeyboard)
		if sendErr != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	model := settings.Model
	if model == "" {
		model = "server default"
	}

	if err = b.sendMessageWithKeyboard(
		ctx,
		chatID,
		fmt.Sprintf(settingsText,
			markdown.EscapeV2(settings.Provider.Title()),
			markdown.EscapeV2(model),
			settings.SummaryLength),
		getSettingsKeyboard(settings),
	); err != nil {
		return fmt.Errorf("send message with keyboard: %w", err)
	}

	return nil
}

func (b *Bot) handleTextCommand(ctx context.Context, chatID int64) error {
	metrics, ok := b.assistant.Metrics(chatID)
	if !ok {
		return b.replyFailure(ctx, chatID, assistant.ErrEmptyInput)
	}

	var message strings.Builder
	message.WriteString("📄 *Current text*\n\n")
	message.WriteString(markdown.EscapeV2(markdown.Preview(b.assistant.Text(chatID), textPreviewMaxRunes)))
	message.WriteString("\n\n")
	message.WriteString(formatMetrics(metrics))

	return b.sendMessageWithKeyboard(ctx, chatID, message.String(), b.menuKeyboard)
}

func (b *Bot) handleSummarizeCommand(ctx context.Context, chatID int64, userID int64) error {
	if _, ok := b.assistant.Metrics(chatID); !ok {
		return b.replyFailure(ctx, chatID, assistant.ErrEmptyInput)
	}

	settings, err := b.settings.GetUserSettingsWithDefault(ctx, userID)
	if err != nil {
		b.log.WarnContext(ctx, "Failed to get user settings so defaults are used",
			"error", err,
			"userID", userID)
	}

	var summary string
	err = b.withSpinner(ctx, chatID, func() error {
		var summarizeErr error
		summary, summarizeErr = b.assistant.Summarize(ctx, chatID, settings)
		return summarizeErr
	})
	if err != nil {
		return b.replyFailure(ctx, chatID, err)
	}

	settings = settings.Normalize()
	header := fmt.Sprintf("📝 *Summary* \\(%s",
		markdown.EscapeV2(settings.Provider.Title()))
	if settings.Model != "" {
		header += ", " + markdown.EscapeV2(settings.Model)
	}
	header += fmt.Sprintf(", about %d words\\)\n\n", settings.SummaryLength)

	chunks := splitText(summary, telegramMessageMaxRunes-utf8.RuneCountInString(header))

	var errs []error
	for i, chunk := range chunks {
		text := markdown.EscapeV2(chunk)
		if i == 0 {
			text = header + text
		}

		keyboard := b.returnKeyboard
		if i == len(chunks)-1 {
			keyboard = b.menuKeyboard
		}

		if err = b.sendMessageWithKeyboard(ctx, chatID, text, keyboard); err != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", err))
		}
	}

	return errors.Join(errs...)
}

// handleClearCommand forgets the text of the chat and shows the start screen
// again.
func (b *Bot) handleClearCommand(ctx context.Context, chatID int64) error {
	b.assistant.Clear(chatID)

	if err := b.sendMessageWithKeyboard(ctx, chatID, "🧹 Text is cleared\\.", nil); err != nil {
		return fmt.Errorf("send message with keyboard: %w", err)
	}

	return b.handleStartCommand(ctx, chatID)
}

// replyFailure tells the user what went wrong. Rejected input is answered
// with a warning and is not an error of the bot.
func (b *Bot) replyFailure(ctx context.Context, chatID int64, err error) error {
	text, isWarning := failureText(err)

	sendErr := b.sendMessageWithKeyboard(ctx, chatID, text, b.returnKeyboard)
	if sendErr != nil {
		sendErr = fmt.Errorf("send message with keyboard: %w", sendErr)
	}

	if isWarning {
		b.log.WarnContext(ctx, "User input is rejected",
			"error", err,
			"chatID", chatID)

		return sendErr
	}

	return errors.Join(err, sendErr)
}

func failureText(err error) (string, bool) {
	var (
		fetchErr   *extractor.FetchError
		backendErr *summarizer.BackendError
	)

	switch {
	case errors.Is(err, assistant.ErrEmptyInput):
		return "⚠️ There is no text yet\\. Send text, a web page URL or a document first\\.", true
	case errors.Is(err, extractor.ErrNoContent):
		return "⚠️ No readable text was found\\.", true
	case errors.Is(err, extractor.ErrUnsupportedExtension):
		return "⚠️ Unsupported file type\\. Send a txt, pdf or docx document\\.", true
	case errors.Is(err, extractor.ErrInvalidEncoding):
		return "⚠️ The text file is not valid UTF\\-8\\.", true
	case errors.Is(err, extractor.ErrTooLarge):
		return "⚠️ The file is too large\\.", true
	case errors.As(err, &fetchErr):
		return "❌ Failed to fetch the web page\\.", false
	case errors.As(err, &backendErr):
		return "❌ Failed to summarize\\.", false
	default:
		return "❌ Failed\\.", false
	}
}

func formatMetrics(m domain.Metrics) string {
	return fmt.Sprintf("📊 *Metrics*\n\nCharacters: %d\nWords: %d\nSentences: %d\nReading time: %s min",
		m.Chars,
		m.Words,
		m.Sentences,
		markdown.EscapeV2(strconv.FormatFloat(m.ReadingMin, 'f', -1, 64)))
}

// splitText cuts text into chunks that take at most maxRunes characters once
// escaped for MarkdownV2, preferring to cut at a line break and then at a
// space.
func splitText(text string, maxRunes int) []string {
	runes := []rune(strings.TrimSpace(text))

	var chunks []string
	for {
		limit := escapedPrefixLen(runes, maxRunes)
		if limit == len(runes) {
			break
		}

		cut := lastIndexOf(runes[:limit], '\n')
		if cut <= 0 {
			cut = lastIndexOf(runes[:limit], ' ')
		}
		if cut <= 0 {
			cut = limit
		}

		if chunk := strings.TrimSpace(string(runes[:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = []rune(strings.TrimSpace(string(runes[cut:])))
	}

	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}

	return chunks
}

// escapedPrefixLen returns how many leading runes fit into maxRunes escaped
// characters. At least one rune is returned so that splitting always
// advances.
func escapedPrefixLen(runes []rune, maxRunes int) int {
	width := 0
	for i, r := range runes {
		width += markdown.EscapedRuneLenV2(r)
		if width > maxRunes {
			return max(i, 1)
		}
	}

	return len(runes)
}

func lastIndexOf(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}
