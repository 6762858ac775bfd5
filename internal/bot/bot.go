package bot

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"textsummarizer/internal/assistant"
	"textsummarizer/internal/domain"
	"textsummarizer/internal/ratelimiter"
)

const updateProcessingTimeout = 2 * time.Minute

// Messenger is the part of the Telegram Bot API the bot talks to.
type Messenger interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *tgbot.AnswerCallbackQueryParams) (bool, error)
	SendChatAction(ctx context.Context, params *tgbot.SendChatActionParams) (bool, error)
	GetFile(ctx context.Context, params *tgbot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

type Limiter interface {
	Do(ctx context.Context, chatID int64, job ratelimiter.Job) error
	Stop()
}

type SettingsStore interface {
	GetUserSettingsWithDefault(ctx context.Context, userID int64) (domain.Settings, error)
	UpsertUserSettings(ctx context.Context, settings *domain.Settings) error
}

type Downloader interface {
	Download(ctx context.Context, rawURL string) ([]byte, error)
}

type Bot struct {
	client         *tgbot.Bot
	api            Messenger
	rateLimiter    Limiter
	assistant      *assistant.Assistant
	settings       SettingsStore
	files          Downloader
	allowedUsers   []int64
	maxUploadBytes int64
	menuKeyboard   [][]models.InlineKeyboardButton
	returnKeyboard [][]models.InlineKeyboardButton
	log            *slog.Logger
}

func New(
	token string,
	limiter Limiter,
	a *assistant.Assistant,
	settings SettingsStore,
	files Downloader,
	allowedUsers []int64,
	maxUploadBytes int64,
	log *slog.Logger,
) (*Bot, error) {
	b := newBot(nil, limiter, a, settings, files, allowedUsers, maxUploadBytes, log)

	client, err := tgbot.New(
		strings.TrimSpace(token),
		tgbot.WithDefaultHandler(func(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
			b.handleUpdate(ctx, update)
		}),
	)
	if err != nil {
		b.rateLimiter.Stop()
		return nil, err
	}

	b.client = client
	b.api = client

	return b, nil
}

func newBot(
	api Messenger,
	limiter Limiter,
	a *assistant.Assistant,
	settings SettingsStore,
	files Downloader,
	allowedUsers []int64,
	maxUploadBytes int64,
	log *slog.Logger,
) *Bot {
	return &Bot{
		api:            api,
		rateLimiter:    limiter,
		assistant:      a,
		settings:       settings,
		files:          files,
		allowedUsers:   allowedUsers,
		maxUploadBytes: maxUploadBytes,
		menuKeyboard:   getMenuKeyboard(),
		returnKeyboard: getReturnKeyboard(),
		log:            log,
	}
}

// Start long-polls Telegram until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	b.client.Start(ctx)

	b.log.InfoContext(ctx, "Bot context is done",
		"error", ctx.Err())
}

func (b *Bot) Stop() {
	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *models.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	switch {
	case update.Message != nil:
		message := update.Message
		if message.From == nil {
			return
		}

		userID := message.From.ID
		if !b.userAllowed(userID) {
			b.log.DebugContext(updateCtx, "User is not allowed",
				"userID", userID,
				"chatID", message.Chat.ID,
				"username", message.From.Username,
				"chatType", message.Chat.Type)

			return
		}

		if err := b.handleMessage(updateCtx, message); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle message",
				"error", err,
				"chatID", message.Chat.ID,
				"userID", userID,
				"chatType", message.Chat.Type,
				"messageID", message.ID)
		}

	case update.CallbackQuery != nil:
		callback := update.CallbackQuery
		chatID := callbackChatID(callback)

		if !b.userAllowed(callback.From.ID) {
			b.log.DebugContext(updateCtx, "User is not allowed",
				"userID", callback.From.ID,
				"chatID", chatID,
				"username", callback.From.Username,
				"data", callback.Data)

			return
		}

		if err := b.handleCallbackQuery(updateCtx, callback, chatID); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle callback query",
				"error", err,
				"chatID", chatID,
				"userID", callback.From.ID,
				"data", callback.Data)
		}
	}
}

// An empty allow list lets everyone in.
func (b *Bot) userAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || slices.Contains(b.allowedUsers, userID)
}

func callbackChatID(cb *models.CallbackQuery) int64 {
	switch {
	case cb.Message.Message != nil:
		return cb.Message.Message.Chat.ID
	case cb.Message.InaccessibleMessage != nil:
		return cb.Message.InaccessibleMessage.Chat.ID
	default:
		return cb.From.ID
	}
}
