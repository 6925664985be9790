package sink

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"golang.org/x/time/rate"

	"rentdesk/internal/logging"
	"rentdesk/internal/utils"
)

// Telegram delivers notifications to a registered back-office chat. The
// permission handshake is a probe message: granted once the chat accepts it,
// denied if the chat is unreachable.
type Telegram struct {
	chatID  int64
	limiter *rate.Limiter
	logger  *logging.Logger
	b       *bot.Bot

	mu    sync.Mutex
	state Permission
}

// NewTelegram builds a Telegram sink. perSecond bounds outgoing messages to
// stay inside the Bot API limits.
func NewTelegram(token string, chatID int64, perSecond int, logger *logging.Logger) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram sink requires bot token and chat id")
	}
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	return &Telegram{
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(float64(perSecond)), perSecond),
		logger:  logger,
		b:       b,
		state:   PermissionDefault,
	}, nil
}

func (t *Telegram) Permission() Permission {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// RequestPermission sends a one-time probe to the registered chat.
func (t *Telegram) RequestPermission(ctx context.Context) (Permission, error) {
	t.mu.Lock()
	if t.state != PermissionDefault {
		state := t.state
		t.mu.Unlock()
		return state, nil
	}
	t.mu.Unlock()

	_, err := t.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   "Rentdesk alerts enabled for this chat.",
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.state = PermissionDenied
		return t.state, fmt.Errorf("telegram chat %d unreachable: %w", t.chatID, err)
	}
	t.state = PermissionGranted
	return t.state, nil
}

// Show sends one notification to the chat, rate limited and retried.
func (t *Telegram) Show(ctx context.Context, n Note) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit wait: %w", err)
	}

	text := fmt.Sprintf("*%s*\n%s", escapeMarkdown(n.Title), escapeMarkdown(n.Body))
	if n.Action != nil {
		text += fmt.Sprintf("\n\n_%s #%d_", escapeMarkdown(n.Action.Section), n.Action.RecordID)
	}

	return utils.Retry(ctx, t.logger, 3, time.Second, func() error {
		_, err := t.b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    t.chatID,
			Text:      text,
			ParseMode: "Markdown",
		})
		if err != nil {
			return fmt.Errorf("failed to send Telegram message to chat_id %d: %w", t.chatID, err)
		}
		return nil
	})
}

// Tenant names and free-form bodies can carry characters the legacy Markdown
// parse mode treats as formatting. Escape them so the Bot API never rejects
// the message.
var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
