package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"sbmn-interviewer/internal/history"
	"sbmn-interviewer/internal/interview"
)

const (
	resetCmd = "reset_interview"

	// Telegram rejects messages longer than 4096 characters.
	maxMessageRunes = 4096
)

const (
	textReset       = "🔄 Entrevista reiniciada."
	textSaved       = "✅ Entrevista salva com sucesso!"
	textSaveFailed  = "⚠️ Erro ao salvar: %v"
	textBusy        = "⏳ Ainda estou pensando na sua mensagem anterior."
	textOnlyText    = "Envie sua resposta como texto."
	textStatus      = "📊 Mensagens trocadas: %d (suas: %d)"
	textResetButton = "🔄 Reiniciar Entrevista"
)

type Bot struct {
	api         *tgbotapi.BotAPI
	s           sender
	svc         *interview.Service
	log         *zap.Logger
	adminUserID int64
}

func New(botToken string, svc *interview.Service, adminUserID int64, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		api:         api,
		s:           botAPISender{api: api},
		svc:         svc,
		log:         log.Named("telegram"),
		adminUserID: adminUserID,
	}, nil
}

// Start polls updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				// one slow generation must not stall other chats
				go b.handleIncomingMessage(ctx, update.Message)
				continue
			}
			if update.CallbackQuery != nil {
				b.handleCallback(update.CallbackQuery)
			}
		}
	}
}

// NotifyAdmin sends text to the admin chat when one is configured.
func (b *Bot) NotifyAdmin(text string) {
	if b.adminUserID == 0 {
		return
	}
	b.sendMessage(b.adminUserID, text)
}

func sessionKey(chatID int64) string { return fmt.Sprintf("tg:%d", chatID) }

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}
	if msg.Text == "" {
		b.sendMessage(msg.Chat.ID, textOnlyText)
		return
	}

	key := sessionKey(msg.Chat.ID)
	b.log.Debug("incoming message", zap.String("session", key), zap.Int64("chat_id", msg.Chat.ID), zap.Int("length", len(msg.Text)))

	if _, err := b.s.Request(tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatTyping)); err != nil {
		b.log.Debug("failed to send chat action", zap.Error(err))
	}

	turn, err := b.svc.Submit(ctx, key, msg.Text)
	switch {
	case errors.Is(err, history.ErrTurnInProgress):
		b.sendMessage(msg.Chat.ID, textBusy)
		return
	case errors.Is(err, interview.ErrEmptyMessage):
		b.sendMessage(msg.Chat.ID, textOnlyText)
		return
	case err != nil:
		b.log.Error("submit failed", zap.String("session", key), zap.Error(err))
		b.sendMessage(msg.Chat.ID, interview.Apology)
		return
	}

	if turn.Discarded {
		return
	}
	b.sendReply(msg.Chat.ID, turn.Reply)

	if turn.Complete {
		if turn.ExportErr != nil {
			b.sendMessage(msg.Chat.ID, fmt.Sprintf(textSaveFailed, turn.ExportErr))
		} else if turn.Exported {
			b.sendMessage(msg.Chat.ID, textSaved)
		}
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	key := sessionKey(msg.Chat.ID)
	switch msg.Command() {
	case "start":
		snap := b.svc.Open(key)
		if len(snap.Messages) > 0 {
			b.sendReply(msg.Chat.ID, snap.Messages[len(snap.Messages)-1].Content)
		}
	case "reset":
		b.reset(msg.Chat.ID)
	case "status":
		snap := b.svc.Open(key)
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(textStatus, snap.Count, snap.UserMessages))
	default:
		b.sendMessage(msg.Chat.ID, "Comandos: /start, /reset, /status")
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Debug("failed to answer callback", zap.Error(err))
	}
	if cb.Data == resetCmd && cb.Message != nil {
		b.reset(cb.Message.Chat.ID)
	}
}

func (b *Bot) reset(chatID int64) {
	snap := b.svc.Reset(sessionKey(chatID))
	b.sendMessage(chatID, textReset)
	if len(snap.Messages) > 0 {
		b.sendReply(chatID, snap.Messages[0].Content)
	}
}

func (b *Bot) menuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(textResetButton, resetCmd),
		),
	)
}

// sendReply sends text in as many messages as needed; the last one carries the reset button.
func (b *Bot) sendReply(chatID int64, text string) {
	parts := splitMessage(text, maxMessageRunes)
	for i, part := range parts {
		out := tgbotapi.NewMessage(chatID, part)
		if i == len(parts)-1 {
			out.ReplyMarkup = b.menuKeyboard()
		}
		if _, err := b.s.Send(out); err != nil {
			b.log.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.s.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// splitMessage cuts text into chunks of at most limit runes, preferring line breaks.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
