package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/everydev1618/parley"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const telegramExitReply = "已退出。"

// TelegramBot handles incoming Telegram messages via long polling. Each chat
// is one session on the server, so transcripts land in the same store as the
// HTTP API. Messages from one chat are answered in the order they arrive.
type TelegramBot struct {
	bot   *tgbotapi.BotAPI
	srv   *Server
	chats *chatQueue
}

// NewTelegramBot creates a TelegramBot connected to the given token.
func NewTelegramBot(token string, srv *Server) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	bot.Debug = false
	return &TelegramBot{bot: bot, srv: srv, chats: newChatQueue()}, nil
}

// Username returns the bot's Telegram username.
func (t *TelegramBot) Username() string {
	return t.bot.Self.UserName
}

// Start runs the long-polling loop until ctx is cancelled.
func (t *TelegramBot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			t.chats.Do(telegramSessionKey(update.Message.Chat.ID), func() {
				t.handle(ctx, update)
			})
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			return
		}
	}
}

// handle processes a single Telegram update.
func (t *TelegramBot) handle(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	chatID := update.Message.Chat.ID
	if reply := t.srv.chatTurn(ctx, telegramSessionKey(chatID), update.Message.Text); reply != "" {
		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, reply)); err != nil {
			slog.Warn("telegram: failed to send message", "error", err)
		}
	}
}

func telegramSessionKey(chatID int64) string {
	return "tg-" + strconv.FormatInt(chatID, 10)
}

// chatTurn runs one line from a chat front end against the session stored
// under key and returns the text to send back. /reset and exit commands end
// the session.
func (s *Server) chatTurn(ctx context.Context, key, text string) string {
	line := strings.TrimSpace(text)
	if line == "/reset" || parley.IsExitCommand(line) {
		if err := s.sessions.Delete(key); err == nil {
			s.emit(EventSessionClosed, key, nil)
		}
		return telegramExitReply
	}

	ls, created := s.sessions.GetOrCreate(key)
	if created {
		s.emit(EventSessionCreated, key, nil)
	}

	res, err := s.runTurn(ctx, ls, line)
	if err != nil {
		if errors.Is(err, parley.ErrEmptyUtterance) {
			return ""
		}
		slog.Error("chat turn failed", "session", key, "error", err)
		return "Error: " + err.Error()
	}
	return res.Reply
}
