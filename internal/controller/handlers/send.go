package handlers

import (
	"context"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// sender достаёт чат и идентификатор пользователя из апдейта.
// Возвращает false, если это не текстовое сообщение от пользователя.
func sender(update *models.Update) (chatID int64, userID string, ok bool) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return 0, "", false
	}
	return update.Message.Chat.ID, strconv.FormatInt(update.Message.From.ID, 10), true
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
