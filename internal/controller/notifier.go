package controller

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

// TelegramNotifier отправляет сводку по заявке в чат оператора
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID int64
}

func NewTelegramNotifier(b *bot.Bot, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{bot: b, chatID: chatID}
}

func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send to operator %d: %w", n.chatID, err)
	}
	return nil
}
