package handlers

import (
	"bytes"
	"context"

	"github.com/Freeeeeet/intake_bot/internal/controller/render"
	"github.com/Freeeeeet/intake_bot/internal/conversation"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.dispatch(ctx, b, update, conversation.Cmd(conversation.CommandStart))
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.dispatch(ctx, b, update, conversation.Cmd(conversation.CommandHelp))
}

// HandleCancel обрабатывает команду /cancel
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.dispatch(ctx, b, update, conversation.Cmd(conversation.CommandExit))
}

// HandleTextMessage обрабатывает текст и нажатия кнопок reply-клавиатуры
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.dispatch(ctx, b, update, DecodeInput(update.Message.Text))
}

// dispatch передаёт вход движку и отправляет ответ
func (h *Handlers) dispatch(ctx context.Context, b *bot.Bot, update *models.Update, in conversation.Input) {
	chatID, userID, ok := sender(update)
	if !ok {
		return
	}

	reply := h.engine.Handle(ctx, userID, in)

	h.sendMessage(ctx, b, chatID, reply.Text, RenderKeyboard(reply.Keyboard, h.flavor))

	if h.slotsImages && len(reply.OpenSlots) > 0 {
		h.sendSlotsImage(ctx, b, chatID, reply)
	}
}

// sendSlotsImage отправляет картинку со свободными слотами; ошибки только логируются
func (h *Handlers) sendSlotsImage(ctx context.Context, b *bot.Bot, chatID int64, reply conversation.Reply) {
	img, err := render.SlotsImage(reply.OpenSlots)
	if err != nil {
		h.logger.Error("Failed to render slots image", zap.Error(err))
		return
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: chatID,
		Photo: &models.InputFileUpload{
			Filename: slotsImageName,
			Data:     bytes.NewReader(img),
		},
	})
	if err != nil {
		h.logger.Error("Failed to send slots image",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}
