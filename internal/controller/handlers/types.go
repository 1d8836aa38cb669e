package handlers

import (
	"github.com/Freeeeeet/intake_bot/internal/conversation"
	"github.com/Freeeeeet/intake_bot/internal/model"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки сообщений
type Handlers struct {
	engine      *conversation.Engine
	flavor      model.Flavor
	slotsImages bool
	logger      *zap.Logger
}

// NewHandlers создаёт новый обработчик сообщений.
// slotsImages включает отправку картинки со свободными слотами.
func NewHandlers(engine *conversation.Engine, slotsImages bool, logger *zap.Logger) *Handlers {
	return &Handlers{
		engine:      engine,
		flavor:      engine.Flavor(),
		slotsImages: slotsImages,
		logger:      logger,
	}
}
