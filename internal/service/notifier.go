package service

import "context"

// Notifier отправляет сообщение оператору о новой записи
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// NopNotifier используется, когда чат оператора не настроен
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string) error { return nil }
