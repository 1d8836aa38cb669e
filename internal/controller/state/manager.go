package state

import (
	"context"
	"sync"

	"github.com/Freeeeeet/intake_bot/internal/model"
)

// Manager хранит сессии пользователей в памяти процесса.
// Срок жизни у сессий не ограничен: незавершённый диалог живёт до перезапуска.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session // userID -> Session
}

// NewManager создаёт новый менеджер сессий
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*model.Session),
	}
}

// Get возвращает копию сессии пользователя или nil, если её нет
func (sm *Manager) Get(_ context.Context, userID string) (*model.Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if s, exists := sm.sessions[userID]; exists {
		return clone(s), nil
	}
	return nil, nil
}

// Put сохраняет сессию, заменяя предыдущую сессию этого пользователя
func (sm *Manager) Put(_ context.Context, s *model.Session) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.sessions[s.UserID] = clone(s)
	return nil
}

// Delete удаляет сессию пользователя
func (sm *Manager) Delete(_ context.Context, userID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.sessions, userID)
	return nil
}

// Len количество активных сессий
func (sm *Manager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// clone глубокая копия, чтобы вызывающий код не менял сохранённую сессию без Put
func clone(s *model.Session) *model.Session {
	c := *s
	if s.Scratch.ChosenSlot != nil {
		slot := *s.Scratch.ChosenSlot
		c.Scratch.ChosenSlot = &slot
	}
	if s.Scratch.SelectedDays != nil {
		c.Scratch.SelectedDays = append([]string(nil), s.Scratch.SelectedDays...)
	}
	if s.Scratch.DaysWithTimes != nil {
		c.Scratch.DaysWithTimes = make(map[string]string, len(s.Scratch.DaysWithTimes))
		for k, v := range s.Scratch.DaysWithTimes {
			c.Scratch.DaysWithTimes[k] = v
		}
	}
	return &c
}
