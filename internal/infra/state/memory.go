// Package state provides an in-memory StateRepository used when no Redis is
// configured (single-process deployments, dev mode, tests).
package state

import (
	"context"
	"sync"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/ports/repository"
)

var _ repository.StateRepository = (*MemoryRepo)(nil)

type MemoryRepo struct {
	mu     sync.RWMutex
	states map[int64]*repository.ConversationState
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{states: make(map[int64]*repository.ConversationState)}
}

func (m *MemoryRepo) SetState(ctx context.Context, tgID int64, st *repository.ConversationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *st
	m.states[tgID] = &cp
	return nil
}

func (m *MemoryRepo) GetState(ctx context.Context, tgID int64) (*repository.ConversationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[tgID]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	cp := *st
	return &cp, nil
}

func (m *MemoryRepo) ClearState(ctx context.Context, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, tgID)
	return nil
}
