//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/adapter"
	"telegram-post-scheduler/internal/domain/ports/repository"
)

// -----------------------------
// Mock MessengerClient
// -----------------------------

type SentMessage struct {
	Dest adapter.Destination
	Text string
}

type SentFiles struct {
	Dest    adapter.Destination
	Paths   []string
	Caption string
}

// MockMessenger records every interaction and lets tests override any call
// through the *Func fields.
type MockMessenger struct {
	mu sync.Mutex

	ResolveEntityFunc  func(ctx context.Context, token string) (adapter.Destination, error)
	SendMessageFunc    func(ctx context.Context, dest adapter.Destination, text string) error
	SendFilesFunc      func(ctx context.Context, dest adapter.Destination, paths []string, caption string) error
	GetForumTopicsFunc func(ctx context.Context, dest adapter.Destination, pageSize int) ([]adapter.ForumTopic, error)
	SelfFunc           func(ctx context.Context) (adapter.Identity, error)

	Resolved  []string
	Messages  []SentMessage
	Files     []SentFiles
	SelfCalls int

	handleIDs map[string]int64
}

var _ adapter.MessengerClient = (*MockMessenger)(nil)

func (m *MockMessenger) ResolveEntity(ctx context.Context, token string) (adapter.Destination, error) {
	m.mu.Lock()
	m.Resolved = append(m.Resolved, token)
	m.mu.Unlock()
	if m.ResolveEntityFunc != nil {
		return m.ResolveEntityFunc(ctx, token)
	}
	if id, err := strconv.ParseInt(token, 10, 64); err == nil {
		return adapter.Destination{ChatID: id}, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handleIDs == nil {
		m.handleIDs = make(map[string]int64)
	}
	handle := strings.TrimPrefix(token, "@")
	if _, ok := m.handleIDs[handle]; !ok {
		m.handleIDs[handle] = int64(1000 + len(m.handleIDs))
	}
	return adapter.Destination{ChatID: m.handleIDs[handle], Username: handle}, nil
}

func (m *MockMessenger) SendMessage(ctx context.Context, dest adapter.Destination, text string) error {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, dest, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, SentMessage{Dest: dest, Text: text})
	return nil
}

func (m *MockMessenger) SendFiles(ctx context.Context, dest adapter.Destination, paths []string, caption string) error {
	if m.SendFilesFunc != nil {
		return m.SendFilesFunc(ctx, dest, paths, caption)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files = append(m.Files, SentFiles{Dest: dest, Paths: append([]string(nil), paths...), Caption: caption})
	return nil
}

func (m *MockMessenger) GetForumTopics(ctx context.Context, dest adapter.Destination, pageSize int) ([]adapter.ForumTopic, error) {
	if m.GetForumTopicsFunc != nil {
		return m.GetForumTopicsFunc(ctx, dest, pageSize)
	}
	// Default: a forum with no topics at all.
	return nil, nil
}

func (m *MockMessenger) Self(ctx context.Context) (adapter.Identity, error) {
	m.mu.Lock()
	m.SelfCalls++
	m.mu.Unlock()
	if m.SelfFunc != nil {
		return m.SelfFunc(ctx)
	}
	return adapter.Identity{DisplayName: "Test Sender", Handle: "test_sender", IsBot: true}, nil
}

// NetworkCalls counts every interaction that would hit the platform.
func (m *MockMessenger) NetworkCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Resolved) + len(m.Messages) + len(m.Files) + m.SelfCalls
}

// -----------------------------
// In-memory MessageRepository
// -----------------------------

type memMessageRepo struct {
	mu      sync.Mutex
	snap    repository.Snapshot
	saveErr error
}

var _ repository.MessageRepository = (*memMessageRepo)(nil)

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{snap: repository.EmptySnapshot()}
}

func (m *memMessageRepo) Load(ctx context.Context) repository.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := repository.EmptySnapshot()
	for _, id := range m.snap.Order {
		cp.Put(id, m.snap.Defs[id].Clone())
	}
	return cp
}

func (m *memMessageRepo) Save(ctx context.Context, snap repository.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := repository.EmptySnapshot()
	for _, id := range snap.Order {
		if def, ok := snap.Defs[id]; ok {
			cp.Put(id, def.Clone())
		}
	}
	m.snap = cp
	return nil
}

func (m *memMessageRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snap.Defs[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	delete(m.snap.Defs, id)
	for i, existing := range m.snap.Order {
		if existing == id {
			m.snap.Order = append(m.snap.Order[:i], m.snap.Order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memMessageRepo) AllocateID(snap repository.Snapshot) string {
	used := make(map[int]bool)
	for id := range snap.Defs {
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "MESSAGE_")); err == nil {
			used[n] = true
		}
	}
	n := 1
	for used[n] {
		n++
	}
	return "MESSAGE_" + strconv.Itoa(n)
}

func (m *memMessageRepo) put(id string, def *model.MessageDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Put(id, def)
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
