// File: internal/domain/ports/repository/message.go
package repository

import (
	"context"

	"telegram-post-scheduler/internal/domain/model"
)

// Snapshot is one full read of the store. Order carries the insertion order
// of ids, which Go maps would otherwise lose.
type Snapshot struct {
	Defs  map[string]*model.MessageDefinition
	Order []string
}

func EmptySnapshot() Snapshot {
	return Snapshot{Defs: map[string]*model.MessageDefinition{}}
}

func (s Snapshot) Get(id string) (*model.MessageDefinition, bool) {
	d, ok := s.Defs[id]
	return d, ok
}

func (s Snapshot) Len() int { return len(s.Order) }

// Put appends a definition, keeping Order in sync. Replacing an existing id
// keeps its original position.
func (s *Snapshot) Put(id string, def *model.MessageDefinition) {
	if _, exists := s.Defs[id]; !exists {
		s.Order = append(s.Order, id)
	}
	s.Defs[id] = def
}

// MessageRepository is the port for the persisted id -> definition mapping.
type MessageRepository interface {
	// Load reads the persisted store. A missing or malformed document reads
	// as an empty snapshot; it never fails toward the caller.
	Load(ctx context.Context) Snapshot

	// Save overwrites the persisted store (best-effort atomically),
	// preserving the snapshot's id order.
	Save(ctx context.Context, snap Snapshot) error

	// Delete removes one definition. The caller owns deleting any attachment
	// files the definition referenced. Returns domain.ErrNotFound when the
	// id is absent.
	Delete(ctx context.Context, id string) error

	// AllocateID produces "MESSAGE_<n>" with the smallest free positive n.
	AllocateID(snap Snapshot) string
}
