package usecase

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/repository"
)

// MessageUseCase is what the admin front end calls to mutate the store.
type MessageUseCase interface {
	List(ctx context.Context) repository.Snapshot
	Get(ctx context.Context, id string) (*model.MessageDefinition, error)

	// Add validates the schedule, allocates an id and persists the
	// definition. Returns the allocated id.
	Add(ctx context.Context, def *model.MessageDefinition) (string, error)

	// Remove deletes a definition together with its attachment files
	// (attachments are never shared between definitions). Returns how many
	// files were unlinked.
	Remove(ctx context.Context, id string) (int, error)

	// RemoveAll drops every definition; returns (definitions, files) removed.
	RemoveAll(ctx context.Context) (int, int, error)
}

var _ MessageUseCase = (*messageUC)(nil)

type messageUC struct {
	messages repository.MessageRepository
	log      *zerolog.Logger
}

func NewMessageUseCase(messages repository.MessageRepository, logger *zerolog.Logger) MessageUseCase {
	compLog := logger.With().Str("component", "MessageUC").Logger()
	return &messageUC{messages: messages, log: &compLog}
}

func (uc *messageUC) List(ctx context.Context) repository.Snapshot {
	return uc.messages.Load(ctx)
}

func (uc *messageUC) Get(ctx context.Context, id string) (*model.MessageDefinition, error) {
	snap := uc.messages.Load(ctx)
	def, ok := snap.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return def.Clone(), nil
}

func (uc *messageUC) Add(ctx context.Context, def *model.MessageDefinition) (string, error) {
	if err := def.Schedule.Validate(); err != nil {
		return "", err
	}
	snap := uc.messages.Load(ctx)
	id := uc.messages.AllocateID(snap)
	snap.Put(id, def.Clone())
	if err := uc.messages.Save(ctx, snap); err != nil {
		return "", err
	}
	uc.log.Info().Str("message_id", id).Int("recipients", len(def.Recipients)).Msg("message added")
	return id, nil
}

func (uc *messageUC) Remove(ctx context.Context, id string) (int, error) {
	snap := uc.messages.Load(ctx)
	def, ok := snap.Get(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if err := uc.messages.Delete(ctx, id); err != nil {
		return 0, err
	}
	removed := uc.unlinkAttachments(def)
	uc.log.Info().Str("message_id", id).Int("files_removed", removed).Msg("message removed")
	return removed, nil
}

func (uc *messageUC) RemoveAll(ctx context.Context) (int, int, error) {
	snap := uc.messages.Load(ctx)
	files := 0
	for _, id := range snap.Order {
		files += uc.unlinkAttachments(snap.Defs[id])
	}
	removed := snap.Len()
	if err := uc.messages.Save(ctx, repository.EmptySnapshot()); err != nil {
		return 0, files, err
	}
	uc.log.Info().Int("messages_removed", removed).Int("files_removed", files).Msg("all messages removed")
	return removed, files, nil
}

func (uc *messageUC) unlinkAttachments(def *model.MessageDefinition) int {
	removed := 0
	for _, p := range def.ImagePaths {
		if err := os.Remove(p); err != nil {
			if !os.IsNotExist(err) {
				uc.log.Warn().Err(err).Str("path", p).Msg("could not delete attachment")
			}
			continue
		}
		removed++
	}
	return removed
}
