//go:build !integration

package state

import (
	"context"
	"errors"
	"testing"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/ports/repository"
)

func TestMemoryRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("get before set", func(t *testing.T) {
		repo := NewMemoryRepo()
		if _, err := repo.GetState(ctx, 42); !errors.Is(err, domain.ErrConversationNotFound) {
			t.Fatalf("expected ErrConversationNotFound, got %v", err)
		}
	})

	t.Run("set then get returns a copy", func(t *testing.T) {
		repo := NewMemoryRepo()
		st := &repository.ConversationState{Step: repository.StepText}
		st.Draft.Text = "draft"
		if err := repo.SetState(ctx, 42, st); err != nil {
			t.Fatalf("SetState: %v", err)
		}

		got, err := repo.GetState(ctx, 42)
		if err != nil {
			t.Fatalf("GetState: %v", err)
		}
		if got.Step != repository.StepText || got.Draft.Text != "draft" {
			t.Fatalf("unexpected state %+v", got)
		}

		got.Draft.Text = "mutated"
		again, _ := repo.GetState(ctx, 42)
		if again.Draft.Text != "draft" {
			t.Error("stored state mutated through the returned copy")
		}
	})

	t.Run("states are per admin", func(t *testing.T) {
		repo := NewMemoryRepo()
		_ = repo.SetState(ctx, 1, &repository.ConversationState{Step: repository.StepText})
		_ = repo.SetState(ctx, 2, &repository.ConversationState{Step: repository.StepRecipients})

		a, _ := repo.GetState(ctx, 1)
		b, _ := repo.GetState(ctx, 2)
		if a.Step == b.Step {
			t.Fatal("states bled between admins")
		}
	})

	t.Run("clear", func(t *testing.T) {
		repo := NewMemoryRepo()
		_ = repo.SetState(ctx, 42, &repository.ConversationState{Step: repository.StepText})
		if err := repo.ClearState(ctx, 42); err != nil {
			t.Fatalf("ClearState: %v", err)
		}
		if _, err := repo.GetState(ctx, 42); !errors.Is(err, domain.ErrConversationNotFound) {
			t.Fatalf("expected ErrConversationNotFound after clear, got %v", err)
		}
		// Clearing an absent state is a no-op.
		if err := repo.ClearState(ctx, 42); err != nil {
			t.Fatalf("ClearState twice: %v", err)
		}
	})
}
