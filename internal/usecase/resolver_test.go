//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/ports/adapter"
	"telegram-post-scheduler/internal/usecase"
)

func TestRecipientResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("numeric chat id", func(t *testing.T) {
		client := &MockMessenger{}
		r := usecase.NewRecipientResolver(client)

		dest, err := r.Resolve(ctx, "-1001234")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if dest.ChatID != -1001234 || dest.ReplyTo != 0 {
			t.Fatalf("unexpected destination %+v", dest)
		}
	})

	t.Run("handle with surrounding whitespace", func(t *testing.T) {
		client := &MockMessenger{}
		r := usecase.NewRecipientResolver(client)

		dest, err := r.Resolve(ctx, "  @someone ")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if dest.Username != "someone" {
			t.Fatalf("unexpected destination %+v", dest)
		}
		if client.Resolved[0] != "@someone" {
			t.Errorf("token should be trimmed before lookup, got %q", client.Resolved[0])
		}
	})

	t.Run("empty token", func(t *testing.T) {
		r := usecase.NewRecipientResolver(&MockMessenger{})
		_, err := r.Resolve(ctx, "   ")
		if !errors.Is(err, domain.ErrInvalidRecipient) {
			t.Fatalf("expected ErrInvalidRecipient, got %v", err)
		}
		var resErr *domain.ResolutionError
		if !errors.As(err, &resErr) {
			t.Fatalf("expected ResolutionError, got %T", err)
		}
	})

	t.Run("topic found anchors its root message", func(t *testing.T) {
		client := &MockMessenger{}
		client.GetForumTopicsFunc = func(ctx context.Context, dest adapter.Destination, pageSize int) ([]adapter.ForumTopic, error) {
			return []adapter.ForumTopic{
				{ID: 2, TopMessageID: 2, Title: "general"},
				{ID: 789, TopMessageID: 789, Title: "announcements"},
			}, nil
		}
		r := usecase.NewRecipientResolver(client)

		dest, err := r.Resolve(ctx, "456:789")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if dest.ChatID != 456 || dest.ReplyTo != 789 {
			t.Fatalf("unexpected destination %+v", dest)
		}
	})

	t.Run("topic absent from listing", func(t *testing.T) {
		client := &MockMessenger{}
		r := usecase.NewRecipientResolver(client)

		_, err := r.Resolve(ctx, "456:789")
		if !errors.Is(err, domain.ErrTopicNotFound) {
			t.Fatalf("expected ErrTopicNotFound, got %v", err)
		}
		var resErr *domain.ResolutionError
		if !errors.As(err, &resErr) || resErr.Token != "456:789" {
			t.Fatalf("error should carry the token, got %v", err)
		}
	})

	t.Run("topic with no messages", func(t *testing.T) {
		client := &MockMessenger{}
		client.GetForumTopicsFunc = func(ctx context.Context, dest adapter.Destination, pageSize int) ([]adapter.ForumTopic, error) {
			return []adapter.ForumTopic{{ID: 789, TopMessageID: 0, Title: "empty"}}, nil
		}
		r := usecase.NewRecipientResolver(client)

		_, err := r.Resolve(ctx, "456:789")
		if !errors.Is(err, domain.ErrTopicNotFound) {
			t.Fatalf("expected ErrTopicNotFound, got %v", err)
		}
	})

	t.Run("listing unsupported falls back to the topic id", func(t *testing.T) {
		client := &MockMessenger{}
		client.GetForumTopicsFunc = func(ctx context.Context, dest adapter.Destination, pageSize int) ([]adapter.ForumTopic, error) {
			return nil, domain.ErrTopicListingUnsupported
		}
		r := usecase.NewRecipientResolver(client)

		dest, err := r.Resolve(ctx, "456:789")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if dest.ReplyTo != 789 {
			t.Fatalf("expected ReplyTo=789, got %+v", dest)
		}
	})

	t.Run("colon inside a handle is not a topic token", func(t *testing.T) {
		client := &MockMessenger{}
		r := usecase.NewRecipientResolver(client)

		if _, err := r.Resolve(ctx, "@weird:name"); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if len(client.Resolved) != 1 || client.Resolved[0] != "@weird:name" {
			t.Fatalf("handle should pass through untouched, got %v", client.Resolved)
		}
	})

	t.Run("chat lookup failure", func(t *testing.T) {
		client := &MockMessenger{}
		lookupErr := errors.New("username not occupied")
		client.ResolveEntityFunc = func(ctx context.Context, token string) (adapter.Destination, error) {
			return adapter.Destination{}, lookupErr
		}
		r := usecase.NewRecipientResolver(client)

		_, err := r.Resolve(ctx, "@gone")
		if !errors.Is(err, lookupErr) {
			t.Fatalf("expected wrapped lookup error, got %v", err)
		}
	})
}
