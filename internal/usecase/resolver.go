package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/ports/adapter"
)

// topicPageSize bounds how many forum topics one resolution will list.
const topicPageSize = 100

// RecipientResolver turns recipient tokens into destinations. Results are
// not cached across deliveries: recipients get renamed, and a stale mapping
// is worse than one extra lookup per send.
type RecipientResolver struct {
	client adapter.MessengerClient
}

func NewRecipientResolver(client adapter.MessengerClient) *RecipientResolver {
	return &RecipientResolver{client: client}
}

// Resolve handles the three token shapes: "<chat>:<topic>" (forum topic),
// bare numeric chat id, and @handle / bare username. Every failure comes
// back as a *domain.ResolutionError naming the token.
func (r *RecipientResolver) Resolve(ctx context.Context, token string) (adapter.Destination, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return adapter.Destination{}, &domain.ResolutionError{Token: token, Cause: domain.ErrInvalidRecipient}
	}

	if chatPart, topicPart, ok := splitTopicToken(token); ok {
		dest, err := r.resolveTopic(ctx, chatPart, topicPart)
		if err != nil {
			return adapter.Destination{}, &domain.ResolutionError{Token: token, Cause: err}
		}
		return dest, nil
	}

	dest, err := r.client.ResolveEntity(ctx, token)
	if err != nil {
		return adapter.Destination{}, &domain.ResolutionError{Token: token, Cause: err}
	}
	return dest, nil
}

// splitTopicToken recognizes "<int>:<int>". Handles never contain a colon,
// so anything starting with '@' is passed through untouched.
func splitTopicToken(token string) (chat, topic string, ok bool) {
	if strings.HasPrefix(token, "@") || !strings.Contains(token, ":") {
		return "", "", false
	}
	parts := strings.SplitN(token, ":", 2)
	if _, err := strconv.ParseInt(parts[0], 10, 64); err != nil {
		return "", "", false
	}
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (r *RecipientResolver) resolveTopic(ctx context.Context, chatPart, topicPart string) (adapter.Destination, error) {
	dest, err := r.client.ResolveEntity(ctx, chatPart)
	if err != nil {
		return adapter.Destination{}, err
	}
	topicID, _ := strconv.Atoi(topicPart)

	topics, err := r.client.GetForumTopics(ctx, dest, topicPageSize)
	if errors.Is(err, domain.ErrTopicListingUnsupported) {
		// A forum topic's root message id equals the topic id, so the topic
		// itself anchors replies when the client cannot enumerate topics.
		dest.ReplyTo = topicID
		return dest, nil
	}
	if err != nil {
		return adapter.Destination{}, err
	}

	for _, t := range topics {
		if t.ID != topicID {
			continue
		}
		if t.TopMessageID == 0 {
			return adapter.Destination{}, fmt.Errorf("%w: topic %d has no messages", domain.ErrTopicNotFound, topicID)
		}
		dest.ReplyTo = t.TopMessageID
		return dest, nil
	}
	return adapter.Destination{}, fmt.Errorf("%w: topic %d", domain.ErrTopicNotFound, topicID)
}
