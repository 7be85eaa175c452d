// File: internal/domain/ports/adapter/messenger.go
package adapter

import "context"

// Destination is a resolved send target. ReplyTo, when non-zero, anchors
// sends to a message inside the chat (the top message of a forum topic).
type Destination struct {
	ChatID   int64
	Username string // set when the target was resolved from a handle
	ReplyTo  int
}

// ForumTopic is one entry of the platform's topic listing for a forum chat.
type ForumTopic struct {
	ID           int
	TopMessageID int
	Title        string
}

// Identity describes the account the client sends as.
type Identity struct {
	DisplayName string
	Handle      string
	IsBot       bool
}

// MessengerClient is the injected messaging capability the core consumes.
// Session management, authentication and the wire protocol all live behind
// this interface.
type MessengerClient interface {
	// ResolveEntity turns a bare token (numeric chat id or username) into a
	// destination. Topic anchoring is composed on top by the resolver.
	ResolveEntity(ctx context.Context, token string) (Destination, error)

	// SendMessage delivers text to a destination, honoring its anchor.
	SendMessage(ctx context.Context, dest Destination, text string) error

	// SendFiles delivers local files as a single grouped payload; a non-empty
	// caption is attached to the first item.
	SendFiles(ctx context.Context, dest Destination, paths []string, caption string) error

	// GetForumTopics lists up to pageSize topics of a forum chat. Clients
	// that cannot enumerate topics return domain.ErrTopicListingUnsupported.
	GetForumTopics(ctx context.Context, dest Destination, pageSize int) ([]ForumTopic, error)

	// Self reports the sending identity; failure here is a setup failure for
	// the whole delivery attempt.
	Self(ctx context.Context) (Identity, error)
}
