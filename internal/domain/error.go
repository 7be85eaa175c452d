package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound                 = errors.New("entity not found")
	ErrInvalidSchedule          = errors.New("invalid schedule")
	ErrInvalidRecipient         = errors.New("invalid recipient token")
	ErrTopicNotFound            = errors.New("forum topic not found")
	ErrTopicListingUnsupported  = errors.New("client cannot list forum topics")
	ErrNoRecipients             = errors.New("message has no recipients")
	ErrConversationNotFound     = errors.New("no conversation in progress")
	ErrConversationStepMismatch = errors.New("conversation is not at this step")
)

// ResolutionError reports that a recipient token could not be turned into a
// destination. The delivery engine absorbs it as a per-recipient failure;
// it never aborts the batch.
type ResolutionError struct {
	Token string
	Cause error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Token, e.Cause)
}

func (e *ResolutionError) Unwrap() error { return e.Cause }

// SetupError means the sending identity could not be established. It is
// fatal for the whole delivery attempt, not for a single recipient.
type SetupError struct {
	Cause error
}

func (e *SetupError) Error() string { return fmt.Sprintf("delivery setup: %v", e.Cause) }

func (e *SetupError) Unwrap() error { return e.Cause }
