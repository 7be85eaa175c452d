package repository

import (
	"context"

	"telegram-post-scheduler/internal/domain/model"
)

// ConversationStep names one stage of the add-message wizard.
type ConversationStep string

const (
	StepText         ConversationStep = "awaiting_text"
	StepImages       ConversationStep = "awaiting_images"
	StepRecipients   ConversationStep = "awaiting_recipients"
	StepScheduleType ConversationStep = "awaiting_schedule_type"
	StepScheduleTime ConversationStep = "awaiting_schedule_time"
	StepScheduleDay  ConversationStep = "awaiting_schedule_day"
)

// ConversationState holds one admin's progress through the wizard together
// with the draft collected so far. Lifecycle is conversation start ->
// finalize/cancel, never process lifetime.
type ConversationState struct {
	Step  ConversationStep        `json:"step"`
	Draft model.MessageDefinition `json:"draft"`
}

// StateRepository is the port for per-user conversational state.
type StateRepository interface {
	SetState(ctx context.Context, tgID int64, state *ConversationState) error
	// GetState returns domain.ErrConversationNotFound when no conversation
	// is in progress for the user.
	GetState(ctx context.Context, tgID int64) (*ConversationState, error)
	ClearState(ctx context.Context, tgID int64) error
}
