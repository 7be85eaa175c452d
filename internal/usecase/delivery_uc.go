package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/adapter"
	"telegram-post-scheduler/internal/domain/ports/repository"
	"telegram-post-scheduler/internal/infra/logging"
	"telegram-post-scheduler/internal/infra/metrics"
)

// DeliverAll is the pseudo-id that delivers every stored definition.
const DeliverAll = "all"

// Progress receives each log line as it is produced. Used by the admin
// front end to stream a rolling log into the chat; may be nil.
type Progress func(line string)

type DeliveryUseCase interface {
	// Deliver sends one definition to all its recipients. Per-recipient
	// errors are absorbed into the result; only a setup failure (sending
	// identity unavailable) comes back as an error.
	Deliver(ctx context.Context, id string, def *model.MessageDefinition, onLine Progress) (*model.DeliveryResult, error)

	// DeliverByID delivers one stored definition, or every definition when
	// id is DeliverAll.
	DeliverByID(ctx context.Context, id string, onLine Progress) (*model.DeliveryResult, error)

	// ListDue returns ids of definitions whose schedule matches now, in
	// store order.
	ListDue(ctx context.Context, now time.Time) []string
}

var _ DeliveryUseCase = (*deliveryUC)(nil)

type deliveryUC struct {
	messages repository.MessageRepository
	client   adapter.MessengerClient
	resolver *RecipientResolver
	log      *zerolog.Logger
}

func NewDeliveryUseCase(
	messages repository.MessageRepository,
	client adapter.MessengerClient,
	resolver *RecipientResolver,
	logger *zerolog.Logger,
) DeliveryUseCase {
	compLog := logger.With().Str("component", "DeliveryUC").Logger()
	return &deliveryUC{
		messages: messages,
		client:   client,
		resolver: resolver,
		log:      &compLog,
	}
}

func newRunID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.New(rand.NewSource(time.Now().UnixNano()))).String()
}

func (uc *deliveryUC) Deliver(ctx context.Context, id string, def *model.MessageDefinition, onLine Progress) (*model.DeliveryResult, error) {
	defer logging.TraceDuration(uc.log, "DeliveryUC.Deliver")()
	start := time.Now()
	res := &model.DeliveryResult{RunID: newRunID(), MessageID: id}
	ctx = logging.WithRunID(logging.WithMessageID(ctx, id), res.RunID)
	log := logging.With(ctx, uc.log)
	emit := func(format string, args ...any) {
		res.Logf(format, args...)
		if onLine != nil {
			onLine(res.Lines[len(res.Lines)-1])
		}
	}

	// Drafts without recipients are never delivered; no network calls.
	if len(def.Recipients) == 0 {
		emit("⚠ %s: no recipients configured, skipping", id)
		log.Warn().Msg("no recipients configured")
		metrics.IncDelivery("skipped")
		return res, nil
	}

	me, err := uc.client.Self(ctx)
	if err != nil {
		metrics.IncDelivery("setup_failed")
		return res, &domain.SetupError{Cause: err}
	}
	emit("👤 sending as %s (@%s)", me.DisplayName, me.Handle)

	for _, token := range def.Recipients {
		if err := ctx.Err(); err != nil {
			// Cancellation granularity is "after the current recipient".
			emit("⚠ delivery cancelled before %s", token)
			break
		}
		switch uc.deliverToRecipient(ctx, def, token, emit) {
		case recipientSent:
			res.Sent++
		case recipientFailed:
			res.Failed++
		}
	}

	emit("summary: %s", res.Summary())
	metrics.IncDelivery("completed")
	metrics.AddRecipientResults(res.Sent, res.Failed)
	metrics.ObserveDeliveryDuration(time.Since(start).Milliseconds())
	log.Info().
		Int("sent", res.Sent).
		Int("failed", res.Failed).
		Msg("delivery finished")
	return res, nil
}

// recipientOutcome classifies a single recipient attempt. Recipients with
// nothing left to send after attachment filtering count as neither sent nor
// failed.
type recipientOutcome int

const (
	recipientSent recipientOutcome = iota
	recipientSkipped
	recipientFailed
)

// deliverToRecipient runs the full per-recipient pipeline.
func (uc *deliveryUC) deliverToRecipient(ctx context.Context, def *model.MessageDefinition, token string, emit func(string, ...any)) recipientOutcome {
	log := logging.With(ctx, uc.log)
	dest, err := uc.resolver.Resolve(ctx, token)
	if err != nil {
		emit("✗ failed to send to %s: %v", token, err)
		log.Warn().Err(err).Str("recipient", token).Msg("resolution failed")
		return recipientFailed
	}

	valid := uc.existingAttachments(def.ImagePaths, emit)
	switch {
	case len(valid) > 0:
		err = uc.sendAttachments(ctx, dest, valid, def.Text, emit)
	case def.Text != "":
		err = uc.client.SendMessage(ctx, dest, def.Text)
	default:
		log.Debug().Str("recipient", token).Msg("nothing to send")
		return recipientSkipped
	}
	if err != nil {
		emit("✗ failed to send to %s: %v", token, err)
		log.Warn().Err(err).Str("recipient", token).Msg("send failed")
		return recipientFailed
	}
	emit("✓ sent to %s", token)
	return recipientSent
}

// existingAttachments filters paths to those present on disk, warning per
// missing file.
func (uc *deliveryUC) existingAttachments(paths []string, emit func(string, ...any)) []string {
	valid := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			emit("⚠ attachment missing, skipping: %s", p)
			uc.log.Warn().Str("path", p).Msg("attachment missing")
			metrics.IncAttachmentSkipped()
			continue
		}
		valid = append(valid, p)
	}
	return valid
}

// sendAttachments sends one captioned grouped payload. If the captioned send
// is rejected it degrades once: uncaptioned group, then the text as a
// follow-up message. The degrade is a best-effort fallback, not a retry.
func (uc *deliveryUC) sendAttachments(ctx context.Context, dest adapter.Destination, paths []string, text string, emit func(string, ...any)) error {
	err := uc.client.SendFiles(ctx, dest, paths, text)
	if err == nil {
		return nil
	}
	emit("⚠ captioned send failed, degrading to separate messages: %v", err)
	if err := uc.client.SendFiles(ctx, dest, paths, ""); err != nil {
		return err
	}
	if text != "" {
		return uc.client.SendMessage(ctx, dest, text)
	}
	return nil
}

func (uc *deliveryUC) DeliverByID(ctx context.Context, id string, onLine Progress) (*model.DeliveryResult, error) {
	snap := uc.messages.Load(ctx)

	if id != DeliverAll {
		def, ok := snap.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return uc.Deliver(ctx, id, def.Clone(), onLine)
	}

	total := &model.DeliveryResult{RunID: newRunID(), MessageID: DeliverAll}
	for _, mid := range snap.Order {
		def := snap.Defs[mid]
		res, err := uc.Deliver(ctx, mid, def.Clone(), onLine)
		if res != nil {
			total.Merge(res)
		}
		if err != nil {
			// Setup failure is definition-level but the session is shared:
			// if the identity is gone, later definitions cannot fare better.
			return total, err
		}
	}
	total.Logf("total: %s", total.Summary())
	if onLine != nil {
		onLine(total.Lines[len(total.Lines)-1])
	}
	return total, nil
}

func (uc *deliveryUC) ListDue(ctx context.Context, now time.Time) []string {
	snap := uc.messages.Load(ctx)
	var due []string
	for _, id := range snap.Order {
		if snap.Defs[id].Schedule.Matches(now) {
			due = append(due, id)
		}
	}
	return due
}
