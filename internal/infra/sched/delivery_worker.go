package sched

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-post-scheduler/internal/infra/metrics"
	"telegram-post-scheduler/internal/usecase"
)

// digestLines is how many tail lines of a delivery log go into the admin
// notification.
const digestLines = 5

// AdminNotifier delivers scheduled-run digests to the administrators.
type AdminNotifier interface {
	NotifyAdmins(ctx context.Context, text string) error
}

// DeliveryWorker is the recurring clock. Once per interval it scans the
// store for due definitions and hands each to the delivery engine. One
// definition's failure never blocks the others in the same scan, and a
// failed scan only skips to the next tick.
type DeliveryWorker struct {
	interval time.Duration
	delivery usecase.DeliveryUseCase
	notifier AdminNotifier
	log      *zerolog.Logger

	// fired maps message id -> the minute it last fired, so a rule matching
	// across two scans in the same minute does not double-fire. In-memory
	// only; a restart inside the matching minute may refire.
	fired map[string]string
}

func NewDeliveryWorker(interval time.Duration, delivery usecase.DeliveryUseCase, notifier AdminNotifier, logger *zerolog.Logger) *DeliveryWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	compLog := logger.With().Str("component", "DeliveryWorker").Logger()
	return &DeliveryWorker{
		interval: interval,
		delivery: delivery,
		notifier: notifier,
		log:      &compLog,
		fired:    make(map[string]string),
	}
}

// Run loops until ctx is cancelled. Minute boundaries may drift by up to one
// iteration's processing time; granularity is one minute so that is fine.
func (w *DeliveryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting delivery worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping delivery worker")
			return ctx.Err()
		case now := <-ticker.C:
			w.runScan(ctx, now)
		}
	}
}

func (w *DeliveryWorker) runScan(ctx context.Context, now time.Time) {
	minute := now.Format("2006-01-02 15:04")
	due := w.delivery.ListDue(ctx, now)
	metrics.IncScan("ok")
	if len(due) == 0 {
		return
	}
	w.log.Info().Strs("due", due).Str("minute", minute).Msg("definitions due")

	for _, id := range due {
		if w.fired[id] == minute {
			metrics.IncDispatch("suppressed")
			w.log.Debug().Str("message_id", id).Msg("already fired this minute")
			continue
		}
		w.fired[id] = minute
		w.dispatch(ctx, id)
	}
	w.prune(minute)
}

// dispatch runs one due definition and notifies the admins with a digest.
// Fire-and-forget relative to the other due definitions in the tick.
func (w *DeliveryWorker) dispatch(ctx context.Context, id string) {
	res, err := w.delivery.DeliverByID(ctx, id, nil)
	if err != nil {
		metrics.IncDispatch("setup_failed")
		w.log.Error().Err(err).Str("message_id", id).Msg("scheduled delivery failed")
		w.notify(ctx, fmt.Sprintf("❌ Scheduled post failed: %s\n%v", id, err))
		return
	}
	metrics.IncDispatch("ok")
	digest := strings.Join(res.Tail(digestLines), "\n")
	w.notify(ctx, fmt.Sprintf("⏰ Scheduled post sent: %s\n\n%s", id, digest))
}

func (w *DeliveryWorker) notify(ctx context.Context, text string) {
	if w.notifier == nil {
		return
	}
	if err := w.notifier.NotifyAdmins(ctx, text); err != nil {
		w.log.Warn().Err(err).Msg("admin notification failed")
	}
}

// prune drops guard entries from past minutes so the map stays small.
func (w *DeliveryWorker) prune(minute string) {
	for id, m := range w.fired {
		if m != minute {
			delete(w.fired, id)
		}
	}
}
