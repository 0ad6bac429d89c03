package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/log"
)

// ViewRecomputer rebuilds a user's view from a fresh snapshot.
type ViewRecomputer interface {
	Recompute(ctx context.Context, userID string) (ledger.View, error)
}

// ViewExporter receives every recomputed view. sheets.Exporter satisfies it.
type ViewExporter interface {
	Export(ctx context.Context, userID string, view ledger.View) error
}

// RecomputeWorker reacts to ledger change messages by recomputing the
// affected user's whole view and handing it to the configured exporter.
type RecomputeWorker struct {
	views    ViewRecomputer
	exporter ViewExporter
	users    map[string]bool
	logger   *log.Logger

	processed atomic.Int64
	exported  atomic.Int64
	dropped   atomic.Int64
}

// Option configures a RecomputeWorker.
type Option func(*RecomputeWorker)

// WithExporter sends recomputed views to exp. With userIDs set, only those
// users' views are exported; the rest are recomputed and logged only.
func WithExporter(exp ViewExporter, userIDs ...string) Option {
	return func(w *RecomputeWorker) {
		w.exporter = exp
		if len(userIDs) > 0 {
			w.users = make(map[string]bool, len(userIDs))
			for _, id := range userIDs {
				w.users[id] = true
			}
		}
	}
}

func NewRecomputeWorker(views ViewRecomputer, logger *log.Logger, opts ...Option) *RecomputeWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	w := &RecomputeWorker{
		views:  views,
		logger: logger.WithComponent(log.ComponentWorker),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HandleChange implements amqp.ChangeHandler. Errors caused by the stored
// data itself are logged and swallowed, since redelivery cannot fix them;
// anything else is returned so the message is requeued.
func (w *RecomputeWorker) HandleChange(ctx context.Context, msg *amqp.LedgerChangeMessage) error {
	fields := log.NewFields().
		WithUser(msg.UserID).
		WithOperation(log.OpConsume)
	fields[log.FieldRecordKind] = msg.Kind
	fields[log.FieldRecordID] = msg.RecordID

	w.logger.DebugContext(ctx, "Processing ledger change", fields.ToSlice()...)

	view, err := w.views.Recompute(ctx, msg.UserID)
	if err != nil {
		if isPermanent(err) {
			w.dropped.Add(1)
			w.logger.ErrorContext(ctx, "Ledger data cannot be aggregated, dropping change",
				fields.WithError(err).ToSlice()...)
			return nil
		}
		return fmt.Errorf("recompute view for %s: %w", msg.UserID, err)
	}
	sum := view.Summary
	fields = fields.WithSummary(sum.TotalPendingIncome, sum.TotalConfirmedIncome, sum.TotalExpenses, sum.Balance)
	fields["months"] = len(view.Monthly)
	w.logger.InfoContext(ctx, "Ledger view recomputed", fields.ToSlice()...)

	if sum.Balance.Cents < 0 {
		w.logger.WarnContext(ctx, "Balance is negative", fields.ToSlice()...)
	}

	if w.exports(msg.UserID) {
		if err := w.exporter.Export(ctx, msg.UserID, view); err != nil {
			return fmt.Errorf("export view for %s: %w", msg.UserID, err)
		}
		w.exported.Add(1)
	}
	w.processed.Add(1)
	return nil
}

func (w *RecomputeWorker) exports(userID string) bool {
	if w.exporter == nil {
		return false
	}
	return w.users == nil || w.users[userID]
}

// Stats returns how many changes were recomputed and how many were dropped.
func (w *RecomputeWorker) Stats() (processed, dropped int64) {
	return w.processed.Load(), w.dropped.Load()
}

// Exported returns how many recomputed views reached the exporter.
func (w *RecomputeWorker) Exported() int64 {
	return w.exported.Load()
}

func isPermanent(err error) bool {
	return errors.Is(err, ledger.ErrMalformedRecord) ||
		errors.Is(err, core.ErrAmountOverflow) ||
		errors.Is(err, ledger.ErrSnapshotNotReady)
}
