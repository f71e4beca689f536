/*
Package waiter implements transaction confirmation polling. Poller queries the
node for the transaction receipt a bounded number of times with a constant
interval between attempts and moves the transaction into its final state.
*/
package waiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/zilgo/zilgo/pkg/core/transaction"
	"github.com/zilgo/zilgo/pkg/zilrpc"
	"go.uber.org/zap"
)

const (
	// DefaultAttempts is the default number of GetTransaction queries made
	// before giving up on the transaction.
	DefaultAttempts = 33
	// DefaultInterval is the default delay between subsequent queries.
	DefaultInterval = time.Second
)

var (
	// ErrConfirmationTimeout is returned when the attempt budget is exhausted
	// without a receipt. The transaction is Rejected in this case.
	ErrConfirmationTimeout = errors.New("transaction is not confirmed")
	// ErrTransientQueryFailure marks a single failed query, it's only
	// returned wrapped into ErrConfirmationTimeout for the last attempt.
	ErrTransientQueryFailure = errors.New("transaction query failed")
	// ErrContextDone is returned when the context has been done in the middle
	// of transaction awaiting process and no result was received yet.
	ErrContextDone = errors.New("waiter context done")
)

type (
	// TransactionGetter is the RPC part required by the Poller.
	TransactionGetter interface {
		GetTransaction(hash string) (*zilrpc.TransactionResult, error)
	}

	// PollConfig sets the attempt budget and the interval between attempts,
	// non-positive values are replaced with defaults.
	PollConfig struct {
		Attempts int
		Interval time.Duration
	}

	// Poller tracks transaction confirmation. It keeps no per-transaction
	// state, so it can be shared between goroutines, but every transaction
	// must only be confirmed by one of them.
	Poller struct {
		getter TransactionGetter
		config PollConfig
		log    *zap.Logger
	}
)

// NewPoller creates a Poller using the given getter. Logger is optional.
func NewPoller(getter TransactionGetter, cfg PollConfig, log *zap.Logger) *Poller {
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultAttempts
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		getter: getter,
		config: cfg,
		log:    log,
	}
}

// Config returns Poller settings.
func (p *Poller) Config() PollConfig {
	return p.config
}

// Confirm awaits the transaction using Poller settings, see ConfirmCustom.
func (p *Poller) Confirm(ctx context.Context, tx *transaction.Transaction, hash string) (*transaction.Transaction, error) {
	return p.ConfirmCustom(ctx, tx, hash, p.config.Attempts, p.config.Interval)
}

// ConfirmCustom makes the transaction Pending and queries the node for it up
// to attempts times (default is used if it's not positive) waiting for
// interval between queries. The first receipt received finalizes the
// transaction: it's Confirmed if the receipt is successful and Rejected
// otherwise. Failed queries are retried, if none of them succeeds the
// transaction is Rejected and ErrConfirmationTimeout is returned. If the
// context is done before the result is known the transaction stays Pending
// and ErrContextDone is returned. The transaction is returned in any case.
func (p *Poller) ConfirmCustom(ctx context.Context, tx *transaction.Transaction, hash string, attempts int, interval time.Duration) (*transaction.Transaction, error) {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if interval < 0 {
		interval = 0
	}
	if err := tx.SetPending(); err != nil {
		return tx, err
	}

	var (
		log     = p.log.With(zap.String("hash", hash))
		attempt int
		backoff = retry.WithMaxRetries(uint64(attempts-1), retry.BackoffFunc(func() (time.Duration, bool) {
			return interval, false
		}))
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		pollAttempts.Inc()
		res, err := p.getter.GetTransaction(hash)
		if err != nil {
			log.Debug("transaction is not confirmed yet",
				zap.Int("attempt", attempt),
				zap.Error(err))
			return retry.RetryableError(fmt.Errorf("%w: attempt %d: %w", ErrTransientQueryFailure, attempt, err))
		}
		return tx.ApplyReceipt(res.ID, res.Receipt.ToTransaction())
	})

	switch {
	case err == nil:
		log.Debug("transaction finalized",
			zap.String("id", tx.ID),
			zap.Stringer("status", tx.Status()),
			zap.Int("attempts", attempt))
		pollOutcomes.WithLabelValues(outcomeLabel(tx.Status())).Inc()
		return tx, nil
	case errors.Is(err, ErrTransientQueryFailure):
		_ = tx.SetRejected()
		log.Info("transaction is not confirmed, giving up",
			zap.Int("attempts", attempt),
			zap.Error(err))
		pollOutcomes.WithLabelValues(outcomeTimeout).Inc()
		return tx, fmt.Errorf("%w after %d attempts: %w", ErrConfirmationTimeout, attempt, err)
	case ctx.Err() != nil:
		pollOutcomes.WithLabelValues(outcomeCanceled).Inc()
		return tx, fmt.Errorf("%w: %w", ErrContextDone, err)
	default:
		return tx, err
	}
}
