package waiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/zilgo/zilgo/pkg/core/transaction"
	"github.com/zilgo/zilgo/pkg/zilrpc"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testHash = "2d1eea871d8845472e98dbe9b7a7d788fbcce226f52e4216612592167b89042c"

type response struct {
	res *zilrpc.TransactionResult
	err error
}

// fakeGetter returns scripted responses, the last one is repeated.
type fakeGetter struct {
	responses []response
	calls     int
	onCall    func(n int)
}

func (f *fakeGetter) GetTransaction(hash string) (*zilrpc.TransactionResult, error) {
	f.calls++
	if f.onCall != nil {
		f.onCall(f.calls)
	}
	r := f.responses[min(f.calls, len(f.responses))-1]
	return r.res, r.err
}

func receiptResponse(success bool, gas zilrpc.FlexUint) response {
	return response{res: &zilrpc.TransactionResult{
		ID:      testHash,
		Receipt: zilrpc.Receipt{CumulativeGas: gas, Success: success},
	}}
}

var (
	errNotFound = zilrpc.NewError(zilrpc.DatabaseErrorCode, "Txn Hash not Present", "")
	errNetwork  = errors.New("connection refused")
)

func newTestTx(t *testing.T) *transaction.Transaction {
	tx, err := transaction.New(transaction.Params{})
	require.NoError(t, err)
	return tx
}

func TestNewPollerDefaults(t *testing.T) {
	p := NewPoller(&fakeGetter{}, PollConfig{}, nil)
	require.Equal(t, PollConfig{Attempts: DefaultAttempts, Interval: DefaultInterval}, p.Config())
	require.Equal(t, 33, DefaultAttempts)

	p = NewPoller(&fakeGetter{}, PollConfig{Attempts: 5, Interval: time.Millisecond}, nil)
	require.Equal(t, PollConfig{Attempts: 5, Interval: time.Millisecond}, p.Config())
}

func TestConfirmFirstAttempt(t *testing.T) {
	g := &fakeGetter{responses: []response{receiptResponse(true, 357)}}
	p := NewPoller(g, PollConfig{}, nil)

	tx, err := p.Confirm(context.Background(), newTestTx(t), testHash)
	require.NoError(t, err)
	require.True(t, tx.IsConfirmed())
	require.Equal(t, testHash, tx.ID)
	require.Equal(t, &transaction.Receipt{CumulativeGas: 357, Success: true}, tx.Receipt)
	require.Equal(t, 1, g.calls)
}

func TestConfirmAfterFailures(t *testing.T) {
	g := &fakeGetter{responses: []response{
		{err: errNetwork},
		{err: errNotFound},
		receiptResponse(true, 1),
	}}
	p := NewPoller(g, PollConfig{}, nil)

	tx, err := p.ConfirmCustom(context.Background(), newTestTx(t), testHash, 5, 0)
	require.NoError(t, err)
	require.True(t, tx.IsConfirmed())
	require.Equal(t, 3, g.calls)
}

func TestConfirmFailedReceipt(t *testing.T) {
	g := &fakeGetter{responses: []response{{err: errNotFound}, receiptResponse(false, 10)}}
	p := NewPoller(g, PollConfig{}, nil)

	tx, err := p.ConfirmCustom(context.Background(), newTestTx(t), testHash, 5, 0)
	require.NoError(t, err)
	require.True(t, tx.IsRejected())
	require.False(t, tx.Receipt.Success)
	require.Equal(t, uint64(10), tx.Receipt.CumulativeGas)
	require.Equal(t, 2, g.calls)
}

func TestConfirmTimeout(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	g := &fakeGetter{responses: []response{{err: errNetwork}, {err: errNotFound}}}
	p := NewPoller(g, PollConfig{Attempts: 3, Interval: time.Millisecond}, zap.New(core))
	before := testutil.ToFloat64(pollOutcomes.WithLabelValues(outcomeTimeout))

	tx, err := p.Confirm(context.Background(), newTestTx(t), testHash)
	require.ErrorIs(t, err, ErrConfirmationTimeout)
	require.ErrorIs(t, err, ErrTransientQueryFailure)
	require.ErrorIs(t, err, errNotFound)
	require.NotNil(t, tx)
	require.True(t, tx.IsRejected())
	require.Nil(t, tx.Receipt)
	require.Empty(t, tx.ID)
	require.Equal(t, 3, g.calls)

	require.Equal(t, before+1, testutil.ToFloat64(pollOutcomes.WithLabelValues(outcomeTimeout)))
	require.Equal(t, 1, logs.FilterMessage("transaction is not confirmed, giving up").Len())
}

func TestConfirmSingleAttempt(t *testing.T) {
	g := &fakeGetter{responses: []response{{err: errNetwork}}}
	p := NewPoller(g, PollConfig{}, nil)

	tx, err := p.ConfirmCustom(context.Background(), newTestTx(t), testHash, 1, time.Hour)
	require.ErrorIs(t, err, ErrConfirmationTimeout)
	require.True(t, tx.IsRejected())
	require.Equal(t, 1, g.calls)
}

func TestConfirmInterval(t *testing.T) {
	g := &fakeGetter{responses: []response{{err: errNetwork}, {err: errNetwork}, receiptResponse(true, 1)}}
	p := NewPoller(g, PollConfig{}, nil)

	start := time.Now()
	_, err := p.ConfirmCustom(context.Background(), newTestTx(t), testHash, 3, 20*time.Millisecond)
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestConfirmContextDone(t *testing.T) {
	t.Run("before first attempt", func(t *testing.T) {
		g := &fakeGetter{responses: []response{receiptResponse(true, 1)}}
		p := NewPoller(g, PollConfig{}, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		tx, err := p.Confirm(ctx, newTestTx(t), testHash)
		require.ErrorIs(t, err, ErrContextDone)
		require.ErrorIs(t, err, context.Canceled)
		require.True(t, tx.IsPending())
		require.Equal(t, 0, g.calls)
	})
	t.Run("while waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		g := &fakeGetter{
			responses: []response{{err: errNetwork}},
			onCall:    func(int) { cancel() },
		}
		p := NewPoller(g, PollConfig{}, nil)

		tx, err := p.ConfirmCustom(ctx, newTestTx(t), testHash, 10, time.Hour)
		require.ErrorIs(t, err, ErrContextDone)
		require.True(t, tx.IsPending())
		require.Equal(t, 1, g.calls)
	})
}

func TestConfirmTerminal(t *testing.T) {
	g := &fakeGetter{responses: []response{receiptResponse(true, 1)}}
	p := NewPoller(g, PollConfig{}, nil)

	tx, err := transaction.NewRejected(transaction.Params{})
	require.NoError(t, err)
	res, err := p.Confirm(context.Background(), tx, testHash)
	require.ErrorIs(t, err, transaction.ErrTerminalState)
	require.Same(t, tx, res)
	require.True(t, tx.IsRejected())
	require.Equal(t, 0, g.calls)
}
