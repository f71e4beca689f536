/*
Package actor provides a way to change ledger state via RPC client.

This layer builds on top of the basic RPC client, the wallet and the
confirmation poller, it simplifies creating, signing, sending and awaiting
transactions on behalf of a single sender account.
*/
package actor

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/zilgo/zilgo/pkg/core/transaction"
	"github.com/zilgo/zilgo/pkg/encoding/address"
	"github.com/zilgo/zilgo/pkg/rpcclient/waiter"
	"github.com/zilgo/zilgo/pkg/util"
	"github.com/zilgo/zilgo/pkg/wallet"
	"github.com/zilgo/zilgo/pkg/zilrpc"
	"go.uber.org/zap"
)

const (
	// DefaultMsgVersion is the message version packed into transaction
	// version together with the chain ID.
	DefaultMsgVersion = 1
	// DefaultGasLimit is used for transfers if no other limit is specified.
	DefaultGasLimit = 50
)

// ErrSubmissionRejected is returned when the node refuses to accept the
// transaction, it's Rejected in this case.
var ErrSubmissionRejected = errors.New("transaction submission rejected")

// RPCActor is an interface required from the RPC client to successfully
// create, send and await transactions.
type RPCActor interface {
	wallet.BalanceGetter
	waiter.TransactionGetter

	CreateTransaction(p *transaction.Payload) (*zilrpc.CreateTxResult, error)
	GetMinimumGasPrice() (*big.Int, error)
	GetNetworkID() (uint16, error)
}

// Options are used to create Actor with non-default transaction parameters.
type Options struct {
	// Version is the packed transaction version, it's computed from the
	// network ID and MsgVersion if zero.
	Version    uint32
	MsgVersion uint16
	// GasPrice is used for every transaction, node's minimum gas price is
	// requested for each transaction if nil.
	GasPrice *big.Int
	// GasLimit for transfers, DefaultGasLimit if zero.
	GasLimit uint64
	// ToDS makes every transaction to be sent to the DS committee.
	ToDS bool
	Poll waiter.PollConfig
	// Logger is optional.
	Logger *zap.Logger
}

// Actor keeps a connection to the RPC endpoint and allows to perform
// state-changing actions on behalf of the sender account. It embeds the
// Poller used to await submitted transactions.
//
// "Make" prefix is used for methods that create signed transactions, while
// "Send" prefix is used by methods that transmit them to the RPC server.
type Actor struct {
	*waiter.Poller

	client  RPCActor
	wallet  *wallet.Wallet
	sender  util.Uint160
	opts    Options
	version uint32
	log     *zap.Logger
}

// New creates an Actor for the given wallet account. The account must be
// unlocked. If no version is specified in the options, GetNetworkID call is
// made and the version computed from it is used for all transactions.
func New(ra RPCActor, w *wallet.Wallet, sender util.Uint160, opts Options) (*Actor, error) {
	acc := w.GetAccount(sender)
	if acc == nil {
		return nil, fmt.Errorf("%w: %s", wallet.ErrNoSignerAccount, address.ToChecksum(sender))
	}
	if !acc.CanSign() {
		return nil, fmt.Errorf("%w: %s", wallet.ErrAccountLocked, acc.Address)
	}
	if opts.MsgVersion == 0 {
		opts.MsgVersion = DefaultMsgVersion
	}
	if opts.GasLimit == 0 {
		opts.GasLimit = DefaultGasLimit
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	version := opts.Version
	if version == 0 {
		id, err := ra.GetNetworkID()
		if err != nil {
			return nil, fmt.Errorf("failed to get network ID: %w", err)
		}
		version = transaction.PackVersion(id, opts.MsgVersion)
	}
	return &Actor{
		Poller:  waiter.NewPoller(ra, opts.Poll, opts.Logger),
		client:  ra,
		wallet:  w,
		sender:  sender,
		opts:    opts,
		version: version,
		log:     opts.Logger,
	}, nil
}

// Sender returns the sender address.
func (a *Actor) Sender() util.Uint160 {
	return a.sender
}

// Version returns the version used for transactions.
func (a *Actor) Version() uint32 {
	return a.version
}

// Sign signs the transaction by the sender resolving its nonce if needed.
func (a *Actor) Sign(tx *transaction.Transaction) error {
	return a.wallet.SignWith(tx, a.sender, a.client)
}

// Send submits the signed transaction and returns its hash. The transaction
// becomes Pending if it's accepted. If the node refuses it with an error the
// transaction is Rejected and ErrSubmissionRejected is returned, transport
// failures are returned as is without state change. Unsigned and terminal
// transactions are not submitted.
func (a *Actor) Send(tx *transaction.Transaction) (string, error) {
	if s := tx.Status(); s.IsTerminal() {
		return "", fmt.Errorf("%w: %s", transaction.ErrTerminalState, s)
	}
	if len(tx.Signature) == 0 {
		return "", transaction.ErrNotSigned
	}
	p, err := tx.Payload()
	if err != nil {
		return "", err
	}
	res, err := a.client.CreateTransaction(p)
	if err != nil {
		var rpcErr *zilrpc.Error
		if errors.As(err, &rpcErr) {
			_ = tx.SetRejected()
			a.log.Info("transaction rejected by the node", zap.Error(err))
			return "", fmt.Errorf("%w: %w", ErrSubmissionRejected, err)
		}
		return "", err
	}
	if err := tx.SetPending(); err != nil {
		return "", err
	}
	tx.ID = res.TranID
	a.log.Debug("transaction sent",
		zap.String("hash", res.TranID),
		zap.String("info", res.Info))
	return res.TranID, nil
}

// SignAndSend signs and sends the transaction.
func (a *Actor) SignAndSend(tx *transaction.Transaction) (string, error) {
	if err := a.Sign(tx); err != nil {
		return "", err
	}
	return a.Send(tx)
}

// SendAndConfirm signs, sends and awaits the transaction using the Poller
// settings. The transaction is returned even if an error happens.
func (a *Actor) SendAndConfirm(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	hash, err := a.SignAndSend(tx)
	if err != nil {
		return tx, err
	}
	return a.Confirm(ctx, tx, hash)
}
