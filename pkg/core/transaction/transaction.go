package transaction

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/zilgo/zilgo/pkg/encoding/address"
)

// MainNetVersion is the packed version of MainNet transactions (chain ID 1,
// message version 1).
const MainNetVersion uint32 = 65537

var (
	// ErrTerminalState is returned on attempt to change the state of confirmed
	// or rejected transaction.
	ErrTerminalState = errors.New("transaction is in a terminal state")
	// ErrAlreadySigned is returned by Bytes for signed transactions, use
	// SignableBytes to re-derive the payload explicitly.
	ErrAlreadySigned = errors.New("transaction is already signed")
	// ErrNonceNotSet is returned when encoding a transaction without nonce.
	ErrNonceNotSet = errors.New("nonce is not set")
	// ErrNoSenderKey is returned when encoding a transaction without sender
	// public key.
	ErrNoSenderKey = errors.New("sender public key is not set")
	// ErrNotSigned is returned on attempt to submit a transaction without
	// signature.
	ErrNotSigned = errors.New("transaction is not signed")
)

// Receipt is the node's verdict on the transaction.
type Receipt struct {
	CumulativeGas uint64
	EpochNum      uint64
	Success       bool
}

// Transaction is a single transfer or contract operation tracked from
// construction to its final (confirmed or rejected) state. It's not safe for
// concurrent use.
type Transaction struct {
	// ID is the hash assigned by the node, it's empty until the transaction
	// is accepted.
	ID string

	// Packed chain ID and message version, see PackVersion.
	Version uint32
	// Nonce of the sender account, nil means it's to be resolved on signing.
	Nonce *uint64
	// ToAddr is the recipient in any accepted form (bech32 or hex).
	ToAddr       string
	SenderPubKey []byte
	Amount       *big.Int
	GasPrice     *big.Int
	GasLimit     uint64
	Code         []byte
	Data         []byte

	// Signature is 64-byte r||s Schnorr signature.
	Signature []byte
	Receipt   *Receipt
	// ToDS routes the transaction to the DS committee on submission.
	ToDS bool

	status Status
}

// Params are transaction construction parameters.
type Params struct {
	ID           string
	Version      uint32
	Nonce        *uint64
	ToAddr       string
	SenderPubKey []byte
	Amount       *big.Int
	GasPrice     *big.Int
	GasLimit     uint64
	Code         []byte
	Data         []byte
	Signature    []byte
	Receipt      *Receipt
	ToDS         bool
}

// PackVersion combines chain ID and message version into transaction version.
func PackVersion(chainID uint16, msgVersion uint16) uint32 {
	return uint32(chainID)<<16 | uint32(msgVersion)
}

// New creates a transaction in Initialized state.
func New(p Params) (*Transaction, error) {
	return newWithStatus(p, Initialized)
}

// NewConfirmed creates a transaction in Confirmed state, it's used to
// represent already known results.
func NewConfirmed(p Params) (*Transaction, error) {
	return newWithStatus(p, Confirmed)
}

// NewRejected creates a transaction in Rejected state, it's used to represent
// already known results.
func NewRejected(p Params) (*Transaction, error) {
	return newWithStatus(p, Rejected)
}

func newWithStatus(p Params, s Status) (*Transaction, error) {
	if err := checkUint128(p.Amount); err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	if err := checkUint128(p.GasPrice); err != nil {
		return nil, fmt.Errorf("gas price: %w", err)
	}
	if p.ToAddr != "" {
		if _, err := address.Normalize(p.ToAddr); err != nil {
			return nil, err
		}
	}
	t := &Transaction{
		ID:           p.ID,
		Version:      p.Version,
		ToAddr:       p.ToAddr,
		SenderPubKey: p.SenderPubKey,
		Amount:       copyInt(p.Amount),
		GasPrice:     copyInt(p.GasPrice),
		GasLimit:     p.GasLimit,
		Code:         p.Code,
		Data:         p.Data,
		Signature:    p.Signature,
		Receipt:      p.Receipt,
		ToDS:         p.ToDS,
		status:       s,
	}
	if p.Nonce != nil {
		n := *p.Nonce
		t.Nonce = &n
	}
	return t, nil
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// Status returns the current transaction state.
func (t *Transaction) Status() Status {
	return t.status
}

// IsInitialized returns true if the transaction wasn't submitted yet.
func (t *Transaction) IsInitialized() bool { return t.status == Initialized }

// IsPending returns true if the transaction awaits confirmation.
func (t *Transaction) IsPending() bool { return t.status == Pending }

// IsConfirmed returns true if the transaction was successfully executed.
func (t *Transaction) IsConfirmed() bool { return t.status == Confirmed }

// IsRejected returns true if the transaction failed or wasn't confirmed.
func (t *Transaction) IsRejected() bool { return t.status == Rejected }

// SetPending moves the transaction into Pending state.
func (t *Transaction) SetPending() error {
	return t.setStatus(Pending)
}

// SetRejected moves the transaction into Rejected state.
func (t *Transaction) SetRejected() error {
	return t.setStatus(Rejected)
}

// ApplyReceipt stores the node's result, the transaction becomes Confirmed if
// the receipt is successful and Rejected otherwise.
func (t *Transaction) ApplyReceipt(id string, r Receipt) error {
	next := Rejected
	if r.Success {
		next = Confirmed
	}
	if err := t.setStatus(next); err != nil {
		return err
	}
	t.ID = id
	t.Receipt = &r
	return nil
}

func (t *Transaction) setStatus(s Status) error {
	if t.status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrTerminalState, t.status)
	}
	if s == Initialized && t.status != Initialized {
		return fmt.Errorf("can't move %s transaction back to %s", t.status, s)
	}
	t.status = s
	return nil
}

// CoreInfo returns the signed part of the transaction with the recipient
// normalized to 20 bytes.
func (t *Transaction) CoreInfo() (*CoreInfo, error) {
	if t.Nonce == nil {
		return nil, ErrNonceNotSet
	}
	if len(t.SenderPubKey) == 0 {
		return nil, ErrNoSenderKey
	}
	to, err := address.Normalize(t.ToAddr)
	if err != nil {
		return nil, err
	}
	return &CoreInfo{
		Version:      t.Version,
		Nonce:        *t.Nonce,
		ToAddr:       to.Bytes(),
		SenderPubKey: t.SenderPubKey,
		Amount:       t.Amount,
		GasPrice:     t.GasPrice,
		GasLimit:     t.GasLimit,
		Code:         t.Code,
		Data:         t.Data,
	}, nil
}

// Bytes returns the canonical payload to be signed. It refuses signed
// transactions, see SignableBytes.
func (t *Transaction) Bytes() ([]byte, error) {
	if len(t.Signature) != 0 {
		return nil, ErrAlreadySigned
	}
	return t.SignableBytes()
}

// SignableBytes returns the canonical payload regardless of the signature,
// it's used for re-signing and signature verification.
func (t *Transaction) SignableBytes() ([]byte, error) {
	c, err := t.CoreInfo()
	if err != nil {
		return nil, err
	}
	return c.Bytes()
}

// Payload returns CreateTransaction parameters for the transaction.
func (t *Transaction) Payload() (*Payload, error) {
	if t.Nonce == nil {
		return nil, ErrNonceNotSet
	}
	to, err := address.Normalize(t.ToAddr)
	if err != nil {
		return nil, err
	}
	return &Payload{
		Version:   t.Version,
		Nonce:     *t.Nonce,
		ToAddr:    address.ToChecksum(to),
		Amount:    copyInt(t.Amount).String(),
		PubKey:    hex.EncodeToString(t.SenderPubKey),
		GasPrice:  copyInt(t.GasPrice).String(),
		GasLimit:  t.GasLimit,
		Code:      string(t.Code),
		Data:      string(t.Data),
		Signature: hex.EncodeToString(t.Signature),
		Priority:  t.ToDS,
	}, nil
}

// Payload is the JSON parameter of CreateTransaction call. Amounts are
// decimal strings.
type Payload struct {
	Version   uint32 `json:"version"`
	Nonce     uint64 `json:"nonce"`
	ToAddr    string `json:"toAddr"`
	Amount    string `json:"amount"`
	PubKey    string `json:"pubKey"`
	GasPrice  string `json:"gasPrice"`
	GasLimit  uint64 `json:"gasLimit"`
	Code      string `json:"code"`
	Data      string `json:"data"`
	Signature string `json:"signature"`
	Priority  bool   `json:"priority"`
}
