/*
Package contract provides smart contract deployment and transition calls on
top of the actor.
*/
package contract

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/zilgo/zilgo/pkg/core/transaction"
	"github.com/zilgo/zilgo/pkg/crypto/hash"
	"github.com/zilgo/zilgo/pkg/util"
	"github.com/zilgo/zilgo/pkg/zilrpc"
)

// NilAddress is the recipient of deployment transactions.
const NilAddress = "0000000000000000000000000000000000000000"

// DefaultGasLimit is used for deployments and calls if no limit is given.
const DefaultGasLimit = 10000

// ErrNotDeployed is returned on attempt to call a contract without address.
var ErrNotDeployed = errors.New("contract is not deployed")

// Status of the contract.
type Status byte

// Contract states.
const (
	Initialized Status = iota
	Deployed
	Rejected
)

// Actor is the part of actor.Actor used by the Contract.
type Actor interface {
	MakeUnsigned(p transaction.Params) (*transaction.Transaction, error)
	SendAndConfirm(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error)
	Sender() util.Uint160
}

// StateReader is the RPC part required to read contract state.
type StateReader interface {
	GetSmartContractState(addr util.Uint160) (json.RawMessage, error)
	GetSmartContractInit(addr util.Uint160) ([]zilrpc.StateField, error)
}

// Value is a named typed parameter of a contract transition or
// initialization.
type Value struct {
	VName string `json:"vname"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// Params are optional transaction parameters for Deploy and Call.
type Params struct {
	Amount   *big.Int
	GasPrice *big.Int
	GasLimit uint64
	Nonce    *uint64
}

// Contract is a smart contract either to be deployed or an existing one.
type Contract struct {
	actor Actor

	Code    string
	Init    []Value
	Address util.Uint160

	status Status
}

// New creates a contract to be deployed.
func New(a Actor, code string, init []Value) *Contract {
	return &Contract{
		actor: a,
		Code:  code,
		Init:  init,
	}
}

// NewDeployed creates a Contract for the already deployed one.
func NewDeployed(a Actor, addr util.Uint160) *Contract {
	return &Contract{
		actor:   a,
		Address: addr,
		status:  Deployed,
	}
}

// Status returns the contract state.
func (c *Contract) Status() Status {
	return c.status
}

// IsDeployed returns true if the contract has an address.
func (c *Contract) IsDeployed() bool {
	return c.status == Deployed
}

// Deploy sends the deployment transaction and awaits it. Contract address is
// set when the transaction is confirmed. The transaction is returned even if
// an error happens.
func (c *Contract) Deploy(ctx context.Context, p Params) (*transaction.Transaction, error) {
	if c.Code == "" || len(c.Init) == 0 {
		return nil, errors.New("can't deploy without code or initialization parameters")
	}
	data, err := json.Marshal(c.Init)
	if err != nil {
		return nil, fmt.Errorf("bad init parameters: %w", err)
	}
	tx, err := c.makeTx(NilAddress, []byte(c.Code), data, p)
	if err != nil {
		return nil, err
	}
	tx, err = c.actor.SendAndConfirm(ctx, tx)
	if tx.IsRejected() {
		c.status = Rejected
	}
	if err != nil {
		return tx, err
	}
	if !tx.IsConfirmed() {
		return tx, nil
	}
	addr, err := Address(c.actor.Sender(), *tx.Nonce)
	if err != nil {
		return tx, err
	}
	c.Address = addr
	c.status = Deployed
	return tx, nil
}

// Call invokes the transition of the deployed contract with the given
// arguments and awaits the transaction.
func (c *Contract) Call(ctx context.Context, transition string, args []Value, p Params) (*transaction.Transaction, error) {
	if !c.IsDeployed() {
		return nil, ErrNotDeployed
	}
	if args == nil {
		args = []Value{}
	}
	data, err := json.Marshal(struct {
		Tag    string  `json:"_tag"`
		Params []Value `json:"params"`
	}{transition, args})
	if err != nil {
		return nil, fmt.Errorf("bad arguments: %w", err)
	}
	tx, err := c.makeTx(c.Address.String(), nil, data, p)
	if err != nil {
		return nil, err
	}
	return c.actor.SendAndConfirm(ctx, tx)
}

// State returns the current contract state.
func (c *Contract) State(r StateReader) (json.RawMessage, error) {
	if !c.IsDeployed() {
		return nil, ErrNotDeployed
	}
	return r.GetSmartContractState(c.Address)
}

// InitParams returns contract initialization parameters as stored by the node.
func (c *Contract) InitParams(r StateReader) ([]zilrpc.StateField, error) {
	if !c.IsDeployed() {
		return nil, ErrNotDeployed
	}
	return r.GetSmartContractInit(c.Address)
}

func (c *Contract) makeTx(to string, code, data []byte, p Params) (*transaction.Transaction, error) {
	if p.GasLimit == 0 {
		p.GasLimit = DefaultGasLimit
	}
	return c.actor.MakeUnsigned(transaction.Params{
		ToAddr:   to,
		Nonce:    p.Nonce,
		Amount:   p.Amount,
		GasPrice: p.GasPrice,
		GasLimit: p.GasLimit,
		Code:     code,
		Data:     data,
	})
}

// Address returns the address of the contract deployed by the sender with
// the given transaction nonce.
func Address(sender util.Uint160, nonce uint64) (util.Uint160, error) {
	if nonce == 0 {
		return util.Uint160{}, errors.New("zero nonce")
	}
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce-1)
	return hash.AddressHashConcat(sender.Bytes(), n[:]), nil
}
