package rpcclient

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/zilgo/zilgo/pkg/core/transaction"
	"github.com/zilgo/zilgo/pkg/util"
	"github.com/zilgo/zilgo/pkg/zilrpc"
)

// GetBalance returns the balance and the current nonce of the account.
func (c *Client) GetBalance(addr util.Uint160) (*zilrpc.Balance, error) {
	var (
		params = []any{addr.String()}
		resp   = new(zilrpc.Balance)
	)
	if err := c.performRequest(zilrpc.GetBalanceMethod, params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateTransaction submits the signed transaction payload to the node.
// Errors returned by the node are *zilrpc.Error.
func (c *Client) CreateTransaction(p *transaction.Payload) (*zilrpc.CreateTxResult, error) {
	var (
		params = []any{p}
		resp   = new(zilrpc.CreateTxResult)
	)
	if err := c.performRequest(zilrpc.CreateTransactionMethod, params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetTransaction returns the transaction with its receipt by hash.
func (c *Client) GetTransaction(hash string) (*zilrpc.TransactionResult, error) {
	var (
		params = []any{hash}
		resp   = new(zilrpc.TransactionResult)
	)
	if err := c.performRequest(zilrpc.GetTransactionMethod, params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetMinimumGasPrice returns the minimum gas price accepted by the node in Qa.
func (c *Client) GetMinimumGasPrice() (*big.Int, error) {
	var resp string
	if err := c.performRequest(zilrpc.GetMinimumGasPriceMethod, nil, &resp); err != nil {
		return nil, err
	}
	v, ok := new(big.Int).SetString(resp, 10)
	if !ok {
		return nil, fmt.Errorf("bad gas price %q", resp)
	}
	return v, nil
}

// GetNetworkID returns the chain ID of the network.
func (c *Client) GetNetworkID() (uint16, error) {
	var resp zilrpc.FlexUint
	if err := c.performRequest(zilrpc.GetNetworkIDMethod, nil, &resp); err != nil {
		return 0, err
	}
	if resp > 0xffff {
		return 0, fmt.Errorf("network ID %d is out of range", resp)
	}
	return uint16(resp), nil
}

// GetSmartContractState returns the raw state of the contract.
func (c *Client) GetSmartContractState(addr util.Uint160) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.performRequest(zilrpc.GetSmartContractStateMethod, []any{addr.String()}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetSmartContractInit returns the initialization parameters of the contract.
func (c *Client) GetSmartContractInit(addr util.Uint160) ([]zilrpc.StateField, error) {
	var resp []zilrpc.StateField
	if err := c.performRequest(zilrpc.GetSmartContractInitMethod, []any{addr.String()}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
