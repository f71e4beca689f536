package zilrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/zilgo/zilgo/pkg/core/transaction"
)

// Balance is a result of GetBalance call.
type Balance struct {
	Balance string `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

// Amount returns the balance as a number of Qa.
func (b *Balance) Amount() (*big.Int, error) {
	v, ok := new(big.Int).SetString(b.Balance, 10)
	if !ok {
		return nil, fmt.Errorf("bad balance %q", b.Balance)
	}
	return v, nil
}

// CreateTxResult is a result of CreateTransaction call.
type CreateTxResult struct {
	Info            string `json:"Info"`
	TranID          string `json:"TranID"`
	ContractAddress string `json:"ContractAddress,omitempty"`
}

// TransactionResult is a result of GetTransaction call.
type TransactionResult struct {
	ID           string  `json:"ID"`
	Version      string  `json:"version"`
	Nonce        string  `json:"nonce"`
	ToAddr       string  `json:"toAddr"`
	SenderPubKey string  `json:"senderPubKey"`
	Amount       string  `json:"amount"`
	GasPrice     string  `json:"gasPrice"`
	GasLimit     string  `json:"gasLimit"`
	Code         string  `json:"code,omitempty"`
	Data         string  `json:"data,omitempty"`
	Signature    string  `json:"signature"`
	Receipt      Receipt `json:"receipt"`
}

// Receipt is the execution result of the transaction.
type Receipt struct {
	CumulativeGas FlexUint `json:"cumulative_gas"`
	EpochNum      FlexUint `json:"epoch_num"`
	Success       bool     `json:"success"`
}

// ToTransaction converts Receipt into transaction.Receipt.
func (r Receipt) ToTransaction() transaction.Receipt {
	return transaction.Receipt{
		CumulativeGas: uint64(r.CumulativeGas),
		EpochNum:      uint64(r.EpochNum),
		Success:       r.Success,
	}
}

// FlexUint is an unsigned integer that can be represented in JSON either as
// a number or as a decimal string.
type FlexUint uint64

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexUint) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("not an unsigned integer: %s", data)
	}
	*f = FlexUint(v)
	return nil
}

// StateField is a contract field or init parameter description.
type StateField struct {
	VName string          `json:"vname"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}
