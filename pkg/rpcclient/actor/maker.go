package actor

import (
	"fmt"
	"math/big"

	"github.com/zilgo/zilgo/pkg/core/transaction"
)

// MakeUnsigned creates a transaction from the given parameters filling the
// version, gas price and gas limit (when unset) with Actor defaults.
func (a *Actor) MakeUnsigned(p transaction.Params) (*transaction.Transaction, error) {
	if p.Version == 0 {
		p.Version = a.version
	}
	if p.GasPrice == nil {
		price, err := a.gasPrice()
		if err != nil {
			return nil, err
		}
		p.GasPrice = price
	}
	if p.GasLimit == 0 {
		p.GasLimit = a.opts.GasLimit
	}
	if a.opts.ToDS {
		p.ToDS = true
	}
	return transaction.New(p)
}

// MakeTransfer creates a signed transaction sending amount (in Qa) to the
// given address.
func (a *Actor) MakeTransfer(to string, amount *big.Int) (*transaction.Transaction, error) {
	tx, err := a.MakeUnsigned(transaction.Params{
		ToAddr: to,
		Amount: amount,
	})
	if err != nil {
		return nil, err
	}
	if err := a.Sign(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (a *Actor) gasPrice() (*big.Int, error) {
	if a.opts.GasPrice != nil {
		return new(big.Int).Set(a.opts.GasPrice), nil
	}
	price, err := a.client.GetMinimumGasPrice()
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	return price, nil
}
