package wallet

import (
	"errors"
	"fmt"

	"github.com/zilgo/zilgo/pkg/core/transaction"
	"github.com/zilgo/zilgo/pkg/crypto/keys"
	"github.com/zilgo/zilgo/pkg/util"
	"github.com/zilgo/zilgo/pkg/zilrpc"
)

// ErrNoSignerAccount is returned when there is no account to sign the
// transaction with.
var ErrNoSignerAccount = errors.New("no signer account")

// BalanceGetter is used to resolve the nonce of the sender.
type BalanceGetter interface {
	GetBalance(addr util.Uint160) (*zilrpc.Balance, error)
}

// Sign signs the transaction with the account owning its sender public key
// or, if the key isn't set, with the default account.
func (w *Wallet) Sign(tx *transaction.Transaction, bg BalanceGetter) error {
	acc, err := w.signerFor(tx)
	if err != nil {
		return err
	}
	return signWithAccount(tx, acc, bg)
}

// SignWith signs the transaction with the account of the given address.
func (w *Wallet) SignWith(tx *transaction.Transaction, h util.Uint160, bg BalanceGetter) error {
	acc := w.GetAccount(h)
	if acc == nil {
		return fmt.Errorf("%w: %s", ErrNoSignerAccount, h)
	}
	return signWithAccount(tx, acc, bg)
}

func (w *Wallet) signerFor(tx *transaction.Transaction) (*Account, error) {
	if len(tx.SenderPubKey) == 0 {
		return w.DefaultAccount()
	}
	pub, err := keys.NewPublicKeyFromBytes(tx.SenderPubKey)
	if err != nil {
		return nil, fmt.Errorf("bad sender key: %w", err)
	}
	acc := w.GetAccount(pub.Address())
	if acc == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSignerAccount, pub.Address())
	}
	return acc, nil
}

// signWithAccount resolves the nonce if needed, then encodes and signs the
// transaction.
func signWithAccount(tx *transaction.Transaction, acc *Account, bg BalanceGetter) error {
	priv := acc.PrivateKey()
	if priv == nil {
		return fmt.Errorf("%w: %s", ErrAccountLocked, acc.Address)
	}
	resolved := tx.Nonce == nil
	if resolved {
		if bg == nil {
			return errors.New("nonce is not set and can't be resolved")
		}
		bal, err := bg.GetBalance(priv.Address())
		if err != nil {
			return fmt.Errorf("failed to get nonce: %w", err)
		}
		n := bal.Nonce + 1
		tx.Nonce = &n
	}
	oldKey := tx.SenderPubKey
	tx.SenderPubKey = priv.PublicKey().Bytes()
	b, err := tx.SignableBytes()
	if err != nil {
		if resolved {
			tx.Nonce = nil
		}
		tx.SenderPubKey = oldKey
		return err
	}
	tx.Signature = priv.Sign(b)
	return nil
}

// Verify checks the transaction signature against its sender public key.
func Verify(tx *transaction.Transaction) (bool, error) {
	if len(tx.Signature) == 0 {
		return false, errors.New("transaction is not signed")
	}
	pub, err := keys.NewPublicKeyFromBytes(tx.SenderPubKey)
	if err != nil {
		return false, err
	}
	b, err := tx.SignableBytes()
	if err != nil {
		return false, err
	}
	return pub.Verify(b, tx.Signature), nil
}
