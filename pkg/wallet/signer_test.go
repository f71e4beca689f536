package wallet

import (
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zilgo/zilgo/pkg/core/transaction"
	"github.com/zilgo/zilgo/pkg/crypto/keys"
	"github.com/zilgo/zilgo/pkg/util"
	"github.com/zilgo/zilgo/pkg/zilrpc"
)

const (
	testPriv = "e19d05c5452598e24caad4a0d85a49146f7be089515c905ae6a19e8a578a6930"
	testPub  = "0246e7178dc8253201101e18fd6f6eb9972451d121fc57aa2a06dd5c111e58dc6a"
	testTo   = "0x4BAF5faDA8e5Db92C3d3242618c5B47133AE003C"
)

type fakeBalanceGetter struct {
	nonce uint64
	err   error
	calls []util.Uint160
}

func (f *fakeBalanceGetter) GetBalance(addr util.Uint160) (*zilrpc.Balance, error) {
	f.calls = append(f.calls, addr)
	if f.err != nil {
		return nil, f.err
	}
	return &zilrpc.Balance{Balance: "1000", Nonce: f.nonce}, nil
}

func newTestWallet(t *testing.T) (*Wallet, *Account) {
	priv, err := keys.NewPrivateKeyFromHex(testPriv)
	require.NoError(t, err)
	w := NewWallet("")
	acc := NewAccountFromPrivateKey(priv)
	w.AddAccount(acc)
	return w, acc
}

func newTestTx(t *testing.T, p transaction.Params) *transaction.Transaction {
	p.ToAddr = testTo
	p.Amount = big.NewInt(10000)
	p.GasPrice = big.NewInt(100)
	p.GasLimit = 1000
	tx, err := transaction.New(p)
	require.NoError(t, err)
	return tx
}

func TestSignWithResolvesNonce(t *testing.T) {
	w, acc := newTestWallet(t)
	h, err := acc.Uint160()
	require.NoError(t, err)
	bg := &fakeBalanceGetter{nonce: 41}
	tx := newTestTx(t, transaction.Params{})

	require.NoError(t, w.SignWith(tx, h, bg))
	require.Equal(t, []util.Uint160{h}, bg.calls)
	require.NotNil(t, tx.Nonce)
	require.Equal(t, uint64(42), *tx.Nonce)
	require.Equal(t, testPub, hex.EncodeToString(tx.SenderPubKey))
	require.Len(t, tx.Signature, keys.SignatureSize)

	ok, err := Verify(tx)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, tx.IsInitialized())

	// Signing again resolves the nonce only if it's not set.
	require.NoError(t, w.SignWith(tx, h, bg))
	require.Len(t, bg.calls, 1)
}

func TestSignExplicitNonce(t *testing.T) {
	w, acc := newTestWallet(t)
	h, err := acc.Uint160()
	require.NoError(t, err)
	nonce := uint64(7)
	tx := newTestTx(t, transaction.Params{Nonce: &nonce})

	require.NoError(t, w.SignWith(tx, h, nil))
	require.Equal(t, uint64(7), *tx.Nonce)

	ok, err := Verify(tx)
	require.NoError(t, err)
	require.True(t, ok)

	// Mutated core field invalidates the signature.
	tx.GasLimit++
	ok, err = Verify(tx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSignNonceFailure(t *testing.T) {
	w, acc := newTestWallet(t)
	h, err := acc.Uint160()
	require.NoError(t, err)
	tx := newTestTx(t, transaction.Params{})

	bg := &fakeBalanceGetter{err: errors.New("node is down")}
	require.Error(t, w.SignWith(tx, h, bg))
	require.Nil(t, tx.Nonce)
	require.Empty(t, tx.Signature)

	require.Error(t, w.SignWith(tx, h, nil))
}

func TestSignEncodingFailure(t *testing.T) {
	w, acc := newTestWallet(t)
	h, err := acc.Uint160()
	require.NoError(t, err)
	tx := newTestTx(t, transaction.Params{})
	tx.ToAddr = "bad"

	bg := &fakeBalanceGetter{nonce: 41}
	require.Error(t, w.SignWith(tx, h, bg))
	require.Nil(t, tx.Nonce)
	require.Empty(t, tx.SenderPubKey)
	require.Empty(t, tx.Signature)

	// Fixed transaction gets a fresh nonce.
	bg.nonce = 42
	tx.ToAddr = testTo
	require.NoError(t, w.SignWith(tx, h, bg))
	require.Len(t, bg.calls, 2)
	require.Equal(t, uint64(43), *tx.Nonce)
}

func TestSignBySenderKey(t *testing.T) {
	w, _ := newTestWallet(t)
	other, err := NewAccount()
	require.NoError(t, err)
	w.AddAccount(other)

	tx := newTestTx(t, transaction.Params{SenderPubKey: other.PrivateKey().PublicKey().Bytes()})
	require.NoError(t, w.Sign(tx, &fakeBalanceGetter{}))
	require.Equal(t, other.PrivateKey().PublicKey().Bytes(), tx.SenderPubKey)
	ok, err := Verify(tx)
	require.NoError(t, err)
	require.True(t, ok)

	stranger, err := keys.NewPrivateKey()
	require.NoError(t, err)
	tx = newTestTx(t, transaction.Params{SenderPubKey: stranger.PublicKey().Bytes()})
	require.ErrorIs(t, w.Sign(tx, &fakeBalanceGetter{}), ErrNoSignerAccount)

	tx = newTestTx(t, transaction.Params{SenderPubKey: []byte{1, 2, 3}})
	require.Error(t, w.Sign(tx, &fakeBalanceGetter{}))
}

func TestSignDefaultAccount(t *testing.T) {
	w, acc := newTestWallet(t)
	other, err := NewAccount()
	require.NoError(t, err)
	w.AddAccount(other)

	// No implicit default even with accounts present.
	tx := newTestTx(t, transaction.Params{})
	require.ErrorIs(t, w.Sign(tx, &fakeBalanceGetter{}), ErrNoSignerAccount)
	require.Nil(t, tx.Nonce)

	h, err := acc.Uint160()
	require.NoError(t, err)
	require.NoError(t, w.SetDefault(h))
	require.NoError(t, w.Sign(tx, &fakeBalanceGetter{}))
	require.Equal(t, testPub, hex.EncodeToString(tx.SenderPubKey))
}

func TestSignNoAccount(t *testing.T) {
	w := NewWallet("")
	tx := newTestTx(t, transaction.Params{})
	require.ErrorIs(t, w.SignWith(tx, util.Uint160{1}, &fakeBalanceGetter{}), ErrNoSignerAccount)
	require.ErrorIs(t, w.Sign(tx, &fakeBalanceGetter{}), ErrNoSignerAccount)
	require.ErrorIs(t, w.SetDefault(util.Uint160{1}), ErrNoSignerAccount)
}

func TestSignLockedAccount(t *testing.T) {
	w, acc := newTestWallet(t)
	h, err := acc.Uint160()
	require.NoError(t, err)
	acc.Close()
	tx := newTestTx(t, transaction.Params{})
	require.ErrorIs(t, w.SignWith(tx, h, &fakeBalanceGetter{}), ErrAccountLocked)
}

func TestVerifyUnsigned(t *testing.T) {
	tx := newTestTx(t, transaction.Params{})
	_, err := Verify(tx)
	require.Error(t, err)
}
