package wallet

import (
	"errors"

	"github.com/zilgo/zilgo/pkg/crypto/keys"
	"github.com/zilgo/zilgo/pkg/encoding/address"
	"github.com/zilgo/zilgo/pkg/util"
)

// ErrAccountLocked is returned on attempt to sign with an account that
// wasn't decrypted.
var ErrAccountLocked = errors.New("account is locked")

// Account is a single key pair of the wallet. The private key is only kept in
// memory, the file stores the encrypted keystore.
type Account struct {
	privateKey *keys.PrivateKey

	// Address is the checksummed hex address of the account.
	Address string `json:"address"`

	// Label is a label the user had made for this account.
	Label string `json:"label"`

	// Keystore is the passphrase-encrypted private key.
	Keystore *keys.Keystore `json:"keystore,omitempty"`
}

// NewAccount creates a new Account with a random generated PrivateKey.
func NewAccount() (*Account, error) {
	priv, err := keys.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return NewAccountFromPrivateKey(priv), nil
}

// NewAccountFromPrivateKey creates an unlocked account for the given key.
func NewAccountFromPrivateKey(p *keys.PrivateKey) *Account {
	return &Account{
		privateKey: p,
		Address:    address.ToChecksum(p.Address()),
	}
}

// NewAccountFromKeystore creates an account from the encrypted keystore JSON.
func NewAccountFromKeystore(data []byte, passphrase string) (*Account, error) {
	priv, err := keys.DecryptKeystoreJSON(data, passphrase)
	if err != nil {
		return nil, err
	}
	a := NewAccountFromPrivateKey(priv)
	return a, a.Encrypt(passphrase)
}

// Encrypt encrypts the account's private key with the given passphrase into
// the keystore.
func (a *Account) Encrypt(passphrase string) error {
	if a.privateKey == nil {
		return ErrAccountLocked
	}
	ks, err := keys.NewKeystore(a.privateKey, passphrase, keys.KDFScrypt)
	if err != nil {
		return err
	}
	a.Keystore = ks
	return nil
}

// Decrypt unlocks the account using the keystore.
func (a *Account) Decrypt(passphrase string) error {
	if a.Keystore == nil {
		return errors.New("no keystore in the account")
	}
	priv, err := a.Keystore.Decrypt(passphrase)
	if err != nil {
		return err
	}
	a.privateKey = priv
	return nil
}

// Close removes the private key from memory.
func (a *Account) Close() {
	if a.privateKey == nil {
		return
	}
	a.privateKey.Destroy()
	a.privateKey = nil
}

// CanSign returns true when the account is unlocked.
func (a *Account) CanSign() bool {
	return a.privateKey != nil
}

// PrivateKey returns private key corresponding to the account, nil for
// locked accounts.
func (a *Account) PrivateKey() *keys.PrivateKey {
	return a.privateKey
}

// Uint160 returns the account address bytes.
func (a *Account) Uint160() (util.Uint160, error) {
	return address.Normalize(a.Address)
}
