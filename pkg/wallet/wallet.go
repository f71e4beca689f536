package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/zilgo/zilgo/pkg/encoding/address"
	"github.com/zilgo/zilgo/pkg/io"
	"github.com/zilgo/zilgo/pkg/util"
)

const (
	// The current version of the wallet file format.
	walletVersion = "1.0"
)

// Wallet is a set of accounts able to sign transactions. It's stored as JSON
// with encrypted keys.
type Wallet struct {
	// Version of the wallet, used for later upgrades.
	Version string `json:"version"`

	// A list of accounts which describes the details of each account
	// in the wallet.
	Accounts []*Account `json:"accounts"`

	// Default is the address used for signing when the transaction carries
	// no sender. It's never picked implicitly.
	Default string `json:"default,omitempty"`

	// Path where the wallet file is located.
	path string
}

// NewWallet creates a new empty wallet. Nothing is written until Save.
func NewWallet(location string) *Wallet {
	return &Wallet{
		Version:  walletVersion,
		Accounts: []*Account{},
		path:     location,
	}
}

// NewWalletFromFile creates a Wallet from the given wallet file path.
func NewWalletFromFile(path string) (*Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	w := &Wallet{path: path}
	if err := json.Unmarshal(data, w); err != nil {
		return nil, fmt.Errorf("unmarshal wallet: %w", err)
	}
	return w, nil
}

// Path returns the location of the wallet on the filesystem.
func (w *Wallet) Path() string {
	return w.path
}

// CreateAccount generates a new account, encrypts it with the passphrase and
// adds it to the wallet.
func (w *Wallet) CreateAccount(label, passphrase string) (*Account, error) {
	acc, err := NewAccount()
	if err != nil {
		return nil, err
	}
	acc.Label = label
	if err := acc.Encrypt(passphrase); err != nil {
		return nil, err
	}
	w.AddAccount(acc)
	return acc, nil
}

// AddAccount adds an existing Account to the wallet.
func (w *Wallet) AddAccount(acc *Account) {
	w.Accounts = append(w.Accounts, acc)
}

// RemoveAccount removes an Account with the specified address from the wallet.
func (w *Wallet) RemoveAccount(addr string) error {
	h, err := address.Normalize(addr)
	if err != nil {
		return err
	}
	for i, acc := range w.Accounts {
		if ah, err := acc.Uint160(); err == nil && ah.Equals(h) {
			w.Accounts = append(w.Accounts[:i], w.Accounts[i+1:]...)
			if def, err := address.Normalize(w.Default); err == nil && def.Equals(h) {
				w.Default = ""
			}
			return nil
		}
	}
	return errors.New("account wasn't found")
}

// GetAccount returns an account corresponding to the address, nil if there
// is no such account.
func (w *Wallet) GetAccount(h util.Uint160) *Account {
	for _, acc := range w.Accounts {
		if ah, err := acc.Uint160(); err == nil && ah.Equals(h) {
			return acc
		}
	}
	return nil
}

// SetDefault makes the account with the given address the default signer.
func (w *Wallet) SetDefault(h util.Uint160) error {
	if w.GetAccount(h) == nil {
		return fmt.Errorf("%w: %s", ErrNoSignerAccount, address.ToChecksum(h))
	}
	w.Default = address.ToChecksum(h)
	return nil
}

// DefaultAccount returns the explicitly configured default account.
func (w *Wallet) DefaultAccount() (*Account, error) {
	if w.Default == "" {
		return nil, fmt.Errorf("%w: no default account set", ErrNoSignerAccount)
	}
	h, err := address.Normalize(w.Default)
	if err != nil {
		return nil, err
	}
	acc := w.GetAccount(h)
	if acc == nil {
		return nil, fmt.Errorf("%w: default account %s is missing", ErrNoSignerAccount, w.Default)
	}
	return acc, nil
}

// Save saves the wallet data to the file located at the path that was either
// provided via NewWallet or NewWalletFromFile.
func (w *Wallet) Save() error {
	if w.path == "" {
		return errors.New("no path")
	}
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return err
	}
	if err := io.MakeDirForFile(w.path, "wallet"); err != nil {
		return err
	}
	return os.WriteFile(w.path, data, 0600)
}

// Close cleans up all private keys from memory.
func (w *Wallet) Close() {
	for _, acc := range w.Accounts {
		acc.Close()
	}
}
