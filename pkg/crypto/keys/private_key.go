package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/zilgo/zilgo/pkg/util"
)

// PrivateKeySize is the size of a serialized private key.
const PrivateKeySize = 32

// ErrInvalidPrivateKey is returned for keys that are zero or not less than the
// curve order.
var ErrInvalidPrivateKey = errors.New("invalid private key")

// PrivateKey represents a secp256k1 private key.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// NewPrivateKey creates a new random private key.
func NewPrivateKey() (*PrivateKey, error) {
	k, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: k}, nil
}

// NewPrivateKeyFromHex returns a PrivateKey created from the given hex string,
// 0x prefix is allowed.
func NewPrivateKeyFromHex(str string) (*PrivateKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(str, "0x"))
	if err != nil {
		return nil, err
	}
	return NewPrivateKeyFromBytes(b)
}

// NewPrivateKeyFromBytes returns a PrivateKey from the given 32-byte slice.
func NewPrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != PrivateKeySize {
		return nil, fmt.Errorf("invalid byte length: expected %d bytes got %d", PrivateKeySize, len(b))
	}
	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(b); overflow || s.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	return &PrivateKey{key: secp256k1.NewPrivateKey(&s)}, nil
}

// PublicKey derives the public key from the private key.
func (p *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: p.key.PubKey()}
}

// Address returns the account address corresponding to this key.
func (p *PrivateKey) Address() util.Uint160 {
	return p.PublicKey().Address()
}

// Bytes returns the 32-byte big-endian representation of the key.
func (p *PrivateKey) Bytes() []byte {
	return p.key.Serialize()
}

// String implements the stringer interface.
func (p *PrivateKey) String() string {
	return hex.EncodeToString(p.Bytes())
}

// Destroy zeroes the key material. The key can't be used after that.
func (p *PrivateKey) Destroy() {
	p.key.Zero()
}
