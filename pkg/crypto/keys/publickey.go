package keys

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/zilgo/zilgo/pkg/crypto/hash"
	"github.com/zilgo/zilgo/pkg/util"
)

// PublicKeySize is the size of a compressed public key.
const PublicKeySize = 33

// PublicKey represents a secp256k1 public key.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// NewPublicKeyFromBytes parses a compressed or uncompressed public key.
func NewPublicKeyFromBytes(b []byte) (*PublicKey, error) {
	k, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, err
	}
	return &PublicKey{key: k}, nil
}

// NewPublicKeyFromString returns a public key created from the given hex
// string, 0x prefix is allowed.
func NewPublicKeyFromString(s string) (*PublicKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, err
	}
	return NewPublicKeyFromBytes(b)
}

// Bytes returns the compressed 33-byte representation of the public key.
func (p *PublicKey) Bytes() []byte {
	return p.key.SerializeCompressed()
}

// String implements the stringer interface.
func (p *PublicKey) String() string {
	return hex.EncodeToString(p.Bytes())
}

// Equal returns true in case public keys are equal.
func (p *PublicKey) Equal(other *PublicKey) bool {
	return p.key.IsEqual(other.key)
}

// Address returns the account address for the key: the last 20 bytes of the
// sha256 hash of the compressed key.
func (p *PublicKey) Address() util.Uint160 {
	return hash.AddressHash(p.Bytes())
}

// MarshalJSON implements the json.Marshaler interface.
func (p *PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	k, err := NewPublicKeyFromString(s)
	if err != nil {
		return err
	}
	*p = *k
	return nil
}
