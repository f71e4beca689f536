package keys

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/zilgo/zilgo/pkg/crypto/hash"
	"github.com/zilgo/zilgo/pkg/encoding/address"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// Supported key derivation functions.
const (
	KDFPbkdf2 = "pbkdf2"
	KDFScrypt = "scrypt"
)

const (
	keystoreVersion = 3
	keystoreCipher  = "aes-128-ctr"
)

// ErrWrongPassphrase is returned when the keystore MAC doesn't match.
var ErrWrongPassphrase = errors.New("wrong passphrase")

// Keystore is a passphrase-encrypted private key (version 3 keystore).
type Keystore struct {
	Address string         `json:"address"`
	Crypto  KeystoreCrypto `json:"crypto"`
	ID      string         `json:"id"`
	Version int            `json:"version"`
}

// KeystoreCrypto is the encrypted part of the Keystore.
type KeystoreCrypto struct {
	Cipher       string       `json:"cipher"`
	CipherParams CipherParams `json:"cipherparams"`
	Ciphertext   string       `json:"ciphertext"`
	KDF          string       `json:"kdf"`
	KDFParams    KDFParams    `json:"kdfparams"`
	MAC          string       `json:"mac"`
}

// CipherParams holds the initialization vector of the cipher.
type CipherParams struct {
	IV string `json:"iv"`
}

// KDFParams are key derivation parameters, N/R/P are used by scrypt and C by
// pbkdf2.
type KDFParams struct {
	Salt  Salt `json:"salt"`
	N     int  `json:"n"`
	C     int  `json:"c"`
	R     int  `json:"r"`
	P     int  `json:"p"`
	DKLen int  `json:"dklen"`
}

// Salt is a KDF salt. It's written as hex, but older keystores store it as an
// array of (possibly signed) bytes, so both are accepted.
type Salt []byte

// DefaultKDFParams returns the parameters used for new keystores.
func DefaultKDFParams() KDFParams {
	return KDFParams{N: 8192, C: 262144, R: 8, P: 1, DKLen: 32}
}

// MarshalJSON implements the json.Marshaler interface.
func (s Salt) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(s))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *Salt) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		b, err := hex.DecodeString(str)
		if err != nil {
			return fmt.Errorf("bad salt: %w", err)
		}
		*s = b
		return nil
	}
	var arr []int
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("bad salt: %w", err)
	}
	b := make([]byte, len(arr))
	for i, v := range arr {
		if v < -128 || v > 255 {
			return fmt.Errorf("bad salt: byte %d out of range", v)
		}
		b[i] = byte(v)
	}
	*s = b
	return nil
}

// NewKeystore encrypts p with the passphrase using the given KDF and default
// parameters.
func NewKeystore(p *PrivateKey, passphrase string, kdf string) (*Keystore, error) {
	return NewKeystoreWithParams(p, passphrase, kdf, DefaultKDFParams())
}

// NewKeystoreWithParams is NewKeystore with custom KDF parameters, the salt is
// generated if not set.
func NewKeystoreWithParams(p *PrivateKey, passphrase string, kdf string, params KDFParams) (*Keystore, error) {
	if len(params.Salt) == 0 {
		params.Salt = make([]byte, 32)
		if _, err := rand.Read(params.Salt); err != nil {
			return nil, err
		}
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}
	dk, err := deriveKey([]byte(passphrase), kdf, params)
	if err != nil {
		return nil, err
	}
	ciphertext, err := aesCTR(dk[:16], iv, p.Bytes())
	if err != nil {
		return nil, err
	}
	mac := keystoreMAC(dk, ciphertext, iv)
	return &Keystore{
		Address: address.ToChecksum(p.Address()),
		Crypto: KeystoreCrypto{
			Cipher:       keystoreCipher,
			CipherParams: CipherParams{IV: hex.EncodeToString(iv)},
			Ciphertext:   hex.EncodeToString(ciphertext),
			KDF:          kdf,
			KDFParams:    params,
			MAC:          hex.EncodeToString(mac[:]),
		},
		ID:      uuid.New().String(),
		Version: keystoreVersion,
	}, nil
}

// Decrypt returns the private key stored in the keystore.
func (k *Keystore) Decrypt(passphrase string) (*PrivateKey, error) {
	if k.Crypto.Cipher != keystoreCipher {
		return nil, fmt.Errorf("unsupported cipher %q", k.Crypto.Cipher)
	}
	iv, err := hex.DecodeString(k.Crypto.CipherParams.IV)
	if err != nil {
		return nil, fmt.Errorf("bad iv: %w", err)
	}
	ciphertext, err := hex.DecodeString(k.Crypto.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("bad ciphertext: %w", err)
	}
	mac, err := hex.DecodeString(k.Crypto.MAC)
	if err != nil {
		return nil, fmt.Errorf("bad mac: %w", err)
	}
	dk, err := deriveKey([]byte(passphrase), k.Crypto.KDF, k.Crypto.KDFParams)
	if err != nil {
		return nil, err
	}
	expected := keystoreMAC(dk, ciphertext, iv)
	if !bytes.Equal(expected[:], mac) {
		return nil, ErrWrongPassphrase
	}
	plain, err := aesCTR(dk[:16], iv, ciphertext)
	if err != nil {
		return nil, err
	}
	priv, err := NewPrivateKeyFromBytes(plain)
	if err != nil {
		return nil, err
	}
	if k.Address != "" {
		addr, err := address.Normalize(k.Address)
		if err != nil {
			return nil, err
		}
		if !addr.Equals(priv.Address()) {
			return nil, fmt.Errorf("keystore address %s doesn't match the key", k.Address)
		}
	}
	return priv, nil
}

// DecryptKeystoreJSON parses the keystore JSON and decrypts it.
func DecryptKeystoreJSON(data []byte, passphrase string) (*PrivateKey, error) {
	k := new(Keystore)
	if err := json.Unmarshal(data, k); err != nil {
		return nil, fmt.Errorf("not a keystore: %w", err)
	}
	return k.Decrypt(passphrase)
}

func deriveKey(pass []byte, kdf string, params KDFParams) ([]byte, error) {
	if params.DKLen < 32 {
		return nil, fmt.Errorf("derived key length %d is too short", params.DKLen)
	}
	switch kdf {
	case KDFPbkdf2:
		return pbkdf2.Key(pass, params.Salt, params.C, params.DKLen, sha256.New), nil
	case KDFScrypt:
		return scrypt.Key(pass, params.Salt, params.N, params.R, params.P, params.DKLen)
	default:
		return nil, fmt.Errorf("unsupported kdf %q", kdf)
	}
}

func aesCTR(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	cipher.NewCTR(block, iv).XORKeyStream(out, data)
	return out, nil
}

func keystoreMAC(dk, ciphertext, iv []byte) [32]byte {
	return hash.Sha256Concat(dk[16:32], ciphertext, iv, []byte(keystoreCipher))
}
