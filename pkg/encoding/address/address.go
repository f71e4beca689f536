/*
Package address converts between the human-facing address forms (bech32 with
"zil" prefix, plain or checksummed hex) and the canonical 20-byte address.
*/
package address

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/zilgo/zilgo/pkg/crypto/hash"
	"github.com/zilgo/zilgo/pkg/util"
)

// HRP is the human-readable part of bech32-encoded addresses.
const HRP = "zil"

// ErrInvalidAddressFormat is returned when the string given parses neither as
// bech32 nor as hex into exactly 20 bytes.
var ErrInvalidAddressFormat = errors.New("invalid address format")

var (
	bech32Re = regexp.MustCompile(`^zil1[qpzry9x8gf2tvdw0s3jn54khce6mua7l]{38}$`)
	hexRe    = regexp.MustCompile(`^(0[xX])?[0-9a-fA-F]{40}$`)
)

// IsBech32 checks whether s looks like a bech32 address with the "zil"
// prefix. It doesn't verify the checksum.
func IsBech32(s string) bool {
	return bech32Re.MatchString(s)
}

// IsAddress checks whether s is syntactically a valid address in any of the
// supported forms.
func IsAddress(s string) bool {
	return IsBech32(s) || hexRe.MatchString(s)
}

// Normalize converts s to the canonical 20-byte address. Bech32 strings are
// decoded, anything else is treated as hex with an optional 0x prefix. Letter
// case is not validated on the hex path, use IsChecksum for that.
func Normalize(s string) (util.Uint160, error) {
	if IsBech32(s) {
		return FromBech32(s)
	}
	h := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(strings.ToLower(h))
	if err != nil || len(b) != util.Uint160Size {
		return util.Uint160{}, fmt.Errorf("%w: %q", ErrInvalidAddressFormat, s)
	}
	return util.Uint160DecodeBytes(b)
}

// ToBech32 encodes u to bech32 with the "zil" prefix.
func ToBech32(u util.Uint160) string {
	conv, err := bech32.ConvertBits(u.Bytes(), 8, 5, true)
	if err != nil {
		// 8 to 5 bit conversion with padding can't fail.
		panic(err)
	}
	s, err := bech32.Encode(HRP, conv)
	if err != nil {
		panic(err)
	}
	return s
}

// FromBech32 decodes a bech32 address with the "zil" prefix.
func FromBech32(s string) (util.Uint160, error) {
	hrp, data, ver, err := bech32.DecodeGeneric(s)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("%w: %v", ErrInvalidAddressFormat, err)
	}
	if ver != bech32.Version0 {
		return util.Uint160{}, fmt.Errorf("%w: bech32m checksum", ErrInvalidAddressFormat)
	}
	if hrp != HRP {
		return util.Uint160{}, fmt.Errorf("%w: expected hrp %q, got %q", ErrInvalidAddressFormat, HRP, hrp)
	}
	conv, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil || len(conv) != util.Uint160Size {
		return util.Uint160{}, fmt.Errorf("%w: bad bech32 payload", ErrInvalidAddressFormat)
	}
	return util.Uint160DecodeBytes(conv)
}

// ToChecksum returns the checksummed display form of u: 0x-prefixed hex where
// the case of every letter at position i is taken from bit 255-6*i of the
// sha256 hash of the address bytes.
func ToChecksum(u util.Uint160) string {
	var (
		h   = hash.Sha256(u.Bytes())
		low = u.String()
		sb  strings.Builder
	)
	sb.Grow(2 + len(low))
	sb.WriteString("0x")
	for i := 0; i < len(low); i++ {
		c := low[i]
		if c >= 'a' && c <= 'f' && bitSet(h, 255-6*i) {
			c -= 'a' - 'A'
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// IsChecksum checks that s (with or without 0x prefix) is the checksummed
// display form of some address.
func IsChecksum(s string) bool {
	if !hexRe.MatchString(s) {
		return false
	}
	u, err := Normalize(s)
	if err != nil {
		return false
	}
	return ToChecksum(u)[2:] == strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
}

// bitSet reports whether bit n (0 is the least significant) of the big-endian
// 256-bit integer h is set.
func bitSet(h [32]byte, n int) bool {
	return h[31-n/8]&(1<<(n%8)) != 0
}
