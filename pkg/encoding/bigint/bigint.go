/*
Package bigint converts amounts between math/big integers and the fixed-width
unsigned big-endian form used in signed transaction payloads.
*/
package bigint

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// Uint128Size is the size of a serialized amount.
const Uint128Size = 16

var (
	// ErrTooLarge is returned for values exceeding 2^128-1.
	ErrTooLarge = errors.New("value doesn't fit into 128 bits")
	// ErrNegative is returned for negative values.
	ErrNegative = errors.New("negative value")
)

// CheckUint128 returns an error if n can't be serialized as an unsigned
// 128-bit number. nil is treated as zero.
func CheckUint128(n *big.Int) error {
	if n == nil {
		return nil
	}
	if n.Sign() < 0 {
		return ErrNegative
	}
	if n.BitLen() > Uint128Size*8 {
		return ErrTooLarge
	}
	return nil
}

// ToUint128Bytes converts n to a 16-byte big-endian slice, nil is zero.
func ToUint128Bytes(n *big.Int) ([]byte, error) {
	if err := CheckUint128(n); err != nil {
		return nil, err
	}
	var u uint256.Int
	if n != nil {
		// Can't overflow after the check above.
		u.SetFromBig(n)
	}
	b := u.Bytes32()
	return b[32-Uint128Size:], nil
}

// FromUint128Bytes converts a big-endian unsigned number of at most 16 bytes
// to an integer.
func FromUint128Bytes(data []byte) (*big.Int, error) {
	if len(data) > Uint128Size {
		return nil, ErrTooLarge
	}
	return new(uint256.Int).SetBytes(data).ToBig(), nil
}
