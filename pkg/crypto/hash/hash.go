/*
Package hash contains the hashing primitives used for addresses, checksums
and signatures.
*/
package hash

import (
	"crypto/sha256"

	"github.com/zilgo/zilgo/pkg/util"
)

// Sha256 hashes the incoming byte slice using the sha256 algorithm.
func Sha256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// Sha256Concat hashes concatenation of all the given parts without allocating
// the joined slice.
func Sha256Concat(parts ...[]byte) [32]byte {
	var (
		h   = sha256.New()
		res [32]byte
	)
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	h.Sum(res[:0])
	return res
}

// AddressHash returns the last 20 bytes of the sha256 hash of the data. Account
// and contract addresses are derived this way.
func AddressHash(data []byte) util.Uint160 {
	return tail160(Sha256(data))
}

// AddressHashConcat is AddressHash over the concatenation of parts.
func AddressHashConcat(parts ...[]byte) util.Uint160 {
	return tail160(Sha256Concat(parts...))
}

func tail160(h [32]byte) util.Uint160 {
	var u util.Uint160
	copy(u[:], h[32-util.Uint160Size:])
	return u
}
