package keys

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/zilgo/zilgo/pkg/crypto/hash"
)

// SignatureSize is the size of a serialized signature: r and s, 32 bytes
// each.
const SignatureSize = 64

// ErrInvalidSignature is returned when a signature can't be parsed.
var ErrInvalidSignature = errors.New("invalid signature")

// Sign produces a Schnorr signature of msg. The nonce is derived from the key
// and the message hash per RFC 6979, so signatures are deterministic.
//
//	Q = kG, r = H(Q || pub || msg) mod n, s = k - r*d mod n
func (p *PrivateKey) Sign(msg []byte) []byte {
	var (
		pub    = p.PublicKey().Bytes()
		priv   = p.key.Serialize()
		digest = hash.Sha256(msg)
	)
	for i := uint32(0); ; i++ {
		k := secp256k1.NonceRFC6979(priv, digest[:], nil, nil, i)
		sig, ok := signWithNonce(&p.key.Key, k, pub, msg)
		k.Zero()
		if ok {
			return sig
		}
	}
}

func signWithNonce(d, k *secp256k1.ModNScalar, pub, msg []byte) ([]byte, bool) {
	var q secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(k, &q)
	q.ToAffine()

	var r secp256k1.ModNScalar
	e := hash.Sha256Concat(secp256k1.NewPublicKey(&q.X, &q.Y).SerializeCompressed(), pub, msg)
	r.SetBytes(&e)
	if r.IsZero() {
		return nil, false
	}

	var s secp256k1.ModNScalar
	s.Mul2(&r, d).Negate().Add(k)
	if s.IsZero() {
		return nil, false
	}

	var (
		sig = make([]byte, SignatureSize)
		rb  = r.Bytes()
		sb  = s.Bytes()
	)
	copy(sig, rb[:])
	copy(sig[32:], sb[:])
	return sig, true
}

// Verify checks the Schnorr signature of msg made with the corresponding
// private key.
func (p *PublicKey) Verify(msg, sig []byte) bool {
	r, s, err := parseSignature(sig)
	if err != nil {
		return false
	}

	var pub, l, g, q secp256k1.JacobianPoint
	p.key.AsJacobian(&pub)
	secp256k1.ScalarMultNonConst(r, &pub, &l)
	secp256k1.ScalarBaseMultNonConst(s, &g)
	secp256k1.AddNonConst(&l, &g, &q)
	if (q.X.IsZero() && q.Y.IsZero()) || q.Z.IsZero() {
		return false
	}
	q.ToAffine()

	var r1 secp256k1.ModNScalar
	e := hash.Sha256Concat(secp256k1.NewPublicKey(&q.X, &q.Y).SerializeCompressed(), p.Bytes(), msg)
	r1.SetBytes(&e)
	return r1.Equals(r)
}

func parseSignature(sig []byte) (*secp256k1.ModNScalar, *secp256k1.ModNScalar, error) {
	if len(sig) != SignatureSize {
		return nil, nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, SignatureSize, len(sig))
	}
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return nil, nil, fmt.Errorf("%w: r out of range", ErrInvalidSignature)
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow || s.IsZero() {
		return nil, nil, fmt.Errorf("%w: s out of range", ErrInvalidSignature)
	}
	return &r, &s, nil
}
