package transaction

import (
	"math/big"

	"github.com/zilgo/zilgo/pkg/encoding/bigint"
	"google.golang.org/protobuf/encoding/protowire"
)

var (
	// ErrValueTooLarge is returned for amounts or gas prices exceeding 2^128-1.
	ErrValueTooLarge = bigint.ErrTooLarge
	// ErrNegativeValue is returned for negative amounts or gas prices.
	ErrNegativeValue = bigint.ErrNegative
)

// ProtoTransactionCoreInfo field numbers.
const (
	fieldVersion      protowire.Number = 1
	fieldNonce        protowire.Number = 2
	fieldToAddr       protowire.Number = 3
	fieldSenderPubKey protowire.Number = 4
	fieldAmount       protowire.Number = 5
	fieldGasPrice     protowire.Number = 6
	fieldGasLimit     protowire.Number = 7
	fieldCode         protowire.Number = 8
	fieldData         protowire.Number = 9

	// ByteArray.data.
	fieldByteArrayData protowire.Number = 1
)

// CoreInfo is the signed part of the transaction. ToAddr holds raw address
// bytes which are written as is, Transaction.CoreInfo fills them from the
// normalized recipient.
type CoreInfo struct {
	Version      uint32
	Nonce        uint64
	ToAddr       []byte
	SenderPubKey []byte
	Amount       *big.Int
	GasPrice     *big.Int
	GasLimit     uint64
	Code         []byte
	Data         []byte
}

// Bytes returns the canonical (ProtoTransactionCoreInfo protobuf) encoding of
// c. Nothing is returned if amount or gas price can't be encoded.
func (c *CoreInfo) Bytes() ([]byte, error) {
	amount, err := uint128Bytes(c.Amount)
	if err != nil {
		return nil, err
	}
	gasPrice, err := uint128Bytes(c.GasPrice)
	if err != nil {
		return nil, err
	}

	var b []byte
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(c.Version))
	b = protowire.AppendTag(b, fieldNonce, protowire.VarintType)
	b = protowire.AppendVarint(b, c.Nonce)
	b = protowire.AppendTag(b, fieldToAddr, protowire.BytesType)
	b = protowire.AppendBytes(b, c.ToAddr)
	b = appendByteArray(b, fieldSenderPubKey, c.SenderPubKey)
	b = appendByteArray(b, fieldAmount, amount)
	b = appendByteArray(b, fieldGasPrice, gasPrice)
	b = protowire.AppendTag(b, fieldGasLimit, protowire.VarintType)
	b = protowire.AppendVarint(b, c.GasLimit)
	if len(c.Code) != 0 {
		b = protowire.AppendTag(b, fieldCode, protowire.BytesType)
		b = protowire.AppendBytes(b, c.Code)
	}
	if len(c.Data) != 0 {
		b = protowire.AppendTag(b, fieldData, protowire.BytesType)
		b = protowire.AppendBytes(b, c.Data)
	}
	return b, nil
}

// appendByteArray appends ByteArray{data} message as field num.
func appendByteArray(b []byte, num protowire.Number, data []byte) []byte {
	var inner []byte
	inner = protowire.AppendTag(inner, fieldByteArrayData, protowire.BytesType)
	inner = protowire.AppendBytes(inner, data)
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, inner)
}

// uint128Bytes returns v as a 16-byte big-endian number, nil is zero.
func uint128Bytes(v *big.Int) ([]byte, error) {
	return bigint.ToUint128Bytes(v)
}

func checkUint128(v *big.Int) error {
	return bigint.CheckUint128(v)
}
