package transaction

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testPubKey = "0246e7178dc8253201101e18fd6f6eb9972451d121fc57aa2a06dd5c111e58dc6a"
	testToAddr = "3c9b415b19ae4035503a06192a0fad76e04243"
)

func decodeHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func maxUint128() *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
}

func TestCoreInfoBytes(t *testing.T) {
	testCases := map[string]struct {
		info     CoreInfo
		expected string
	}{
		"max amount with code and data": {
			info: CoreInfo{
				ToAddr:       decodeHex(t, testToAddr),
				SenderPubKey: decodeHex(t, testPubKey),
				Amount:       maxUint128(),
				GasPrice:     big.NewInt(100),
				GasLimit:     1000,
				Code:         []byte("abc"),
				Data:         []byte("def"),
			},
			expected: "080010001a133c9b415b19ae4035503a06192a0fad76e0424322230a210246e7178dc8253201101e18fd6f6eb9972451d121fc57aa2a06dd5c111e58dc6a2a120a10ffffffffffffffffffffffffffffffff32120a100000000000000000000000000000006438e80742036162634a03646566",
		},
		"plain transfer": {
			info: CoreInfo{
				ToAddr:       decodeHex(t, testToAddr),
				SenderPubKey: decodeHex(t, testPubKey),
				Amount:       big.NewInt(10000),
				GasPrice:     big.NewInt(100),
				GasLimit:     1000,
			},
			expected: "080010001a133c9b415b19ae4035503a06192a0fad76e0424322230a210246e7178dc8253201101e18fd6f6eb9972451d121fc57aa2a06dd5c111e58dc6a2a120a100000000000000000000000000000271032120a100000000000000000000000000000006438e807",
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			b, err := tc.info.Bytes()
			require.NoError(t, err)
			require.Equal(t, tc.expected, hex.EncodeToString(b))

			again, err := tc.info.Bytes()
			require.NoError(t, err)
			require.Equal(t, b, again)
		})
	}
}

func TestCoreInfoBytesVarints(t *testing.T) {
	info := CoreInfo{
		Version:  MainNetVersion,
		Nonce:    300,
		GasLimit: 1,
	}
	b, err := info.Bytes()
	require.NoError(t, err)
	// 65537 and 300 as varints, empty address, nil amounts as zeroes.
	require.Equal(t, "0881800410ac021a0022020a002a120a100000000000000000000000000000000032120a10000000000000000000000000000000003801", hex.EncodeToString(b))
}

func TestCoreInfoBadValues(t *testing.T) {
	tooLarge := new(big.Int).Add(maxUint128(), big.NewInt(1))

	info := CoreInfo{Amount: tooLarge}
	b, err := info.Bytes()
	require.ErrorIs(t, err, ErrValueTooLarge)
	require.Nil(t, b)

	info = CoreInfo{GasPrice: tooLarge}
	b, err = info.Bytes()
	require.ErrorIs(t, err, ErrValueTooLarge)
	require.Nil(t, b)

	info = CoreInfo{Amount: big.NewInt(-1)}
	_, err = info.Bytes()
	require.ErrorIs(t, err, ErrNegativeValue)
}
