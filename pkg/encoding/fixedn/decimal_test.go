package fixedn

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecimalFromStringGood(t *testing.T) {
	var testCases = []struct {
		bi   *big.Int
		prec int
		s    string
	}{
		{big.NewInt(123), 2, "1.23"},
		{big.NewInt(12300), 2, "123"},
		{big.NewInt(1234500000), 8, "12.345"},
		{big.NewInt(1000000000000), ZilPrecision, "1"},
		{big.NewInt(1500000000000), ZilPrecision, "1.5"},
		{big.NewInt(1), ZilPrecision, "0.000000000001"},
		{big.NewInt(2000000), LiPrecision, "2"},
		{big.NewInt(42), QaPrecision, "42"},
	}
	for _, tc := range testCases {
		t.Run(tc.s, func(t *testing.T) {
			s := ToString(tc.bi, tc.prec)
			require.Equal(t, tc.s, s)

			bi, err := FromString(s, tc.prec)
			require.NoError(t, err)
			require.Equal(t, tc.bi, bi)
		})
	}
	t.Run("trailing zeroes and dot forms", func(t *testing.T) {
		bi, err := FromString("1.50000", ZilPrecision)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(1500000000000), bi)

		bi, err = FromString(".5", 1)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(5), bi)

		bi, err = FromString("7.", 1)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(70), bi)
	})
}

func TestDecimalFromStringBad(t *testing.T) {
	var errCases = []struct {
		s    string
		prec int
	}{
		{"", 0},
		{".", 2},
		{"12A", 1},
		{"1.2.3", 2},
		{"1.-1", 2},
		{"-1", 2},
		{"+1", 2},
		{"1.123", 2},
		{"1", -1},
		{"1", maxAllowedPrecision + 1},
	}
	for _, tc := range errCases {
		t.Run(tc.s, func(t *testing.T) {
			_, err := FromString(tc.s, tc.prec)
			require.Error(t, err)
		})
	}
}

func TestParseUnit(t *testing.T) {
	for unit, prec := range map[string]int{"ZIL": ZilPrecision, "zil": ZilPrecision, "Li": LiPrecision, "qa": QaPrecision} {
		p, err := ParseUnit(unit)
		require.NoError(t, err)
		require.Equal(t, prec, p)
	}
	_, err := ParseUnit("wei")
	require.Error(t, err)
}
