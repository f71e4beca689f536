/*
Package fixedn implements conversions between decimal token amounts and
integer Qa values.
*/
package fixedn

import (
	"errors"
	"math/big"
	"strings"
)

const (
	// ZilPrecision is the number of Qa decimal places in one ZIL.
	ZilPrecision = 12
	// LiPrecision is the number of Qa decimal places in one Li.
	LiPrecision = 6
	// QaPrecision is used for amounts already given in Qa.
	QaPrecision = 0
)

const maxAllowedPrecision = 16

// ErrInvalidFormat is returned when decimal format is invalid.
var ErrInvalidFormat = errors.New("invalid decimal format")

var pow10 []*big.Int

func init() {
	var p = int64(1)
	for i := 0; i <= maxAllowedPrecision; i++ {
		pow10 = append(pow10, big.NewInt(p))
		p *= 10
	}
}

// ToString converts a big decimal with the specified precision to a string.
func ToString(bi *big.Int, precision int) string {
	var dp, fp big.Int
	dp.QuoRem(bi, pow10[precision], &fp)

	var s = dp.String()
	if fp.Sign() == 0 {
		return s
	}
	frac := fp.Uint64()
	trimmed := 0
	for ; frac%10 == 0; frac /= 10 {
		trimmed++
	}
	return s + "." + strings.Repeat("0", precision-countDigits(frac)-trimmed) + new(big.Int).SetUint64(frac).String()
}

func countDigits(n uint64) int {
	res := 0
	for ; n > 0; n /= 10 {
		res++
	}
	return res
}

// FromString converts a string to a big decimal with the specified precision.
// Negative values are refused.
func FromString(s string, precision int) (*big.Int, error) {
	if precision < 0 || precision > maxAllowedPrecision {
		return nil, ErrInvalidFormat
	}
	parts := strings.SplitN(s, ".", 2)
	if parts[0] == "" && (len(parts) == 1 || parts[1] == "") {
		return nil, ErrInvalidFormat
	}
	if strings.ContainsAny(parts[0], "+-") {
		return nil, ErrInvalidFormat
	}
	ip, ok := new(big.Int).SetString("0"+parts[0], 10)
	if !ok {
		return nil, ErrInvalidFormat
	}
	ip.Mul(ip, pow10[precision])
	if len(parts) == 1 {
		return ip, nil
	}

	frac := strings.TrimRight(parts[1], "0")
	if len(frac) > precision || strings.ContainsAny(frac, "+-") {
		return nil, ErrInvalidFormat
	}
	if frac == "" {
		return ip, nil
	}
	fp, ok := new(big.Int).SetString(frac, 10)
	if !ok {
		return nil, ErrInvalidFormat
	}
	fp.Mul(fp, pow10[precision-len(frac)])
	return ip.Add(ip, fp), nil
}

// ParseUnit returns the precision for the unit name (ZIL, Li or Qa, case
// insensitive).
func ParseUnit(unit string) (int, error) {
	switch strings.ToLower(unit) {
	case "zil":
		return ZilPrecision, nil
	case "li":
		return LiPrecision, nil
	case "qa":
		return QaPrecision, nil
	}
	return 0, errors.New("unknown unit: " + unit)
}
