package flags

import (
	"flag"
	"math/big"
	"strings"

	"github.com/urfave/cli"
	"github.com/zilgo/zilgo/pkg/encoding/fixedn"
)

// Amount is a decimal ZIL value kept in Qa.
type Amount struct {
	Value *big.Int
}

// AmountFlag is a flag accepting ZIL amounts like "1.5".
type AmountFlag struct {
	Name  string
	Usage string
	Value Amount
}

var (
	_ flag.Value = (*Amount)(nil)
	_ cli.Flag   = AmountFlag{}
)

// String implements the fmt.Stringer interface.
func (a Amount) String() string {
	if a.Value == nil {
		return "0"
	}
	return fixedn.ToString(a.Value, fixedn.ZilPrecision)
}

// Set implements the flag.Value interface.
func (a *Amount) Set(s string) error {
	v, err := fixedn.FromString(s, fixedn.ZilPrecision)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	a.Value = v
	return nil
}

// Qa returns the amount in Qa, zero if it wasn't set.
func (a *Amount) Qa() *big.Int {
	if a.Value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.Value)
}

// String returns a readable representation of this value
// (for usage defaults).
func (f AmountFlag) String() string {
	var names []string
	eachName(f.Name, func(name string) {
		names = append(names, getNameHelp(name))
	})

	return strings.Join(names, ", ") + "\t" + f.Usage
}

// GetName returns the name of the flag.
func (f AmountFlag) GetName() string {
	return f.Name
}

// Apply populates the flag given the flag set and environment.
// Ignores errors.
func (f AmountFlag) Apply(set *flag.FlagSet) {
	eachName(f.Name, func(name string) {
		set.Var(&f.Value, name, f.Usage)
	})
}

// AmountFromContext returns the parsed amount (in Qa) for the flag name.
func AmountFromContext(ctx *cli.Context, name string) *big.Int {
	if a, ok := ctx.Generic(name).(*Amount); ok && a != nil {
		return a.Qa()
	}
	return new(big.Int)
}
