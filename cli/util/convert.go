package util

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"
	"github.com/zilgo/zilgo/pkg/crypto/keys"
	"github.com/zilgo/zilgo/pkg/encoding/address"
	"github.com/zilgo/zilgo/pkg/encoding/fixedn"
)

// NewCommands returns util commands for zilgo CLI.
func NewCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "util",
			Usage: "Various helper commands",
			Subcommands: []cli.Command{
				{
					Name:  "convert",
					Usage: "Convert address or public key into other address formats",
					UsageText: `convert <arg>

<arg> is a bech32 or hex (plain or checksummed) address or a hex-encoded
        compressed public key. Bech32, checksummed and plain hex
        address forms are printed.`,
					Action: handleConvert,
				},
				{
					Name:  "units",
					Usage: "Convert amount between ZIL, Li and Qa",
					UsageText: `units [--from unit] <amount>

<amount> is a decimal number given in ZIL by default.`,
					Action: handleUnits,
					Flags: []cli.Flag{
						cli.StringFlag{
							Name:  "from, f",
							Value: "zil",
							Usage: "Unit of the given amount (zil, li or qa)",
						},
					},
				},
			},
		},
	}
}

func handleConvert(ctx *cli.Context) error {
	if !ctx.Args().Present() {
		return cli.NewExitError(errors.New("missing argument"), 1)
	}
	arg := ctx.Args().First()
	h, err := address.Normalize(arg)
	if err != nil {
		pub, pErr := keys.NewPublicKeyFromString(arg)
		if pErr != nil {
			return cli.NewExitError(fmt.Errorf("neither address nor public key: %w", err), 1)
		}
		h = pub.Address()
	}
	fmt.Fprintln(ctx.App.Writer, address.ToBech32(h))
	fmt.Fprintln(ctx.App.Writer, address.ToChecksum(h))
	fmt.Fprintln(ctx.App.Writer, h.String())
	return nil
}

func handleUnits(ctx *cli.Context) error {
	if !ctx.Args().Present() {
		return cli.NewExitError(errors.New("missing amount"), 1)
	}
	prec, err := fixedn.ParseUnit(ctx.String("from"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	qa, err := fixedn.FromString(ctx.Args().First(), prec)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "%s ZIL\n", fixedn.ToString(qa, fixedn.ZilPrecision))
	fmt.Fprintf(ctx.App.Writer, "%s Li\n", fixedn.ToString(qa, fixedn.LiPrecision))
	fmt.Fprintf(ctx.App.Writer, "%s Qa\n", qa)
	return nil
}
