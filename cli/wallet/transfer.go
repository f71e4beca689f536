package wallet

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"
	"github.com/zilgo/zilgo/cli/flags"
	"github.com/zilgo/zilgo/cli/options"
	"github.com/zilgo/zilgo/cli/txctx"
	"github.com/zilgo/zilgo/pkg/encoding/address"
)

var errNoReceiver = errors.New("missing receiver address (--to)")

func newTransferCommand() cli.Command {
	transferFlags := []cli.Flag{
		flags.AddressFlag{
			Name:  "to, t",
			Usage: "Receiver address",
		},
		flags.AmountFlag{
			Name:  "amount, m",
			Usage: "Amount of ZIL to send",
		},
		txctx.AwaitFlag,
	}
	transferFlags = append(transferFlags, txctx.GasFlags...)
	transferFlags = append(transferFlags, options.Common...)
	transferFlags = append(transferFlags, options.Wallet...)
	return cli.Command{
		Name:      "transfer",
		Usage:     "send ZIL to the given address",
		UsageText: "zilgo wallet transfer -w path [-a from] --to address --amount value [--await] [-r endpoint]",
		Description: `Creates a transfer transaction from the given (or default) account, signs
   and sends it. The amount is given in ZIL. The transaction hash is printed on
   success. If --await is given, the node is polled for the transaction receipt
   and the final transaction status is printed.
`,
		Action: transfer,
		Flags:  transferFlags,
	}
}

func transfer(ctx *cli.Context) error {
	to := flags.AddressFromContext(ctx, "to")
	if !to.IsSet {
		return cli.NewExitError(errNoReceiver, 1)
	}
	amount := flags.AmountFromContext(ctx, "amount")

	a, gctx, done, exitErr := options.GetActorFromContext(ctx)
	if exitErr != nil {
		return exitErr
	}
	defer done()

	tx, err := a.MakeTransfer(address.ToChecksum(to.Uint160()), amount)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("failed to create transfer: %w", err), 1)
	}
	hash, err := a.Send(tx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, hash)
	if !ctx.Bool("await") {
		return nil
	}
	tx, err = a.Confirm(gctx, tx, hash)
	txctx.PrintTransaction(ctx.App.Writer, tx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}
