/*
Package txctx contains helper functions that deal with transactions in CLI context.
*/
package txctx

import (
	"fmt"
	"io"

	"github.com/urfave/cli"
	"github.com/zilgo/zilgo/pkg/core/transaction"
	"github.com/zilgo/zilgo/pkg/encoding/fixedn"
)

var (
	// AwaitFlag is a flag used to wait for the transaction confirmation.
	AwaitFlag = cli.BoolFlag{
		Name:  "await",
		Usage: "wait for the transaction to be confirmed",
	}
	// GasFlags override transaction gas parameters.
	GasFlags = []cli.Flag{
		cli.StringFlag{
			Name:  "gas-price",
			Usage: "Gas price in Qa (configured value or the node minimum is used if not set)",
		},
		cli.Uint64Flag{
			Name:  "gas-limit",
			Usage: "Gas limit (configured value or the default one is used if not set)",
		},
	}
)

// PrintTransaction outputs the transaction status, amount and receipt.
func PrintTransaction(w io.Writer, tx *transaction.Transaction) {
	fmt.Fprintf(w, "Status:\t%s\n", tx.Status())
	if tx.Amount != nil {
		fmt.Fprintf(w, "Amount:\t%s ZIL\n", fixedn.ToString(tx.Amount, fixedn.ZilPrecision))
	}
	if r := tx.Receipt; r != nil {
		fmt.Fprintf(w, "Success:\t%t\n", r.Success)
		fmt.Fprintf(w, "CumulativeGas:\t%d\n", r.CumulativeGas)
		fmt.Fprintf(w, "Epoch:\t%d\n", r.EpochNum)
	}
}
