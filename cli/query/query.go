package query

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli"
	"github.com/zilgo/zilgo/cli/options"
	"github.com/zilgo/zilgo/pkg/encoding/address"
	"github.com/zilgo/zilgo/pkg/encoding/fixedn"
	"github.com/zilgo/zilgo/pkg/rpcclient"
	"github.com/zilgo/zilgo/pkg/zilrpc"
)

// NewCommands returns 'query' command.
func NewCommands() []cli.Command {
	queryTxFlags := append([]cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "Output full tx info",
		},
	}, options.Common...)
	return []cli.Command{{
		Name:  "query",
		Usage: "query node state",
		Subcommands: []cli.Command{
			{
				Name:      "tx",
				Usage:     "query tx status",
				UsageText: "zilgo query tx <hash> [-r endpoint] [-v]",
				Action:    queryTx,
				Flags:     queryTxFlags,
			},
			{
				Name:      "balance",
				Usage:     "query account balance and nonce",
				UsageText: "zilgo query balance <address> [-r endpoint]",
				Action:    queryBalance,
				Flags:     options.Common,
			},
			{
				Name:      "gas-price",
				Usage:     "query minimum gas price",
				UsageText: "zilgo query gas-price [-r endpoint]",
				Action:    queryGasPrice,
				Flags:     options.Common,
			},
			{
				Name:      "network",
				Usage:     "query network (chain) ID",
				UsageText: "zilgo query network [-r endpoint]",
				Action:    queryNetwork,
				Flags:     options.Common,
			},
		},
	}}
}

func getClient(ctx *cli.Context) (*rpcclient.Client, func(), error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return nil, nil, cli.NewExitError(err, 1)
	}
	gctx, cancel := options.GetTimeoutContext(ctx, cfg.Poll)
	c, exitErr := options.GetRPCClient(gctx, cfg)
	if exitErr != nil {
		cancel()
		return nil, nil, exitErr
	}
	return c, func() {
		c.Close()
		cancel()
	}, nil
}

func queryTx(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) == 0 {
		return cli.NewExitError("Transaction hash is missing", 1)
	}
	hash := strings.TrimPrefix(args[0], "0x")

	c, done, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer done()

	res, err := c.GetTransaction(hash)
	if err != nil {
		var rpcErr *zilrpc.Error
		if errors.As(err, &rpcErr) {
			// Unknown or not yet processed transaction.
			fmt.Fprintf(ctx.App.Writer, "Hash:\t%s\nConfirmed:\tfalse\n", hash)
			return nil
		}
		return cli.NewExitError(err, 1)
	}
	dumpTransaction(ctx, res)
	return nil
}

func dumpTransaction(ctx *cli.Context, res *zilrpc.TransactionResult) {
	verbose := ctx.Bool("verbose")
	buf := bytes.NewBuffer(nil)

	// Ignore the errors below because `Write` to buffer doesn't return error.
	tw := tabwriter.NewWriter(buf, 0, 4, 4, '\t', 0)
	_, _ = tw.Write([]byte("Hash:\t" + res.ID + "\n"))
	_, _ = tw.Write([]byte("Confirmed:\ttrue\n"))
	_, _ = tw.Write([]byte(fmt.Sprintf("Success:\t%t\n", res.Receipt.Success)))
	_, _ = tw.Write([]byte(fmt.Sprintf("Epoch:\t%d\n", uint64(res.Receipt.EpochNum))))
	if verbose {
		to := res.ToAddr
		if h, err := address.Normalize(to); err == nil {
			to = address.ToBech32(h)
		}
		_, _ = tw.Write([]byte("To:\t" + to + "\n"))
		_, _ = tw.Write([]byte("Amount:\t" + formatQa(res.Amount) + " ZIL\n"))
		_, _ = tw.Write([]byte("Nonce:\t" + res.Nonce + "\n"))
		_, _ = tw.Write([]byte("GasPrice:\t" + res.GasPrice + "\n"))
		_, _ = tw.Write([]byte("GasLimit:\t" + res.GasLimit + "\n"))
		_, _ = tw.Write([]byte(fmt.Sprintf("CumulativeGas:\t%d\n", uint64(res.Receipt.CumulativeGas))))
		_, _ = tw.Write([]byte("SenderPubKey:\t" + res.SenderPubKey + "\n"))
	}
	_ = tw.Flush()
	fmt.Fprint(ctx.App.Writer, buf.String())
}

func formatQa(s string) string {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return s
	}
	return fixedn.ToString(v, fixedn.ZilPrecision)
}

func queryBalance(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) == 0 {
		return cli.NewExitError("Address is missing", 1)
	}
	h, err := address.Normalize(args[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	c, done, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer done()

	bal, err := c.GetBalance(h)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	amount, err := bal.Amount()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Balance:\t%s ZIL\nNonce:\t%d\n", fixedn.ToString(amount, fixedn.ZilPrecision), bal.Nonce)
	return nil
}

func queryGasPrice(ctx *cli.Context) error {
	c, done, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer done()

	price, err := c.GetMinimumGasPrice()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "%s Qa (%s ZIL)\n", price, fixedn.ToString(price, fixedn.ZilPrecision))
	return nil
}

func queryNetwork(ctx *cli.Context) error {
	c, done, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer done()

	id, err := c.GetNetworkID()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, id)
	return nil
}
