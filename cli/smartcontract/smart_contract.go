package smartcontract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli"
	"github.com/zilgo/zilgo/cli/flags"
	"github.com/zilgo/zilgo/cli/options"
	"github.com/zilgo/zilgo/cli/txctx"
	"github.com/zilgo/zilgo/pkg/encoding/address"
	"github.com/zilgo/zilgo/pkg/rpcclient/contract"
)

var (
	errNoCode       = errors.New("contract code file is mandatory and should be passed using (--code) flag")
	errNoInit       = errors.New("initialization parameters file is mandatory and should be passed using (--init) flag")
	errNoContract   = errors.New("contract address is mandatory and should be passed using (--contract) flag")
	errNoTransition = errors.New("transition name is mandatory and should be passed using (--transition) flag")
)

// NewCommands returns 'contract' command.
func NewCommands() []cli.Command {
	sendFlags := []cli.Flag{
		flags.AmountFlag{
			Name:  "amount, m",
			Usage: "Amount of ZIL to send to the contract",
		},
		// Contract transactions are always awaited, this extends the
		// default timeout to cover polling.
		cli.BoolTFlag{
			Name:   "await",
			Hidden: true,
		},
	}
	sendFlags = append(sendFlags, txctx.GasFlags...)
	sendFlags = append(sendFlags, options.Common...)
	sendFlags = append(sendFlags, options.Wallet...)

	contractFlag := flags.AddressFlag{
		Name:  "contract",
		Usage: "Contract address",
	}
	return []cli.Command{{
		Name:  "contract",
		Usage: "deploy, call and inspect smart contracts",
		Subcommands: []cli.Command{
			{
				Name:      "deploy",
				Usage:     "deploy a contract",
				UsageText: "zilgo contract deploy -w path --code file --init file [-a from] [--gas-limit n] [-r endpoint]",
				Description: `Deploys the contract code with the given initialization parameters (a JSON
   array of {"vname", "type", "value"} objects) and waits for the deployment
   transaction to be confirmed. The contract address is printed on success.
`,
				Action: deploy,
				Flags: append([]cli.Flag{
					cli.StringFlag{
						Name:  "code",
						Usage: "Contract code file",
					},
					cli.StringFlag{
						Name:  "init",
						Usage: "Initialization parameters JSON file",
					},
				}, sendFlags...),
			},
			{
				Name:      "call",
				Usage:     "invoke a contract transition",
				UsageText: "zilgo contract call -w path --contract address --transition name [--args json] [-a from] [-r endpoint]",
				Description: `Calls the transition of the deployed contract with the arguments given as
   a JSON array of {"vname", "type", "value"} objects and waits for the
   transaction to be confirmed.
`,
				Action: call,
				Flags: append([]cli.Flag{
					contractFlag,
					cli.StringFlag{
						Name:  "transition",
						Usage: "Transition name",
					},
					cli.StringFlag{
						Name:  "args",
						Usage: "Transition arguments JSON",
					},
				}, sendFlags...),
			},
			{
				Name:      "state",
				Usage:     "print contract state",
				UsageText: "zilgo contract state <address> [-r endpoint]",
				Action:    state,
				Flags:     options.Common,
			},
			{
				Name:      "init",
				Usage:     "print contract initialization parameters",
				UsageText: "zilgo contract init <address> [-r endpoint]",
				Action:    initParams,
				Flags:     options.Common,
			},
			{
				Name:      "address",
				Usage:     "compute the address of a contract",
				UsageText: "zilgo contract address --sender address --nonce n",
				Description: `Computes the address of the contract deployed by the sender with the
   deployment transaction having the given nonce.
`,
				Action: contractAddress,
				Flags: []cli.Flag{
					flags.AddressFlag{
						Name:  "sender",
						Usage: "Deployer address",
					},
					cli.Uint64Flag{
						Name:  "nonce",
						Usage: "Nonce of the deployment transaction",
					},
				},
			},
		},
	}}
}

func readValues(path string) ([]contract.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseValues(data)
}

func parseValues(data []byte) ([]contract.Value, error) {
	var vals []contract.Value
	if err := json.Unmarshal(data, &vals); err != nil {
		return nil, fmt.Errorf("bad parameters: %w", err)
	}
	return vals, nil
}

func sendParams(ctx *cli.Context) contract.Params {
	return contract.Params{
		Amount:   flags.AmountFromContext(ctx, "amount"),
		GasLimit: ctx.Uint64("gas-limit"),
	}
}

func deploy(ctx *cli.Context) error {
	codeFile, initFile := ctx.String("code"), ctx.String("init")
	if codeFile == "" {
		return cli.NewExitError(errNoCode, 1)
	}
	if initFile == "" {
		return cli.NewExitError(errNoInit, 1)
	}
	code, err := os.ReadFile(codeFile)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	initVals, err := readValues(initFile)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	a, gctx, done, exitErr := options.GetActorFromContext(ctx)
	if exitErr != nil {
		return exitErr
	}
	defer done()

	c := contract.New(a, string(code), initVals)
	tx, err := c.Deploy(gctx, sendParams(ctx))
	if tx != nil {
		txctx.PrintTransaction(ctx.App.Writer, tx)
	}
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if !c.IsDeployed() {
		return cli.NewExitError("contract deployment failed", 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Contract:\t%s\n", address.ToBech32(c.Address))
	return nil
}

func call(ctx *cli.Context) error {
	addr := flags.AddressFromContext(ctx, "contract")
	if !addr.IsSet {
		return cli.NewExitError(errNoContract, 1)
	}
	transition := ctx.String("transition")
	if transition == "" {
		return cli.NewExitError(errNoTransition, 1)
	}
	var args []contract.Value
	if s := ctx.String("args"); s != "" {
		var err error
		args, err = parseValues([]byte(s))
		if err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	a, gctx, done, exitErr := options.GetActorFromContext(ctx)
	if exitErr != nil {
		return exitErr
	}
	defer done()

	c := contract.NewDeployed(a, addr.Uint160())
	tx, err := c.Call(gctx, transition, args, sendParams(ctx))
	if tx != nil {
		txctx.PrintTransaction(ctx.App.Writer, tx)
	}
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}

func getDeployed(ctx *cli.Context) (*contract.Contract, error) {
	if ctx.NArg() == 0 {
		return nil, errNoContract
	}
	h, err := address.Normalize(ctx.Args().First())
	if err != nil {
		return nil, err
	}
	return contract.NewDeployed(nil, h), nil
}

func state(ctx *cli.Context) error {
	c, err := getDeployed(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	gctx, cancel := options.GetTimeoutContext(ctx, cfg.Poll)
	defer cancel()
	cl, exitErr := options.GetRPCClient(gctx, cfg)
	if exitErr != nil {
		return exitErr
	}
	defer cl.Close()

	raw, err := c.State(cl)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, buf.String())
	return nil
}

func initParams(ctx *cli.Context) error {
	c, err := getDeployed(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	gctx, cancel := options.GetTimeoutContext(ctx, cfg.Poll)
	defer cancel()
	cl, exitErr := options.GetRPCClient(gctx, cfg)
	if exitErr != nil {
		return exitErr
	}
	defer cl.Close()

	fields, err := c.InitParams(cl)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	for _, f := range fields {
		fmt.Fprintf(ctx.App.Writer, "%s\t%s\t%s\n", f.VName, f.Type, string(f.Value))
	}
	return nil
}

func contractAddress(ctx *cli.Context) error {
	sender := flags.AddressFromContext(ctx, "sender")
	if !sender.IsSet {
		return cli.NewExitError("sender address is mandatory and should be passed using (--sender) flag", 1)
	}
	h, err := contract.Address(sender.Uint160(), ctx.Uint64("nonce"))
	if err != nil {
		return cli.NewExitError(fmt.Errorf("nonce %s: %w", strconv.FormatUint(ctx.Uint64("nonce"), 10), err), 1)
	}
	fmt.Fprintln(ctx.App.Writer, address.ToBech32(h))
	fmt.Fprintln(ctx.App.Writer, address.ToChecksum(h))
	return nil
}
