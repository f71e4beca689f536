package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli"
	"github.com/zilgo/zilgo/cli/flags"
	"github.com/zilgo/zilgo/cli/input"
	"github.com/zilgo/zilgo/cli/options"
	"github.com/zilgo/zilgo/pkg/crypto/keys"
	"github.com/zilgo/zilgo/pkg/encoding/address"
	"github.com/zilgo/zilgo/pkg/wallet"
)

var (
	errNoPath         = errors.New("wallet path is mandatory and should be passed using (--wallet, -w) flag or configuration file")
	errNoAddress      = errors.New("account address is mandatory and should be passed using (--address, -a) flag")
	errKeyAndKeystore = errors.New("--key and --keystore can't be used together")
)

var (
	walletPathFlag = cli.StringFlag{
		Name:  "wallet, w",
		Usage: "Target location of the wallet file (overrides configuration)",
	}
	addressFlag = flags.AddressFlag{
		Name:  "address, a",
		Usage: "Address of the account",
	}
	walletFlags = []cli.Flag{options.ConfigFile, walletPathFlag}
)

// NewCommands returns 'wallet' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:  "wallet",
		Usage: "create, open and manage a wallet",
		Subcommands: []cli.Command{
			{
				Name:      "init",
				Usage:     "create a new wallet",
				UsageText: "zilgo wallet init -w path [--account]",
				Action:    createWallet,
				Flags: append(walletFlags,
					cli.BoolFlag{
						Name:  "account",
						Usage: "Create a new account",
					},
				),
			},
			{
				Name:      "create",
				Usage:     "add an account to the existing wallet",
				UsageText: "zilgo wallet create -w path [--label name] [--default]",
				Action:    addAccount,
				Flags: append(walletFlags,
					cli.StringFlag{
						Name:  "label, l",
						Usage: "Label of the account",
					},
					cli.BoolFlag{
						Name:  "default",
						Usage: "Make the account default",
					},
				),
			},
			{
				Name:      "import",
				Usage:     "import a private key or an encrypted keystore file",
				UsageText: "zilgo wallet import -w path (--key hex | --keystore file) [--label name] [--default]",
				Action:    importAccount,
				Flags: append(walletFlags,
					cli.StringFlag{
						Name:  "key, k",
						Usage: "Hex-encoded private key (prompted for if neither --key nor --keystore is given)",
					},
					cli.StringFlag{
						Name:  "keystore",
						Usage: "Path to the encrypted keystore JSON file",
					},
					cli.StringFlag{
						Name:  "label, l",
						Usage: "Label of the account",
					},
					cli.BoolFlag{
						Name:  "default",
						Usage: "Make the account default",
					},
				),
			},
			{
				Name:      "export",
				Usage:     "export the keystore or the private key of the account",
				UsageText: "zilgo wallet export -w path -a address [--decrypt]",
				Action:    exportAccount,
				Flags: append(walletFlags,
					addressFlag,
					cli.BoolFlag{
						Name:  "decrypt, d",
						Usage: "Export the hex-encoded private key instead of the keystore",
					},
				),
			},
			{
				Name:      "dump",
				Usage:     "check and dump an existing wallet",
				UsageText: "zilgo wallet dump -w path [--decrypt]",
				Action:    dumpWallet,
				Flags: append(walletFlags,
					cli.BoolFlag{
						Name:  "decrypt, d",
						Usage: "Check that account passphrases are correct",
					},
				),
			},
			{
				Name:      "set-default",
				Usage:     "make the account the default signer",
				UsageText: "zilgo wallet set-default -w path -a address",
				Action:    setDefault,
				Flags:     append(walletFlags, addressFlag),
			},
			{
				Name:      "remove",
				Usage:     "remove the account from the wallet",
				UsageText: "zilgo wallet remove -w path -a address",
				Action:    removeAccount,
				Flags:     append(walletFlags, addressFlag),
			},
			newTransferCommand(),
		},
	}}
}

func getWalletPath(ctx *cli.Context) (string, error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return "", err
	}
	if len(cfg.Wallet.Path) == 0 {
		return "", errNoPath
	}
	return cfg.Wallet.Path, nil
}

func openWallet(ctx *cli.Context) (*wallet.Wallet, error) {
	path, err := getWalletPath(ctx)
	if err != nil {
		return nil, err
	}
	return wallet.NewWalletFromFile(path)
}

func createWallet(ctx *cli.Context) error {
	path, err := getWalletPath(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if _, err := os.Stat(path); err == nil {
		return cli.NewExitError(fmt.Errorf("wallet %s already exists", path), 1)
	}
	wall := wallet.NewWallet(path)
	defer wall.Close()

	if ctx.Bool("account") {
		acc, err := createAccount(wall, "")
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		wall.Default = acc.Address
	}
	if err := wall.Save(); err != nil {
		return cli.NewExitError(err, 1)
	}

	fmtPrintWallet(ctx, wall)
	fmt.Fprintf(ctx.App.Writer, "wallet successfully created, file location is %s\n", wall.Path())
	return nil
}

func addAccount(ctx *cli.Context) error {
	wall, err := openWallet(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer wall.Close()

	acc, err := createAccount(wall, ctx.String("label"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return saveWithAccount(ctx, wall, acc)
}

func createAccount(wall *wallet.Wallet, label string) (*wallet.Account, error) {
	var err error
	if label == "" {
		label, err = input.ReadLine("Enter the name of the account > ")
		if err != nil {
			return nil, err
		}
	}
	phrase, err := input.ConfirmPassword("Enter passphrase > ")
	if err != nil {
		return nil, err
	}
	return wall.CreateAccount(label, phrase)
}

func importAccount(ctx *cli.Context) error {
	keyHex, ksPath := ctx.String("key"), ctx.String("keystore")
	if keyHex != "" && ksPath != "" {
		return cli.NewExitError(errKeyAndKeystore, 1)
	}
	wall, err := openWallet(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer wall.Close()

	var acc *wallet.Account
	if ksPath != "" {
		data, err := os.ReadFile(ksPath)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		pass, err := input.ReadPassword("Enter keystore passphrase > ")
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		acc, err = wallet.NewAccountFromKeystore(data, pass)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
	} else {
		if keyHex == "" {
			keyHex, err = input.ReadPassword("Enter private key > ")
			if err != nil {
				return cli.NewExitError(err, 1)
			}
		}
		priv, err := keys.NewPrivateKeyFromHex(keyHex)
		if err != nil {
			return cli.NewExitError(fmt.Errorf("invalid private key: %w", err), 1)
		}
		acc = wallet.NewAccountFromPrivateKey(priv)
		phrase, err := input.ConfirmPassword("Enter passphrase > ")
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		if err := acc.Encrypt(phrase); err != nil {
			return cli.NewExitError(err, 1)
		}
	}
	h, err := acc.Uint160()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if wall.GetAccount(h) != nil {
		return cli.NewExitError(fmt.Errorf("account %s is already in the wallet", acc.Address), 1)
	}
	acc.Label = ctx.String("label")
	wall.AddAccount(acc)
	return saveWithAccount(ctx, wall, acc)
}

func saveWithAccount(ctx *cli.Context, wall *wallet.Wallet, acc *wallet.Account) error {
	if ctx.Bool("default") {
		wall.Default = acc.Address
	}
	if err := wall.Save(); err != nil {
		return cli.NewExitError(err, 1)
	}
	h, err := acc.Uint160()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, address.ToBech32(h))
	return nil
}

func exportAccount(ctx *cli.Context) error {
	wall, err := openWallet(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer wall.Close()

	addr := flags.AddressFromContext(ctx, "address")
	if !addr.IsSet {
		return cli.NewExitError(errNoAddress, 1)
	}
	acc := wall.GetAccount(addr.Uint160())
	if acc == nil {
		return cli.NewExitError(fmt.Errorf("wallet contains no account for '%s'", address.ToBech32(addr.Uint160())), 1)
	}
	if !ctx.Bool("decrypt") {
		b, err := json.MarshalIndent(acc.Keystore, "", "  ")
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		fmt.Fprintln(ctx.App.Writer, string(b))
		return nil
	}
	acc, err = options.GetUnlockedAccount(wall, addr.Uint160(), nil)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, acc.PrivateKey().String())
	return nil
}

func dumpWallet(ctx *cli.Context) error {
	wall, err := openWallet(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer wall.Close()

	if ctx.Bool("decrypt") {
		for _, acc := range wall.Accounts {
			pass, err := input.ReadPassword(fmt.Sprintf("Enter account %s password > ", acc.Address))
			if err != nil {
				return cli.NewExitError(err, 1)
			}
			// Just testing the decryption here.
			if err := acc.Decrypt(pass); err != nil {
				return cli.NewExitError(fmt.Errorf("account %s: %w", acc.Address, err), 1)
			}
		}
	}
	fmtPrintWallet(ctx, wall)
	return nil
}

func setDefault(ctx *cli.Context) error {
	wall, err := openWallet(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	addr := flags.AddressFromContext(ctx, "address")
	if !addr.IsSet {
		return cli.NewExitError(errNoAddress, 1)
	}
	if err := wall.SetDefault(addr.Uint160()); err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := wall.Save(); err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}

func removeAccount(ctx *cli.Context) error {
	wall, err := openWallet(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	addr := flags.AddressFromContext(ctx, "address")
	if !addr.IsSet {
		return cli.NewExitError(errNoAddress, 1)
	}
	if err := wall.RemoveAccount(address.ToChecksum(addr.Uint160())); err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := wall.Save(); err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}

func fmtPrintWallet(ctx *cli.Context, wall *wallet.Wallet) {
	tw := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
	for _, acc := range wall.Accounts {
		h, err := acc.Uint160()
		if err != nil {
			continue
		}
		var def string
		if acc.Address == wall.Default {
			def = " (default)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s%s\n", address.ToBech32(h), acc.Address, acc.Label, def)
	}
	_ = tw.Flush()
}
