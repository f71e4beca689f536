/*
Package options contains a set of common CLI options and helper functions to use them.
*/
package options

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"runtime"
	"time"

	"github.com/urfave/cli"
	"github.com/zilgo/zilgo/cli/flags"
	"github.com/zilgo/zilgo/cli/input"
	"github.com/zilgo/zilgo/pkg/config"
	"github.com/zilgo/zilgo/pkg/core/transaction"
	"github.com/zilgo/zilgo/pkg/encoding/address"
	"github.com/zilgo/zilgo/pkg/io"
	"github.com/zilgo/zilgo/pkg/rpcclient"
	"github.com/zilgo/zilgo/pkg/rpcclient/actor"
	"github.com/zilgo/zilgo/pkg/rpcclient/waiter"
	"github.com/zilgo/zilgo/pkg/util"
	"github.com/zilgo/zilgo/pkg/wallet"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DefaultTimeout is the default timeout used for RPC requests.
	DefaultTimeout = 10 * time.Second
	// awaitMargin is added to the polling time for commands awaiting
	// transaction confirmation.
	awaitMargin = 10 * time.Second
)

// RPCEndpointFlag is a long flag name for an RPC endpoint. It can be used to
// check for flag presence in the context.
const RPCEndpointFlag = "rpc-endpoint"

// Wallet is a set of flags used for wallet operations.
var Wallet = []cli.Flag{
	cli.StringFlag{
		Name:  "wallet, w",
		Usage: "wallet to use to get the key for transaction signing (overrides configuration)",
	},
	flags.AddressFlag{
		Name:  "address, a",
		Usage: "address of the account to use (configured or wallet default one is used if not set)",
	},
}

// RPC is a set of flags used for RPC connections (endpoint and timeout).
var RPC = []cli.Flag{
	cli.StringFlag{
		Name:  RPCEndpointFlag + ", r",
		Usage: "RPC node address (overrides configuration)",
	},
	cli.DurationFlag{
		Name:  "timeout, s",
		Value: DefaultTimeout,
		Usage: "Timeout for the operation",
	},
}

// ConfigFile is a flag for commands that use client configuration.
var ConfigFile = cli.StringFlag{
	Name:  "config-file, c",
	Usage: "path to the client configuration file",
}

// Debug is a flag for commands that allow debug logging.
var Debug = cli.BoolFlag{
	Name:  "debug, d",
	Usage: "enable debug logging (overrides configuration)",
}

// Common is the set of flags shared by all commands talking to a node.
var Common = append([]cli.Flag{ConfigFile, Debug}, RPC...)

var errNoWallet = errors.New("no wallet parameter found, specify it with the '--wallet' or '-w' flag or in the configuration file")

// GetConfigFromContext loads the configuration file given with --config-file
// (defaults are used if it's not set) and applies flag overrides to it.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	var (
		cfg = config.Default()
		err error
	)
	if configFile := ctx.String("config-file"); len(configFile) != 0 {
		cfg, err = config.LoadFile(configFile)
		if err != nil {
			return config.Config{}, err
		}
	}
	if endpoint := ctx.String(RPCEndpointFlag); len(endpoint) != 0 {
		cfg.RPC.Endpoint = endpoint
	}
	if w := ctx.String("wallet"); len(w) != 0 {
		cfg.Wallet.Path = w
	}
	return cfg, nil
}

// GetTxConfigFromContext is GetConfigFromContext with gas flag overrides
// applied.
func GetTxConfigFromContext(ctx *cli.Context) (config.Config, error) {
	cfg, err := GetConfigFromContext(ctx)
	if err != nil {
		return cfg, err
	}
	if p := ctx.String("gas-price"); p != "" {
		cfg.Transaction.GasPrice = p
		if _, err := cfg.Transaction.GasPriceValue(); err != nil {
			return cfg, err
		}
	}
	if l := ctx.Uint64("gas-limit"); l != 0 {
		cfg.Transaction.GasLimit = l
	}
	return cfg, nil
}

// GetTimeoutContext returns a context.Context with the default or a user-set
// timeout. If the --await flag is set and no timeout is given, the timeout
// covers the whole confirmation polling.
func GetTimeoutContext(ctx *cli.Context, poll config.Poll) (context.Context, func()) {
	dur := ctx.Duration("timeout")
	if dur == 0 {
		dur = DefaultTimeout
	}
	if !ctx.IsSet("timeout") && ctx.Bool("await") {
		dur = awaitTimeout(poll)
	}
	return context.WithTimeout(context.Background(), dur)
}

func awaitTimeout(poll config.Poll) time.Duration {
	var (
		attempts = poll.Attempts
		interval = poll.Interval
	)
	if attempts <= 0 {
		attempts = waiter.DefaultAttempts
	}
	if interval <= 0 {
		interval = waiter.DefaultInterval
	}
	return time.Duration(attempts)*interval + awaitMargin
}

// GetRPCClient returns an RPC client instance for the given configuration.
func GetRPCClient(gctx context.Context, cfg config.Config) (*rpcclient.Client, cli.ExitCoder) {
	c, err := rpcclient.New(gctx, cfg.RPC.Endpoint, rpcclient.Options{
		DialTimeout:    cfg.RPC.DialTimeout,
		RequestTimeout: cfg.RPC.RequestTimeout,
	})
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	return c, nil
}

var (
	// _winfileSinkRegistered denotes whether zap has registered
	// user-supplied factory for all sinks with `winfile`-prefixed scheme.
	_winfileSinkRegistered bool
	_winfileSinkCloser     func() error
)

// HandleLoggingParams reads logging parameters.
// If a user selected debug level -- function enables it.
// If logPath is configured -- function creates a dir and a file for logging.
// If logPath is configured on Windows -- function returns closer to be
// able to close sink for the opened log output file.
func HandleLoggingParams(debug bool, cfg config.Logger) (*zap.Logger, *zap.AtomicLevel, func() error, error) {
	var (
		level = zapcore.InfoLevel
		err   error
	)
	if len(cfg.LogLevel) > 0 {
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil

	if logPath := cfg.LogPath; logPath != "" {
		if err := io.MakeDirForFile(logPath, "logger"); err != nil {
			return nil, nil, nil, err
		}

		if runtime.GOOS == "windows" {
			if !_winfileSinkRegistered {
				// See https://github.com/uber-go/zap/issues/621.
				err := zap.RegisterSink("winfile", func(u *url.URL) (zap.Sink, error) {
					if u.User != nil {
						return nil, fmt.Errorf("user and password not allowed with file URLs: got %v", u)
					}
					if u.Fragment != "" {
						return nil, fmt.Errorf("fragments not allowed with file URLs: got %v", u)
					}
					if u.RawQuery != "" {
						return nil, fmt.Errorf("query parameters not allowed with file URLs: got %v", u)
					}
					if u.Port() != "" {
						return nil, fmt.Errorf("ports not allowed with file URLs: got %v", u)
					}
					if hn := u.Hostname(); hn != "" && hn != "localhost" {
						return nil, fmt.Errorf("file URLs must leave host empty or use localhost: got %v", u)
					}
					switch u.Path {
					case "stdout":
						return os.Stdout, nil
					case "stderr":
						return os.Stderr, nil
					}
					f, err := os.OpenFile(u.Path[1:], // Remove leading slash left after url.Parse.
						os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
					_winfileSinkCloser = func() error {
						_winfileSinkCloser = nil
						return f.Close()
					}
					return f, err
				})
				if err != nil {
					return nil, nil, nil, fmt.Errorf("failed to register windows-specific sinc: %w", err)
				}
				_winfileSinkRegistered = true
			}
			logPath = "winfile:///" + logPath
		}

		cc.OutputPaths = []string{logPath}
	}

	log, err := cc.Build()
	return log, &cc.Level, _winfileSinkCloser, err
}

// ActorOptions converts the configuration into actor options.
func ActorOptions(cfg config.Config, log *zap.Logger) (actor.Options, error) {
	gasPrice, err := cfg.Transaction.GasPriceValue()
	if err != nil {
		return actor.Options{}, err
	}
	opts := actor.Options{
		MsgVersion: cfg.Transaction.MsgVersion,
		GasPrice:   gasPrice,
		GasLimit:   cfg.Transaction.GasLimit,
		ToDS:       cfg.Transaction.ToDS,
		Poll: waiter.PollConfig{
			Attempts: cfg.Poll.Attempts,
			Interval: cfg.Poll.Interval,
		},
		Logger: log,
	}
	if cfg.Transaction.ChainID != 0 {
		opts.Version = transaction.PackVersion(cfg.Transaction.ChainID, cfg.Transaction.MsgVersion)
	}
	return opts, nil
}

// GetRPCWithActor returns an RPC client instance and Actor instance for the
// given wallet and account.
func GetRPCWithActor(gctx context.Context, cfg config.Config, wall *wallet.Wallet, acc *wallet.Account, log *zap.Logger) (*rpcclient.Client, *actor.Actor, cli.ExitCoder) {
	opts, err := ActorOptions(cfg, log)
	if err != nil {
		return nil, nil, cli.NewExitError(err, 1)
	}
	sender, err := acc.Uint160()
	if err != nil {
		return nil, nil, cli.NewExitError(err, 1)
	}
	c, exitErr := GetRPCClient(gctx, cfg)
	if exitErr != nil {
		return nil, nil, exitErr
	}
	a, err := actor.New(c, wall, sender, opts)
	if err != nil {
		c.Close()
		return nil, nil, cli.NewExitError(fmt.Errorf("failed to create Actor: %w", err), 1)
	}
	return c, a, nil
}

// GetActorFromContext reads the configuration, unlocks the sender account and
// creates an Actor for it. The returned context is to be used for all
// operations, the function returned releases all resources.
func GetActorFromContext(ctx *cli.Context) (*actor.Actor, context.Context, func(), cli.ExitCoder) {
	cfg, err := GetTxConfigFromContext(ctx)
	if err != nil {
		return nil, nil, nil, cli.NewExitError(err, 1)
	}
	acc, wall, err := GetAccFromContext(ctx, cfg)
	if err != nil {
		if wall != nil {
			wall.Close()
		}
		return nil, nil, nil, cli.NewExitError(err, 1)
	}
	log, _, closer, err := HandleLoggingParams(ctx.Bool("debug"), cfg.Logger)
	if err != nil {
		wall.Close()
		return nil, nil, nil, cli.NewExitError(err, 1)
	}
	gctx, cancel := GetTimeoutContext(ctx, cfg.Poll)
	done := func() {
		cancel()
		_ = log.Sync()
		if closer != nil {
			_ = closer()
		}
		wall.Close()
	}
	c, a, exitErr := GetRPCWithActor(gctx, cfg, wall, acc, log)
	if exitErr != nil {
		done()
		return nil, nil, nil, exitErr
	}
	return a, gctx, func() {
		c.Close()
		done()
	}, nil
}

// GetAccFromContext returns unlocked account and wallet from context. The
// account is picked by the --address flag, the configured account or the
// wallet default one, in this order.
func GetAccFromContext(ctx *cli.Context, cfg config.Config) (*wallet.Account, *wallet.Wallet, error) {
	if len(cfg.Wallet.Path) == 0 {
		return nil, nil, errNoWallet
	}
	wall, err := wallet.NewWalletFromFile(cfg.Wallet.Path)
	if err != nil {
		return nil, nil, err
	}

	var addr util.Uint160
	addrFlag := flags.AddressFromContext(ctx, "address")
	switch {
	case addrFlag.IsSet:
		addr = addrFlag.Uint160()
	case len(cfg.Wallet.Account) != 0:
		addr, err = address.Normalize(cfg.Wallet.Account)
		if err != nil {
			return nil, wall, fmt.Errorf("configured account: %w", err)
		}
	default:
		acc, err := wall.DefaultAccount()
		if err != nil {
			return nil, wall, err
		}
		addr, err = acc.Uint160()
		if err != nil {
			return nil, wall, err
		}
	}

	acc, err := GetUnlockedAccount(wall, addr, nil)
	return acc, wall, err
}

// GetUnlockedAccount returns account from wallet, address and uses pass to unlock specified account if given.
// If the password is not given, then it is requested from user.
func GetUnlockedAccount(wall *wallet.Wallet, addr util.Uint160, pass *string) (*wallet.Account, error) {
	acc := wall.GetAccount(addr)
	if acc == nil {
		return nil, fmt.Errorf("wallet contains no account for '%s'", address.ToBech32(addr))
	}

	if acc.CanSign() {
		return acc, nil
	}

	if pass == nil {
		rawPass, err := input.ReadPassword(
			fmt.Sprintf("Enter account %s password > ", address.ToBech32(addr)))
		if err != nil {
			return nil, fmt.Errorf("Error reading password: %w", err)
		}
		pass = &rawPass
	}
	err := acc.Decrypt(*pass)
	if err != nil {
		return nil, err
	}
	return acc, nil
}
