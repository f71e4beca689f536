/*
Package config contains the client configuration loaded from a YAML file.
*/
package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultEndpoint is the public MainNet API node.
	DefaultEndpoint = "https://api.zilliqa.com"
	// DefaultMsgVersion is the transaction message version.
	DefaultMsgVersion = 1
)

// Config is the top level struct representing the client configuration.
type Config struct {
	RPC         RPC         `yaml:"RPC"`
	Transaction Transaction `yaml:"Transaction"`
	Poll        Poll        `yaml:"Poll"`
	Logger      Logger      `yaml:"Logger"`
	Wallet      Wallet      `yaml:"Wallet"`
}

// RPC is the node connection configuration.
type RPC struct {
	Endpoint       string        `yaml:"Endpoint"`
	DialTimeout    time.Duration `yaml:"DialTimeout"`
	RequestTimeout time.Duration `yaml:"RequestTimeout"`
}

// Transaction holds defaults for created transactions.
type Transaction struct {
	// ChainID is requested from the node if zero.
	ChainID    uint16 `yaml:"ChainID"`
	MsgVersion uint16 `yaml:"MsgVersion"`
	// GasPrice is a decimal number of Qa, the node's minimum is used if empty.
	GasPrice string `yaml:"GasPrice"`
	GasLimit uint64 `yaml:"GasLimit"`
	ToDS     bool   `yaml:"ToDS"`
}

// Poll is the confirmation poller configuration.
type Poll struct {
	Attempts int           `yaml:"Attempts"`
	Interval time.Duration `yaml:"Interval"`
}

// Logger contains logger settings.
type Logger struct {
	LogLevel string `yaml:"LogLevel"`
	LogPath  string `yaml:"LogPath"`
}

// Wallet is the wallet file location and the account used by default.
type Wallet struct {
	Path    string `yaml:"Path"`
	Account string `yaml:"Account"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		RPC: RPC{
			Endpoint: DefaultEndpoint,
		},
		Transaction: Transaction{
			MsgVersion: DefaultMsgVersion,
		},
		Logger: Logger{
			LogLevel: "info",
		},
	}
}

// LoadFile loads the config from the provided path, the values not set in
// the file keep their defaults.
func LoadFile(configPath string) (Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	config := Default()
	err = yaml.Unmarshal(configData, &config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.RPC.Endpoint == "" {
		return errors.New("no RPC endpoint")
	}
	if c.Transaction.MsgVersion == 0 {
		return errors.New("zero message version")
	}
	if _, err := c.Transaction.GasPriceValue(); err != nil {
		return err
	}
	if c.Poll.Attempts < 0 {
		return fmt.Errorf("negative poll attempts: %d", c.Poll.Attempts)
	}
	if c.Poll.Interval < 0 {
		return fmt.Errorf("negative poll interval: %s", c.Poll.Interval)
	}
	return nil
}

// GasPriceValue returns the configured gas price, nil if it's not set.
func (t Transaction) GasPriceValue() (*big.Int, error) {
	if t.GasPrice == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(t.GasPrice, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid gas price %q", t.GasPrice)
	}
	return v, nil
}
