package query_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zilgo/zilgo/internal/testcli"
	"github.com/zilgo/zilgo/pkg/crypto/keys"
	"github.com/zilgo/zilgo/pkg/encoding/address"
)

const (
	testPriv = "e19d05c5452598e24caad4a0d85a49146f7be089515c905ae6a19e8a578a6930"
	testTo   = "zil1fwh4ltdguhde9s7nysnp33d5wye6uqpugufkz7"
)

func TestQueryTx(t *testing.T) {
	e := testcli.NewExecutor(t)
	node := testcli.NewNode(t)
	priv, err := keys.NewPrivateKeyFromHex(testPriv)
	require.NoError(t, err)
	node.Fund(priv.Address(), big.NewInt(1000000000000))
	hash := node.Transfer(t, priv, "0x4BAF5faDA8e5Db92C3d3242618c5B47133AE003C", big.NewInt(250000000000))

	t.Run("missing hash", func(t *testing.T) {
		e.RunWithError(t, "zilgo", "query", "tx", "-r", node.URL)
	})

	t.Run("short", func(t *testing.T) {
		e.Run(t, "zilgo", "query", "tx", "-r", node.URL, hash)
		e.CheckNextLine(t, `^Hash:\s+`+hash+`$`)
		e.CheckNextLine(t, `^Confirmed:\s+true$`)
		e.CheckNextLine(t, `^Success:\s+true$`)
		e.CheckNextLine(t, `^Epoch:\s+1$`)
		e.CheckEOF(t)
	})

	t.Run("verbose", func(t *testing.T) {
		e.Run(t, "zilgo", "query", "tx", "-r", node.URL, "-v", "0x"+hash)
		e.CheckNextLine(t, `^Hash:\s+`+hash+`$`)
		e.CheckNextLine(t, `^Confirmed:\s+true$`)
		e.CheckNextLine(t, `^Success:\s+true$`)
		e.CheckNextLine(t, `^Epoch:\s+1$`)
		e.CheckNextLine(t, `^To:\s+`+testTo+`$`)
		e.CheckNextLine(t, `^Amount:\s+0.25 ZIL$`)
		e.CheckNextLine(t, `^Nonce:\s+1$`)
		e.CheckNextLine(t, `^GasPrice:\s+`+testcli.MinGasPrice+`$`)
		e.CheckNextLine(t, `^GasLimit:\s+50$`)
		e.CheckNextLine(t, `^CumulativeGas:\s+50$`)
		e.CheckNextLine(t, `^SenderPubKey:\s+[0-9a-fA-F]{66}$`)
		e.CheckEOF(t)
	})

	t.Run("unknown", func(t *testing.T) {
		unknown := "00000000000000000000000000000000000000000000000000000000000000ff"
		e.Run(t, "zilgo", "query", "tx", "-r", node.URL, unknown)
		e.CheckNextLine(t, `^Hash:\s+`+unknown+`$`)
		e.CheckNextLine(t, `^Confirmed:\s+false$`)
		e.CheckEOF(t)
	})
}

func TestQueryBalance(t *testing.T) {
	e := testcli.NewExecutor(t)
	node := testcli.NewNode(t)
	priv, err := keys.NewPrivateKeyFromHex(testPriv)
	require.NoError(t, err)
	node.Fund(priv.Address(), big.NewInt(1000000000000))
	node.Transfer(t, priv, testTo, big.NewInt(1))

	e.Run(t, "zilgo", "query", "balance", "-r", node.URL, address.ToBech32(priv.Address()))
	e.CheckNextLine(t, `^Balance:\s+0.999999999999 ZIL$`)
	e.CheckNextLine(t, `^Nonce:\s+1$`)
	e.CheckEOF(t)

	e.Run(t, "zilgo", "query", "balance", "-r", node.URL, "0x4baf5fada8e5db92c3d3242618c5b47133ae003c")
	e.CheckNextLine(t, `^Balance:\s+0.000000000001 ZIL$`)
	e.CheckNextLine(t, `^Nonce:\s+0$`)

	e.RunWithError(t, "zilgo", "query", "balance", "-r", node.URL)
	e.RunWithError(t, "zilgo", "query", "balance", "-r", node.URL, "zil1bad")
	// Unknown account.
	e.RunWithError(t, "zilgo", "query", "balance", "-r", node.URL, "zil1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqpcja0us")
}

func TestQueryGasPriceNetwork(t *testing.T) {
	e := testcli.NewExecutor(t)
	node := testcli.NewNode(t)

	e.Run(t, "zilgo", "query", "gas-price", "-r", node.URL)
	e.CheckNextLine(t, `^2000000000 Qa \(0.002 ZIL\)$`)
	e.CheckEOF(t)

	e.Run(t, "zilgo", "query", "network", "-r", node.URL)
	e.CheckNextLine(t, `^333$`)
	e.CheckEOF(t)
}
