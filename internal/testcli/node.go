package testcli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zilgo/zilgo/pkg/core/transaction"
	"github.com/zilgo/zilgo/pkg/crypto/hash"
	"github.com/zilgo/zilgo/pkg/crypto/keys"
	"github.com/zilgo/zilgo/pkg/encoding/address"
	"github.com/zilgo/zilgo/pkg/rpcclient/contract"
	"github.com/zilgo/zilgo/pkg/util"
	"github.com/zilgo/zilgo/pkg/wallet"
	"github.com/zilgo/zilgo/pkg/zilrpc"
)

// Node defaults.
const (
	NetworkID   = 333
	MinGasPrice = "2000000000"
)

type account struct {
	balance *big.Int
	nonce   uint64
}

// Node is a fake JSON-RPC node. It accepts correctly signed transactions,
// applies transfers to in-memory balances and makes transactions available
// for GetTransaction after PendingQueries failed queries.
type Node struct {
	*httptest.Server

	mtx      sync.Mutex
	accounts map[util.Uint160]*account
	txs      map[string]*zilrpc.TransactionResult
	queries  map[string]int

	pendingQueries int
	fail           bool
	received       []transaction.Payload
	state          json.RawMessage
	init           []zilrpc.StateField
}

// NewNode starts a fake node closed on test cleanup.
func NewNode(t *testing.T) *Node {
	n := &Node{
		accounts: make(map[util.Uint160]*account),
		txs:      make(map[string]*zilrpc.TransactionResult),
		queries:  make(map[string]int),
		state:    json.RawMessage(`{"_balance":"0"}`),
	}
	n.Server = httptest.NewServer(http.HandlerFunc(n.handle))
	t.Cleanup(n.Close)
	return n
}

// Fund sets the balance of the account.
func (n *Node) Fund(h util.Uint160, qa *big.Int) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	n.getAccount(h).balance = new(big.Int).Set(qa)
}

// SetPendingQueries sets the number of GetTransaction calls returning an
// error before the transaction becomes visible.
func (n *Node) SetPendingQueries(q int) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	n.pendingQueries = q
}

// SetFail makes receipts of subsequent transactions unsuccessful.
func (n *Node) SetFail(fail bool) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	n.fail = fail
}

// SetContract sets the state and init parameters returned for any contract.
func (n *Node) SetContract(state json.RawMessage, init []zilrpc.StateField) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	n.state = state
	n.init = init
}

// Received returns all accepted payloads.
func (n *Node) Received() []transaction.Payload {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return append([]transaction.Payload(nil), n.received...)
}

// Balance returns the balance of the account.
func (n *Node) Balance(h util.Uint160) *big.Int {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if acc, ok := n.accounts[h]; ok {
		return new(big.Int).Set(acc.balance)
	}
	return new(big.Int)
}

// Transfer signs the transfer with the key and submits it directly, it
// returns the transaction hash.
func (n *Node) Transfer(t *testing.T, priv *keys.PrivateKey, to string, amount *big.Int) string {
	n.mtx.Lock()
	nonce := n.getAccount(priv.Address()).nonce + 1
	n.mtx.Unlock()

	gasPrice, _ := new(big.Int).SetString(MinGasPrice, 10)
	tx, err := transaction.New(transaction.Params{
		Version:      transaction.PackVersion(NetworkID, 1),
		Nonce:        &nonce,
		ToAddr:       to,
		SenderPubKey: priv.PublicKey().Bytes(),
		Amount:       amount,
		GasPrice:     gasPrice,
		GasLimit:     50,
	})
	require.NoError(t, err)
	b, err := tx.SignableBytes()
	require.NoError(t, err)
	tx.Signature = priv.Sign(b)
	p, err := tx.Payload()
	require.NoError(t, err)

	res, rpcErr := n.dispatch(zilrpc.Request{
		Method: zilrpc.CreateTransactionMethod,
		Params: []any{p},
	})
	require.Nil(t, rpcErr)
	return res.(*zilrpc.CreateTxResult).TranID
}

func (n *Node) getAccount(h util.Uint160) *account {
	acc, ok := n.accounts[h]
	if !ok {
		acc = &account{balance: new(big.Int)}
		n.accounts[h] = acc
	}
	return acc
}

func (n *Node) handle(w http.ResponseWriter, req *http.Request) {
	var (
		r    zilrpc.Request
		resp = zilrpc.Response{}
	)
	resp.JSONRPC = zilrpc.JSONRPCVersion
	if err := json.NewDecoder(req.Body).Decode(&r); err != nil {
		resp.Error = zilrpc.NewError(zilrpc.ParseErrorCode, "Parse error", err.Error())
	} else {
		resp.ID, _ = json.Marshal(r.ID)
		res, rpcErr := n.dispatch(r)
		if rpcErr != nil {
			resp.Error = rpcErr
		} else {
			resp.Result, _ = json.Marshal(res)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (n *Node) dispatch(r zilrpc.Request) (any, *zilrpc.Error) {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	switch r.Method {
	case zilrpc.GetNetworkIDMethod:
		return strconv.Itoa(NetworkID), nil
	case zilrpc.GetMinimumGasPriceMethod:
		return MinGasPrice, nil
	case zilrpc.GetBalanceMethod:
		h, rpcErr := addressParam(r)
		if rpcErr != nil {
			return nil, rpcErr
		}
		acc, ok := n.accounts[h]
		if !ok {
			return nil, zilrpc.NewError(zilrpc.InvalidAddressOrKeyCode, "Account is not created", "")
		}
		return zilrpc.Balance{Balance: acc.balance.String(), Nonce: acc.nonce}, nil
	case zilrpc.CreateTransactionMethod:
		return n.createTransaction(r)
	case zilrpc.GetTransactionMethod:
		if len(r.Params) != 1 {
			return nil, zilrpc.NewError(zilrpc.InvalidParamsCode, "Invalid params", "")
		}
		id, _ := r.Params[0].(string)
		res, ok := n.txs[id]
		if !ok || n.queries[id] < n.pendingQueries {
			n.queries[id]++
			return nil, zilrpc.NewError(zilrpc.DatabaseErrorCode, "Txn Hash not Present", "")
		}
		return res, nil
	case zilrpc.GetSmartContractStateMethod:
		if _, rpcErr := addressParam(r); rpcErr != nil {
			return nil, rpcErr
		}
		return n.state, nil
	case zilrpc.GetSmartContractInitMethod:
		if _, rpcErr := addressParam(r); rpcErr != nil {
			return nil, rpcErr
		}
		return n.init, nil
	}
	return nil, zilrpc.NewError(zilrpc.MethodNotFoundCode, "Method not found", r.Method)
}

func addressParam(r zilrpc.Request) (util.Uint160, *zilrpc.Error) {
	if len(r.Params) != 1 {
		return util.Uint160{}, zilrpc.NewError(zilrpc.InvalidParamsCode, "Invalid params", "")
	}
	s, _ := r.Params[0].(string)
	h, err := address.Normalize(s)
	if err != nil {
		return util.Uint160{}, zilrpc.NewError(zilrpc.InvalidAddressOrKeyCode, "Invalid address", err.Error())
	}
	return h, nil
}

func (n *Node) createTransaction(r zilrpc.Request) (any, *zilrpc.Error) {
	if len(r.Params) != 1 {
		return nil, zilrpc.NewError(zilrpc.InvalidParamsCode, "Invalid params", "")
	}
	raw, _ := json.Marshal(r.Params[0])
	var p transaction.Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, zilrpc.NewError(zilrpc.InvalidParamsCode, "Invalid params", err.Error())
	}
	tx, sender, err := payloadToTx(p)
	if err != nil {
		return nil, zilrpc.NewError(zilrpc.VerifyRejectedCode, "Invalid transaction", err.Error())
	}
	acc := n.getAccount(sender)
	if *tx.Nonce != acc.nonce+1 {
		return nil, zilrpc.NewError(zilrpc.VerifyRejectedCode, "Invalid nonce", strconv.FormatUint(*tx.Nonce, 10))
	}
	if acc.balance.Cmp(tx.Amount) < 0 {
		return nil, zilrpc.NewError(zilrpc.VerifyRejectedCode, "Insufficient balance", "")
	}
	acc.nonce++

	b, _ := tx.SignableBytes()
	h := hash.Sha256(b)
	id := hex.EncodeToString(h[:])
	res := &zilrpc.CreateTxResult{TranID: id, Info: "Non-contract txn, sent to shard"}

	success := !n.fail
	if success {
		acc.balance.Sub(acc.balance, tx.Amount)
		if len(tx.Code) != 0 {
			addr, _ := contract.Address(sender, *tx.Nonce)
			res.Info = "Contract Creation txn, sent to shard"
			res.ContractAddress = addr.String()
		} else {
			to, _ := address.Normalize(tx.ToAddr)
			toAcc := n.getAccount(to)
			toAcc.balance.Add(toAcc.balance, tx.Amount)
		}
	}
	n.received = append(n.received, p)
	n.txs[id] = &zilrpc.TransactionResult{
		ID:           id,
		Version:      strconv.FormatUint(uint64(p.Version), 10),
		Nonce:        strconv.FormatUint(p.Nonce, 10),
		ToAddr:       p.ToAddr,
		SenderPubKey: p.PubKey,
		Amount:       p.Amount,
		GasPrice:     p.GasPrice,
		GasLimit:     strconv.FormatUint(p.GasLimit, 10),
		Code:         p.Code,
		Data:         p.Data,
		Signature:    p.Signature,
		Receipt: zilrpc.Receipt{
			CumulativeGas: zilrpc.FlexUint(p.GasLimit),
			EpochNum:      1,
			Success:       success,
		},
	}
	return res, nil
}

func payloadToTx(p transaction.Payload) (*transaction.Transaction, util.Uint160, error) {
	pub, err := keys.NewPublicKeyFromString(p.PubKey)
	if err != nil {
		return nil, util.Uint160{}, err
	}
	sig, err := hex.DecodeString(p.Signature)
	if err != nil {
		return nil, util.Uint160{}, err
	}
	amount, ok := new(big.Int).SetString(p.Amount, 10)
	if !ok {
		return nil, util.Uint160{}, fmt.Errorf("bad amount %q", p.Amount)
	}
	gasPrice, ok := new(big.Int).SetString(p.GasPrice, 10)
	if !ok {
		return nil, util.Uint160{}, fmt.Errorf("bad gas price %q", p.GasPrice)
	}
	nonce := p.Nonce
	tx, err := transaction.New(transaction.Params{
		Version:      p.Version,
		Nonce:        &nonce,
		ToAddr:       p.ToAddr,
		SenderPubKey: pub.Bytes(),
		Amount:       amount,
		GasPrice:     gasPrice,
		GasLimit:     p.GasLimit,
		Code:         []byte(p.Code),
		Data:         []byte(p.Data),
		Signature:    sig,
		ToDS:         p.Priority,
	})
	if err != nil {
		return nil, util.Uint160{}, err
	}
	ok, err = wallet.Verify(tx)
	if err != nil {
		return nil, util.Uint160{}, err
	}
	if !ok {
		return nil, util.Uint160{}, fmt.Errorf("invalid signature")
	}
	return tx, pub.Address(), nil
}
