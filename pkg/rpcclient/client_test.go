package rpcclient

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zilgo/zilgo/pkg/core/transaction"
	"github.com/zilgo/zilgo/pkg/util"
	"github.com/zilgo/zilgo/pkg/zilrpc"
)

const testAddr = "4baf5fada8e5db92c3d3242618c5b47133ae003c"

// initTestServer starts a server checking the method and params of requests
// and answering with the given result.
func initTestServer(t *testing.T, method string, params string, resp string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		require.Equal(t, http.MethodPost, req.Method)
		r := new(struct {
			JSONRPC string          `json:"jsonrpc"`
			Method  string          `json:"method"`
			Params  json.RawMessage `json:"params"`
			ID      uint64          `json:"id"`
		})
		require.NoError(t, json.NewDecoder(req.Body).Decode(r))
		require.Equal(t, zilrpc.JSONRPCVersion, r.JSONRPC)
		require.Equal(t, method, r.Method)
		require.JSONEq(t, params, string(r.Params))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, err := w.Write([]byte(resp))
		require.NoError(t, err)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	c, err := New(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNew(t *testing.T) {
	c, err := New(context.Background(), "http://localhost:4201", Options{})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:4201", c.Endpoint())
	require.Equal(t, defaultDialTimeout, c.opts.DialTimeout)
	require.Equal(t, defaultRequestTimeout, c.opts.RequestTimeout)

	_, err = New(context.Background(), "ws://localhost:4201", Options{})
	require.Error(t, err)
	_, err = New(context.Background(), ":bad", Options{})
	require.Error(t, err)
}

func TestRequestIDs(t *testing.T) {
	c, err := New(context.Background(), "http://localhost:4201", Options{})
	require.NoError(t, err)
	var ids []uint64
	c.requestF = func(r *zilrpc.Request) (*zilrpc.Response, error) {
		ids = append(ids, r.ID)
		return &zilrpc.Response{Result: json.RawMessage(`"1"`)}, nil
	}
	for i := 0; i < 3; i++ {
		_, err := c.GetNetworkID()
		require.NoError(t, err)
	}
	require.Equal(t, []uint64{1, 2, 3}, ids)
}

func TestPerformRequestErrors(t *testing.T) {
	c, err := New(context.Background(), "http://localhost:4201", Options{})
	require.NoError(t, err)

	c.requestF = func(r *zilrpc.Request) (*zilrpc.Response, error) {
		return &zilrpc.Response{}, nil
	}
	_, err = c.GetNetworkID()
	require.EqualError(t, err, "no result returned")

	rpcErr := zilrpc.NewError(zilrpc.InvalidParamsCode, "Invalid params", "")
	c.requestF = func(r *zilrpc.Request) (*zilrpc.Response, error) {
		resp := new(zilrpc.Response)
		resp.Error = rpcErr
		return resp, nil
	}
	_, err = c.GetNetworkID()
	require.ErrorIs(t, err, rpcErr)
}

func TestHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	c := newTestClient(t, srv)
	_, err := c.GetNetworkID()
	require.ErrorContains(t, err, "HTTP 502")

	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("{"))
	}))
	defer srv2.Close()
	c = newTestClient(t, srv2)
	_, err = c.GetNetworkID()
	require.ErrorContains(t, err, "JSON decoding")
}

func TestRPCErrorPayload(t *testing.T) {
	srv := initTestServer(t, zilrpc.GetTransactionMethod, `["abc"]`,
		`{"id":"1","jsonrpc":"2.0","error":{"code":-20,"message":"Txn Hash not Present","data":null}}`)
	c := newTestClient(t, srv)
	_, err := c.GetTransaction("abc")
	var rpcErr *zilrpc.Error
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, int64(zilrpc.DatabaseErrorCode), rpcErr.Code)
	require.Equal(t, "Txn Hash not Present", rpcErr.Message)
}

func TestRPCMethods(t *testing.T) {
	addr, err := util.Uint160DecodeString(testAddr)
	require.NoError(t, err)
	nonce := uint64(1)
	tx, err := transaction.New(transaction.Params{
		Nonce:    &nonce,
		ToAddr:   testAddr,
		Amount:   big.NewInt(1000000000000),
		GasPrice: big.NewInt(2000000000),
		GasLimit: 50,
	})
	require.NoError(t, err)
	payload, err := tx.Payload()
	require.NoError(t, err)
	payloadJSON, err := json.Marshal(payload)
	require.NoError(t, err)

	testCases := []struct {
		name   string
		method string
		params string
		resp   string
		check  func(t *testing.T, c *Client)
	}{
		{
			name:   "GetBalance",
			method: zilrpc.GetBalanceMethod,
			params: `["` + testAddr + `"]`,
			resp:   `{"id":"1","jsonrpc":"2.0","result":{"balance":"18446744073637511711","nonce":16}}`,
			check: func(t *testing.T, c *Client) {
				b, err := c.GetBalance(addr)
				require.NoError(t, err)
				require.Equal(t, &zilrpc.Balance{Balance: "18446744073637511711", Nonce: 16}, b)
			},
		},
		{
			name:   "CreateTransaction",
			method: zilrpc.CreateTransactionMethod,
			params: `[` + string(payloadJSON) + `]`,
			resp:   `{"id":"1","jsonrpc":"2.0","result":{"Info":"Non-contract txn, sent to shard","TranID":"2d1eea871d8845472e98dbe9b7a7d788fbcce226f52e4216612592167b89042c"}}`,
			check: func(t *testing.T, c *Client) {
				res, err := c.CreateTransaction(payload)
				require.NoError(t, err)
				require.Equal(t, "2d1eea871d8845472e98dbe9b7a7d788fbcce226f52e4216612592167b89042c", res.TranID)
				require.Equal(t, "Non-contract txn, sent to shard", res.Info)
			},
		},
		{
			name:   "GetTransaction",
			method: zilrpc.GetTransactionMethod,
			params: `["cd8fd"]`,
			resp: `{"id":"1","jsonrpc":"2.0","result":{"ID":"cd8fd","amount":"0","gasLimit":"10000","gasPrice":"2000000000",
				"nonce":"6","receipt":{"cumulative_gas":"357","epoch_num":"586524","success":true},
				"senderPubKey":"0x0246e7178dc8253201101e18fd6f6eb9972451d121fc57aa2a06dd5c111e58dc6a","signature":"0x01",
				"toAddr":"` + testAddr + `","version":"65537"}}`,
			check: func(t *testing.T, c *Client) {
				res, err := c.GetTransaction("cd8fd")
				require.NoError(t, err)
				require.Equal(t, "cd8fd", res.ID)
				require.Equal(t, transaction.Receipt{CumulativeGas: 357, EpochNum: 586524, Success: true}, res.Receipt.ToTransaction())
			},
		},
		{
			name:   "GetMinimumGasPrice",
			method: zilrpc.GetMinimumGasPriceMethod,
			params: `[]`,
			resp:   `{"id":"1","jsonrpc":"2.0","result":"2000000000"}`,
			check: func(t *testing.T, c *Client) {
				p, err := c.GetMinimumGasPrice()
				require.NoError(t, err)
				require.Equal(t, big.NewInt(2000000000), p)
			},
		},
		{
			name:   "GetNetworkID",
			method: zilrpc.GetNetworkIDMethod,
			params: `[]`,
			resp:   `{"id":"1","jsonrpc":"2.0","result":"333"}`,
			check: func(t *testing.T, c *Client) {
				id, err := c.GetNetworkID()
				require.NoError(t, err)
				require.Equal(t, uint16(333), id)
			},
		},
		{
			name:   "GetSmartContractState",
			method: zilrpc.GetSmartContractStateMethod,
			params: `["` + testAddr + `"]`,
			resp:   `{"id":"1","jsonrpc":"2.0","result":{"_balance":"0","welcome_msg":"Hello"}}`,
			check: func(t *testing.T, c *Client) {
				st, err := c.GetSmartContractState(addr)
				require.NoError(t, err)
				require.JSONEq(t, `{"_balance":"0","welcome_msg":"Hello"}`, string(st))
			},
		},
		{
			name:   "GetSmartContractInit",
			method: zilrpc.GetSmartContractInitMethod,
			params: `["` + testAddr + `"]`,
			resp:   `{"id":"1","jsonrpc":"2.0","result":[{"type":"Uint32","value":"0","vname":"_scilla_version"}]}`,
			check: func(t *testing.T, c *Client) {
				fields, err := c.GetSmartContractInit(addr)
				require.NoError(t, err)
				require.Len(t, fields, 1)
				require.Equal(t, "_scilla_version", fields[0].VName)
				require.Equal(t, "Uint32", fields[0].Type)
				require.JSONEq(t, `"0"`, string(fields[0].Value))
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := initTestServer(t, tc.method, tc.params, tc.resp)
			tc.check(t, newTestClient(t, srv))
		})
	}
}
