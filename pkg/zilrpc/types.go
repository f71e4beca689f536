/*
Package zilrpc contains a set of types used for JSON-RPC communication with
ledger nodes. It defines basic request/response types, errors and typed
method results.
*/
package zilrpc

import (
	"encoding/json"
)

const (
	// JSONRPCVersion is the only JSON-RPC protocol version supported.
	JSONRPCVersion = "2.0"
)

// Method names.
const (
	GetBalanceMethod            = "GetBalance"
	CreateTransactionMethod     = "CreateTransaction"
	GetTransactionMethod        = "GetTransaction"
	GetMinimumGasPriceMethod    = "GetMinimumGasPrice"
	GetNetworkIDMethod          = "GetNetworkId"
	GetSmartContractStateMethod = "GetSmartContractState"
	GetSmartContractInitMethod  = "GetSmartContractInit"
)

type (
	// Request represents JSON-RPC request. Params are always an array.
	Request struct {
		// JSONRPC is the protocol version, only valid when it contains JSONRPCVersion.
		JSONRPC string `json:"jsonrpc"`
		// Method is the method being called.
		Method string `json:"method"`
		// Params is a set of method-specific parameters passed to the call.
		Params []any `json:"params"`
		// ID is an identifier associated with this request.
		ID uint64 `json:"id"`
	}

	// Header is a generic JSON-RPC 2.0 response header (ID and JSON-RPC version).
	Header struct {
		ID      json.RawMessage `json:"id"`
		JSONRPC string          `json:"jsonrpc"`
	}

	// HeaderAndError adds an Error (that can be empty) to the Header.
	HeaderAndError struct {
		Header
		Error *Error `json:"error,omitempty"`
	}

	// Response represents a standard raw JSON-RPC 2.0
	// response: http://www.jsonrpc.org/specification#response_object.
	Response struct {
		HeaderAndError
		Result json.RawMessage `json:"result,omitempty"`
	}
)

// NewRequest creates a request for the given method.
func NewRequest(id uint64, method string, params ...any) *Request {
	if params == nil {
		params = []any{}
	}
	return &Request{
		JSONRPC: JSONRPCVersion,
		Method:  method,
		Params:  params,
		ID:      id,
	}
}
