// Package evm is a minimal JSON-RPC 2.0 client for an EVM ledger node. It
// covers the three calls the scan pipeline needs (current height, ranged log
// query, raw contract-state read) and normalizes transport and protocol
// failures into RPCError. Retries are the caller's responsibility.
package evm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DefaultTimeout bounds a single RPC round trip so a hung endpoint cannot
// stall the poll scheduler indefinitely.
const DefaultTimeout = 10 * time.Second

// erc20BalanceOfSelector is the 4-byte selector of balanceOf(address).
var erc20BalanceOfSelector = []byte{0x70, 0xa0, 0x82, 0x31}

// RPCError reports a failed call against a ledger node: a transport failure,
// a non-success HTTP status, or a protocol-level error object in the
// response.
type RPCError struct {
	Endpoint string
	Method   string
	Err      error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("evm: %s %s: %v", e.Endpoint, e.Method, e.Err)
}

func (e *RPCError) Unwrap() error { return e.Err }

// Client issues JSON-RPC requests to a single ledger endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	nextID     atomic.Uint64
}

// New creates a Client for the given endpoint. A non-positive timeout falls
// back to DefaultTimeout.
func New(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the node URL this client talks to.
func (c *Client) Endpoint() string { return c.endpoint }

// rpcRequest is the JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// rpcResponse is the JSON-RPC 2.0 response envelope.
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Call sends a single JSON-RPC request and unmarshals the result field into
// out. Params must already be in wire form (hex strings, filter objects).
func (c *Client) Call(ctx context.Context, method string, params []any, out any) error {
	if params == nil {
		params = []any{}
	}
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return &RPCError{Endpoint: c.endpoint, Method: method, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return &RPCError{Endpoint: c.endpoint, Method: method, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RPCError{Endpoint: c.endpoint, Method: method, Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RPCError{Endpoint: c.endpoint, Method: method, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RPCError{Endpoint: c.endpoint, Method: method, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)}
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return &RPCError{Endpoint: c.endpoint, Method: method, Err: fmt.Errorf("decode response: %w", err)}
	}
	if rpcResp.Error != nil {
		return &RPCError{
			Endpoint: c.endpoint,
			Method:   method,
			Err:      fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return &RPCError{Endpoint: c.endpoint, Method: method, Err: fmt.Errorf("decode result: %w", err)}
	}
	return nil
}

// BlockNumber returns the current chain height.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var height hexutil.Uint64
	if err := c.Call(ctx, "eth_blockNumber", nil, &height); err != nil {
		return 0, err
	}
	return uint64(height), nil
}

// FilterLogs returns every log matching the query over its inclusive block
// range. Block numbers go on the wire as hex strings.
func (c *Client) FilterLogs(ctx context.Context, q FilterQuery) ([]Log, error) {
	params := filterParams{
		FromBlock: hexutil.EncodeUint64(q.FromBlock),
		ToBlock:   hexutil.EncodeUint64(q.ToBlock),
		Address:   q.Address.Hex(),
		Topics:    q.Topics,
	}
	var logs []Log
	if err := c.Call(ctx, "eth_getLogs", []any{params}, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// CallContract performs a read-only eth_call against the latest block and
// returns the raw return data.
func (c *Client) CallContract(ctx context.Context, to common.Address, data []byte) (hexutil.Bytes, error) {
	params := callParams{
		To:   to.Hex(),
		Data: hexutil.Encode(data),
	}
	var out hexutil.Bytes
	if err := c.Call(ctx, "eth_call", []any{params, "latest"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NativeBalance returns the native-coin balance of addr in wei.
func (c *Client) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	var out hexutil.Big
	if err := c.Call(ctx, "eth_getBalance", []any{addr.Hex(), "latest"}, &out); err != nil {
		return nil, err
	}
	return (*big.Int)(&out), nil
}

// ERC20Balance returns the raw base-unit balanceOf(holder) for the given
// token contract. Decimal scaling is left to the caller: 256-bit balances
// must stay arbitrary-precision until explicitly converted.
func (c *Client) ERC20Balance(ctx context.Context, token, holder common.Address) (*big.Int, error) {
	data := make([]byte, 0, 4+32)
	data = append(data, erc20BalanceOfSelector...)
	data = append(data, common.LeftPadBytes(holder.Bytes(), 32)...)

	out, err := c.CallContract(ctx, token, data)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return big.NewInt(0), nil
	}
	return new(big.Int).SetBytes(out), nil
}
