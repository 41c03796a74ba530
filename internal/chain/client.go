package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"
)

// Client is a minimal JSON-RPC client for EVM test networks.
//
// Every method takes a context; the HTTP client additionally carries a hard
// timeout so a hung node surfaces as ErrNetworkUnavailable instead of an
// indefinite wait.
type Client struct {
	url    string
	client *http.Client
}

// DefaultTimeout bounds a single RPC round trip.
const DefaultTimeout = 15 * time.Second

// NewClient creates a JSON-RPC client pointed at url.
func NewClient(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

// Block holds the subset of block fields the tool displays.
type Block struct {
	Number uint64
	Hash   string
}

// TxReceipt holds the on-chain receipt of a mined transaction.
type TxReceipt struct {
	Hash            string
	Status          uint64 // 1 = success, 0 = reverted
	BlockNumber     uint64
	GasUsed         uint64
	ContractAddress string // non-empty when a contract was deployed
}

// GetLatestBlock returns the head block's number and hash.
func (c *Client) GetLatestBlock(ctx context.Context) (*Block, error) {
	result, err := c.call(ctx, "eth_getBlockByNumber", "latest", false)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, &RPCError{Code: -32000, Message: "latest block not available"}
	}

	var b struct {
		Number string `json:"number"`
		Hash   string `json:"hash"`
	}
	if err := json.Unmarshal(result, &b); err != nil {
		return nil, fmt.Errorf("parsing block: %w", err)
	}

	blk := &Block{Hash: b.Hash}
	if n, ok := parseBigHex(b.Number); ok {
		blk.Number = n.Uint64()
	}
	return blk, nil
}

// GetBalance returns the native balance in wei for an address.
func (c *Client) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	return c.callBigInt(ctx, "eth_getBalance", address, "latest")
}

// GetCode returns the bytecode at an address. "0x" means no contract code.
func (c *Client) GetCode(ctx context.Context, address string) (string, error) {
	return c.callString(ctx, "eth_getCode", address, "latest")
}

// CallContract performs a read-only eth_call with the given calldata and
// returns the raw hex result. A revert is reported as *RevertError.
func (c *Client) CallContract(ctx context.Context, from, to, calldata string) (string, error) {
	params := map[string]string{
		"to":   to,
		"data": calldata,
	}
	if from != "" {
		params["from"] = from
	}
	return c.callString(ctx, "eth_call", params, "latest")
}

// SendRawTransaction broadcasts a signed raw transaction and returns its
// hash. This is a submission acknowledgment only: inclusion in a block is
// not awaited here — use AwaitReceipt for that.
func (c *Client) SendRawTransaction(ctx context.Context, rawTx string) (string, error) {
	return c.callString(ctx, "eth_sendRawTransaction", rawTx)
}

// EstimateGas estimates gas for a transaction.
func (c *Client) EstimateGas(ctx context.Context, from, to, data string, value *big.Int) (uint64, error) {
	params := map[string]string{"from": from}
	if to != "" {
		params["to"] = to
	}
	if data != "" {
		params["data"] = data
	}
	if value != nil && value.Sign() > 0 {
		params["value"] = "0x" + value.Text(16)
	}
	n, err := c.callBigInt(ctx, "eth_estimateGas", params, "latest")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// GasPrice returns the current gas price.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	return c.callBigInt(ctx, "eth_gasPrice")
}

// ChainID returns the chain's numeric ID.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return c.callBigInt(ctx, "eth_chainId")
}

// GetPendingNonce returns the transaction count including queued
// transactions, using the "pending" block tag.
func (c *Client) GetPendingNonce(ctx context.Context, address string) (uint64, error) {
	n, err := c.callBigInt(ctx, "eth_getTransactionCount", address, "pending")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// GetTransactionReceipt fetches the receipt for hash.
// Returns nil, nil while the transaction is still pending.
func (c *Client) GetTransactionReceipt(ctx context.Context, hash string) (*TxReceipt, error) {
	result, err := c.call(ctx, "eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, err
	}
	if result == nil || string(result) == "null" {
		return nil, nil // still pending
	}

	var r struct {
		Status          string `json:"status"`
		BlockNumber     string `json:"blockNumber"`
		GasUsed         string `json:"gasUsed"`
		ContractAddress string `json:"contractAddress"`
	}
	if err := json.Unmarshal(result, &r); err != nil {
		return nil, fmt.Errorf("parsing receipt: %w", err)
	}

	receipt := &TxReceipt{Hash: hash, ContractAddress: r.ContractAddress}
	if s, ok := parseBigHex(r.Status); ok {
		receipt.Status = s.Uint64()
	}
	if bn, ok := parseBigHex(r.BlockNumber); ok {
		receipt.BlockNumber = bn.Uint64()
	}
	if gu, ok := parseBigHex(r.GasUsed); ok {
		receipt.GasUsed = gu.Uint64()
	}
	return receipt, nil
}

// AwaitReceipt polls every 2 s until the transaction is mined or ctx is
// done. A mined-but-reverted transaction returns the receipt together with
// a *RevertError.
func (c *Client) AwaitReceipt(ctx context.Context, hash string) (*TxReceipt, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		receipt, err := c.GetTransactionReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			if receipt.Status == 0 {
				return receipt, &RevertError{Reason: "transaction " + hash + " reverted"}
			}
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("awaiting receipt for %s: %w", hash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// --- JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// call performs a single JSON-RPC request and returns the raw result.
// Transport failures wrap ErrNetworkUnavailable; node-reported errors come
// back as *RPCError, or *RevertError when the node reports an EVM revert.
func (c *Client) call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	if params == nil {
		params = []interface{}{}
	}
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrNetworkUnavailable, err)
	}
	// gateways answer outages with HTML error pages, not JSON-RPC errors
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: node returned HTTP %d", ErrNetworkUnavailable, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, asRevert(rpcResp.Error)
	}
	return rpcResp.Result, nil
}

func (c *Client) callString(ctx context.Context, method string, params ...interface{}) (string, error) {
	result, err := c.call(ctx, method, params...)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(result, &s); err != nil {
		return "", fmt.Errorf("unexpected result for %s: %s", method, string(result))
	}
	return s, nil
}

func (c *Client) callBigInt(ctx context.Context, method string, params ...interface{}) (*big.Int, error) {
	s, err := c.callString(ctx, method, params...)
	if err != nil {
		return nil, err
	}
	n, ok := parseBigHex(s)
	if !ok {
		return nil, fmt.Errorf("could not parse %s result: %s", method, s)
	}
	return n, nil
}

func parseBigHex(s string) (*big.Int, bool) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return nil, false
	}
	n, ok := new(big.Int).SetString(s, 16)
	return n, ok
}
