package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// rpcMock creates a test HTTP server that serves a fixed JSON-RPC response
// per method. Any unknown method returns an RPC error.
func rpcMock(t *testing.T, responses map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int    `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if result, ok := responses[req.Method]; ok {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"result":  result,
			})
		} else {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
			})
		}
	}))
}

// rpcErrorServer creates a test HTTP server that always returns a JSON-RPC
// error.
func rpcErrorServer(t *testing.T, code int, msg string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID int `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": code, "message": msg},
		})
	}))
}

// ---------------------------------------------------------------------------
// reads
// ---------------------------------------------------------------------------

func TestGetLatestBlock(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getBlockByNumber": map[string]string{
			"number": "0x10",
			"hash":   "0xabc123",
		},
	})
	defer srv.Close()

	b, err := NewClient(srv.URL).GetLatestBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(16), b.Number)
	assert.Equal(t, "0xabc123", b.Hash)
}

func TestGetBalance(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getBalance": "0xde0b6b3a7640000", // 1 ETH
	})
	defer srv.Close()

	bal, err := NewClient(srv.URL).GetBalance(context.Background(), "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", bal.String())
}

func TestGetCodeEmpty(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getCode": "0x",
	})
	defer srv.Close()

	code, err := NewClient(srv.URL).GetCode(context.Background(), "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, "0x", code)
}

func TestChainID(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_chainId": "0xaa36a7", // sepolia
	})
	defer srv.Close()

	id, err := NewClient(srv.URL).ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(11155111), id.Int64())
}

// ---------------------------------------------------------------------------
// error taxonomy
// ---------------------------------------------------------------------------

func TestRPCErrorSurfaced(t *testing.T) {
	srv := rpcErrorServer(t, -32000, "header not found")
	defer srv.Close()

	_, err := NewClient(srv.URL).GasPrice(context.Background())
	require.Error(t, err)

	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32000, rpcErr.Code)
}

func TestRevertClassified(t *testing.T) {
	srv := rpcErrorServer(t, 3, "execution reverted: ERC20: transfer amount exceeds balance")
	defer srv.Close()

	_, err := NewClient(srv.URL).CallContract(context.Background(), "", "0x1111111111111111111111111111111111111111", "0x")
	require.Error(t, err)

	var revert *RevertError
	require.ErrorAs(t, err, &revert)
	assert.Equal(t, "ERC20: transfer amount exceeds balance", revert.Reason)

	var rpcErr *RPCError
	assert.False(t, errors.As(err, &rpcErr), "revert must not surface as a plain RPC error")
}

func TestNetworkUnavailable(t *testing.T) {
	srv := rpcMock(t, nil)
	srv.Close() // refuse connections

	_, err := NewClient(srv.URL).GasPrice(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkUnavailable)
}

func TestGatewayErrorPage(t *testing.T) {
	// a proxy in front of the node answers outages with HTML, not JSON-RPC
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html><body>502 Bad Gateway</body></html>")
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GasPrice(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkUnavailable)
	assert.Contains(t, err.Error(), "502")
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL).GasPrice(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkUnavailable)
}

// ---------------------------------------------------------------------------
// receipts
// ---------------------------------------------------------------------------

func TestGetTransactionReceiptPending(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": nil,
	})
	defer srv.Close()

	receipt, err := NewClient(srv.URL).GetTransactionReceipt(context.Background(), "0xdead")
	require.NoError(t, err)
	assert.Nil(t, receipt)
}

func TestGetTransactionReceiptMined(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]string{
			"status":          "0x1",
			"blockNumber":     "0x2a",
			"gasUsed":         "0xc350",
			"contractAddress": "0x2222222222222222222222222222222222222222",
		},
	})
	defer srv.Close()

	receipt, err := NewClient(srv.URL).GetTransactionReceipt(context.Background(), "0xdead")
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, uint64(1), receipt.Status)
	assert.Equal(t, uint64(42), receipt.BlockNumber)
	assert.Equal(t, uint64(50000), receipt.GasUsed)
	assert.Equal(t, "0x2222222222222222222222222222222222222222", receipt.ContractAddress)
}

func TestAwaitReceiptReverted(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]string{
			"status":      "0x0",
			"blockNumber": "0x2a",
		},
	})
	defer srv.Close()

	receipt, err := NewClient(srv.URL).AwaitReceipt(context.Background(), "0xdead")
	require.Error(t, err)
	require.NotNil(t, receipt)

	var revert *RevertError
	assert.ErrorAs(t, err, &revert)
}

func TestAwaitReceiptTimeout(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": nil, // forever pending
	})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL).AwaitReceipt(ctx, "0xdead")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// ---------------------------------------------------------------------------
// revert reason extraction
// ---------------------------------------------------------------------------

func TestExtractRevertReason(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{"standard prefix", "execution reverted: insufficient balance", "insufficient balance"},
		{"bare revert", "execution reverted", ""},
		{"colon form", "VM Exception: revert: nope", "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractRevertReason(tt.msg))
		})
	}
}
