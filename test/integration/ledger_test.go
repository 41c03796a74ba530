// Package integration exercises the full client path against a stateful
// in-memory token ledger served over JSON-RPC: encode, sign, broadcast,
// apply, read back.
package integration

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/tokenctl/internal/chain"
	"github.com/tokenforge/tokenctl/internal/contract"
	"github.com/tokenforge/tokenctl/internal/controller"
	"github.com/tokenforge/tokenctl/internal/wallet"
)

const (
	chainID = 11155111

	tokenAddr = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

	// well-known hardhat dev keys, testnet material only
	keyA = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	keyB = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"

	addrA = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	addrB = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

// ledgerNode is an in-memory ERC-20 ledger behind a JSON-RPC endpoint. It
// decodes signed transactions, recovers the sender, and applies or reverts
// transfers, so a test observes real conservation semantics.
type ledgerNode struct {
	mu          sync.Mutex
	balances    map[common.Address]*uint256.Int
	totalSupply *uint256.Int
	nonces      map[common.Address]uint64
	receipts    map[string]uint64 // tx hash to status
	blockNum    uint64
	signer      types.Signer
}

func newLedgerNode() *ledgerNode {
	return &ledgerNode{
		balances:    make(map[common.Address]*uint256.Int),
		totalSupply: uint256.NewInt(0),
		nonces:      make(map[common.Address]uint64),
		receipts:    make(map[string]uint64),
		blockNum:    1,
		signer:      types.NewLondonSigner(big.NewInt(chainID)),
	}
}

// mint credits an account and grows the total supply.
func (l *ledgerNode) mint(addr string, amount *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a := common.HexToAddress(addr)
	l.balances[a] = new(uint256.Int).Add(l.balanceOf(a), amount)
	l.totalSupply = new(uint256.Int).Add(l.totalSupply, amount)
}

func (l *ledgerNode) balanceOf(a common.Address) *uint256.Int {
	if b, ok := l.balances[a]; ok {
		return b
	}
	return uint256.NewInt(0)
}

func wordHex(n *uint256.Int) string {
	b := n.Bytes32()
	return hex.EncodeToString(b[:])
}

func (l *ledgerNode) serve(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     int               `json:"id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, rpcErr := l.handle(req.Method, req.Params)
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = map[string]interface{}{"code": 3, "message": rpcErr.Error()}
		} else {
			resp["result"] = result
		}
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (l *ledgerNode) handle(method string, params []json.RawMessage) (interface{}, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch method {
	case "eth_chainId":
		return "0x" + big.NewInt(chainID).Text(16), nil

	case "eth_gasPrice":
		return "0x3b9aca00", nil

	case "eth_getCode":
		return "0x6080604052", nil

	case "eth_getBlockByNumber":
		return map[string]string{
			"number": "0x" + new(big.Int).SetUint64(l.blockNum).Text(16),
			"hash":   "0x" + strings.Repeat("1f", 32),
		}, nil

	case "eth_getTransactionCount":
		var addr string
		json.Unmarshal(params[0], &addr) //nolint:errcheck
		return "0x" + new(big.Int).SetUint64(l.nonces[common.HexToAddress(addr)]).Text(16), nil

	case "eth_call":
		var call struct {
			Data string `json:"data"`
		}
		json.Unmarshal(params[0], &call) //nolint:errcheck
		return l.evalCall(call.Data)

	case "eth_estimateGas":
		var call struct {
			From string `json:"from"`
			Data string `json:"data"`
		}
		json.Unmarshal(params[0], &call) //nolint:errcheck
		if err := l.simulateTransfer(common.HexToAddress(call.From), call.Data); err != nil {
			return nil, err
		}
		return "0xd6d8", nil

	case "eth_sendRawTransaction":
		var raw string
		json.Unmarshal(params[0], &raw) //nolint:errcheck
		return l.applyRawTx(raw)

	case "eth_getTransactionReceipt":
		var hash string
		json.Unmarshal(params[0], &hash) //nolint:errcheck
		status, ok := l.receipts[hash]
		if !ok {
			return nil, nil
		}
		return map[string]string{
			"status":      "0x" + new(big.Int).SetUint64(status).Text(16),
			"blockNumber": "0x" + new(big.Int).SetUint64(l.blockNum).Text(16),
			"gasUsed":     "0xd6d8",
		}, nil

	default:
		return nil, &chain.RPCError{Code: -32601, Message: "method not found: " + method}
	}
}

func (l *ledgerNode) evalCall(data string) (interface{}, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(data, "0x"))
	if err != nil || len(raw) < 4 {
		return nil, &chain.RPCError{Code: -32602, Message: "bad calldata"}
	}
	selector := hex.EncodeToString(raw[:4])
	switch selector {
	case "70a08231": // balanceOf(address)
		account := common.BytesToAddress(raw[4+12 : 4+32])
		return "0x" + wordHex(l.balanceOf(account)), nil
	case "18160ddd": // totalSupply()
		return "0x" + wordHex(l.totalSupply), nil
	case "313ce567": // decimals()
		return "0x" + wordHex(uint256.NewInt(18)), nil
	default:
		return nil, &chain.RPCError{Code: 3, Message: "execution reverted"}
	}
}

type transferCall struct {
	to     common.Address
	amount *uint256.Int
}

func decodeTransfer(data []byte) (*transferCall, bool) {
	if len(data) != 4+64 || hex.EncodeToString(data[:4]) != "a9059cbb" {
		return nil, false
	}
	return &transferCall{
		to:     common.BytesToAddress(data[4+12 : 4+32]),
		amount: new(uint256.Int).SetBytes(data[36:68]),
	}, true
}

type revertError struct{ reason string }

func (e *revertError) Error() string { return "execution reverted: " + e.reason }

func (l *ledgerNode) simulateTransfer(from common.Address, data string) error {
	raw, err := hex.DecodeString(strings.TrimPrefix(data, "0x"))
	if err != nil {
		return &revertError{reason: "bad calldata"}
	}
	tc, ok := decodeTransfer(raw)
	if !ok {
		return nil // not a transfer, nothing to simulate
	}
	if l.balanceOf(from).Lt(tc.amount) {
		return &revertError{reason: "ERC20: transfer amount exceeds balance"}
	}
	return nil
}

func (l *ledgerNode) applyRawTx(raw string) (interface{}, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, &chain.RPCError{Code: -32602, Message: "bad raw tx"}
	}
	var tx types.Transaction
	if err := tx.UnmarshalBinary(b); err != nil {
		return nil, &chain.RPCError{Code: -32602, Message: "undecodable tx: " + err.Error()}
	}
	from, err := types.Sender(l.signer, &tx)
	if err != nil {
		return nil, &chain.RPCError{Code: -32602, Message: "unrecoverable sender"}
	}

	hash := tx.Hash().Hex()
	l.nonces[from]++
	l.blockNum++

	tc, ok := decodeTransfer(tx.Data())
	if !ok {
		l.receipts[hash] = 0
		return hash, nil
	}
	if l.balanceOf(from).Lt(tc.amount) {
		l.receipts[hash] = 0 // mined but reverted
		return hash, nil
	}
	l.balances[from] = new(uint256.Int).Sub(l.balanceOf(from), tc.amount)
	l.balances[tc.to] = new(uint256.Int).Add(l.balanceOf(tc.to), tc.amount)
	l.receipts[hash] = 1
	return hash, nil
}

// ---------------------------------------------------------------------------

func bindToken(t *testing.T, srv *httptest.Server, key string) (*contract.Token, *chain.Client) {
	t.Helper()
	cl := chain.NewClient(srv.URL)

	b, err := contract.Bind(contract.ERC20ABI, tokenAddr, cl)
	require.NoError(t, err)

	if key != "" {
		signer, err := wallet.NewSigner(key)
		require.NoError(t, err)
		b = b.WithSigner(signer, big.NewInt(chainID))
	}

	tok, err := contract.NewToken(context.Background(), b)
	require.NoError(t, err)
	return tok, cl
}

func TestTransferMovesExactAmount(t *testing.T) {
	ledger := newLedgerNode()
	supply, err := contract.ParseAmount("1000000", 18)
	require.NoError(t, err)
	ledger.mint(addrA, supply)

	srv := ledger.serve(t)
	tok, cl := bindToken(t, srv, keyA)

	one, err := contract.ParseAmount("1", 18)
	require.NoError(t, err)

	hash, err := tok.Transfer(context.Background(), addrB, one)
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	receipt, err := cl.AwaitReceipt(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Status)

	balA, err := tok.BalanceOf(context.Background(), addrA)
	require.NoError(t, err)
	balB, err := tok.BalanceOf(context.Background(), addrB)
	require.NoError(t, err)

	assert.Equal(t, "999999", contract.FormatAmount(balA, 18))
	assert.Equal(t, "1", contract.FormatAmount(balB, 18))

	// conservation: supply is untouched by transfers
	total, err := tok.TotalSupply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, supply.Dec(), total.Dec())
	assert.Equal(t, supply.Dec(), new(uint256.Int).Add(balA, balB).Dec())
}

func TestBalanceReadIdempotent(t *testing.T) {
	ledger := newLedgerNode()
	supply, err := contract.ParseAmount("100", 18)
	require.NoError(t, err)
	ledger.mint(addrA, supply)

	srv := ledger.serve(t)
	tok, cl := bindToken(t, srv, keyA)

	// repeated reads with no intervening transfer return the same value
	first, err := tok.BalanceOf(context.Background(), addrA)
	require.NoError(t, err)
	second, err := tok.BalanceOf(context.Background(), addrA)
	require.NoError(t, err)
	assert.Equal(t, first.Dec(), second.Dec())
	assert.Equal(t, "100", contract.FormatAmount(second, 18))

	// after a transfer both sides settle and repeated reads agree again
	amount, err := contract.ParseAmount("3", 18)
	require.NoError(t, err)
	hash, err := tok.Transfer(context.Background(), addrB, amount)
	require.NoError(t, err)
	_, err = cl.AwaitReceipt(context.Background(), hash)
	require.NoError(t, err)

	after1, err := tok.BalanceOf(context.Background(), addrA)
	require.NoError(t, err)
	after2, err := tok.BalanceOf(context.Background(), addrA)
	require.NoError(t, err)
	assert.Equal(t, after1.Dec(), after2.Dec())
	assert.Equal(t, "97", contract.FormatAmount(after2, 18))
}

func TestInsufficientBalanceReverts(t *testing.T) {
	ledger := newLedgerNode()
	supply, err := contract.ParseAmount("5", 18)
	require.NoError(t, err)
	ledger.mint(addrA, supply)

	srv := ledger.serve(t)
	// B holds nothing and tries to send anyway
	tok, _ := bindToken(t, srv, keyB)

	one, err := contract.ParseAmount("1", 18)
	require.NoError(t, err)

	_, err = tok.Transfer(context.Background(), addrA, one)
	require.Error(t, err)

	var revert *chain.RevertError
	require.ErrorAs(t, err, &revert)
	assert.Contains(t, revert.Reason, "exceeds balance")

	// nothing moved
	balA, err := tok.BalanceOf(context.Background(), addrA)
	require.NoError(t, err)
	balB, err := tok.BalanceOf(context.Background(), addrB)
	require.NoError(t, err)
	assert.Equal(t, supply.Dec(), balA.Dec())
	assert.True(t, balB.IsZero())
}

func TestControllerAgainstLedger(t *testing.T) {
	ledger := newLedgerNode()
	supply, err := contract.ParseAmount("100", 18)
	require.NoError(t, err)
	ledger.mint(addrA, supply)

	srv := ledger.serve(t)
	cl := chain.NewClient(srv.URL)

	mgr := wallet.NewManager()
	require.NoError(t, mgr.AddWithKey("dev", keyA))
	session := wallet.NewSession(mgr)

	b, err := contract.Bind(contract.ERC20ABI, tokenAddr, cl)
	require.NoError(t, err)
	b = b.WithSessionSigner(session, big.NewInt(chainID))

	tok, err := contract.NewToken(context.Background(), b)
	require.NoError(t, err)

	ctrl := controller.New(session, tok, nil)
	ctx := context.Background()

	// transfers are refused until the session is connected
	_, err = ctrl.SubmitTransfer(ctx, addrB, "1")
	assert.ErrorIs(t, err, controller.ErrNotConnected)

	addr, err := ctrl.Connect(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, addrA, addr)

	bal, err := ctrl.RefreshBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "100", contract.FormatAmount(bal, 18))

	hash, err := ctrl.SubmitTransfer(ctx, addrB, "2.5")
	require.NoError(t, err)
	assert.Equal(t, hash, ctrl.Snapshot().PendingTx)

	bal, err = ctrl.RefreshBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "97.5", contract.FormatAmount(bal, 18))

	// after disconnect the signing capability is gone
	ctrl.Disconnect()
	_, err = ctrl.SubmitTransfer(ctx, addrB, "1")
	assert.ErrorIs(t, err, controller.ErrNotConnected)
}
