package contract

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/tokenforge/tokenctl/internal/chain"
	"github.com/tokenforge/tokenctl/internal/wallet"
)

// Binding is a callable handle for a deployed contract: one typed method
// per ABI entry, built and validated at bind time. Binding itself performs
// no network call; invoking a method does.
//
// A Binding without a signer is read-only. Attach one with WithSigner to
// enable write methods.
type Binding struct {
	client  *chain.Client
	address string
	methods map[string]Method
	// signerFn resolves the signing capability at submit time, so a
	// binding can be created before the wallet session is connected.
	signerFn func() (*wallet.Signer, error)
	chainID  *big.Int
}

// SignerSource yields a signing capability on demand. *wallet.Session
// satisfies it.
type SignerSource interface {
	Signer() (*wallet.Signer, error)
}

// ErrNoSigner is returned when a write method is invoked on a read-only binding.
var ErrNoSigner = errors.New("binding has no signer attached")

// Bind validates the interface description and produces a read-only binding
// for the contract at address. Malformed or unsupported ABIs are rejected
// here with a *ValidationError rather than failing later on invocation.
func Bind(abi []ABIEntry, address string, client *chain.Client) (*Binding, error) {
	if !common.IsHexAddress(address) {
		return nil, &ValidationError{Detail: "malformed contract address: " + address}
	}
	methods, err := buildMethodTable(abi)
	if err != nil {
		return nil, err
	}
	return &Binding{
		client:  client,
		address: address,
		methods: methods,
	}, nil
}

// WithSigner returns a copy of the binding that submits write transactions
// signed by s on the given chain.
func (b *Binding) WithSigner(s *wallet.Signer, chainID *big.Int) *Binding {
	nb := *b
	nb.signerFn = func() (*wallet.Signer, error) { return s, nil }
	nb.chainID = chainID
	return &nb
}

// WithSessionSigner returns a copy of the binding that resolves its signer
// from src at submit time. A submit while the session is disconnected fails
// with the session's error instead of signing with a stale key.
func (b *Binding) WithSessionSigner(src SignerSource, chainID *big.Int) *Binding {
	nb := *b
	nb.signerFn = src.Signer
	nb.chainID = chainID
	return &nb
}

// Address returns the bound contract address.
func (b *Binding) Address() string {
	return b.address
}

// Methods returns the typed method table.
func (b *Binding) Methods() map[string]Method {
	return b.methods
}

// Method looks up a single method by name.
func (b *Binding) Method(name string) (Method, bool) {
	m, ok := b.methods[name]
	return m, ok
}

// Call invokes a read method and returns the decoded results as strings.
// Node failures surface as *chain.RPCError (or chain.ErrNetworkUnavailable);
// on-chain rejections as *chain.RevertError.
func (b *Binding) Call(ctx context.Context, funcName string, args ...string) ([]string, error) {
	m, ok := b.methods[funcName]
	if !ok {
		return nil, &ValidationError{Detail: "function not in interface: " + funcName}
	}
	if m.Write {
		return nil, &ValidationError{Detail: funcName + " is a write function, use Submit"}
	}

	calldata, err := encodeCall(&m, args)
	if err != nil {
		return nil, err
	}

	from := ""
	if b.signerFn != nil {
		if s, err := b.signerFn(); err == nil {
			from = s.Address()
		}
	}
	result, err := b.client.CallContract(ctx, from, b.address, calldata)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", funcName, err)
	}
	return decodeResult(&m, result)
}

// Submit invokes a write method: it builds, signs and broadcasts the
// transaction and returns the transaction hash. Finality is not awaited;
// callers that need confirmation poll chain.Client.AwaitReceipt with the
// returned hash.
func (b *Binding) Submit(ctx context.Context, funcName string, args ...string) (string, error) {
	m, ok := b.methods[funcName]
	if !ok {
		return "", &ValidationError{Detail: "function not in interface: " + funcName}
	}
	if !m.Write {
		return "", &ValidationError{Detail: funcName + " is a read function, use Call"}
	}
	if b.signerFn == nil {
		return "", ErrNoSigner
	}
	signer, err := b.signerFn()
	if err != nil {
		return "", err
	}

	calldata, err := encodeCall(&m, args)
	if err != nil {
		return "", err
	}

	from := signer.Address()

	gas, err := b.client.EstimateGas(ctx, from, b.address, calldata, nil)
	if err != nil {
		// Estimation reverts carry the contract's reason; surface them
		// instead of broadcasting a transaction doomed to fail.
		var revert *chain.RevertError
		if errors.As(err, &revert) {
			return "", err
		}
		gas = 100_000 // fallback when the node lacks eth_estimateGas
	}

	gasPrice, err := b.client.GasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := b.client.GetPendingNonce(ctx, from)
	if err != nil {
		return "", fmt.Errorf("getting nonce: %w", err)
	}

	toAddr := common.HexToAddress(b.address)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   b.chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &toAddr,
		Value:     big.NewInt(0),
		Data:      hexToBytes(calldata),
	})

	raw, err := signer.SignTx(tx, b.chainID)
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := b.client.SendRawTransaction(ctx, "0x"+hex.EncodeToString(raw))
	if err != nil {
		return "", fmt.Errorf("broadcasting transaction: %w", err)
	}
	return hash, nil
}

func hexToBytes(s string) []byte {
	if len(s) >= 2 && s[:2] == "0x" {
		s = s[2:]
	}
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}
