package contract

import (
	"context"
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
)

// Token is a typed view over a bound ERC-20 contract: balance and transfer
// plus the metadata reads the panel displays.
type Token struct {
	binding  *Binding
	name     string
	symbol   string
	decimals int
}

// NewToken wraps a binding and reads the token's metadata once. Metadata is
// cosmetic: a token that omits name/symbol still works, and decimals falls
// back to 18.
func NewToken(ctx context.Context, b *Binding) (*Token, error) {
	if _, ok := b.Method("balanceOf"); !ok {
		return nil, &ValidationError{Detail: "interface has no balanceOf"}
	}
	if _, ok := b.Method("transfer"); !ok {
		return nil, &ValidationError{Detail: "interface has no transfer"}
	}

	t := &Token{binding: b, decimals: 18}
	if _, ok := b.Method("decimals"); ok {
		if out, err := b.Call(ctx, "decimals"); err == nil && len(out) == 1 {
			if d, err := strconv.Atoi(out[0]); err == nil {
				t.decimals = d
			}
		}
	}
	if _, ok := b.Method("name"); ok {
		if out, err := b.Call(ctx, "name"); err == nil && len(out) == 1 {
			t.name = out[0]
		}
	}
	if _, ok := b.Method("symbol"); ok {
		if out, err := b.Call(ctx, "symbol"); err == nil && len(out) == 1 {
			t.symbol = out[0]
		}
	}
	return t, nil
}

// Name returns the token name, possibly empty.
func (t *Token) Name() string { return t.name }

// Symbol returns the token symbol, possibly empty.
func (t *Token) Symbol() string { return t.symbol }

// Decimals returns the token's decimal places.
func (t *Token) Decimals() int { return t.decimals }

// Address returns the token contract address.
func (t *Token) Address() string { return t.binding.Address() }

// BalanceOf reads the balance of account in raw base units.
func (t *Token) BalanceOf(ctx context.Context, account string) (*uint256.Int, error) {
	out, err := t.binding.Call(ctx, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected balanceOf result: %v", out)
	}
	n, err := uint256.FromDecimal(out[0])
	if err != nil {
		return nil, fmt.Errorf("parsing balance %q: %w", out[0], err)
	}
	return n, nil
}

// TotalSupply reads the total supply in raw base units.
func (t *Token) TotalSupply(ctx context.Context) (*uint256.Int, error) {
	out, err := t.binding.Call(ctx, "totalSupply")
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected totalSupply result: %v", out)
	}
	n, err := uint256.FromDecimal(out[0])
	if err != nil {
		return nil, fmt.Errorf("parsing supply %q: %w", out[0], err)
	}
	return n, nil
}

// Transfer submits a transfer of amount raw base units to recipient and
// returns the transaction hash. Finality is not awaited.
func (t *Token) Transfer(ctx context.Context, recipient string, amount *uint256.Int) (string, error) {
	return t.binding.Submit(ctx, "transfer", recipient, amount.Dec())
}
