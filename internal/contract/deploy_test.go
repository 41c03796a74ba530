package contract

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/tokenctl/internal/wallet"
)

func TestEncodeConstructorArgs(t *testing.T) {
	supply, err := ParseAmount("1000000", 18) // 1,000,000 tokens
	require.NoError(t, err)

	args, err := EncodeConstructorArgs(supply, testHolder)
	require.NoError(t, err)
	require.Len(t, args, 64)

	got := new(uint256.Int).SetBytes(args[:32])
	assert.Equal(t, "1000000000000000000000000", got.Dec())

	// recipient lands left-padded in the second word
	assert.Equal(t,
		strings.ToLower(strings.TrimPrefix(testHolder, "0x")),
		hex.EncodeToString(args[32+12:]))
	for _, b := range args[32 : 32+12] {
		assert.Zero(t, b)
	}
}

func TestEncodeConstructorArgsBadRecipient(t *testing.T) {
	_, err := EncodeConstructorArgs(uint256.NewInt(1), "0xnope")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDeploy(t *testing.T) {
	wantHash := "0x" + strings.Repeat("ef", 32)
	node := newNodeMock(t, map[string]interface{}{
		"eth_estimateGas":         "0x16e360",
		"eth_gasPrice":            "0x3b9aca00",
		"eth_getTransactionCount": "0x2",
		"eth_sendRawTransaction":  wantHash,
	})

	signer, err := wallet.NewSigner(testKey)
	require.NoError(t, err)

	art := &Artifact{
		ABI:      ERC20ABI,
		Bytecode: []byte{0x60, 0x80, 0x60, 0x40},
	}
	d := NewDeployer(node.client(), signer, big.NewInt(11155111))

	hash, err := d.Deploy(context.Background(), art, uint256.NewInt(1000), testHolder)
	require.NoError(t, err)
	assert.Equal(t, wantHash, hash)

	// creation estimate carries data but no "to"
	require.True(t, node.sawMethod("eth_estimateGas"))
	for _, c := range node.calls {
		if c.Method != "eth_estimateGas" {
			continue
		}
		var params struct {
			To   string `json:"to"`
			Data string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(c.Params[0], &params))
		assert.Empty(t, params.To)
		assert.True(t, strings.HasPrefix(params.Data, "0x60806040"))
	}
}
