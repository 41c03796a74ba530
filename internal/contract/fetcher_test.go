package contract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/tokenctl/internal/chain"
)

func TestIsEmptyCode(t *testing.T) {
	assert.True(t, isEmptyCode("0x"))
	assert.True(t, isEmptyCode("0x0"))
	assert.True(t, isEmptyCode("0x0000"))
	assert.True(t, isEmptyCode(""))
	assert.False(t, isEmptyCode("0x6080604052"))
}

func TestResolveInterfaceAddressNotFound(t *testing.T) {
	node := newNodeMock(t, map[string]interface{}{
		"eth_getCode": "0x",
	})

	f := NewFetcher("")
	_, err := f.ResolveInterface(context.Background(), node.client(), "", testContract)
	assert.ErrorIs(t, err, chain.ErrAddressNotFound)
}

func TestResolveInterfaceBuiltinFallback(t *testing.T) {
	node := newNodeMock(t, map[string]interface{}{
		"eth_getCode": "0x6080604052",
	})

	// no explorer API configured
	f := NewFetcher("")
	abi, err := f.ResolveInterface(context.Background(), node.client(), "", testContract)
	require.NoError(t, err)
	assert.Equal(t, ERC20ABI, abi)
}

func TestResolveInterfaceFromExplorer(t *testing.T) {
	node := newNodeMock(t, map[string]interface{}{
		"eth_getCode": "0x6080604052",
	})

	custom := `[{"name":"ping","type":"function","stateMutability":"view","outputs":[{"type":"bool"}]}]`
	explorer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "contract", r.URL.Query().Get("module"))
		assert.Equal(t, "getabi", r.URL.Query().Get("action"))
		assert.Equal(t, testContract, r.URL.Query().Get("address"))
		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"status": "1", "message": "OK", "result": custom,
		})
	}))
	defer explorer.Close()

	f := NewFetcher("test-key")
	abi, err := f.ResolveInterface(context.Background(), node.client(), explorer.URL, testContract)
	require.NoError(t, err)
	require.Len(t, abi, 1)
	assert.Equal(t, "ping", abi[0].Name)
}

func TestResolveInterfaceNotVerifiedFallsBack(t *testing.T) {
	node := newNodeMock(t, map[string]interface{}{
		"eth_getCode": "0x6080604052",
	})

	explorer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"status": "0", "message": "NOTOK",
			"result": "Contract source code not verified",
		})
	}))
	defer explorer.Close()

	f := NewFetcher("")
	abi, err := f.ResolveInterface(context.Background(), node.client(), explorer.URL, testContract)
	require.NoError(t, err)
	assert.Equal(t, ERC20ABI, abi)
}

// ---------------------------------------------------------------------------
// artifacts
// ---------------------------------------------------------------------------

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Token.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const artifactABI = `[
	{"name":"transfer","type":"function","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
	 "outputs":[{"type":"bool"}]},
	{"name":"balanceOf","type":"function","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"}],
	 "outputs":[{"type":"uint256"}]}
]`

func TestLoadArtifactHardhat(t *testing.T) {
	path := writeArtifact(t, `{"abi":`+artifactABI+`,"bytecode":"0x60806040"}`)

	art, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Len(t, art.ABI, 2)
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40}, art.Bytecode)
}

func TestLoadArtifactFoundry(t *testing.T) {
	path := writeArtifact(t, `{"abi":`+artifactABI+`,"bytecode":{"object":"0x60806040"}}`)

	art, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40}, art.Bytecode)
}

func TestLoadArtifactRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"not json", "solidity source, not an artifact"},
		{"bare abi array", artifactABI},
		{"missing bytecode", `{"abi":` + artifactABI + `}`},
		{"empty bytecode", `{"abi":` + artifactABI + `,"bytecode":"0x"}`},
		{"abi is object", `{"abi":{},"bytecode":"0x60"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeArtifact(t, tt.content)
			_, err := LoadArtifact(path)
			require.Error(t, err)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadArtifact(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}
