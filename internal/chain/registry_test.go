package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	n, err := r.GetByName("sepolia")
	require.NoError(t, err)
	assert.Equal(t, int64(11155111), n.ChainID)
	assert.NotEmpty(t, n.RPCs)

	// case-insensitive
	n, err = r.GetByName("SEPOLIA")
	require.NoError(t, err)
	assert.Equal(t, "sepolia", n.Name)

	n, err = r.GetByChainID(84532)
	require.NoError(t, err)
	assert.Equal(t, "base-sepolia", n.Name)

	_, err = r.GetByName("mainnet")
	assert.ErrorIs(t, err, ErrNetworkNotFound)

	_, err = r.GetByChainID(1)
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

func TestRegistryComplete(t *testing.T) {
	r := NewRegistry()
	require.NotEmpty(t, r.All())

	for _, n := range r.All() {
		assert.NotEmpty(t, n.Name, "network missing name")
		assert.NotEmpty(t, n.DisplayName, "%s missing display name", n.Name)
		assert.NotZero(t, n.ChainID, "%s missing chain id", n.Name)
		assert.NotEmpty(t, n.RPCs, "%s missing rpc endpoints", n.Name)
		assert.NotEmpty(t, n.Explorer, "%s missing explorer", n.Name)
	}
}
