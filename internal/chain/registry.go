package chain

import (
	"errors"
	"strings"
)

// ErrNetworkNotFound is returned when a network is not in the registry.
var ErrNetworkNotFound = errors.New("network not found")

// Network holds metadata for a single test network.
type Network struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	ChainID        int64    `json:"chain_id"`
	NativeCurrency string   `json:"native_currency"`
	RPCs           []string `json:"rpcs"`
	Explorer       string   `json:"explorer"`
	// Etherscan-compatible ABI/tx API endpoint.
	ExplorerAPI string `json:"explorer_api,omitempty"`
	FaucetURL   string `json:"faucet_url,omitempty"`
}

// Registry is the test-network registry. The tool is deliberately scoped to
// testnets; there is no way to point it at a mainnet.
type Registry struct {
	networks []Network
	byName   map[string]*Network
	byID     map[int64]*Network
}

// NewRegistry returns the registry of supported test networks.
func NewRegistry() *Registry {
	networks := allNetworks()
	r := &Registry{
		networks: networks,
		byName:   make(map[string]*Network, len(networks)),
		byID:     make(map[int64]*Network, len(networks)),
	}
	for i := range r.networks {
		n := &r.networks[i]
		r.byName[n.Name] = n
		r.byID[n.ChainID] = n
	}
	return r
}

// All returns every network in the registry.
func (r *Registry) All() []Network {
	return r.networks
}

// GetByName finds a network by its slug name (e.g. "sepolia").
func (r *Registry) GetByName(name string) (*Network, error) {
	n, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// GetByChainID finds a network by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Network, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

func allNetworks() []Network {
	return []Network{
		{
			Name:           "sepolia",
			DisplayName:    "Ethereum Sepolia",
			ChainID:        11155111,
			NativeCurrency: "ETH",
			RPCs: []string{
				"https://ethereum-sepolia-rpc.publicnode.com",
				"https://rpc.sepolia.org",
				"https://1rpc.io/sepolia",
			},
			Explorer:    "https://sepolia.etherscan.io",
			ExplorerAPI: "https://api-sepolia.etherscan.io",
			FaucetURL:   "https://sepoliafaucet.com",
		},
		{
			Name:           "holesky",
			DisplayName:    "Ethereum Holesky",
			ChainID:        17000,
			NativeCurrency: "ETH",
			RPCs: []string{
				"https://ethereum-holesky-rpc.publicnode.com",
				"https://1rpc.io/holesky",
			},
			Explorer:    "https://holesky.etherscan.io",
			ExplorerAPI: "https://api-holesky.etherscan.io",
			FaucetURL:   "https://holesky-faucet.pk910.de",
		},
		{
			Name:           "base-sepolia",
			DisplayName:    "Base Sepolia",
			ChainID:        84532,
			NativeCurrency: "ETH",
			RPCs: []string{
				"https://sepolia.base.org",
				"https://base-sepolia-rpc.publicnode.com",
			},
			Explorer:    "https://sepolia.basescan.org",
			ExplorerAPI: "https://api-sepolia.basescan.org",
		},
		{
			Name:           "arbitrum-sepolia",
			DisplayName:    "Arbitrum Sepolia",
			ChainID:        421614,
			NativeCurrency: "ETH",
			RPCs: []string{
				"https://sepolia-rollup.arbitrum.io/rpc",
				"https://arbitrum-sepolia-rpc.publicnode.com",
			},
			Explorer:    "https://sepolia.arbiscan.io",
			ExplorerAPI: "https://api-sepolia.arbiscan.io",
		},
		{
			Name:           "optimism-sepolia",
			DisplayName:    "OP Sepolia",
			ChainID:        11155420,
			NativeCurrency: "ETH",
			RPCs: []string{
				"https://sepolia.optimism.io",
				"https://optimism-sepolia-rpc.publicnode.com",
			},
			Explorer:    "https://sepolia-optimism.etherscan.io",
			ExplorerAPI: "https://api-sepolia-optimistic.etherscan.io",
		},
		{
			Name:           "polygon-amoy",
			DisplayName:    "Polygon Amoy",
			ChainID:        80002,
			NativeCurrency: "POL",
			RPCs: []string{
				"https://rpc-amoy.polygon.technology",
				"https://polygon-amoy-bor-rpc.publicnode.com",
			},
			Explorer:    "https://amoy.polygonscan.com",
			ExplorerAPI: "https://api-amoy.polygonscan.com",
			FaucetURL:   "https://faucet.polygon.technology",
		},
	}
}
