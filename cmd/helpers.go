package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenforge/tokenctl/internal/chain"
	"github.com/tokenforge/tokenctl/internal/contract"
	"github.com/tokenforge/tokenctl/internal/wallet"
)

// resolveNetwork returns the selected test network: --network flag, else
// the configured default.
func resolveNetwork() (*chain.Network, error) {
	name := networkFlag
	if name == "" {
		name = cfg.DefaultNetwork
	}
	n, err := chain.NewRegistry().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("unknown network %q — run `tokenctl network list`", name)
	}
	return n, nil
}

// pickRPC returns the RPC endpoint for a network: the first custom RPC from
// config when present, else the first registry entry.
func pickRPC(n *chain.Network) (string, error) {
	if custom := cfg.RPCsFor(n.Name); len(custom) > 0 {
		return custom[0], nil
	}
	if len(n.RPCs) == 0 {
		return "", fmt.Errorf("no RPC configured for %s", n.Name)
	}
	return n.RPCs[0], nil
}

// newWalletManager builds the manager over the on-disk wallet store and the
// OS keystore.
func newWalletManager() (*wallet.Manager, error) {
	ks, err := wallet.DefaultKeystore()
	if err != nil {
		return nil, err
	}
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(ks),
	), nil
}

// resolveContract returns the target contract address for a reference: a
// literal 0x address, a remembered contract name, or — when empty — the
// remembered default.
func resolveContract(ref string, n *chain.Network) (string, error) {
	if common.IsHexAddress(ref) {
		return ref, nil
	}
	entry, ok := cfg.FindContract(ref)
	if !ok {
		if ref == "" {
			return "", fmt.Errorf("no contract deployed or remembered — run `tokenctl deploy` or pass --contract")
		}
		return "", fmt.Errorf("unknown contract %q", ref)
	}
	if entry.Network != n.Name {
		return "", fmt.Errorf("contract %q lives on %s, not %s", entry.Name, entry.Network, n.Name)
	}
	return entry.Address, nil
}

// bindToken resolves the contract's interface and produces a typed token
// handle. session may be nil for read-only use.
func bindToken(ctx context.Context, n *chain.Network, address string, session *wallet.Session) (*contract.Token, *chain.Client, error) {
	rpcURL, err := pickRPC(n)
	if err != nil {
		return nil, nil, err
	}
	client := chain.NewClient(rpcURL)

	fetcher := contract.NewFetcher(cfg.ExplorerAPIKey)
	abi, err := fetcher.ResolveInterface(ctx, client, n.ExplorerAPI, address)
	if err != nil {
		return nil, nil, err
	}

	binding, err := contract.Bind(abi, address, client)
	if err != nil {
		return nil, nil, err
	}
	if session != nil {
		signer, err := session.Signer()
		if err != nil {
			return nil, nil, err
		}
		binding = binding.WithSigner(signer, big.NewInt(n.ChainID))
	}

	token, err := contract.NewToken(ctx, binding)
	if err != nil {
		return nil, nil, err
	}
	return token, client, nil
}

// connectedSession re-establishes the marked session in this process:
// it requires an active session marker and unlocks that wallet's key.
func connectedSession() (*wallet.Session, wallet.SessionMarker, error) {
	marker, ok := wallet.LoadSessionMarker()
	if !ok {
		return nil, marker, fmt.Errorf("no active session — run `tokenctl connect` first")
	}
	mgr, err := newWalletManager()
	if err != nil {
		return nil, marker, err
	}
	session := wallet.NewSession(mgr)
	if _, err := session.Connect(marker.Wallet); err != nil {
		return nil, marker, err
	}
	return session, marker, nil
}

// blockHashReader adapts chain.Client to the controller's BlockReader.
type blockHashReader struct {
	client *chain.Client
}

func (r blockHashReader) LatestBlockHash(ctx context.Context) (string, error) {
	b, err := r.client.GetLatestBlock(ctx)
	if err != nil {
		return "", err
	}
	return b.Hash, nil
}
