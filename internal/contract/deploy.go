package contract

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/tokenforge/tokenctl/internal/chain"
	"github.com/tokenforge/tokenctl/internal/wallet"
)

// Deployer deploys a token contract from a compiler artifact.
type Deployer struct {
	client  *chain.Client
	signer  *wallet.Signer
	chainID *big.Int
}

// NewDeployer creates a Deployer.
func NewDeployer(client *chain.Client, signer *wallet.Signer, chainID *big.Int) *Deployer {
	return &Deployer{client: client, signer: signer, chainID: chainID}
}

// EncodeConstructorArgs ABI-encodes constructor(initialSupply uint256,
// recipient address) for appending to deployment bytecode.
func EncodeConstructorArgs(initialSupply *uint256.Int, recipient string) ([]byte, error) {
	if !common.IsHexAddress(recipient) {
		return nil, &ValidationError{Detail: "malformed recipient address: " + recipient}
	}
	buf := make([]byte, 0, 64)
	supply := initialSupply.Bytes32()
	buf = append(buf, supply[:]...)

	addrWord := make([]byte, 32)
	copy(addrWord[12:], common.HexToAddress(recipient).Bytes())
	buf = append(buf, addrWord...)
	return buf, nil
}

// Deploy submits the contract-creation transaction and returns its hash.
// The initial supply is minted to recipient by the constructor. Like any
// write path, this is submission only; the caller confirms with
// chain.Client.AwaitReceipt, whose receipt carries the contract address.
func (d *Deployer) Deploy(ctx context.Context, art *Artifact, initialSupply *uint256.Int, recipient string) (string, error) {
	args, err := EncodeConstructorArgs(initialSupply, recipient)
	if err != nil {
		return "", err
	}
	data := append(append([]byte{}, art.Bytecode...), args...)

	from := d.signer.Address()
	calldata := "0x" + hex.EncodeToString(data)

	gas, err := d.client.EstimateGas(ctx, from, "", calldata, nil)
	if err != nil {
		gas = 1_500_000 // contract creation fallback
	}

	gasPrice, err := d.client.GasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := d.client.GetPendingNonce(ctx, from)
	if err != nil {
		return "", fmt.Errorf("getting nonce: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   d.chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        nil, // contract creation
		Value:     big.NewInt(0),
		Data:      data,
	})

	raw, err := d.signer.SignTx(tx, d.chainID)
	if err != nil {
		return "", fmt.Errorf("signing deployment: %w", err)
	}

	hash, err := d.client.SendRawTransaction(ctx, "0x"+hex.EncodeToString(raw))
	if err != nil {
		return "", fmt.Errorf("broadcasting deployment: %w", err)
	}
	return hash, nil
}
