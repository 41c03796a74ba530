package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer holds an unlocked private key and signs transactions with it.
// It exists only for the lifetime of a connected session; Disconnect drops it.
type Signer struct {
	address string
	key     *ecdsa.PrivateKey
}

// NewSigner parses a hex private key into a Signer.
func NewSigner(hexKey string) (*Signer, error) {
	key, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &Signer{
		address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
		key:     key,
	}, nil
}

// Address returns the signer's address.
func (s *Signer) Address() string {
	return s.address
}

// SignTx signs a transaction and returns the raw signed bytes.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshaling signed tx: %w", err)
	}
	return raw, nil
}
