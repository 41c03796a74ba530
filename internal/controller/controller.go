// Package controller sequences wallet-session and token operations behind
// an explicit state machine: Disconnected → Connecting → Connected, with a
// single-flight guard on transfers and stale-completion discarding after
// disconnect. Presentation layers (CLI commands, the interaction panel)
// call its operations and render the returned results and errors; the
// controller itself never prints.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/tokenforge/tokenctl/internal/contract"
)

// State is the session lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Errors reported at the operation boundary.
var (
	ErrAlreadyConnected = errors.New("already connected")
	ErrConnecting       = errors.New("connection already in progress")
	ErrNotConnected     = errors.New("not connected")
	ErrTransferInFlight = errors.New("a transfer is already in flight")
)

// Connector is the wallet-session capability the controller drives.
// *wallet.Session satisfies it.
type Connector interface {
	Connect(name string) (address string, err error)
	Disconnect()
}

// TokenGateway is the bound token contract the controller reads and writes.
// *contract.Token satisfies it.
type TokenGateway interface {
	BalanceOf(ctx context.Context, account string) (*uint256.Int, error)
	Transfer(ctx context.Context, recipient string, amount *uint256.Int) (txHash string, err error)
	Decimals() int
}

// BlockReader supplies the informational head-block fetch.
type BlockReader interface {
	LatestBlockHash(ctx context.Context) (string, error)
}

// Snapshot is a copy of the controller's observable state, safe to render.
type Snapshot struct {
	State   State
	Address string

	// Display state. A nil Balance means it has not been fetched (or was
	// reset by a reconnect) and must not be assumed stale-valid.
	Balance          *uint256.Int
	BlockHash        string
	PendingTx        string
	TransferInFlight bool
}

// Controller owns Session and Display state and sequences
// connect → bind → invoke → update. All methods are safe for concurrent
// use; blocking calls happen outside the lock, and completions are applied
// only if no disconnect intervened (epoch guard).
type Controller struct {
	session Connector
	token   TokenGateway
	blocks  BlockReader

	mu               sync.Mutex
	epoch            uint64
	state            State
	address          string
	balance          *uint256.Int
	blockHash        string
	pendingTx        string
	transferInFlight bool
}

// New creates a controller in the Disconnected state. blocks may be nil
// when no head-block display is wanted.
func New(session Connector, token TokenGateway, blocks BlockReader) *Controller {
	return &Controller{
		session: session,
		token:   token,
		blocks:  blocks,
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	var bal *uint256.Int
	if c.balance != nil {
		bal = c.balance.Clone()
	}
	return Snapshot{
		State:            c.state,
		Address:          c.address,
		Balance:          bal,
		BlockHash:        c.blockHash,
		PendingTx:        c.pendingTx,
		TransferInFlight: c.transferInFlight,
	}
}

// Connect authorizes the named wallet (empty = default) and moves the
// session to Connected. A failure leaves the state Disconnected; retry is
// up to the user.
func (c *Controller) Connect(ctx context.Context, walletName string) (string, error) {
	c.mu.Lock()
	switch c.state {
	case StateConnected:
		c.mu.Unlock()
		return "", ErrAlreadyConnected
	case StateConnecting:
		c.mu.Unlock()
		return "", ErrConnecting
	}
	c.state = StateConnecting
	epoch := c.epoch
	c.mu.Unlock()

	addr, err := c.session.Connect(walletName)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		// Disconnected while connecting: the authorization, if it landed,
		// is revoked and the result discarded.
		if err == nil {
			c.session.Disconnect()
		}
		return "", ErrNotConnected
	}
	if err != nil {
		c.state = StateDisconnected
		return "", err
	}

	c.state = StateConnected
	c.address = addr
	// A fresh session starts with no balance observation; it must be
	// re-fetched, never carried over.
	c.balance = nil
	c.pendingTx = ""
	return addr, nil
}

// Disconnect revokes the session. Idempotent. Any operation still in
// flight has its completion discarded.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.session.Disconnect()
	c.state = StateDisconnected
	c.address = ""
	c.balance = nil
	c.pendingTx = ""
	c.transferInFlight = false
}

// RefreshBalance fetches the connected account's token balance and updates
// display state. On failure the previous observation is kept unchanged.
func (c *Controller) RefreshBalance(ctx context.Context) (*uint256.Int, error) {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	addr := c.address
	epoch := c.epoch
	c.mu.Unlock()

	bal, err := c.token.BalanceOf(ctx, addr)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return nil, ErrNotConnected
	}
	c.balance = bal.Clone()
	return bal, nil
}

// SubmitTransfer validates recipient and amount, then submits a transfer
// and returns the transaction hash. Only one transfer may be in flight at
// a time; concurrent attempts fail with ErrTransferInFlight so a repeated
// click cannot double-spend. The hash is a submission acknowledgment, not
// confirmation.
func (c *Controller) SubmitTransfer(ctx context.Context, recipient, amount string) (string, error) {
	if !common.IsHexAddress(recipient) {
		return "", &contract.ValidationError{Detail: "malformed recipient address: " + recipient}
	}

	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return "", ErrNotConnected
	}
	if c.transferInFlight {
		c.mu.Unlock()
		return "", ErrTransferInFlight
	}

	raw, err := contract.ParseAmount(amount, c.token.Decimals())
	if err != nil {
		c.mu.Unlock()
		return "", err
	}

	c.transferInFlight = true
	epoch := c.epoch
	c.mu.Unlock()

	hash, err := c.token.Transfer(ctx, recipient, raw)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		// Session ended mid-flight; the transaction may still land on
		// chain, but it no longer belongs to any display state here.
		return "", ErrNotConnected
	}
	c.transferInFlight = false
	if err != nil {
		return "", fmt.Errorf("transfer not submitted: %w", err)
	}
	c.pendingTx = hash
	return hash, nil
}

// FetchBlockHash runs the informational head-block query. It touches only
// the block-hash display field; failures are returned for optional display
// and never affect any other operation or state.
func (c *Controller) FetchBlockHash(ctx context.Context) (string, error) {
	if c.blocks == nil {
		return "", nil
	}
	hash, err := c.blocks.LatestBlockHash(ctx)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.blockHash = hash
	c.mu.Unlock()
	return hash, nil
}
