package wallet

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Session errors.
var (
	// ErrUserRejected means the keychain prompt was declined.
	ErrUserRejected = errors.New("authorization rejected")

	// ErrNoProvider means no wallet with signing capability is available.
	ErrNoProvider = errors.New("no signing wallet available")

	// ErrNotConnected is returned when a signing capability is requested
	// from a disconnected session.
	ErrNotConnected = errors.New("session not connected")
)

// Session represents the user's authenticated identity and signing
// capability. Connect unlocks the wallet's key from the keystore and keeps
// the signer in memory; Disconnect drops it. A failed Connect leaves the
// session disconnected; there is no automatic retry. Safe for concurrent
// use: the controller may call Disconnect while a Connect is in flight.
type Session struct {
	mgr *Manager

	mu        sync.Mutex
	connected bool
	address   string
	signer    *Signer
}

// NewSession creates a disconnected session over the wallet manager.
func NewSession(mgr *Manager) *Session {
	return &Session{mgr: mgr}
}

// Connect authorizes the named wallet (the manager's default when name is
// empty) and on success exposes its address and signing capability.
// Fails with ErrNoProvider when no signing wallet exists, or ErrUserRejected
// when the keychain declines to release the key.
func (s *Session) Connect(name string) (string, error) {
	var w *Wallet
	if name == "" {
		w = s.mgr.Default()
		if w == nil {
			return "", fmt.Errorf("%w: no wallets configured", ErrNoProvider)
		}
	} else {
		var err error
		w, err = s.mgr.Get(name)
		if errors.Is(err, ErrWalletNotFound) {
			return "", fmt.Errorf("%w: wallet %q not found", ErrNoProvider, name)
		}
		if err != nil {
			return "", err
		}
	}
	if w.Type != TypeSigning {
		return "", fmt.Errorf("%w: wallet %q is watch-only", ErrNoProvider, w.Name)
	}

	hexKey, err := s.mgr.Keystore().Retrieve(w.KeyRef)
	if err != nil {
		if isRejection(err) {
			return "", fmt.Errorf("%w: %v", ErrUserRejected, err)
		}
		return "", fmt.Errorf("%w: %v", ErrNoProvider, err)
	}

	signer, err := NewSigner(hexKey)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.connected = true
	s.address = signer.Address()
	s.signer = signer
	addr := s.address
	s.mu.Unlock()
	return addr, nil
}

// Disconnect revokes the cached authorization. Idempotent; never leaves the
// session connected.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.connected = false
	s.address = ""
	s.signer = nil
	s.mu.Unlock()
}

// Connected reports whether the session holds a signing capability.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Address returns the connected identity, or "" when disconnected.
func (s *Session) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// Signer returns the session's signing capability.
func (s *Session) Signer() (*Signer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil, ErrNotConnected
	}
	return s.signer, nil
}

// isRejection classifies keystore errors: a user declining the keychain
// prompt reads differently per backend, so match on the usual phrasings.
func isRejection(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "denied") ||
		strings.Contains(msg, "rejected") ||
		strings.Contains(msg, "cancel")
}
