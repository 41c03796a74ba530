package chain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the network boundary.
var (
	// ErrNetworkUnavailable wraps transport-level failures (DNS, refused
	// connection, timeout): the node could not be reached at all.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrAddressNotFound is returned when an address holds no contract code.
	ErrAddressNotFound = errors.New("no contract at address")
)

// RPCError is a JSON-RPC error returned by a reachable node.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// RevertError is an on-chain rejection (execution reverted). It is kept
// distinct from RPCError so callers can tell "the node failed" apart from
// "the contract said no".
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return "execution reverted"
	}
	return "execution reverted: " + e.Reason
}

// asRevert inspects a JSON-RPC error and converts it to a RevertError when
// the node reports an EVM revert. Node implementations phrase this
// differently ("execution reverted", "revert", "VM Exception"), so the check
// is a substring match on the message.
func asRevert(rpcErr *RPCError) error {
	msg := rpcErr.Message
	lower := strings.ToLower(msg)
	if !strings.Contains(lower, "revert") && !strings.Contains(lower, "vm exception") {
		return rpcErr
	}
	return &RevertError{Reason: extractRevertReason(msg)}
}

// extractRevertReason pulls the human-readable reason out of a node error
// message, when one is present.
func extractRevertReason(msg string) string {
	if idx := strings.Index(msg, "execution reverted:"); idx >= 0 {
		return strings.TrimSpace(msg[idx+len("execution reverted:"):])
	}
	if idx := strings.Index(msg, "revert:"); idx >= 0 {
		return strings.TrimSpace(msg[idx+len("revert:"):])
	}
	return ""
}
