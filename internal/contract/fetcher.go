package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tokenforge/tokenctl/internal/chain"
)

// Fetcher resolves a deployed contract's interface description.
type Fetcher struct {
	client *http.Client
	apiKey string
}

// NewFetcher creates an interface fetcher. apiKey may be empty for
// explorers that serve unauthenticated requests.
func NewFetcher(apiKey string) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
		apiKey: apiKey,
	}
}

// ResolveInterface fetches the callable-method interface for the contract
// at address. It first probes the address for code (chain.ErrAddressNotFound
// when there is none), then asks the network's Etherscan-compatible API for
// the verified ABI. With no explorer API configured, or when the explorer
// does not know the contract, it falls back to the builtin ERC-20 interface.
func (f *Fetcher) ResolveInterface(ctx context.Context, cl *chain.Client, explorerAPI, address string) ([]ABIEntry, error) {
	code, err := cl.GetCode(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", address, err)
	}
	if isEmptyCode(code) {
		return nil, fmt.Errorf("%w: %s", chain.ErrAddressNotFound, address)
	}

	if explorerAPI == "" {
		return ERC20ABI, nil
	}

	abi, err := f.fetchFromExplorer(ctx, explorerAPI, address)
	if errors.Is(err, errNotVerified) {
		return ERC20ABI, nil
	}
	if err != nil {
		return nil, err
	}
	return abi, nil
}

// errNotVerified means the explorer answered but has no ABI for the address.
var errNotVerified = errors.New("contract source not verified")

func (f *Fetcher) fetchFromExplorer(ctx context.Context, explorerAPI, address string) ([]ABIEntry, error) {
	url := fmt.Sprintf(
		"%s/api?module=contract&action=getabi&address=%s&apikey=%s",
		explorerAPI, address, f.apiKey,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching ABI: %v", chain.ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var result struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Result  string `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing explorer response: %w", err)
	}
	if result.Status != "1" {
		if strings.Contains(strings.ToLower(result.Result), "not verified") {
			return nil, errNotVerified
		}
		return nil, fmt.Errorf("explorer error: %s", result.Message)
	}

	return ParseABI([]byte(result.Result))
}

// isEmptyCode reports whether a getCode result means "no contract here".
func isEmptyCode(code string) bool {
	code = strings.TrimPrefix(code, "0x")
	return strings.Trim(code, "0") == ""
}

// Artifact holds the ABI and deployment bytecode parsed from a compiler
// artifact file.
type Artifact struct {
	ABI      []ABIEntry
	Bytecode []byte
}

// LoadArtifact loads a Hardhat or Foundry artifact JSON file: an object
// with an "abi" array and a "bytecode" field (plain hex string for Hardhat,
// {"object": "0x..."} for Foundry).
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read artifact file: %w", err)
	}
	if len(data) == 0 {
		return nil, &ValidationError{Detail: "artifact file is empty: " + path}
	}

	var raw struct {
		ABI      json.RawMessage `json:"abi"`
		Bytecode json.RawMessage `json:"bytecode"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Detail: fmt.Sprintf("invalid artifact JSON: %v", err)}
	}
	if len(raw.ABI) < 2 || raw.ABI[0] != '[' {
		return nil, &ValidationError{Detail: "artifact has no \"abi\" array: " + path}
	}

	abi, err := ParseABI(raw.ABI)
	if err != nil {
		return nil, err
	}

	bcHex, err := extractBytecodeHex(raw.Bytecode)
	if err != nil {
		return nil, err
	}
	if bcHex == "" || bcHex == "0x" {
		return nil, &ValidationError{Detail: "artifact bytecode is empty; cannot deploy an interface or abstract contract: " + path}
	}

	bc := hexToBytes(bcHex)
	if len(bc) == 0 {
		return nil, &ValidationError{Detail: "invalid bytecode hex in artifact: " + path}
	}
	return &Artifact{ABI: abi, Bytecode: bc}, nil
}

func extractBytecodeHex(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", &ValidationError{Detail: "artifact has no bytecode field"}
	}

	// Hardhat: plain string.
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strings.TrimSpace(str), nil
	}

	// Foundry: {"object": "0x..."}.
	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Object != "" {
		return strings.TrimSpace(obj.Object), nil
	}

	return "", &ValidationError{Detail: "bytecode field is neither a hex string nor a {\"object\":\"0x...\"} object"}
}
