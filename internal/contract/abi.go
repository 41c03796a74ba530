package contract

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// ABIParam is a parameter in an ABI entry.
type ABIParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ABIEntry is a single ABI function/event/constructor entry.
type ABIEntry struct {
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Inputs          []ABIParam `json:"inputs"`
	Outputs         []ABIParam `json:"outputs"`
	StateMutability string     `json:"stateMutability"`
}

// IsReadFunction reports whether the entry is a view/pure function.
func (e *ABIEntry) IsReadFunction() bool {
	return e.Type == "function" && (e.StateMutability == "view" || e.StateMutability == "pure")
}

// IsWriteFunction reports whether the entry is a state-mutating function.
func (e *ABIEntry) IsWriteFunction() bool {
	return e.Type == "function" && !e.IsReadFunction()
}

// ValidationError reports a malformed or unsupported interface description.
// It is raised at parse/bind time so a bad ABI fails before any invocation.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return "invalid interface: " + e.Detail
}

// ParseABI parses a raw ABI JSON array.
func ParseABI(data []byte) ([]ABIEntry, error) {
	var abi []ABIEntry
	if err := json.Unmarshal(data, &abi); err != nil {
		data = bytes.TrimSpace(data)
		if len(data) > 0 && data[0] == '{' {
			return nil, &ValidationError{Detail: "JSON object, not an ABI array; a Hardhat/Foundry artifact must have an \"abi\" key"}
		}
		return nil, &ValidationError{Detail: fmt.Sprintf("expected an array of function/event definitions: %v", err)}
	}
	return abi, nil
}

// supportedTypes lists the ABI value types the encoder handles. Anything
// else is rejected at bind time rather than failing mid-invocation.
func typeSupported(typ string) bool {
	switch typ {
	case "address", "bool", "string", "bytes32":
		return true
	}
	var width string
	switch {
	case strings.HasPrefix(typ, "uint"):
		width = typ[len("uint"):]
	case strings.HasPrefix(typ, "int"):
		width = typ[len("int"):]
	default:
		return false
	}
	// bare "uint"/"int" or a digit width; arrays and anything else rejected
	for _, r := range width {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Method is one entry in a bound contract's typed method table.
type Method struct {
	Name     string
	Selector string // "0xa9059cbb"
	Sig      string // canonical sig, e.g. "transfer(address,uint256)"
	Inputs   []ABIParam
	Outputs  []ABIParam
	Write    bool
}

// buildMethodTable turns a parsed ABI into a typed method table, rejecting
// duplicate names and unsupported parameter types.
func buildMethodTable(abi []ABIEntry) (map[string]Method, error) {
	if len(abi) == 0 {
		return nil, &ValidationError{Detail: "ABI is empty"}
	}

	table := make(map[string]Method)
	for i := range abi {
		e := &abi[i]
		if e.Type != "function" {
			continue
		}
		if e.Name == "" {
			return nil, &ValidationError{Detail: "function entry with no name"}
		}
		if _, dup := table[e.Name]; dup {
			return nil, &ValidationError{Detail: "duplicate function name: " + e.Name}
		}
		// string is decodable as an output but not encodable as an input.
		for _, p := range e.Inputs {
			if !typeSupported(p.Type) || p.Type == "string" {
				return nil, &ValidationError{Detail: fmt.Sprintf("unsupported input type %q in function %s", p.Type, e.Name)}
			}
		}
		for _, p := range e.Outputs {
			if !typeSupported(p.Type) {
				return nil, &ValidationError{Detail: fmt.Sprintf("unsupported output type %q in function %s", p.Type, e.Name)}
			}
		}
		table[e.Name] = Method{
			Name:     e.Name,
			Selector: functionSelector(e),
			Sig:      functionSig(e),
			Inputs:   e.Inputs,
			Outputs:  e.Outputs,
			Write:    e.IsWriteFunction(),
		}
	}

	if len(table) == 0 {
		return nil, &ValidationError{Detail: "ABI has no functions"}
	}
	return table, nil
}

// functionSig builds the canonical signature, e.g. "transfer(address,uint256)".
func functionSig(e *ABIEntry) string {
	types := make([]string, len(e.Inputs))
	for i, p := range e.Inputs {
		types[i] = p.Type
	}
	return e.Name + "(" + strings.Join(types, ",") + ")"
}

// functionSelector computes the 4-byte keccak selector for a function.
func functionSelector(e *ABIEntry) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(functionSig(e)))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// --- ABI encoding ---

// encodeCall builds calldata: 4-byte selector + one 32-byte word per arg.
func encodeCall(m *Method, args []string) (string, error) {
	if len(args) != len(m.Inputs) {
		return "", &ValidationError{Detail: fmt.Sprintf("%s expects %d args, got %d", m.Name, len(m.Inputs), len(args))}
	}

	var encoded strings.Builder
	encoded.WriteString(m.Selector)
	for i, param := range m.Inputs {
		word, err := encodeParam(param.Type, args[i])
		if err != nil {
			return "", fmt.Errorf("encoding param %s: %w", param.Name, err)
		}
		encoded.WriteString(word)
	}
	return encoded.String(), nil
}

// encodeParam encodes a single value as a 32-byte hex word.
func encodeParam(typ, val string) (string, error) {
	switch {
	case typ == "address":
		if !common.IsHexAddress(val) {
			return "", &ValidationError{Detail: "malformed address: " + val}
		}
		return fmt.Sprintf("%064s", strings.ToLower(strings.TrimPrefix(val, "0x"))), nil

	case strings.HasPrefix(typ, "uint"), strings.HasPrefix(typ, "int"):
		// negative values rejected by parseU256
		n, err := parseU256(val)
		if err != nil {
			return "", err
		}
		b32 := n.Bytes32()
		return hex.EncodeToString(b32[:]), nil

	case typ == "bool":
		if val == "true" || val == "1" {
			return fmt.Sprintf("%064d", 1), nil
		}
		return fmt.Sprintf("%064d", 0), nil

	case typ == "bytes32":
		v := strings.TrimPrefix(val, "0x")
		if len(v) > 64 {
			return "", &ValidationError{Detail: "bytes32 value too long"}
		}
		return v + strings.Repeat("0", 64-len(v)), nil

	default:
		return "", &ValidationError{Detail: "unsupported type: " + typ}
	}
}

// parseU256 parses a non-negative integral decimal or 0x-hex value into a
// 256-bit word.
func parseU256(val string) (*uint256.Int, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil, &ValidationError{Detail: "empty integer value"}
	}
	if strings.HasPrefix(val, "-") {
		return nil, &ValidationError{Detail: "negative value not allowed: " + val}
	}
	var n *uint256.Int
	var err error
	if strings.HasPrefix(val, "0x") || strings.HasPrefix(val, "0X") {
		n, err = uint256.FromHex(strings.ToLower(val))
	} else {
		n, err = uint256.FromDecimal(val)
	}
	if err != nil {
		return nil, &ValidationError{Detail: fmt.Sprintf("invalid integer %q: %v", val, err)}
	}
	return n, nil
}

// decodeResult decodes the raw hex result of a call into string values.
func decodeResult(m *Method, hexData string) ([]string, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(hexData, "0x"))
	if err != nil {
		return nil, fmt.Errorf("decoding hex result: %w", err)
	}
	if len(m.Outputs) == 0 {
		return nil, nil
	}

	results := make([]string, 0, len(m.Outputs))
	offset := 0
	for _, out := range m.Outputs {
		if offset+32 > len(data) {
			return nil, fmt.Errorf("result too short for output %q", out.Type)
		}
		word := data[offset : offset+32]
		offset += 32

		val, err := decodeWord(out.Type, word, data)
		if err != nil {
			return nil, fmt.Errorf("decoding output %q: %w", out.Type, err)
		}
		results = append(results, val)
	}
	return results, nil
}

func decodeWord(typ string, word []byte, fullData []byte) (string, error) {
	switch {
	case typ == "address":
		return "0x" + hex.EncodeToString(word[12:]), nil

	case strings.HasPrefix(typ, "uint"), strings.HasPrefix(typ, "int"):
		n := new(uint256.Int).SetBytes(word)
		return n.Dec(), nil

	case typ == "bool":
		if word[31] == 1 {
			return "true", nil
		}
		return "false", nil

	case typ == "string":
		// offset + length encoding; both come from the node, so every
		// bound is checked without wrapping arithmetic
		total := uint64(len(fullData))
		off := new(uint256.Int).SetBytes(word)
		if !off.IsUint64() || off.Uint64() > total || total-off.Uint64() < 32 {
			return "", fmt.Errorf("string offset out of range")
		}
		o := off.Uint64()
		length := new(uint256.Int).SetBytes(fullData[o : o+32])
		start := o + 32
		if !length.IsUint64() || length.Uint64() > total-start {
			return "", fmt.Errorf("string length out of range")
		}
		return string(fullData[start : start+length.Uint64()]), nil

	default:
		return "0x" + hex.EncodeToString(word), nil
	}
}
