// Package artifact loads contract ABIs from Foundry/Hardhat build artifacts.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ErrEmptyABI is returned when an artifact declares no methods or events.
var ErrEmptyABI = errors.New("ABI has no methods or events")

// Load reads an ABI from a local file that is either:
//   - a raw ABI JSON array: [{"type":"function",...}, ...]
//   - a Hardhat/Foundry artifact: {"abi":[...],"bytecode":...}
//
// Both formats are detected automatically.
func Load(path string) (abi.ABI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("cannot read artifact: %w", err)
	}
	parsed, err := Parse(data)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("%s: %w", path, err)
	}
	return parsed, nil
}

// Parse decodes artifact or raw ABI bytes.
func Parse(data []byte) (abi.ABI, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return abi.ABI{}, fmt.Errorf("artifact is empty")
	}

	raw := data
	if data[0] == '{' {
		var art struct {
			ABI json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(data, &art); err != nil {
			return abi.ABI{}, fmt.Errorf("invalid artifact JSON: %w", err)
		}
		if len(art.ABI) < 2 || art.ABI[0] != '[' {
			return abi.ABI{}, fmt.Errorf("artifact is a JSON object without an \"abi\" array")
		}
		raw = art.ABI
	}

	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("invalid ABI JSON: %w", err)
	}
	if len(parsed.Methods) == 0 && len(parsed.Events) == 0 {
		return abi.ABI{}, ErrEmptyABI
	}
	return parsed, nil
}

// RequireMethods checks that every named method exists in a.
func RequireMethods(a abi.ABI, names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := a.Methods[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("ABI is missing method(s): %s", strings.Join(missing, ", "))
	}
	return nil
}
