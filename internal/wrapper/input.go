package wrapper

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ERC20Deposit asks the wrapper to take amount of token.
type ERC20Deposit struct {
	Token  common.Address
	Amount *big.Int
	Data   []byte
}

// ERC721Deposit asks the wrapper to take one NFT.
type ERC721Deposit struct {
	Token   common.Address
	TokenID *big.Int
	Data    []byte
	// MetadataURI is passed to the demo safeMint. Empty means
	// DefaultMetadataURI.
	MetadataURI string
}

func (r ERC20Deposit) validate() error {
	if err := requireToken(r.Token); err != nil {
		return err
	}
	return requirePositive("amount", r.Amount)
}

func (r ERC721Deposit) validate() error {
	if err := requireToken(r.Token); err != nil {
		return err
	}
	return requireNonNegative("token id", r.TokenID)
}

func requireToken(a common.Address) error {
	if a == (common.Address{}) {
		return fmt.Errorf("%w: token address is empty", ErrInvalidInput)
	}
	return nil
}

// maxUint256Bits bounds every amount and id; the ABI packer would otherwise
// wrap larger values modulo 2^256.
const maxUint256Bits = 256

func requirePositive(name string, v *big.Int) error {
	if v == nil || v.Sign() <= 0 {
		return fmt.Errorf("%w: %s must be greater than zero", ErrInvalidInput, name)
	}
	return requireUint256(name, v)
}

func requireNonNegative(name string, v *big.Int) error {
	if v == nil || v.Sign() < 0 {
		return fmt.Errorf("%w: %s must be zero or more", ErrInvalidInput, name)
	}
	return requireUint256(name, v)
}

func requireUint256(name string, v *big.Int) error {
	if v.BitLen() > maxUint256Bits {
		return fmt.Errorf("%w: %s does not fit in uint256", ErrInvalidInput, name)
	}
	return nil
}

// ParseAddress parses a hex address as typed into a form or flag.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q is not an address", ErrInvalidInput, s)
	}
	return common.HexToAddress(s), nil
}

// ParseAmount parses a uint256 in base units: decimal digits, or hex digits
// after a 0x prefix. Signs, other prefixes and digit separators are rejected.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: amount is empty", ErrInvalidInput)
	}
	digits, base := s, 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits, base = s[2:], 16
	}
	if digits == "" || strings.ContainsAny(digits, "+-_") {
		return nil, fmt.Errorf("%w: %q is not a non-negative integer", ErrInvalidInput, s)
	}
	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a non-negative integer", ErrInvalidInput, s)
	}
	if err := requireUint256("amount", v); err != nil {
		return nil, fmt.Errorf("%w (%q)", err, s)
	}
	return v, nil
}

// ParseData parses the auxiliary bytes field. Empty input is empty bytes,
// 0x-prefixed input is hex, anything else is taken as UTF-8 text.
func ParseData(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		b, err := hexutil.Decode("0x" + s[2:])
		if err != nil {
			return nil, fmt.Errorf("%w: data: %v", ErrInvalidInput, err)
		}
		return b, nil
	}
	return []byte(s), nil
}
