package artifact

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// WrapperMethods is the surface the client calls on the Wrapper contract.
var WrapperMethods = []string{"depositERC20", "withdrawERC20", "depositERC721", "withdrawERC721", "uri"}

// Set bundles the three ABIs the client works against.
type Set struct {
	ERC20   abi.ABI
	ERC721  abi.ABI
	Wrapper abi.ABI
}

// LoadSet loads and checks the ERC20, ERC721 and Wrapper artifacts.
func LoadSet(erc20Path, erc721Path, wrapperPath string) (*Set, error) {
	erc20, err := Load(erc20Path)
	if err != nil {
		return nil, fmt.Errorf("erc20 artifact: %w", err)
	}
	if err := RequireMethods(erc20, "approve", "mint"); err != nil {
		return nil, fmt.Errorf("erc20 artifact: %w", err)
	}

	erc721, err := Load(erc721Path)
	if err != nil {
		return nil, fmt.Errorf("erc721 artifact: %w", err)
	}
	if err := RequireMethods(erc721, "safeMint", "tokenURI", "approve"); err != nil {
		return nil, fmt.Errorf("erc721 artifact: %w", err)
	}

	wrapper, err := Load(wrapperPath)
	if err != nil {
		return nil, fmt.Errorf("wrapper artifact: %w", err)
	}
	if err := RequireMethods(wrapper, WrapperMethods...); err != nil {
		return nil, fmt.Errorf("wrapper artifact: %w", err)
	}

	return &Set{ERC20: erc20, ERC721: erc721, Wrapper: wrapper}, nil
}
