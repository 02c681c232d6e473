package artifact

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// EventTopic returns topic0 for a canonical event signature such as
// "TransferSingle(address,address,address,uint256,uint256)".
func EventTopic(sig string) common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return common.BytesToHash(h.Sum(nil))
}

// FindEvent resolves an event by bare name ("TransferSingle") or by full
// signature. Signatures are matched by topic, so overloaded events resolve
// to the exact variant.
func FindEvent(a abi.ABI, ref string) (abi.Event, error) {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), " ", "")
	if strings.Contains(ref, "(") {
		ev, err := a.EventByID(EventTopic(ref))
		if err != nil {
			return abi.Event{}, fmt.Errorf("event %s not in ABI", ref)
		}
		return *ev, nil
	}
	ev, ok := a.Events[ref]
	if !ok {
		return abi.Event{}, fmt.Errorf("event %s not in ABI", ref)
	}
	return ev, nil
}
