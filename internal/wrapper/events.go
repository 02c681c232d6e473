package wrapper

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// eventDecoder finds an event in a receipt by topic and emitter rather than
// by log position.
type eventDecoder struct {
	event abi.Event
}

// mintFields returns the decoded fields of the first matching log emitted by
// emitter that represents a mint, i.e. has no "from" field or a zero one.
func (d eventDecoder) mintFields(receipt *types.Receipt, emitter common.Address) (map[string]any, error) {
	if receipt == nil {
		return nil, fmt.Errorf("%w: no receipt", ErrUnexpectedResponse)
	}
	for _, lg := range receipt.Logs {
		if lg == nil || lg.Address != emitter || len(lg.Topics) == 0 || lg.Topics[0] != d.event.ID {
			continue
		}
		fields, err := d.decode(lg)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding %s: %v", ErrUnexpectedResponse, d.event.Name, err)
		}
		if from, ok := fields["from"].(common.Address); ok && from != (common.Address{}) {
			continue
		}
		return fields, nil
	}
	return nil, fmt.Errorf("%w: no %s event from %s in tx %s",
		ErrUnexpectedResponse, d.event.Name, emitter.Hex(), receipt.TxHash.Hex())
}

// bigField decodes the named uint field of the first mint log.
func (d eventDecoder) bigField(receipt *types.Receipt, emitter common.Address, name string) (*big.Int, error) {
	fields, err := d.mintFields(receipt, emitter)
	if err != nil {
		return nil, err
	}
	v, ok := fields[name].(*big.Int)
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: %s.%s is %T", ErrUnexpectedResponse, d.event.Name, name, fields[name])
	}
	return v, nil
}

func (d eventDecoder) decode(lg *types.Log) (map[string]any, error) {
	var indexed abi.Arguments
	for _, arg := range d.event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if len(lg.Topics)-1 != len(indexed) {
		return nil, fmt.Errorf("%d topics, want %d", len(lg.Topics)-1, len(indexed))
	}

	fields := make(map[string]any)
	if err := d.event.Inputs.NonIndexed().UnpackIntoMap(fields, lg.Data); err != nil {
		return nil, err
	}
	if err := abi.ParseTopicsIntoMap(fields, indexed, lg.Topics[1:]); err != nil {
		return nil, err
	}
	return fields, nil
}
