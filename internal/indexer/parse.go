package indexer

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"superPayroll/internal/payroll"
)

// ParseAddresses converts string addresses into common.Address.
func ParseAddresses(inputs []string) ([]common.Address, error) {
	addresses := make([]common.Address, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !common.IsHexAddress(input) {
			return nil, fmt.Errorf("invalid address: %s", input)
		}
		addresses = append(addresses, common.HexToAddress(input))
	}
	return addresses, nil
}

// ParseTopic0 converts topic0 filters into hashes. Each input is either a
// 0x-prefixed 32-byte hash or a payroll event name such as FlowUpdated.
// No inputs selects every payroll event.
func ParseTopic0(inputs []string) ([]common.Hash, error) {
	topics := make([]common.Hash, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if !strings.HasPrefix(input, "0x") && !strings.HasPrefix(input, "0X") {
			topic, err := eventTopic(input)
			if err != nil {
				return nil, err
			}
			topics = append(topics, topic)
			continue
		}

		data, err := hexutil.Decode(input)
		if err != nil {
			return nil, fmt.Errorf("invalid topic0: %s", input)
		}
		if len(data) != common.HashLength {
			return nil, fmt.Errorf("invalid topic0 length: %s", input)
		}
		topics = append(topics, common.BytesToHash(data))
	}

	if len(topics) == 0 {
		return payroll.EventTopics()
	}
	return topics, nil
}

func eventTopic(name string) (common.Hash, error) {
	parsed, err := payroll.PayrollABI()
	if err != nil {
		return common.Hash{}, err
	}
	event, ok := parsed.Events[name]
	if !ok {
		return common.Hash{}, fmt.Errorf("unknown event: %s", name)
	}
	return event.ID, nil
}
