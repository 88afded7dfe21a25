package mapping

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"superPayroll/internal/model"
)

// EventFromRecord converts a typed event record into a mapping Event.
func EventFromRecord(record model.TypedEventRecord) (Event, error) {
	switch record.EventName {
	case model.EventEmployeeAdded:
		var data model.EmployeeAddedEventData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", record.EventName, err)
		}
		addr, err := parseAddress("addr", data.Addr)
		if err != nil {
			return nil, err
		}
		employer, err := parseAddress("employer", data.Employer)
		if err != nil {
			return nil, err
		}
		return EmployeeAdded{
			Name:           data.Name,
			Age:            data.Age,
			ContactAddress: data.ContactAddress,
			Country:        data.Country,
			Addr:           addr,
			Employer:       employer,
			Timestamp:      record.Timestamp,
		}, nil

	case model.EventEmployeeDeleted:
		var data model.EmployeeDeletedEventData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", record.EventName, err)
		}
		addr, err := parseAddress("addr", data.Addr)
		if err != nil {
			return nil, err
		}
		return EmployeeDeleted{Addr: addr, Timestamp: record.Timestamp}, nil

	case model.EventFlowUpdated:
		var data model.FlowUpdatedEventData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", record.EventName, err)
		}
		sender, err := parseAddress("sender", data.Sender)
		if err != nil {
			return nil, err
		}
		receiver, err := parseAddress("receiver", data.Receiver)
		if err != nil {
			return nil, err
		}
		token, err := parseAddress("token", data.Token)
		if err != nil {
			return nil, err
		}
		flowRate, ok := new(big.Int).SetString(data.FlowRate, 10)
		if !ok {
			return nil, fmt.Errorf("invalid flow rate: %q", data.FlowRate)
		}
		txHash, err := hexutil.Decode(record.TxHash)
		if err != nil || len(txHash) != common.HashLength {
			return nil, fmt.Errorf("invalid tx hash: %q", record.TxHash)
		}
		return FlowUpdated{
			Sender:    sender,
			Receiver:  receiver,
			Token:     token,
			FlowRate:  flowRate,
			Timestamp: record.Timestamp,
			TxHash:    common.BytesToHash(txHash),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported event name: %s", record.EventName)
	}
}

func parseAddress(field, input string) (common.Address, error) {
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid %s address: %q", field, input)
	}
	return common.HexToAddress(input), nil
}
