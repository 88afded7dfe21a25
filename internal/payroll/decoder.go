package payroll

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"superPayroll/internal/model"
)

const (
	eventEmployeeAdded   = model.EventEmployeeAdded
	eventEmployeeDeleted = model.EventEmployeeDeleted
	eventFlowUpdated     = model.EventFlowUpdated
)

// DecoderConfig configures decoder behavior.
type DecoderConfig struct {
	// Topic0Map adds extra topic0 -> event name routes, for contracts
	// that emit the same payloads under a different signature.
	Topic0Map map[string]string
}

// Decoder decodes SuperPayroll contract logs.
type Decoder struct {
	payrollABI  abi.ABI
	topicToName map[string]string
}

// NewDecoder builds a payroll log decoder.
func NewDecoder(cfg DecoderConfig) (*Decoder, error) {
	payrollABI, err := PayrollABI()
	if err != nil {
		return nil, err
	}

	topicToName := map[string]string{
		strings.ToLower(payrollABI.Events[eventEmployeeAdded].ID.Hex()):   eventEmployeeAdded,
		strings.ToLower(payrollABI.Events[eventEmployeeDeleted].ID.Hex()): eventEmployeeDeleted,
		strings.ToLower(payrollABI.Events[eventFlowUpdated].ID.Hex()):     eventFlowUpdated,
	}

	for topic0, name := range cfg.Topic0Map {
		original := name
		name = normalizeEventName(name)
		if name == "" {
			return nil, fmt.Errorf("unsupported event name in topic0 map: %s", original)
		}
		if topic0 == "" {
			continue
		}
		topicToName[strings.ToLower(topic0)] = name
	}

	return &Decoder{
		payrollABI:  payrollABI,
		topicToName: topicToName,
	}, nil
}

// CanDecode checks if the topic0 is supported.
func (d *Decoder) CanDecode(topic0 string) bool {
	if topic0 == "" {
		return false
	}
	_, ok := d.topicToName[strings.ToLower(topic0)]
	return ok
}

// Decode converts a LogRecord into a TypedEvent.
func (d *Decoder) Decode(log model.LogRecord) (*model.TypedEvent, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	if log.Removed {
		return nil, fmt.Errorf("log removed by reorg")
	}
	name, ok := d.topicToName[log.Topic0()]
	if !ok {
		return nil, fmt.Errorf("unsupported topic0: %s", log.Topics[0])
	}

	var (
		decoded interface{}
		err     error
	)
	switch name {
	case eventEmployeeAdded:
		decoded, err = d.decodeEmployeeAdded(log)
	case eventEmployeeDeleted:
		decoded, err = d.decodeEmployeeDeleted(log)
	case eventFlowUpdated:
		decoded, err = d.decodeFlowUpdated(log)
	default:
		return nil, fmt.Errorf("unsupported event name: %s", name)
	}
	if err != nil {
		return nil, err
	}

	return buildTypedEvent(log, name, decoded), nil
}

func normalizeEventName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "employeeadded":
		return eventEmployeeAdded
	case "employeedeleted":
		return eventEmployeeDeleted
	case "flowupdated":
		return eventFlowUpdated
	default:
		return ""
	}
}

func buildTypedEvent(log model.LogRecord, name string, decoded interface{}) *model.TypedEvent {
	return &model.TypedEvent{
		ChainID:     log.ChainID,
		BlockNumber: log.BlockNumber,
		BlockHash:   log.BlockHash,
		TxHash:      strings.ToLower(log.TxHash),
		TxIndex:     log.TxIndex,
		LogIndex:    log.LogIndex,
		Address:     log.Address,
		EventName:   name,
		Timestamp:   log.Timestamp,
		Decoded:     decoded,
		Raw:         &model.RawLogRef{Topic0: log.Topics[0], Data: log.Data},
	}
}

func (d *Decoder) decodeEmployeeAdded(log model.LogRecord) (model.EmployeeAddedEventData, error) {
	event := d.payrollABI.Events[eventEmployeeAdded]
	indexedTopics, err := parseIndexedTopics(event, log.Topics)
	if err != nil {
		return model.EmployeeAddedEventData{}, err
	}

	var indexed struct {
		Addr     common.Address
		Employer common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
		return model.EmployeeAddedEventData{}, fmt.Errorf("parse topics: %w", err)
	}

	values, err := unpackNonIndexed(event, log.Data)
	if err != nil {
		return model.EmployeeAddedEventData{}, err
	}
	if len(values) != 4 {
		return model.EmployeeAddedEventData{}, fmt.Errorf("unexpected employee added values: %d", len(values))
	}

	name, err := asString(values[0])
	if err != nil {
		return model.EmployeeAddedEventData{}, err
	}
	age, err := asUint8(values[1])
	if err != nil {
		return model.EmployeeAddedEventData{}, err
	}
	contactAddress, err := asString(values[2])
	if err != nil {
		return model.EmployeeAddedEventData{}, err
	}
	country, err := asString(values[3])
	if err != nil {
		return model.EmployeeAddedEventData{}, err
	}

	return model.EmployeeAddedEventData{
		Name:           name,
		Age:            age,
		ContactAddress: contactAddress,
		Country:        country,
		Addr:           HexAddress(indexed.Addr),
		Employer:       HexAddress(indexed.Employer),
	}, nil
}

func (d *Decoder) decodeEmployeeDeleted(log model.LogRecord) (model.EmployeeDeletedEventData, error) {
	event := d.payrollABI.Events[eventEmployeeDeleted]
	indexedTopics, err := parseIndexedTopics(event, log.Topics)
	if err != nil {
		return model.EmployeeDeletedEventData{}, err
	}

	var indexed struct {
		Addr common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
		return model.EmployeeDeletedEventData{}, fmt.Errorf("parse topics: %w", err)
	}

	return model.EmployeeDeletedEventData{Addr: HexAddress(indexed.Addr)}, nil
}

func (d *Decoder) decodeFlowUpdated(log model.LogRecord) (model.FlowUpdatedEventData, error) {
	event := d.payrollABI.Events[eventFlowUpdated]
	indexedTopics, err := parseIndexedTopics(event, log.Topics)
	if err != nil {
		return model.FlowUpdatedEventData{}, err
	}

	var indexed struct {
		Token    common.Address
		Sender   common.Address
		Receiver common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), indexedTopics); err != nil {
		return model.FlowUpdatedEventData{}, fmt.Errorf("parse topics: %w", err)
	}

	values, err := unpackNonIndexed(event, log.Data)
	if err != nil {
		return model.FlowUpdatedEventData{}, err
	}
	if len(values) != 1 {
		return model.FlowUpdatedEventData{}, fmt.Errorf("unexpected flow updated values: %d", len(values))
	}

	flowRate, err := asBigInt(values[0])
	if err != nil {
		return model.FlowUpdatedEventData{}, err
	}
	if err := checkInt96(flowRate); err != nil {
		return model.FlowUpdatedEventData{}, err
	}

	return model.FlowUpdatedEventData{
		Token:    HexAddress(indexed.Token),
		Sender:   HexAddress(indexed.Sender),
		Receiver: HexAddress(indexed.Receiver),
		FlowRate: flowRate.String(),
	}, nil
}

// HexAddress renders an address as lower-case 0x-prefixed hex.
func HexAddress(addr common.Address) string {
	return hexutil.Encode(addr.Bytes())
}

func parseIndexedTopics(event abi.Event, topics []string) ([]common.Hash, error) {
	indexedCount := len(indexedArguments(event.Inputs))
	if len(topics) != indexedCount+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", indexedCount+1, len(topics))
	}
	out := make([]common.Hash, 0, indexedCount)
	for _, topic := range topics[1:] {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > common.HashLength {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func unpackNonIndexed(event abi.Event, dataHex string) ([]interface{}, error) {
	data, err := hexutil.Decode(dataHex)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	return values, nil
}

func asString(value interface{}) (string, error) {
	v, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("unsupported string type %T", value)
	}
	return v, nil
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case *big.Int:
		if !v.IsUint64() || v.Uint64() > 0xff {
			return 0, fmt.Errorf("uint8 overflow: %s", v.String())
		}
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

var (
	int96Min = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 95))
	int96Max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 95), big.NewInt(1))
)

func checkInt96(value *big.Int) error {
	if value.Cmp(int96Min) < 0 || value.Cmp(int96Max) > 0 {
		return fmt.Errorf("int96 overflow: %s", value.String())
	}
	return nil
}
