package model

import (
	"encoding/json"
	"testing"
)

func TestFlowUpdatedEventDataFlowRateIsString(t *testing.T) {
	payload := FlowUpdatedEventData{
		Token:    "0x5943f705abb6834cad767e6e4bb258bc48d9c947",
		Sender:   "0x1111111111111111111111111111111111111111",
		Receiver: "0x2222222222222222222222222222222222222222",
		FlowRate: "-39614081257132168796771975168",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if _, ok := decoded["flow_rate"].(string); !ok {
		t.Fatalf("flow_rate should be string")
	}
}

func TestTypedEventRecordKeepsDecodedRaw(t *testing.T) {
	event := TypedEvent{
		BlockNumber: 10,
		TxIndex:     2,
		LogIndex:    3,
		EventName:   EventEmployeeDeleted,
		Decoded:     EmployeeDeletedEventData{Addr: "0x3333333333333333333333333333333333333333"},
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var record TypedEventRecord
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	var payload EmployeeDeletedEventData
	if err := json.Unmarshal(record.Decoded, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Addr != "0x3333333333333333333333333333333333333333" {
		t.Fatalf("addr mismatch: %s", payload.Addr)
	}
	if record.Position() != (Cursor{BlockNumber: 10, TxIndex: 2, LogIndex: 3}) {
		t.Fatalf("position mismatch: %+v", record.Position())
	}
}
