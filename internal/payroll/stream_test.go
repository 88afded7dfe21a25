package payroll

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"superPayroll/internal/model"
)

type captureWriter struct {
	values []interface{}
}

func (c *captureWriter) Write(value interface{}) error {
	c.values = append(c.values, value)
	return nil
}

func TestDecodeStream(t *testing.T) {
	payrollABI, err := PayrollABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder(DecoderConfig{})
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	deleted := buildLogRecord(payrollABI.Events["EmployeeDeleted"].ID, nil, []common.Hash{topicFromAddress(testEmployee)})
	foreign := buildLogRecord(common.HexToHash("0x01"), nil, nil)
	broken := buildLogRecord(payrollABI.Events["EmployeeDeleted"].ID, nil, nil)
	noTopics := deleted
	noTopics.Topics = nil

	var lines []string
	for _, record := range []model.LogRecord{deleted, foreign, broken, noTopics} {
		line, err := json.Marshal(record)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		lines = append(lines, string(line))
	}
	lines = append(lines, "", "not-json")

	out := &captureWriter{}
	errs := &captureWriter{}
	stats, err := DecodeStream(context.Background(), strings.NewReader(strings.Join(lines, "\n")), decoder, out, errs, nil)
	if err != nil {
		t.Fatalf("decode stream: %v", err)
	}

	if stats.Total != 5 || stats.Decoded != 1 || stats.Skipped != 1 || stats.Failed != 3 {
		t.Fatalf("stats mismatch: %+v", stats)
	}
	if len(out.values) != 1 || len(errs.values) != 3 {
		t.Fatalf("writer counts mismatch: out=%d errs=%d", len(out.values), len(errs.values))
	}

	event, ok := out.values[0].(*model.TypedEvent)
	if !ok || event.EventName != model.EventEmployeeDeleted {
		t.Fatalf("unexpected typed event: %#v", out.values[0])
	}

	missing, ok := errs.values[1].(model.DecodeError)
	if !ok || missing.Error != "missing topic0" {
		t.Fatalf("unexpected decode error: %#v", errs.values[1])
	}
}
