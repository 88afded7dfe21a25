package indexer

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"superPayroll/internal/model"
)

var testPayroll = common.HexToAddress("0xdF0876C2140128DeEd612964033A48cABf2EfD84")

type fakeSource struct {
	chainID     int64
	latest      uint64
	logs        []types.Log
	filterCalls [][2]uint64
	filterErrs  int
}

func (f *fakeSource) GetChainID(context.Context) (*big.Int, error) {
	return big.NewInt(f.chainID), nil
}

func (f *fakeSource) LatestBlockNumber(context.Context) (uint64, error) {
	return f.latest, nil
}

func (f *fakeSource) BlockTimestamp(_ context.Context, number uint64) (uint64, error) {
	return 1700000000 + number*12, nil
}

func (f *fakeSource) FilterLogs(_ context.Context, from, to uint64, _ []common.Address, _ []common.Hash) ([]types.Log, error) {
	if f.filterErrs > 0 {
		f.filterErrs--
		return nil, errors.New("rate limited")
	}
	f.filterCalls = append(f.filterCalls, [2]uint64{from, to})
	var out []types.Log
	for _, log := range f.logs {
		if log.BlockNumber >= from && log.BlockNumber <= to {
			out = append(out, log)
		}
	}
	return out, nil
}

type memorySink struct {
	records []model.LogRecord
}

func (m *memorySink) PutLogBatch(logs []model.LogRecord) error {
	m.records = append(m.records, logs...)
	return nil
}

func testLog(block uint64, txIndex, index uint) types.Log {
	return types.Log{
		Address:     testPayroll,
		Topics:      []common.Hash{common.HexToHash(flowUpdatedTopic)},
		Data:        []byte{0x01},
		BlockNumber: block,
		TxHash:      common.BigToHash(new(big.Int).SetUint64(block*100 + uint64(txIndex))),
		TxIndex:     txIndex,
		Index:       index,
	}
}

func TestRunnerFetchesInOrder(t *testing.T) {
	source := &fakeSource{
		chainID: 11155111,
		latest:  110,
		logs: []types.Log{
			testLog(103, 1, 4),
			testLog(103, 0, 2),
			testLog(101, 0, 0),
			testLog(101, 0, 0),
		},
	}
	removed := testLog(104, 0, 0)
	removed.Removed = true
	source.logs = append(source.logs, removed)

	sink := &memorySink{}
	runner := NewRunner(RunConfig{
		FromBlock:     100,
		Addresses:     []common.Address{testPayroll},
		BatchSize:     3,
		Confirmations: 5,
		RetryBackoff:  time.Millisecond,
	}, source, sink, nil)

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := [][2]uint64{{100, 102}, {103, 105}}
	if len(source.filterCalls) != len(want) {
		t.Fatalf("filter calls mismatch: %v", source.filterCalls)
	}
	for i := range want {
		if source.filterCalls[i] != want[i] {
			t.Fatalf("filter call %d: %v != %v", i, source.filterCalls[i], want[i])
		}
	}

	if len(sink.records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(sink.records))
	}
	first, second, third := sink.records[0], sink.records[1], sink.records[2]
	if first.BlockNumber != 101 || second.TxIndex != 0 || third.TxIndex != 1 {
		t.Fatalf("records out of order: %+v", sink.records)
	}
	if !second.Position().Less(third.Position()) {
		t.Fatalf("positions not increasing: %s %s", second.Position(), third.Position())
	}
	if first.ChainID != 11155111 || first.Timestamp != 1700000000+101*12 {
		t.Fatalf("record metadata mismatch: %+v", first)
	}
	if first.Address != "0xdf0876c2140128deed612964033a48cabf2efd84" {
		t.Fatalf("address not lowercased: %s", first.Address)
	}
	if first.Data != "0x01" {
		t.Fatalf("data mismatch: %s", first.Data)
	}
}

func TestRunnerResumesFromCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	if err := NewCheckpointStore(path, true).Save(5, 150); err != nil {
		t.Fatalf("save checkpoint: %v", err)
	}

	source := &fakeSource{chainID: 5, filterErrs: 2}
	runner := NewRunner(RunConfig{
		FromBlock:         100,
		ToBlock:           160,
		Addresses:         []common.Address{testPayroll},
		BatchSize:         100,
		CheckpointPath:    path,
		CheckpointEnabled: true,
		MaxRetries:        3,
		RetryBackoff:      time.Millisecond,
	}, source, &memorySink{}, nil)

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(source.filterCalls) != 1 || source.filterCalls[0] != [2]uint64{151, 160} {
		t.Fatalf("filter calls mismatch: %v", source.filterCalls)
	}

	cp, ok, err := NewCheckpointStore(path, true).Load()
	if err != nil || !ok || cp.LastProcessedBlock != 160 {
		t.Fatalf("checkpoint not advanced: %+v ok=%v err=%v", cp, ok, err)
	}
}

func TestRunnerRejectsForeignCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	if err := NewCheckpointStore(path, true).Save(1, 150); err != nil {
		t.Fatalf("save checkpoint: %v", err)
	}

	runner := NewRunner(RunConfig{
		ToBlock:           160,
		Addresses:         []common.Address{testPayroll},
		BatchSize:         10,
		CheckpointPath:    path,
		CheckpointEnabled: true,
	}, &fakeSource{chainID: 5}, &memorySink{}, nil)

	if err := runner.Run(context.Background()); err == nil {
		t.Fatalf("expected chain id mismatch error")
	}
}

func TestRunnerValidatesConfig(t *testing.T) {
	source := &fakeSource{chainID: 1}
	if err := NewRunner(RunConfig{BatchSize: 1}, source, &memorySink{}, nil).Run(context.Background()); err == nil {
		t.Fatalf("expected error without addresses")
	}
	if err := NewRunner(RunConfig{Addresses: []common.Address{testPayroll}}, source, &memorySink{}, nil).Run(context.Background()); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
	if err := NewRunner(RunConfig{BatchSize: 1, Addresses: []common.Address{testPayroll}}, nil, &memorySink{}, nil).Run(context.Background()); err == nil {
		t.Fatalf("expected error for nil source")
	}
}
