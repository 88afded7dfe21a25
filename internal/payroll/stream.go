package payroll

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"superPayroll/internal/model"
)

// RecordWriter receives one JSON-serializable record at a time.
type RecordWriter interface {
	Write(value interface{}) error
}

// DecodeStats summarizes a DecodeStream run.
type DecodeStats struct {
	Total   int
	Decoded int
	Skipped int
	Failed  int
}

// DecodeStream decodes raw log JSONL from r. Typed events go to out and
// failures to errs; logs of other events are counted as skipped.
func DecodeStream(ctx context.Context, r io.Reader, decoder *Decoder, out, errs RecordWriter, logger *zap.Logger) (DecodeStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var stats DecodeStats
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.Total++

		var record model.LogRecord
		if err := json.Unmarshal(line, &record); err != nil {
			stats.Failed++
			writeDecodeError(errs, logger, model.DecodeError{Error: err.Error()})
			continue
		}
		if record.Topic0() == "" {
			stats.Failed++
			writeDecodeError(errs, logger, decodeErrorFromRecord(record, fmt.Errorf("missing topic0")))
			continue
		}
		if !decoder.CanDecode(record.Topic0()) {
			stats.Skipped++
			continue
		}

		event, err := decoder.Decode(record)
		if err != nil {
			stats.Failed++
			writeDecodeError(errs, logger, decodeErrorFromRecord(record, err))
			continue
		}

		if err := out.Write(event); err != nil {
			return stats, fmt.Errorf("write typed event: %w", err)
		}
		stats.Decoded++
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan input: %w", err)
	}
	return stats, nil
}

func decodeErrorFromRecord(record model.LogRecord, err error) model.DecodeError {
	return model.DecodeError{
		ChainID:     record.ChainID,
		BlockNumber: record.BlockNumber,
		TxHash:      record.TxHash,
		LogIndex:    record.LogIndex,
		Address:     record.Address,
		Topic0:      record.Topic0(),
		Removed:     record.Removed,
		Error:       err.Error(),
	}
}

func writeDecodeError(w RecordWriter, logger *zap.Logger, rec model.DecodeError) {
	if w == nil {
		return
	}
	if err := w.Write(rec); err != nil {
		logger.Warn("write decode error", zap.Error(err))
	}
}
