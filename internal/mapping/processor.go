package mapping

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"superPayroll/internal/model"
	"superPayroll/internal/storage"
)

const (
	defaultBatchSize  = 500
	DefaultCursorName = "mapping"
)

// ProcessorConfig controls how typed events are committed.
type ProcessorConfig struct {
	// BatchSize is the number of events applied per transaction.
	BatchSize int
	// CursorName keys the stored position, so several mappings can share a store.
	CursorName string
	// SkipInvalid counts records that cannot be decoded or converted as failed
	// and moves on. Otherwise the run stops at the first such record, after
	// committing the events before it.
	SkipInvalid bool
}

// Stats summarizes one processor run.
type Stats struct {
	Total   int
	Applied int
	Skipped int
	Failed  int
	Cursor  model.Cursor
}

// Processor feeds typed event records through a Mapper in chain order.
// Entity writes and the cursor advance of a batch commit in one transaction.
type Processor struct {
	cfg    ProcessorConfig
	store  storage.Store
	mapper *Mapper
	logger *zap.Logger
}

type pendingEvent struct {
	pos   model.Cursor
	event Event
}

func NewProcessor(cfg ProcessorConfig, store storage.Store, mapper *Mapper, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.CursorName == "" {
		cfg.CursorName = DefaultCursorName
	}
	if mapper == nil {
		mapper = NewMapper(RevisionCompat, logger)
	}
	return &Processor{cfg: cfg, store: store, mapper: mapper, logger: logger}
}

// Run processes a typed events JSONL file.
func (p *Processor) Run(ctx context.Context, inputPath string) (Stats, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return Stats{}, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	return p.Process(ctx, file)
}

// Process reads typed event records from r. Records at or below the stored
// cursor are skipped as replays; records out of chain order abort the run,
// as do unreadable records unless SkipInvalid is set.
func (p *Processor) Process(ctx context.Context, r io.Reader) (Stats, error) {
	if p.store == nil {
		return Stats{}, fmt.Errorf("store is nil")
	}

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var (
		stats   Stats
		last    model.Cursor
		hasLast bool
		batch   = make([]pendingEvent, 0, p.cfg.BatchSize)
	)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.Total++

		var record model.TypedEventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			stats.Failed++
			if !p.cfg.SkipInvalid {
				return stats, p.abort(ctx, batch, &stats, fmt.Errorf("decode typed event %d: %w", stats.Total, err))
			}
			p.logger.Warn("decode typed event", zap.Error(err))
			continue
		}

		pos := record.Position()
		if hasLast {
			if pos.Less(last) {
				return stats, fmt.Errorf("event %s delivered after %s", pos, last)
			}
			if pos == last {
				stats.Skipped++
				p.logger.Debug("duplicate event", zap.String("position", pos.String()))
				continue
			}
		}
		last, hasLast = pos, true

		ev, err := EventFromRecord(record)
		if err != nil {
			stats.Failed++
			if !p.cfg.SkipInvalid {
				return stats, p.abort(ctx, batch, &stats, fmt.Errorf("convert %s at %s: %w", record.EventName, pos, err))
			}
			p.logger.Warn("convert typed event",
				zap.Error(err),
				zap.String("event", record.EventName),
				zap.String("tx_hash", record.TxHash),
				zap.Uint64("log_index", record.LogIndex),
			)
			continue
		}

		batch = append(batch, pendingEvent{pos: pos, event: ev})
		if len(batch) >= p.cfg.BatchSize {
			if err := p.commit(ctx, batch, &stats); err != nil {
				return stats, err
			}
			batch = batch[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan input: %w", err)
	}

	if len(batch) > 0 {
		if err := p.commit(ctx, batch, &stats); err != nil {
			return stats, err
		}
	}

	p.logger.Info("map complete",
		zap.Int("total", stats.Total),
		zap.Int("applied", stats.Applied),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.String("cursor", stats.Cursor.String()),
	)
	return stats, nil
}

// abort commits the events read before a bad record so a rerun resumes at it.
func (p *Processor) abort(ctx context.Context, batch []pendingEvent, stats *Stats, cause error) error {
	if len(batch) > 0 {
		if err := p.commit(ctx, batch, stats); err != nil {
			return fmt.Errorf("%v; commit pending events: %w", cause, err)
		}
	}
	return cause
}

func (p *Processor) commit(ctx context.Context, batch []pendingEvent, stats *Stats) error {
	var applied, skipped int
	var cursor model.Cursor

	err := p.store.WithTx(ctx, func(tx storage.Tx) error {
		applied, skipped = 0, 0

		stored, found, err := tx.LoadCursor(ctx, p.cfg.CursorName)
		if err != nil {
			return fmt.Errorf("load cursor: %w", err)
		}
		cursor = stored

		advanced := false
		for _, item := range batch {
			if found && !cursor.Less(item.pos) {
				skipped++
				p.logger.Debug("event already applied",
					zap.String("position", item.pos.String()),
					zap.String("cursor", cursor.String()),
				)
				continue
			}
			if err := p.mapper.Apply(ctx, tx, item.event); err != nil {
				return fmt.Errorf("apply %s at %s: %w", item.event.EventName(), item.pos, err)
			}
			cursor, found, advanced = item.pos, true, true
			applied++
		}

		if !advanced {
			return nil
		}
		if err := tx.SaveCursor(ctx, p.cfg.CursorName, cursor); err != nil {
			return fmt.Errorf("save cursor: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	stats.Applied += applied
	stats.Skipped += skipped
	stats.Cursor = cursor
	return nil
}
