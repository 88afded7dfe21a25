package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"superPayroll/internal/model"
	"superPayroll/internal/storage"
)

const (
	employeeColumns = `id, name, age, contact_address, country, addr, employer, status, updated_at`
	streamColumns   = `id, sender, receiver, to_employee, token, status, flow_rate::text, created_at, updated_at, tx_hash`
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Store provides Postgres persistence for payroll records.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnsureSchema creates the record tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	batch := &pgx.Batch{}
	for _, stmt := range schemaStatements {
		batch.Queue(stmt)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range schemaStatements {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// WithTx runs fn inside a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&txStore{q: tx})
	})
}

func (s *Store) GetEmployee(ctx context.Context, id string) (model.Employee, error) {
	employee, found, err := loadEmployee(ctx, s.pool, strings.ToLower(id))
	if err != nil {
		return model.Employee{}, err
	}
	if !found {
		return model.Employee{}, storage.ErrNotFound
	}
	return employee, nil
}

func (s *Store) ListEmployees(ctx context.Context, q storage.Query) ([]model.Employee, error) {
	q, err := q.Normalize(storage.EmployeeEntity)
	if err != nil {
		return nil, err
	}
	sql, args, err := compileSelect(storage.EmployeeEntity, employeeColumns, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	out := make([]model.Employee, 0, q.First)
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, employee)
	}
	return out, rows.Err()
}

func (s *Store) GetStream(ctx context.Context, id string) (model.Stream, error) {
	stream, found, err := loadStream(ctx, s.pool, strings.ToLower(id))
	if err != nil {
		return model.Stream{}, err
	}
	if !found {
		return model.Stream{}, storage.ErrNotFound
	}
	return stream, nil
}

func (s *Store) ListStreams(ctx context.Context, q storage.Query) ([]model.Stream, error) {
	q, err := q.Normalize(storage.StreamEntity)
	if err != nil {
		return nil, err
	}
	sql, args, err := compileSelect(storage.StreamEntity, streamColumns, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query streams: %w", err)
	}
	defer rows.Close()

	out := make([]model.Stream, 0, q.First)
	for rows.Next() {
		stream, err := scanStream(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, stream)
	}
	return out, rows.Err()
}

// txStore implements storage.Tx on a pgx transaction.
type txStore struct {
	q querier
}

func (t *txStore) LoadEmployee(ctx context.Context, id string) (model.Employee, bool, error) {
	return loadEmployee(ctx, t.q, id)
}

func (t *txStore) SaveEmployee(ctx context.Context, e model.Employee) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO employees (`+employeeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			age = EXCLUDED.age,
			contact_address = EXCLUDED.contact_address,
			country = EXCLUDED.country,
			addr = EXCLUDED.addr,
			employer = EXCLUDED.employer,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`,
		e.ID,
		e.Name,
		int16(e.Age),
		e.ContactAddress,
		e.Country,
		e.Addr,
		e.Employer,
		string(e.Status),
		int64(e.UpdatedAt),
	)
	return err
}

func (t *txStore) LoadStream(ctx context.Context, id string) (model.Stream, bool, error) {
	return loadStream(ctx, t.q, id)
}

func (t *txStore) SaveStream(ctx context.Context, s model.Stream) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO streams (id, sender, receiver, to_employee, token, status, flow_rate, created_at, updated_at, tx_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			flow_rate = EXCLUDED.flow_rate,
			updated_at = EXCLUDED.updated_at
	`,
		s.ID,
		s.Sender,
		s.Receiver,
		s.To,
		s.Token,
		string(s.Status),
		s.FlowRate,
		int64(s.CreatedAt),
		int64(s.UpdatedAt),
		s.TxHash,
	)
	return err
}

func (t *txStore) LoadStreamRevision(ctx context.Context, id string) (model.StreamRevision, bool, error) {
	var (
		rev           model.StreamRevision
		revisionIndex int32
		periodIndex   int32
	)
	row := t.q.QueryRow(ctx, `
		SELECT id, revision_index, period_revision_index, most_recent_stream
		FROM stream_revisions WHERE id = $1
	`, id)
	if err := row.Scan(&rev.ID, &revisionIndex, &periodIndex, &rev.MostRecentStream); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.StreamRevision{}, false, nil
		}
		return model.StreamRevision{}, false, err
	}
	rev.RevisionIndex = uint32(revisionIndex)
	rev.PeriodRevisionIndex = uint32(periodIndex)
	return rev, true, nil
}

func (t *txStore) SaveStreamRevision(ctx context.Context, rev model.StreamRevision) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO stream_revisions (id, revision_index, period_revision_index, most_recent_stream)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			revision_index = EXCLUDED.revision_index,
			period_revision_index = EXCLUDED.period_revision_index,
			most_recent_stream = EXCLUDED.most_recent_stream
	`, rev.ID, int32(rev.RevisionIndex), int32(rev.PeriodRevisionIndex), rev.MostRecentStream)
	return err
}

// LoadCursor returns the last applied position for a name.
func (t *txStore) LoadCursor(ctx context.Context, name string) (model.Cursor, bool, error) {
	if name == "" {
		return model.Cursor{}, false, fmt.Errorf("state name required")
	}
	var block, txIndex, logIndex int64
	row := t.q.QueryRow(ctx, `SELECT block_number, tx_index, log_index FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block, &txIndex, &logIndex); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Cursor{}, false, nil
		}
		return model.Cursor{}, false, err
	}
	return model.Cursor{BlockNumber: uint64(block), TxIndex: uint64(txIndex), LogIndex: uint64(logIndex)}, true, nil
}

// SaveCursor upserts the last applied position for a name.
func (t *txStore) SaveCursor(ctx context.Context, name string, cursor model.Cursor) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := t.q.Exec(ctx, `
		INSERT INTO indexer_state (name, block_number, tx_index, log_index, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (name) DO UPDATE
		SET block_number = EXCLUDED.block_number,
			tx_index = EXCLUDED.tx_index,
			log_index = EXCLUDED.log_index,
			updated_at = now()
	`, name, int64(cursor.BlockNumber), int64(cursor.TxIndex), int64(cursor.LogIndex))
	return err
}

func loadEmployee(ctx context.Context, q querier, id string) (model.Employee, bool, error) {
	row := q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
	employee, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Employee{}, false, nil
		}
		return model.Employee{}, false, err
	}
	return employee, true, nil
}

func loadStream(ctx context.Context, q querier, id string) (model.Stream, bool, error) {
	row := q.QueryRow(ctx, `SELECT `+streamColumns+` FROM streams WHERE id = $1`, id)
	stream, err := scanStream(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Stream{}, false, nil
		}
		return model.Stream{}, false, err
	}
	return stream, true, nil
}

func scanEmployee(row pgx.Row) (model.Employee, error) {
	var (
		e         model.Employee
		age       int16
		status    string
		updatedAt int64
	)
	if err := row.Scan(&e.ID, &e.Name, &age, &e.ContactAddress, &e.Country, &e.Addr, &e.Employer, &status, &updatedAt); err != nil {
		return model.Employee{}, err
	}
	e.Age = uint8(age)
	e.Status = model.EmployeeStatus(status)
	e.UpdatedAt = uint64(updatedAt)
	return e, nil
}

func scanStream(row pgx.Row) (model.Stream, error) {
	var (
		s         model.Stream
		status    string
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&s.ID, &s.Sender, &s.Receiver, &s.To, &s.Token, &status, &s.FlowRate, &createdAt, &updatedAt, &s.TxHash); err != nil {
		return model.Stream{}, err
	}
	s.Status = model.StreamStatus(status)
	s.CreatedAt = uint64(createdAt)
	s.UpdatedAt = uint64(updatedAt)
	return s, nil
}
