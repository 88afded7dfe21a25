package postgres

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		age             SMALLINT NOT NULL,
		contact_address TEXT NOT NULL,
		country         TEXT NOT NULL,
		addr            TEXT NOT NULL,
		employer        TEXT NOT NULL,
		status          TEXT NOT NULL,
		updated_at      BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS employees_employer_status_idx ON employees (employer, status)`,
	`CREATE TABLE IF NOT EXISTS streams (
		id          TEXT PRIMARY KEY,
		sender      TEXT NOT NULL,
		receiver    TEXT NOT NULL,
		to_employee TEXT NOT NULL,
		token       TEXT NOT NULL,
		status      TEXT NOT NULL,
		flow_rate   NUMERIC(78, 0) NOT NULL,
		created_at  BIGINT NOT NULL,
		updated_at  BIGINT NOT NULL,
		tx_hash     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS streams_sender_idx ON streams (sender)`,
	`CREATE INDEX IF NOT EXISTS streams_receiver_idx ON streams (receiver)`,
	`CREATE TABLE IF NOT EXISTS stream_revisions (
		id                    TEXT PRIMARY KEY,
		revision_index        INTEGER NOT NULL,
		period_revision_index INTEGER NOT NULL,
		most_recent_stream    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS indexer_state (
		name         TEXT PRIMARY KEY,
		block_number BIGINT NOT NULL,
		tx_index     BIGINT NOT NULL,
		log_index    BIGINT NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
}
