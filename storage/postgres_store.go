package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Tn-Hub-777/rematcher/models"
)

// PostgresStore persists dynamic records in PostgreSQL. Each table holds
// one JSONB document per record keyed by the record's id, so arbitrary
// columns survive storage unchanged.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use store.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) migrate() error {
	for _, table := range []string{TableBuyers, TableListings, TableMatches} {
		_, err := s.db.Exec(fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id         TEXT PRIMARY KEY,
				data       JSONB       NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`, table))
		if err != nil {
			return err
		}
	}
	return nil
}

// checkTable guards the table name before it is spliced into SQL.
func checkTable(table string) error {
	switch table {
	case TableBuyers, TableListings, TableMatches:
		return nil
	}
	return fmt.Errorf("postgres: unknown table %q", table)
}

// List returns every record in the table, ordered by id.
func (s *PostgresStore) List(table string) ([]models.Record, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(fmt.Sprintf("SELECT id, data FROM %s ORDER BY id", table))
	if err != nil {
		return nil, fmt.Errorf("postgres: list %s: %w", table, err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("postgres: scan %s row: %w", table, err)
		}
		rec := models.Record{}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("postgres: decode %s record %s: %w", table, id, err)
		}
		rec["id"] = id
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Upsert inserts the record, or replaces the stored document when the
// id already exists.
func (s *PostgresStore) Upsert(table string, rec models.Record) error {
	if err := checkTable(table); err != nil {
		return err
	}
	return upsertOne(s.db.Exec, table, rec)
}

type execFunc func(query string, args ...any) (sql.Result, error)

func upsertOne(exec execFunc, table string, rec models.Record) error {
	id := rec.ID()
	if id == "" {
		return fmt.Errorf("postgres: upsert into %s: record has no id", table)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("postgres: encode record %s: %w", id, err)
	}
	_, err = exec(fmt.Sprintf(`
		INSERT INTO %s (id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, table), id, raw)
	if err != nil {
		return fmt.Errorf("postgres: upsert %s/%s: %w", table, id, err)
	}
	return nil
}

// Delete removes the record with the given id. Deleting a missing id is
// not an error.
func (s *PostgresStore) Delete(table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	_, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("postgres: delete %s/%s: %w", table, id, err)
	}
	return nil
}

// BulkUpsert applies all records inside one transaction; any failure
// rolls the whole batch back.
func (s *PostgresStore) BulkUpsert(table string, recs []models.Record) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin bulk upsert: %w", err)
	}
	for _, rec := range recs {
		if rec == nil {
			continue
		}
		if err := upsertOne(tx.Exec, table, rec); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Clear deletes every record in the table.
func (s *PostgresStore) Clear(table string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	_, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table))
	if err != nil {
		return fmt.Errorf("postgres: clear %s: %w", table, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
