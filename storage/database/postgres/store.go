package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/alihaimran285-byte/final-project-sub001/core"
	"github.com/alihaimran285-byte/final-project-sub001/core/school"
)

const uniqueViolation = "23505"

type recordRow struct {
	ID        string         `db:"id"`
	Data      types.JSONText `db:"data"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// Store keeps every record in one "records" table: kind + jsonb document.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Name() string { return core.EnginePostgres }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Migrate(_ context.Context) error {
	return Migrate(s.db)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) FindAll(ctx context.Context, kind school.Kind) ([]school.Record, error) {
	var rows []recordRow
	q := `SELECT id, data, created_at, updated_at FROM records WHERE kind = $1 ORDER BY created_at`
	if err := s.db.SelectContext(ctx, &rows, q, string(kind)); err != nil {
		return nil, err
	}

	records := make([]school.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) Create(ctx context.Context, kind school.Kind, fields school.Record) (school.Record, error) {
	data, err := json.Marshal(fields.Fields())
	if err != nil {
		return nil, errors.Wrap(err, "encoding record")
	}

	var row recordRow
	q := `INSERT INTO records (kind, data) VALUES ($1, $2) RETURNING id, data, created_at, updated_at`
	if err = s.db.QueryRowxContext(ctx, q, string(kind), types.JSONText(data)).StructScan(&row); err != nil {
		return nil, trapConflictErr(kind, err)
	}
	return row.record()
}

func (s *Store) FindByID(ctx context.Context, kind school.Kind, id string) (school.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, school.ErrNotFound
	}

	var row recordRow
	q := `SELECT id, data, created_at, updated_at FROM records WHERE kind = $1 AND id = $2`
	if err := s.db.GetContext(ctx, &row, q, string(kind), id); err != nil {
		return nil, trapNoRowsErr(err)
	}
	return row.record()
}

func (row recordRow) record() (school.Record, error) {
	rec := make(school.Record)
	if len(row.Data) > 0 {
		if err := row.Data.Unmarshal(&rec); err != nil {
			return nil, errors.Wrap(err, "decoding record")
		}
	}
	rec[school.FieldID] = row.ID
	rec[school.FieldCreatedAt] = row.CreatedAt.UTC()
	rec[school.FieldUpdatedAt] = row.UpdatedAt.UTC()
	return rec, nil
}

// trapNoRowsErr maps psql "no rows" err to school.ErrNotFound
func trapNoRowsErr(err error) error {
	if err == sql.ErrNoRows {
		return school.ErrNotFound
	}
	return err
}

// trapConflictErr maps psql unique violations to school.ConflictError
func trapConflictErr(kind school.Kind, err error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return school.NewConflictError(kind, err)
	}
	return err
}
