package surreal

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/alihaimran285-byte/final-project-sub001/core"
	"github.com/alihaimran285-byte/final-project-sub001/core/school"
)

var nowFunc = time.Now // mockable

type Options struct {
	URL       string // ws(s)://host/rpc
	Namespace string
	Database  string
	User      string
	Password  string
}

func NewOptions(conf *core.Config) Options {
	scheme := "wss"
	if conf.Database.DisableTLS {
		scheme = "ws"
	}
	u := url.URL{Scheme: scheme, Host: conf.Database.Host, Path: "/rpc"}
	return Options{
		URL:       u.String(),
		Namespace: conf.Database.Namespace,
		Database:  conf.Database.Name,
		User:      conf.Database.User,
		Password:  conf.Database.Password,
	}
}

// Store keeps every record kind in its own SurrealDB table (students, teachers, ...).
// The connection is opened lazily by the first call, usually Ping.
type Store struct {
	opts Options
	log  core.Logger

	mutex sync.Mutex
	db    *surrealdb.DB
}

func New(opts Options, logger core.Logger) *Store {
	return &Store{opts: opts, log: logger}
}

func (s *Store) Name() string { return core.EngineSurrealDB }

func (s *Store) conn(ctx context.Context) (*surrealdb.DB, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.db != nil {
		return s.db, nil
	}

	u, err := url.Parse(s.opts.URL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing surrealdb url")
	}
	conf := connection.NewConfig(u)
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	db, err := surrealdb.FromConnection(ctx, gorillaws.New(conf))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to surrealdb")
	}
	if s.opts.User != "" && s.opts.Password != "" {
		if _, err = db.SignIn(ctx, map[string]any{"user": s.opts.User, "pass": s.opts.Password}); err != nil {
			_ = db.Close(ctx)
			return nil, errors.Wrap(err, "signing in to surrealdb")
		}
	}
	if err = db.Use(ctx, s.opts.Namespace, s.opts.Database); err != nil {
		_ = db.Close(ctx)
		return nil, errors.Wrap(err, "selecting surrealdb namespace")
	}
	s.db = db
	return db, nil
}

// reset drops a broken connection so the next call reconnects.
func (s *Store) reset(ctx context.Context) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.db != nil {
		_ = s.db.Close(ctx)
		s.db = nil
	}
}

func (s *Store) Ping(ctx context.Context) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if _, err = surrealdb.Query[any](ctx, db, "RETURN true;", nil); err != nil {
		s.reset(ctx)
		return errors.Wrap(err, "pinging surrealdb")
	}
	return nil
}

func (s *Store) Close() error {
	s.reset(context.Background())
	return nil
}

func (s *Store) FindAll(ctx context.Context, kind school.Kind) ([]school.Record, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	res, err := surrealdb.Query[[]map[string]any](
		ctx, db,
		"SELECT * FROM type::table($tb) ORDER BY createdAt ASC;",
		map[string]any{"tb": kind.Collection()},
	)
	if err != nil {
		return nil, err
	}

	records := make([]school.Record, 0)
	if res != nil && len(*res) > 0 {
		for _, raw := range (*res)[0].Result {
			records = append(records, normalize(raw))
		}
	}
	return records, nil
}

func (s *Store) Create(ctx context.Context, kind school.Kind, fields school.Record) (school.Record, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	data := make(map[string]any, len(fields)+2)
	for k, v := range fields.Fields() {
		data[k] = v
	}
	now := nowFunc().UTC()
	data[school.FieldCreatedAt] = models.CustomDateTime{Time: now}
	data[school.FieldUpdatedAt] = models.CustomDateTime{Time: now}

	created, err := surrealdb.Create[map[string]any](ctx, db, models.Table(kind.Collection()), data)
	if err != nil {
		return nil, trapConflictErr(kind, err)
	}
	if created == nil {
		return nil, errors.Errorf("surrealdb returned no %s record", kind)
	}
	return normalize(*created), nil
}

func (s *Store) FindByID(ctx context.Context, kind school.Kind, id string) (school.Record, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := surrealdb.Select[map[string]any](ctx, db, models.NewRecordID(kind.Collection(), id))
	if err != nil {
		if isNotFound(err) {
			return nil, school.ErrNotFound
		}
		return nil, err
	}
	if rec == nil || len(*rec) == 0 {
		return nil, school.ErrNotFound
	}
	return normalize(*rec), nil
}

// Migrate defines the tables with their timestamp fields & unique email indexes.
func (s *Store) Migrate(ctx context.Context) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if _, err = surrealdb.Query[any](ctx, db, schema(), nil); err != nil {
		return errors.Wrap(err, "migrating surrealdb")
	}
	s.log.Info("surrealdb schema is up to date")
	return nil
}

func schema() string {
	var sb strings.Builder
	for _, kind := range school.Kinds {
		tb := kind.Collection()
		fmt.Fprintf(&sb, "DEFINE TABLE IF NOT EXISTS %s SCHEMALESS;\n", tb)
		fmt.Fprintf(&sb, "DEFINE FIELD IF NOT EXISTS createdAt ON %s TYPE datetime DEFAULT time::now() READONLY;\n", tb)
		fmt.Fprintf(&sb, "DEFINE FIELD IF NOT EXISTS updatedAt ON %s TYPE datetime VALUE time::now();\n", tb)
		if kind == school.KindStudent || kind == school.KindTeacher {
			fmt.Fprintf(&sb, "DEFINE INDEX IF NOT EXISTS %s_email ON %s FIELDS email UNIQUE;\n", tb, tb)
		}
	}
	return sb.String()
}

func trapConflictErr(kind school.Kind, err error) error {
	if err != nil && strings.Contains(err.Error(), "already contains") {
		return school.NewConflictError(kind, err)
	}
	return err
}

func isNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Expected a single or multiple results but got 0") ||
		strings.Contains(msg, "cannot unmarshal array into Go value")
}

// normalize turns a SurrealDB document into a plain Record: record ids become strings
// (the table prefix is dropped from "id") and datetimes become time.Time.
func normalize(raw map[string]any) school.Record {
	rec := make(school.Record, len(raw))
	for k, v := range raw {
		rec[k] = normalizeValue(v)
	}
	switch rid := raw[school.FieldID].(type) {
	case models.RecordID:
		rec[school.FieldID] = fmt.Sprint(rid.ID)
	case *models.RecordID:
		if rid != nil {
			rec[school.FieldID] = fmt.Sprint(rid.ID)
		}
	}
	return rec
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case models.CustomDateTime:
		return val.Time.UTC()
	case *models.CustomDateTime:
		if val == nil {
			return nil
		}
		return val.Time.UTC()
	case time.Time:
		return val.UTC()
	case models.RecordID:
		return fmt.Sprintf("%s:%v", val.Table, val.ID)
	case *models.RecordID:
		if val == nil {
			return nil
		}
		return fmt.Sprintf("%s:%v", val.Table, val.ID)
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, vv := range val {
			m[k] = normalizeValue(vv)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, vv := range val {
			s[i] = normalizeValue(vv)
		}
		return s
	default:
		return v
	}
}
