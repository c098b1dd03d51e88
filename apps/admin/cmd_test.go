package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/alihaimran285-byte/final-project-sub001/apps/api/echo"
	"github.com/alihaimran285-byte/final-project-sub001/core"
	"github.com/alihaimran285-byte/final-project-sub001/core/school"
	"github.com/alihaimran285-byte/final-project-sub001/storage/database"
	"github.com/alihaimran285-byte/final-project-sub001/storage/database/postgres"
)

type testLogger struct{}

func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type fakeStore struct {
	pingErr  error
	migrated bool
	closed   bool
}

func (s *fakeStore) Name() string { return core.EngineSurrealDB }
func (s *fakeStore) Ping(context.Context) error { return s.pingErr }
func (s *fakeStore) Migrate(context.Context) error { s.migrated = true; return nil }
func (s *fakeStore) Close() error { s.closed = true; return nil }

func (s *fakeStore) FindAll(context.Context, school.Kind) ([]school.Record, error) {
	return nil, nil
}

func (s *fakeStore) Create(_ context.Context, _ school.Kind, fields school.Record) (school.Record, error) {
	return fields, nil
}

func (s *fakeStore) FindByID(context.Context, school.Kind, string) (school.Record, error) {
	return nil, school.ErrNotFound
}

func setup(t *testing.T, engine string) *commandLine {
	t.Helper()

	origOpen, origGoose := openPrimaryFunc, gooseRunFunc
	t.Cleanup(func() {
		openPrimaryFunc, gooseRunFunc = origOpen, origGoose
	})

	return &commandLine{
		conf: &core.Config{
			AppName:   "Masomo",
			SecretKey: "s3cr3t",
			Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
			Database: core.DatabaseConfig{
				Engine:       engine,
				Host:         "localhost:5432",
				Name:         "masomo",
				DisableTLS:   true,
				ProbeTimeout: 50 * time.Millisecond,
				SeedFile:     filepath.Join("..", "..", "assets", "seed.yaml"),
			},
		},
		logger: testLogger{},
	}
}

func mockPrimary(store *fakeStore) {
	openPrimaryFunc = func(*core.Config, core.Logger) (database.PrimaryStore, error) {
		return store, nil
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    []string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			out := new(bytes.Buffer)
			err := cli.run(append([]string{"admin"}, tt.args...), out)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Contains(t, err.Error(), tt.wantErrStr)
				}
			default:
				require.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func Test_commandLine_help(t *testing.T) {
	cli := setup(t, core.EngineMemory)
	runCLITests(t, cli, []cliTest{
		{name: "no command", wantOut: []string{"probe", "migrate", "token", "seed-check"}},
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol"`},
	})
}

func Test_commandLine_probe(t *testing.T) {
	t.Run("memory engine", func(t *testing.T) {
		cli := setup(t, core.EngineMemory)
		runCLITests(t, cli, []cliTest{
			{name: "probe", args: []string{"probe"}, wantOut: []string{"backend:       memory", "using primary: false"}},
		})
	})

	t.Run("primary reachable", func(t *testing.T) {
		cli := setup(t, core.EngineSurrealDB)
		store := &fakeStore{}
		mockPrimary(store)
		runCLITests(t, cli, []cliTest{
			{name: "probe", args: []string{"probe"}, wantOut: []string{"backend:       surrealdb", "using primary: true"}},
		})
		assert.True(t, store.closed)
	})

	t.Run("primary unreachable", func(t *testing.T) {
		cli := setup(t, core.EngineSurrealDB)
		mockPrimary(&fakeStore{pingErr: errors.New("connection refused")})
		runCLITests(t, cli, []cliTest{
			{
				name:    "probe",
				args:    []string{"probe"},
				wantOut: []string{"backend:       memory", "using primary: false", "reason:        connection refused"},
			},
		})
	})

	t.Run("open failure", func(t *testing.T) {
		cli := setup(t, core.EngineSurrealDB)
		openPrimaryFunc = func(*core.Config, core.Logger) (database.PrimaryStore, error) {
			return nil, errors.New("bad engine")
		}
		runCLITests(t, cli, []cliTest{
			{name: "probe", args: []string{"probe"}, wantErrStr: "bad engine"},
		})
	})
}

func Test_commandLine_migrate(t *testing.T) {
	t.Run("postgres", func(t *testing.T) {
		cli := setup(t, core.EnginePostgres)

		gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
			if db == nil || fsys != postgres.Migrations || dir != postgres.MigrationsDir {
				return fmt.Errorf("unexpected migration source")
			}
			switch command {
			case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
			case "up-to", "down-to":
				if len(args) == 0 {
					return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
				}
				if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
					return fmt.Errorf("version must be a number (got '%s')", args[0])
				}
			default:
				return fmt.Errorf("%q: no such command", command)
			}
			return nil
		}

		runCLITests(t, cli, []cliTest{
			{name: "no subcommand", args: []string{"migrate"}, wantErrStr: "requires at least 1 arg(s)"},
			{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
			{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form"},
			{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
			{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form"},
			{name: "up", args: []string{"migrate", "up"}},
			{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
			{name: "up-to", args: []string{"migrate", "up-to", "2"}},
			{name: "down", args: []string{"migrate", "down"}},
			{name: "down-to", args: []string{"migrate", "down-to", "1"}},
			{name: "redo", args: []string{"migrate", "redo"}},
			{name: "reset", args: []string{"migrate", "reset"}},
			{name: "status", args: []string{"migrate", "status"}},
			{name: "version", args: []string{"migrate", "version"}},
			{name: "fix", args: []string{"migrate", "fix"}},
		})
	})

	t.Run("surrealdb", func(t *testing.T) {
		cli := setup(t, core.EngineSurrealDB)
		store := &fakeStore{}
		mockPrimary(store)

		runCLITests(t, cli, []cliTest{
			{name: "down", args: []string{"migrate", "down"}, wantErrStr: `"down": not supported by the surrealdb engine`},
			{name: "up", args: []string{"migrate", "up"}},
		})
		assert.True(t, store.migrated)
		assert.True(t, store.closed)
	})

	t.Run("memory", func(t *testing.T) {
		cli := setup(t, core.EngineMemory)
		runCLITests(t, cli, []cliTest{
			{name: "up", args: []string{"migrate", "up"}, wantErr: errNothingToMigrate},
		})
	})
}

func Test_commandLine_token(t *testing.T) {
	cli := setup(t, core.EngineMemory)

	runCLITests(t, cli, []cliTest{
		{name: "no flags", args: []string{"token"}, wantErrStr: "required"},
		{name: "invalid role", args: []string{"token", "--role", "janitor", "--subject", "jdoe"}, wantErrStr: "oneof"},
		{name: "invalid subject", args: []string{"token", "-r", "admin", "-s", "j doe!"}, wantErrStr: "alphanum_"},
	})

	out := new(bytes.Buffer)
	require.NoError(t, cli.run([]string{"admin", "token", "-r", "Teacher", "-s", "jdoe"}, out))

	var claims echoapi.Claims
	_, err := jwt.ParseWithClaims(strings.TrimSpace(out.String()), &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cli.conf.SecretKey), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "jdoe", claims.Subject)
	assert.True(t, claims.IsTeacher)
	assert.False(t, claims.IsAdmin)
	assert.Equal(t, []string{school.RoleTeacher}, claims.Roles)
}

func Test_commandLine_seedCheck(t *testing.T) {
	cli := setup(t, core.EngineMemory)

	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.yaml")
	require.NoError(t, os.WriteFile(valid, []byte(`
students:
  - name: A
  - name: B
teachers:
  - name: C
`), 0o600))
	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("janitors:\n  - name: D\n"), 0o600))

	runCLITests(t, cli, []cliTest{
		{name: "default file", args: []string{"seed-check"}, wantOut: []string{"students", "teachers", "total"}},
		{
			name:    "custom file",
			args:    []string{"seed-check", "--file", valid},
			wantOut: []string{"students     2", "teachers     1", "assignments  0", "total        3"},
		},
		{name: "missing file", args: []string{"seed-check", "-f", filepath.Join(dir, "nope.yaml")}, wantErrStr: "reading"},
		{name: "unknown collection", args: []string{"seed-check", "-f", unknown}, wantErrStr: `seed collection "janitors"`},
	})
}
