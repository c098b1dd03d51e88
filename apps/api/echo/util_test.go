package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alihaimran285-byte/final-project-sub001/core"
	"github.com/alihaimran285-byte/final-project-sub001/core/school"
	"github.com/alihaimran285-byte/final-project-sub001/services/metrics"
	inmemdb "github.com/alihaimran285-byte/final-project-sub001/storage/database/inmem"
	"github.com/alihaimran285-byte/final-project-sub001/storage/gateway"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testLogger struct {
	errors []string
}

func (l *testLogger) Debug(string, ...interface{}) {}
func (l *testLogger) Info(string, ...interface{})  {}
func (l *testLogger) Warn(string, ...interface{})  {}
func (l *testLogger) Fatal(string, ...interface{}) {}
func (l *testLogger) Error(msg string, _ ...interface{}) {
	l.errors = append(l.errors, msg)
}

// fakePrimary is an always reachable primary store, failing with err when set.
type fakePrimary struct {
	err     error
	records map[school.Kind][]school.Record
}

func (p *fakePrimary) Ping(context.Context) error { return nil }

func (p *fakePrimary) FindAll(_ context.Context, kind school.Kind) ([]school.Record, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.records[kind], nil
}

func (p *fakePrimary) Create(_ context.Context, kind school.Kind, fields school.Record) (school.Record, error) {
	if p.err != nil {
		return nil, p.err
	}
	rec := fields.Clone()
	rec[school.FieldID] = "db-1"
	rec[school.FieldCreatedAt] = time.Now().UTC()
	rec[school.FieldUpdatedAt] = rec[school.FieldCreatedAt]
	p.records[kind] = append(p.records[kind], rec)
	return rec, nil
}

func (p *fakePrimary) FindByID(_ context.Context, kind school.Kind, id string) (school.Record, error) {
	for _, rec := range p.records[kind] {
		if rec.ID() == id {
			return rec, nil
		}
	}
	return nil, school.ErrNotFound
}

type testApp struct {
	*Server
	conf     *core.Config
	fallback *inmemdb.DB
	gw       *gateway.Gateway
	logger   *testLogger
}

func testConfig(authEnabled bool) *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Masomo",
		SecretKey: "secret",
		Server: core.ServerConfig{
			Address:            ":0",
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: time.Hour,
		},
		Database: core.DatabaseConfig{Engine: core.EngineMemory, ProbeTimeout: 50 * time.Millisecond},
		Auth:     core.AuthConfig{Enabled: authEnabled},
	}
}

// setup returns a server on the fallback store (primary == nil) seeded with seed.
func setup(t *testing.T, authEnabled bool, primary gateway.Primary, seed map[school.Kind][]school.Record) *testApp {
	t.Helper()
	conf := testConfig(authEnabled)
	logger := &testLogger{}
	fallback := inmemdb.Open(seed)
	m := metrics.New()
	gw := gateway.New(
		context.Background(), primary, fallback, logger,
		gateway.WithProbeTimeout(conf.Database.ProbeTimeout),
		gateway.WithObserver(m),
	)
	translator := core.NewTranslator()

	srv := NewServer(&Deps{
		Conf:       conf,
		Logger:     logger,
		RecordSvc:  school.NewService(gw),
		Storage:    gw,
		Metrics:    m,
		Validate:   core.NewValidator(translator),
		Translator: translator,
	})
	return &testApp{Server: srv, conf: conf, fallback: fallback, gw: gw, logger: logger}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, subject string, roles ...string) string {
	token, err := GenerateToken(conf, NewClaims(conf, subject, roles...))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("%s %s code = %d, want %d; body: %s", tt.method, tt.path, rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData != nil {
		if eq, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData); err != nil || !eq {
			assert.JSONEq(t, string(tt.wantData), rec.Body.String())
		}
	}
}

func decodeRecord(t *testing.T, rec *httptest.ResponseRecorder) school.Record {
	t.Helper()
	var r school.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &r); err != nil {
		t.Fatalf("decodeRecord() failed: %v; body: %s", err, rec.Body.String())
	}
	return r
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []school.Record {
	t.Helper()
	var rr []school.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &rr); err != nil {
		t.Fatalf("decodeList() failed: %v; body: %s", err, rec.Body.String())
	}
	return rr
}
