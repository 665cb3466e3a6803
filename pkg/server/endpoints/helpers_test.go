package endpoints

import (
	"context"
	"database/sql"
	"io"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/snowforge/snowforge/pkg/config"
	"github.com/snowforge/snowforge/pkg/forge"
	"github.com/snowforge/snowforge/pkg/ledger"
	"github.com/snowforge/snowforge/pkg/server"
	"github.com/snowforge/snowforge/pkg/server/middleware"
)

var testSecret = []byte("endpoint-secret")

func newTestServer(t *testing.T, engines server.EngineFactory, store ledger.Store) (*server.Server, string) {
	t.Helper()
	srv := server.NewServer(&config.Config{}, engines, "127.0.0.1", "0")
	if store != nil {
		srv.Ledger = store
	}
	srv.Secret = testSecret
	RegisterAll(srv)

	token, err := middleware.IssueToken(testSecret, "tester", time.Minute)
	require.NoError(t, err)
	return srv, token
}

func do(srv *server.Server, method, target string, body string, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, req)
	return w
}

// mockEngines hands out forges backed by one sqlmock connection.
func mockEngines(t *testing.T) (server.EngineFactory, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	return func(ctx context.Context) (*forge.Forge, error) {
		return forge.New(func(ctx context.Context) (*sql.DB, error) {
			return conn, nil
		}).WithRetryBackoff(0), nil
	}, mock
}

func offlineEngines(t *testing.T) server.EngineFactory {
	t.Helper()
	return func(ctx context.Context) (*forge.Forge, error) {
		return forge.New(func(ctx context.Context) (*sql.DB, error) {
			t.Error("unexpected connection")
			return nil, context.Canceled
		}), nil
	}
}

type memoryStore struct {
	mu    sync.Mutex
	runs  map[uuid.UUID]*ledger.Run
	steps map[uuid.UUID][]ledger.RunStep
	limit int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		runs:  map[uuid.UUID]*ledger.Run{},
		steps: map[uuid.UUID][]ledger.RunStep{},
	}
}

func (m *memoryStore) Transaction(ctx context.Context, fn func(ledger.Store) error) error {
	return fn(m)
}

func (m *memoryStore) CreateRun(ctx context.Context, run *ledger.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *run
	m.runs[run.ID] = &copied
	return nil
}

func (m *memoryStore) FinishRun(ctx context.Context, id uuid.UUID, status string, finishedAt time.Time, steps int, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return ledger.ErrRunNotFound
	}
	run.Status = status
	run.FinishedAt = &finishedAt
	run.Steps = steps
	run.Error = errMsg
	return nil
}

func (m *memoryStore) AddStep(ctx context.Context, step *ledger.RunStep) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps[step.RunID] = append(m.steps[step.RunID], *step)
	return nil
}

func (m *memoryStore) GetRun(ctx context.Context, id uuid.UUID) (*ledger.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, ledger.ErrRunNotFound
	}
	copied := *run
	return &copied, nil
}

func (m *memoryStore) ListRuns(ctx context.Context, limit int) ([]ledger.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limit = limit
	runs := make([]ledger.Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	return runs, nil
}

func (m *memoryStore) ListSteps(ctx context.Context, runID uuid.UUID) ([]ledger.RunStep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.steps[runID], nil
}
