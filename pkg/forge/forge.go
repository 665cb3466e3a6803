package forge

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/snowforge/snowforge/pkg/config"
	"github.com/snowforge/snowforge/pkg/db"
	"github.com/snowforge/snowforge/pkg/logger"
)

const (
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 500 * time.Millisecond
)

// Opener opens the connection pool backing a Forge. It is called at most
// once per open session.
type Opener func(ctx context.Context) (*sql.DB, error)

// Forge runs statements against a single Snowflake session.
type Forge struct {
	open             Opener
	maxRetries       int
	retryBackoff     time.Duration
	statementTimeout time.Duration
	clock            clock.Clock
	log              logger.Log
	recorder         Recorder
	auditor          Auditor
	account          string
	user             string

	mu        sync.Mutex
	conn      *sql.DB
	sessionID string
}

// New creates a Forge that connects through open on first use.
func New(open Opener) *Forge {
	return &Forge{
		open:         open,
		maxRetries:   DefaultMaxRetries,
		retryBackoff: DefaultRetryBackoff,
		clock:        clock.New(),
		log:          logger.NoOp("forge"),
	}
}

// FromConfig creates a Forge for a Snowflake account, applying the retry
// and timeout settings of the tool config.
func FromConfig(cfg *config.SnowflakeConfig, tool *config.Config) *Forge {
	f := New(func(ctx context.Context) (*sql.DB, error) {
		return db.OpenSnowflake(cfg, tool.QueryTag)
	})
	return f.
		WithMaxRetries(tool.MaxRetries).
		WithRetryBackoff(tool.RetryBackoff()).
		WithStatementTimeout(tool.StatementTimeout()).
		WithIdentity(cfg.Account, cfg.User)
}

// WithMaxRetries sets how many times a transaction failing with a
// retryable error is run again.
func (f *Forge) WithMaxRetries(n int) *Forge {
	f.maxRetries = n
	return f
}

// WithRetryBackoff sets the delay before the first retry. Each further
// retry doubles it.
func (f *Forge) WithRetryBackoff(d time.Duration) *Forge {
	f.retryBackoff = d
	return f
}

// WithStatementTimeout bounds each statement; zero disables the limit.
func (f *Forge) WithStatementTimeout(d time.Duration) *Forge {
	f.statementTimeout = d
	return f
}

func (f *Forge) WithClock(c clock.Clock) *Forge {
	f.clock = c
	return f
}

func (f *Forge) WithLogger(l logger.Log) *Forge {
	f.log = l
	return f
}

// WithRecorder reports every workflow run to r.
func (f *Forge) WithRecorder(r Recorder) *Forge {
	f.recorder = r
	return f
}

// WithAuditor reports every workflow run and statement to a.
func (f *Forge) WithAuditor(a Auditor) *Forge {
	f.auditor = a
	return f
}

// WithIdentity sets the account and user attached to run results.
func (f *Forge) WithIdentity(account, user string) *Forge {
	f.account = account
	f.user = user
	return f
}

// connection returns the open pool, opening it and learning the session
// ID on first use.
func (f *Forge) connection(ctx context.Context) (*sql.DB, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conn != nil {
		return f.conn, nil
	}

	conn, err := f.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to snowflake: %w", err)
	}
	var sessionID string
	if err := conn.QueryRowContext(ctx, "SELECT CURRENT_SESSION()").Scan(&sessionID); err != nil {
		f.log.WithError(err).Warn("failed to read session id, the session will not be aborted on close")
	}
	f.conn = conn
	f.sessionID = sessionID
	f.log.WithField("session", sessionID).Debug("connected")
	return conn, nil
}

// Session returns the ID of the Snowflake session, connecting if needed.
func (f *Forge) Session(ctx context.Context) (string, error) {
	if _, err := f.connection(ctx); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessionID, nil
}

// Close aborts the Snowflake session and closes the connection. Failing to
// abort the session is logged; only the close error is returned. Close on
// a Forge that never connected is a no-op.
func (f *Forge) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conn == nil {
		return nil
	}

	if f.sessionID != "" {
		if _, err := f.conn.ExecContext(ctx, "SELECT SYSTEM$ABORT_SESSION(?)", f.sessionID); err != nil {
			f.log.WithError(err).WithField("session", f.sessionID).Warn("failed to abort session")
		}
	}
	err := f.conn.Close()
	f.conn = nil
	f.sessionID = ""
	if err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}
