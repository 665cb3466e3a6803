package forge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"
	"github.com/snowflakedb/gosnowflake"
)

// Snowflake error numbers that indicate a transient failure.
const (
	ErrNumConnectionReset  = 250001
	ErrNumConnectionClosed = 250002
	ErrNumNetwork          = 90100
)

const maxRetryInterval = 5 * time.Minute

// Querier is the part of *sql.Tx used to run statements.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// TxFunc is run inside a transaction.
type TxFunc func(ctx context.Context, tx Querier) error

// IsRetryable reports whether err carries a Snowflake error number that is
// worth retrying.
func IsRetryable(err error) bool {
	var sfErr *gosnowflake.SnowflakeError
	if !errors.As(err, &sfErr) {
		return false
	}
	switch sfErr.Number {
	case ErrNumConnectionReset, ErrNumConnectionClosed, ErrNumNetwork:
		return true
	}
	return false
}

// Transaction runs fn between BEGIN and COMMIT. When fn or the commit
// fails the transaction is rolled back and the error returned. A retryable
// error runs the whole transaction again, up to the configured number of
// retries.
func (f *Forge) Transaction(ctx context.Context, fn TxFunc) error {
	attempt := 0
	operation := func() error {
		err := f.runTx(ctx, fn)
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, delay time.Duration) {
		attempt++
		f.log.WithError(err).Warnf("retrying transaction in %s (attempt %d of %d)", delay, attempt, f.maxRetries)
	}
	return backoff.RetryNotifyWithTimer(operation, f.retryPolicy(ctx), notify, &clockTimer{clock: f.clock})
}

// retryPolicy doubles the delay after each retry, starting from the
// configured backoff, and stops after maxRetries.
func (f *Forge) retryPolicy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = f.retryBackoff
	exp.RandomizationFactor = 0
	exp.Multiplier = 2
	exp.MaxInterval = maxRetryInterval
	exp.MaxElapsedTime = 0
	exp.Clock = f.clock

	retries := f.maxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

func (f *Forge) runTx(ctx context.Context, fn TxFunc) error {
	conn, err := f.connection(ctx)
	if err != nil {
		return err
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			f.log.WithError(rbErr).Error("failed to rollback transaction")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// clockTimer runs backoff sleeps on the forge clock so a mock clock can
// drive them.
type clockTimer struct {
	clock clock.Clock
	timer *clock.Timer
	ready chan time.Time
}

func (t *clockTimer) Start(d time.Duration) {
	if d <= 0 {
		t.timer = nil
		t.ready = make(chan time.Time, 1)
		t.ready <- t.clock.Now()
		return
	}
	t.timer = t.clock.Timer(d)
}

func (t *clockTimer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *clockTimer) C() <-chan time.Time {
	if t.timer == nil {
		return t.ready
	}
	return t.timer.C
}
