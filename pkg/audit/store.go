package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/benbjohnson/clock"
	_ "github.com/lib/pq"
)

// DatabaseURLEnv names the variable holding the audit database URL.
const DatabaseURLEnv = "SNOWFORGE_AUDIT_DATABASE_URL"

const appName = "snowforge"

const insertMessage = `INSERT INTO audit_messages
	(facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// Store persists audit events in the audit_messages table.
type Store struct {
	db       *sql.DB
	clock    clock.Clock
	hostname string
}

// NewStore opens the database named by SNOWFORGE_AUDIT_DATABASE_URL. It
// returns a nil store and no error when the variable is unset.
func NewStore() (*Store, error) {
	dbURL := os.Getenv(DatabaseURLEnv)
	if dbURL == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", DatabaseURLEnv, err)
	}
	return NewStoreWithDB(db), nil
}

// NewStoreWithDB wraps an open connection.
func NewStoreWithDB(db *sql.DB) *Store {
	hostname, _ := os.Hostname()
	return &Store{db: db, clock: clock.New(), hostname: hostname}
}

// WithClock sets the clock used to timestamp rows.
func (s *Store) WithClock(c clock.Clock) *Store {
	s.clock = c
	return s
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts one event.
func (s *Store) Save(event Event) error {
	if s.db == nil {
		return nil
	}

	sdata, err := json.Marshal(event.StructuredData())
	if err != nil {
		return fmt.Errorf("encoding structured data: %w", err)
	}

	_, err = s.db.Exec(insertMessage,
		event.Facility(),
		int(event.Severity()),
		s.clock.Now().UTC(),
		s.hostname,
		appName,
		os.Getpid(),
		event.MessageID(),
		sdata,
		event.Message(),
	)
	if err != nil {
		return fmt.Errorf("saving %s audit event: %w", event.MessageID(), err)
	}
	return nil
}
