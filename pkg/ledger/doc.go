// Package ledger records workflow runs in a PostgreSQL database.
//
// Every run executed through a forge engine that has a Recorder attached is
// stored with its status, timing, source checksum and the SQL of each step.
// The schema is managed with golang-migrate from the db/migrations
// directory; see `snowforge db migrate`.
package ledger
