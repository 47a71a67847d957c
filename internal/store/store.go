package store

import (
	"database/sql"
)

// Store is a local SQLite cache of fetched frame payloads plus a log of
// completed runs. It only ever accelerates re-runs; the pipeline works
// without it.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}
