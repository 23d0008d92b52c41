package database

import "database/sql"

// DB is a thin wrapper used where handlers need the connection itself
// (health checks) rather than a repository.
type DB struct {
	DB *sql.DB
}

func NewDB(db *sql.DB) *DB {
	return &DB{DB: db}
}
