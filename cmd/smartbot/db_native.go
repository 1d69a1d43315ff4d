//go:build !cgo_sqlite

package main

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// initDB opens the history database with the pure-Go sqlite driver, the
// default build. Pass -tags cgo_sqlite to link the cgo driver instead.
func initDB(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite", dataSource)
}
