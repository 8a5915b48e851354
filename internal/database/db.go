// Package database opens the MySQL connection the repositories share.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// dsn assembles the driver connection string.  parseTime maps DATETIME
// columns onto time.Time and loc=UTC keeps ledger timestamps in one
// zone regardless of where the server runs.
func dsn(user, pass, host, port, name string) string {
	cred := user
	if pass != "" {
		cred += ":" + pass
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		cred, host, port, name)
}

// Open connects to MySQL, tunes the pool and verifies the connection
// with a short ping.  Allocation runs many small transactions, so idle
// connections are kept around rather than churned.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn(user, pass, host, port, name))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s/%s: %w", host, name, err)
	}
	return db, nil
}
