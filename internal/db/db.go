package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// Supported database/sql driver names.
const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

// Options describe how to reach Postgres. URL wins over the individual fields.
type Options struct {
	Driver   string
	URL      string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string

	PingAttempts int
	PingInterval time.Duration
}

// DSN returns the connection URL understood by both lib/pq and pgx.
func (o Options) DSN() string {
	if o.URL != "" {
		return o.URL
	}
	sslmode := o.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(o.User, o.Password),
		Host:     fmt.Sprintf("%s:%s", o.Host, o.Port),
		Path:     "/" + o.Name,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	return u.String()
}

// DriverName returns the configured driver, defaulting to lib/pq.
func (o Options) DriverName() string {
	switch o.Driver {
	case DriverPGX:
		return DriverPGX
	default:
		return DriverPQ
	}
}

// Open opens the pool and pings until the database answers or attempts run out.
// The database is often still starting when the service comes up in compose.
func Open(ctx context.Context, o Options) (*sql.DB, error) {
	db, err := sql.Open(o.DriverName(), o.DSN())
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	attempts := o.PingAttempts
	if attempts <= 0 {
		attempts = 10
	}
	interval := o.PingInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			return db, nil
		}
		log.Printf("[db] waiting for database: attempt=%d err=%v", i+1, err)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, fmt.Errorf("db ping: %w", ctx.Err())
		case <-time.After(interval):
		}
	}
	db.Close()
	return nil, fmt.Errorf("could not connect to db: %w", err)
}
