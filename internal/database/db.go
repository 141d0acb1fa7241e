package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// ParseDescriptor picks the managed dialect from a DATABASE_URL and returns
// the DSN its driver expects.
func ParseDescriptor(raw string) (Dialect, string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Dialect{}, "", fmt.Errorf("parse database url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return Postgres, u.String(), nil
	case "mysql":
		cfg := mysql.NewConfig()
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
		cfg.Net = "tcp"
		cfg.Addr = u.Host
		if u.Port() == "" {
			cfg.Addr = u.Hostname() + ":3306"
		}
		cfg.DBName = strings.TrimPrefix(u.Path, "/")
		// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		cfg.Params = map[string]string{"charset": "utf8mb4"}
		for k, v := range u.Query() {
			if len(v) > 0 {
				cfg.Params[k] = v[0]
			}
		}
		return MySQL, cfg.FormatDSN(), nil
	default:
		return Dialect{}, "", fmt.Errorf("unsupported database url scheme %q", u.Scheme)
	}
}

// OpenManaged opens (without connecting) the managed backend described by
// raw. Reachability is checked per acquisition by the Selector.
func OpenManaged(raw string) (*sql.DB, Dialect, error) {
	d, dsn, err := ParseDescriptor(raw)
	if err != nil {
		return nil, Dialect{}, err
	}
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, Dialect{}, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, d, nil
}

// OpenEmbedded opens the SQLite file at path, creating its directory, and
// verifies it can be read.
func OpenEmbedded(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open(SQLite.Driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(8)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
