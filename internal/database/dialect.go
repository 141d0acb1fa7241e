package database

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Kind tags which physical backend served a connection.
type Kind string

const (
	KindRelational Kind = "relational" // managed server reached through DATABASE_URL
	KindEmbedded   Kind = "embedded"   // file-resident store, no server process
)

// BoolEncoding describes how a backend stores boolean columns.
type BoolEncoding int

const (
	BoolNative  BoolEncoding = iota // true/false
	BoolInteger                     // 1/0
)

// Dialect is the capability descriptor of one backend. Business code never
// branches on the backend name; it goes through these fields instead.
type Dialect struct {
	Kind   Kind
	Name   string // driver family: postgres, mysql, sqlite
	Driver string // database/sql driver name
	Bools  BoolEncoding

	placeholder func(n int) string
	unique      func(err error) bool
}

// Postgres is the managed dialect served by pgx.
var Postgres = Dialect{
	Kind:        KindRelational,
	Name:        "postgres",
	Driver:      "pgx",
	Bools:       BoolNative,
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	unique: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == "23505"
	},
}

// MySQL is the managed dialect served by go-sql-driver/mysql.
var MySQL = Dialect{
	Kind:        KindRelational,
	Name:        "mysql",
	Driver:      "mysql",
	Bools:       BoolNative,
	placeholder: func(int) string { return "?" },
	unique: func(err error) bool {
		var myErr *mysql.MySQLError
		return errors.As(err, &myErr) && myErr.Number == 1062
	},
}

// SQLite is the embedded dialect served by modernc.org/sqlite.
var SQLite = Dialect{
	Kind:        KindEmbedded,
	Name:        "sqlite",
	Driver:      "sqlite",
	Bools:       BoolInteger,
	placeholder: func(int) string { return "?" },
	unique: func(err error) bool {
		var sqErr *sqlite.Error
		if errors.As(err, &sqErr) && sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return true
		}
		// primary result code only: fall back to the message
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	},
}

// Placeholder returns the parameter token for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string { return d.placeholder(n) }

// Rebind rewrites every '?' marker outside string literals into the
// dialect's placeholder token. Queries in this module are written with '?'.
func (d Dialect) Rebind(query string) string {
	if d.Placeholder(1) == "?" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteString(d.Placeholder(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EncodeBool converts a Go bool into the value the backend stores.
func (d Dialect) EncodeBool(v bool) any {
	if d.Bools == BoolInteger {
		if v {
			return int64(1)
		}
		return int64(0)
	}
	return v
}

// DecodeBool reads a boolean column regardless of how the driver surfaced it.
func (d Dialect) DecodeBool(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int64:
		return t != 0
	case int32:
		return t != 0
	case int:
		return t != 0
	case float64:
		return t != 0
	case []byte:
		return parseBoolText(string(t))
	case string:
		return parseBoolText(t)
	}
	return false
}

func parseBoolText(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes":
		return true
	}
	return false
}

// IsUniqueViolation reports whether err is a unique-constraint failure.
func (d Dialect) IsUniqueViolation(err error) bool {
	if err == nil || d.unique == nil {
		return false
	}
	return d.unique(err)
}

// encodeArgs maps bool arguments through the dialect's encoding.
func (d Dialect) encodeArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if b, ok := a.(bool); ok {
			out[i] = d.EncodeBool(b)
			continue
		}
		out[i] = a
	}
	return out
}
