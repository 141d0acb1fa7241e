package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// Row is one result row keyed by column name. Drivers hand back values in
// different shapes (pgx: typed values, mysql text protocol: []byte, sqlite:
// int64 for booleans); the accessors hide that.
type Row struct {
	cols    map[string]any
	dialect Dialect
}

// String returns the column as text; NULL reads as "".
func (r Row) String(col string) string {
	switch t := r.cols[col].(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

// Int64 returns the column as an integer; unparsable values read as 0.
func (r Row) Int64(col string) int64 {
	switch t := r.cols[col].(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case uint64:
		return int64(t)
	case float64:
		return int64(t)
	case []byte:
		n, _ := strconv.ParseInt(string(t), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}

// Bool decodes a boolean column through the dialect's encoding.
func (r Row) Bool(col string) bool {
	return r.dialect.DecodeBool(r.cols[col])
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Time returns the column as a UTC time; NULL or unparsable values read as
// the zero time.
func (r Row) Time(col string) time.Time {
	var s string
	switch t := r.cols[col].(type) {
	case time.Time:
		return t.UTC()
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

// scanRows drains rows into normalised Row values and closes them.
func scanRows(rows *sql.Rows, d Dialect) ([]Row, error) {
	defer rows.Close()
	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []Row
	for rows.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		cols := make(map[string]any, len(names))
		for i, name := range names {
			// drivers may reuse byte buffers between rows
			if b, ok := vals[i].([]byte); ok {
				vals[i] = append([]byte(nil), b...)
			}
			cols[name] = vals[i]
		}
		out = append(out, Row{cols: cols, dialect: d})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
