package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultColumn is the result column holding the item list.
const DefaultColumn = "itemSet"

// Drivers lists the SQL drivers registered for query sources.
var Drivers = []string{"sqlite3", "mysql"}

// OpenQuery opens and pings a database for use with Query.
func OpenQuery(driver, dsn string) (*sql.DB, error) {
	if !isDriver(driver) {
		return nil, fmt.Errorf("unsupported query driver %q: must be one of %v", driver, Drivers)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open query source: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect query source: %w", err)
	}
	return db, nil
}

// Query runs query and turns each row into a transaction.
//
// The column named column (DefaultColumn if empty) must hold a bracketed,
// sep-joined item list such as "[1,2,3]". The brackets are stripped before
// splitting; empty or NULL lists are skipped. sep defaults to ",".
func Query(ctx context.Context, db *sql.DB, query, column, sep string) ([][]string, error) {
	if column == "" {
		column = DefaultColumn
	}
	if sep == "" {
		sep = ","
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query transactions: columns: %w", err)
	}
	idx := -1
	for i, c := range cols {
		if c == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("query transactions: column %q not in result %v", column, cols)
	}

	var out [][]string
	dest := make([]any, len(cols))
	for i := range dest {
		dest[i] = new(sql.RawBytes)
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("query transactions: scan: %w", err)
		}
		raw := dest[idx].(*sql.RawBytes)
		if *raw == nil {
			continue
		}
		list := StripBrackets(string(*raw))
		if list == "" {
			continue
		}
		out = append(out, Split(list, sep))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	return out, nil
}

func isDriver(name string) bool {
	for _, d := range Drivers {
		if d == name {
			return true
		}
	}
	return false
}
