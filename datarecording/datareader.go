package datarecording

import (
	"database/sql"
	"fmt"
	"os"
)

// A DataReader reads back the tables written by a DataRecorder.
type DataReader struct {
	*sql.DB
}

// NewReader opens path.sqlite3 for reading.
func NewReader(path string) (*DataReader, error) {
	filename := path + ".sqlite3"

	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}

	return &DataReader{DB: db}, nil
}

// ListTables returns the names of the tables in the database.
func (r *DataReader) ListTables() ([]string, error) {
	rows, err := r.Query(
		"SELECT name FROM sqlite_master WHERE type='table' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}

		tables = append(tables, name)
	}

	return tables, rows.Err()
}

// Count returns the number of rows in a table.
func (r *DataReader) Count(table string) (int, error) {
	var n int

	err := r.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}

	return n, nil
}
