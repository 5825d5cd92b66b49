// Package salesdb materializes tabular sales data into a local SQLite
// database and serves read-only SELECT queries over it.
package salesdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/autodocs/manuals-cli/internal/fetcher"
)

// Open opens the SQLite database at path and configures WAL mode.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "salesdb: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "salesdb: exec %s", pragma)
		}
	}
	return db, nil
}

// Build rebuilds the database from every .csv and .xlsx file directly under
// dataDir: one table per file, named after the file stem, all columns TEXT.
// Any existing database file is replaced.
func Build(ctx context.Context, dataDir, dbPath string) error {
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return eris.Wrapf(err, "salesdb: remove old db %s", dbPath)
	}

	db, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return eris.Wrapf(err, "salesdb: read data dir %s", dataDir)
	}

	tables := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}

		path := filepath.Join(dataDir, name)
		header, rows, err := readTabular(path, ext)
		if err != nil {
			return err
		}

		table := identifier(strings.TrimSuffix(name, filepath.Ext(name)))
		zap.L().Info("loading table",
			zap.String("file", name),
			zap.String("table", table),
			zap.Int("rows", len(rows)),
		)

		if err := loadTable(ctx, db, table, header, rows); err != nil {
			return err
		}
		tables++
	}

	zap.L().Info("sales database built",
		zap.String("path", dbPath),
		zap.Int("tables", tables),
	)
	return nil
}

func readTabular(path, ext string) ([]string, [][]string, error) {
	if ext == ".xlsx" {
		header, rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
		return header, rows, eris.Wrapf(err, "salesdb: read %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "salesdb: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	header, rows, err := fetcher.ReadCSV(f, fetcher.CSVOptions{TrimSpace: true})
	return header, rows, eris.Wrapf(err, "salesdb: read %s", path)
}

func loadTable(ctx context.Context, db *sql.DB, table string, header []string, rows [][]string) error {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = fmt.Sprintf("%q TEXT", identifier(h))
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %q", table)); err != nil {
		return eris.Wrapf(err, "salesdb: drop table %s", table)
	}
	create := fmt.Sprintf("CREATE TABLE %q (%s)", table, strings.Join(cols, ", "))
	if _, err := db.ExecContext(ctx, create); err != nil {
		return eris.Wrapf(err, "salesdb: create table %s", table)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "salesdb: begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(header)), ",")
	insert := fmt.Sprintf("INSERT INTO %q VALUES (%s)", table, placeholders)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return eris.Wrapf(err, "salesdb: prepare insert for %s", table)
	}
	defer stmt.Close() //nolint:errcheck

	for _, row := range rows {
		args := make([]any, len(header))
		for i := range header {
			if i < len(row) {
				args[i] = row[i]
			} else {
				args[i] = ""
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return eris.Wrapf(err, "salesdb: insert into %s", table)
		}
	}

	return eris.Wrapf(tx.Commit(), "salesdb: commit %s", table)
}

// identifier sanitizes a file stem or column header into a SQL identifier.
func identifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		return "col"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "t_" + out
	}
	return out
}
