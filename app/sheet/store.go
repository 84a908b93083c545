package sheet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/umputun/jobtrack/app/remote"
)

// Header is the first row of every sheet, columns in the fixed order
var Header = []string{"Nama Perusahaan", "Posisi", "Status", "Salary", "Lokasi", "Apply via", "Apply date", "Notes"}

// ErrNoRow is returned for a row index past the last row
var ErrNoRow = errors.New("row out of bounds")

// Store keeps sheets as ordered rows in SQLite. Row positions follow the sheet convention:
// position 1 is the header, data starts at 2, deleting a row moves all rows below it up.
type Store struct {
	db *sqlx.DB
}

type rowRecord struct {
	Pos       int    `db:"pos"`
	Company   string `db:"company"`
	Position  string `db:"position"`
	Status    string `db:"status"`
	Salary    string `db:"salary"`
	Location  string `db:"location"`
	ApplyVia  string `db:"apply_via"`
	ApplyDate string `db:"apply_date"`
	Notes     string `db:"notes"`
}

// NewStore opens the sheet database and creates the schema
func NewStore(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer, positions are rewritten in transactions

	queries := []string{
		"PRAGMA journal_mode=WAL",
		`CREATE TABLE IF NOT EXISTS sheets (
			name TEXT PRIMARY KEY,
			header TEXT NOT NULL,
			created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS rows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sheet TEXT NOT NULL,
			pos INTEGER NOT NULL,
			company TEXT, position TEXT, status TEXT, salary TEXT,
			location TEXT, apply_via TEXT, apply_date TEXT, notes TEXT,
			FOREIGN KEY (sheet) REFERENCES sheets(name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_sheet_pos ON rows(sheet, pos)`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				return nil, fmt.Errorf("failed to initialize schema: %w (also failed to close db: %v)", err, closeErr)
			}
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure creates the sheet with its header row if missing. Returns true if the sheet was created.
func (s *Store) Ensure(ctx context.Context, sheet string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO sheets (name, header, created_at) VALUES (?, ?, ?)`,
		sheet, strings.Join(Header, "\t"), time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check sheet %q: %w", sheet, err)
	}
	if n > 0 {
		log.Printf("[INFO] created sheet %q", sheet)
	}
	return n > 0, nil
}

// Rows returns all data rows of the sheet in order
func (s *Store) Rows(ctx context.Context, sheet string) ([]remote.Row, error) {
	var recs []rowRecord
	err := s.db.SelectContext(ctx, &recs, `SELECT pos, company, position, status, salary, location, apply_via, apply_date, notes
		FROM rows WHERE sheet = ? ORDER BY pos`, sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	res := make([]remote.Row, 0, len(recs))
	for _, r := range recs {
		res = append(res, remote.Row{RowIndex: r.Pos, Fields: remote.Fields{
			Company: r.Company, Position: r.Position, Status: r.Status, Salary: r.Salary,
			Location: r.Location, ApplyVia: r.ApplyVia, ApplyDate: r.ApplyDate, Notes: r.Notes,
		}})
	}
	return res, nil
}

// Append adds a row after the last one and returns its position
func (s *Store) Append(ctx context.Context, sheet string, f remote.Fields) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var last int
	if err := tx.GetContext(ctx, &last, `SELECT COALESCE(MAX(pos), 1) FROM rows WHERE sheet = ?`, sheet); err != nil {
		return 0, fmt.Errorf("failed to find last row of %q: %w", sheet, err)
	}
	rec := recordFromFields(last+1, sheet, f)
	if _, err := tx.NamedExecContext(ctx, `INSERT INTO rows
		(sheet, pos, company, position, status, salary, location, apply_via, apply_date, notes)
		VALUES (:sheet, :pos, :company, :position, :status, :salary, :location, :apply_via, :apply_date, :notes)`, rec); err != nil {
		return 0, fmt.Errorf("failed to append to %q: %w", sheet, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return last + 1, nil
}

// Update overwrites the whole row at pos
func (s *Store) Update(ctx context.Context, sheet string, pos int, f remote.Fields) error {
	rec := recordFromFields(pos, sheet, f)
	res, err := s.db.NamedExecContext(ctx, `UPDATE rows SET company = :company, position = :position, status = :status,
		salary = :salary, location = :location, apply_via = :apply_via, apply_date = :apply_date, notes = :notes
		WHERE sheet = :sheet AND pos = :pos`, rec)
	if err != nil {
		return fmt.Errorf("failed to update row %d of %q: %w", pos, sheet, err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return fmt.Errorf("update row %d of %q: %w", pos, sheet, ErrNoRow)
	}
	return nil
}

// Delete removes the row at pos and moves the rows below it up by one
func (s *Store) Delete(ctx context.Context, sheet string, pos int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	res, err := tx.ExecContext(ctx, `DELETE FROM rows WHERE sheet = ? AND pos = ?`, sheet, pos)
	if err != nil {
		return fmt.Errorf("failed to delete row %d of %q: %w", pos, sheet, err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return fmt.Errorf("delete row %d of %q: %w", pos, sheet, ErrNoRow)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE rows SET pos = pos - 1 WHERE sheet = ? AND pos > ?`, sheet, pos); err != nil {
		return fmt.Errorf("failed to shift rows of %q: %w", sheet, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type namedRow struct {
	Sheet string `db:"sheet"`
	rowRecord
}

func recordFromFields(pos int, sheet string, f remote.Fields) namedRow {
	return namedRow{Sheet: sheet, rowRecord: rowRecord{
		Pos: pos, Company: f.Company, Position: f.Position, Status: f.Status, Salary: f.Salary,
		Location: f.Location, ApplyVia: f.ApplyVia, ApplyDate: f.ApplyDate, Notes: f.Notes,
	}}
}
