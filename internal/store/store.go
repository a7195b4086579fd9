// =============================================================================
// Invoice Combiner - Invoice Archive Store
// =============================================================================
//
// Optional SQLite persistence for combined rows. Every run can append its
// canonical rows to an archive database, which the query command then
// filters by EVSE or processing date. The session ID is unique in the
// archive: re-processing the same invoice files is the normal workflow, so
// duplicate sessions are counted and skipped, never treated as errors and
// never overwritten.
//
// This archive sits outside the merge pipeline. Merging itself never
// deduplicates; the canonical table of a run always reflects its inputs.
//
// =============================================================================

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/ginjaninja78/invoice-combiner/internal/normalize"
)

// =============================================================================
// STORE
// =============================================================================

// Store wraps the SQLite invoice archive.
type Store struct {
	conn *sql.DB
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS invoices (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    evse_id        TEXT,
    session_id     TEXT,
    currency       TEXT,
    price          REAL,
    file_name      TEXT,
    processed_date TIMESTAMP,
    UNIQUE(session_id)
)`

// Open opens (creating if necessary) the archive database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := conn.Exec(createTableSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create invoices table: %w", err)
	}

	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// =============================================================================
// INSERTION
// =============================================================================

// InsertSummary reports how an insert batch went.
type InsertSummary struct {
	// Inserted is the number of rows newly added to the archive.
	Inserted int

	// Skipped is the number of rows whose session ID already existed.
	Skipped int
}

// InsertRows appends canonical rows to the archive. Uniqueness conflicts on
// the session ID are counted as skipped and do not abort the batch.
//
// PARAMETERS:
//   - fileName: The source file, recorded with every row.
//   - rows: The canonical rows of that file.
//
// RETURNS:
//   - A summary of inserted vs. skipped rows.
//   - An error for any failure other than a uniqueness conflict.
func (s *Store) InsertRows(fileName string, rows []normalize.CanonicalRow) (InsertSummary, error) {
	var summary InsertSummary

	stmt, err := s.conn.Prepare(`
		INSERT INTO invoices (evse_id, session_id, currency, price, file_name, processed_date)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return summary, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, row := range rows {
		_, err := stmt.Exec(row.EquipmentID, row.SessionID, row.Currency, row.Price, fileName, now)
		if err != nil {
			if isUniqueViolation(err) {
				summary.Skipped++
				continue
			}
			return summary, fmt.Errorf("failed to insert session %s: %w", row.SessionID, err)
		}
		summary.Inserted++
	}

	return summary, nil
}

// isUniqueViolation reports whether an insert failed on the session_id
// uniqueness constraint.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// =============================================================================
// QUERIES
// =============================================================================

// Invoice is one archived row.
type Invoice struct {
	ID          int
	EquipmentID string
	SessionID   string
	Currency    string
	Price       float64
	FileName    string
	ProcessedAt time.Time
}

const selectColumns = `SELECT id, evse_id, session_id, currency, price, file_name, processed_date FROM invoices`

// All returns every archived invoice row.
func (s *Store) All() ([]Invoice, error) {
	return s.query(selectColumns + ` ORDER BY id`)
}

// ByEquipment returns the archived rows for one EVSE.
func (s *Store) ByEquipment(evseID string) ([]Invoice, error) {
	return s.query(selectColumns+` WHERE evse_id = ? ORDER BY id`, evseID)
}

// ByDateRange returns the rows processed within [since, until].
func (s *Store) ByDateRange(since, until time.Time) ([]Invoice, error) {
	return s.query(selectColumns+` WHERE processed_date BETWEEN ? AND ? ORDER BY id`, since, until)
}

func (s *Store) query(q string, args ...interface{}) ([]Invoice, error) {
	rows, err := s.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.EquipmentID, &inv.SessionID, &inv.Currency, &inv.Price, &inv.FileName, &inv.ProcessedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading invoice rows: %w", err)
	}

	return invoices, nil
}
