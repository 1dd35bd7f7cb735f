// Package history records every instruction the local host executes in a
// relational database: sqlite for single-node use, postgres for shared use.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	_ "github.com/lib/pq"   // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrClosed is returned when the history database is closed
var ErrClosed = errors.New("history database is closed")

// Entry is one executed instruction
type Entry struct {
	ID          int64
	Slot        uint64
	UnixTime    int64
	Instruction string
	// Account is the record account the instruction targeted
	Account solana.PublicKey
	// Amount is the amount transferred by a claim
	Amount  uint64
	Success bool
	// Error names the program error of a failed instruction
	Error    string
	Duration time.Duration
}

// Filter narrows List results
type Filter struct {
	Account *solana.PublicKey
	// FailedOnly keeps only failed instructions
	FailedOnly bool
	Limit      int
}

// DB is the instruction history database
type DB struct {
	db     *sql.DB
	driver string
}

var schemas = map[string]string{
	DriverSQLite: `CREATE TABLE IF NOT EXISTS instructions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		slot INTEGER NOT NULL,
		unix_time INTEGER NOT NULL,
		instruction TEXT NOT NULL,
		account TEXT NOT NULL,
		amount TEXT NOT NULL,
		success INTEGER NOT NULL,
		error TEXT NOT NULL,
		duration_ns INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS instructions_account ON instructions(account);`,
	DriverPostgres: `CREATE TABLE IF NOT EXISTS instructions (
		id BIGSERIAL PRIMARY KEY,
		slot BIGINT NOT NULL,
		unix_time BIGINT NOT NULL,
		instruction TEXT NOT NULL,
		account TEXT NOT NULL,
		amount NUMERIC(20) NOT NULL,
		success BOOLEAN NOT NULL,
		error TEXT NOT NULL,
		duration_ns BIGINT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS instructions_account ON instructions(account);`,
}

// Open connects to the history database and creates the schema if needed
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported history driver: %s", driver)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if driver == DriverSQLite {
		// one connection keeps in-memory databases shared and writes serialized
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := sqlDB.ExecContext(ctx, stmt); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("initialize history schema: %w", err)
		}
	}

	return &DB{db: sqlDB, driver: driver}, nil
}

// rebind rewrites ? placeholders to the driver's style
func (h *DB) rebind(query string) string {
	if h.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Record stores e and sets its ID
func (h *DB) Record(ctx context.Context, e *Entry) error {
	if h.db == nil {
		return ErrClosed
	}

	query := h.rebind(`INSERT INTO instructions
		(slot, unix_time, instruction, account, amount, success, error, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	err := h.db.QueryRowContext(ctx, query,
		int64(e.Slot), e.UnixTime, e.Instruction, e.Account.String(),
		strconv.FormatUint(e.Amount, 10), e.Success, e.Error, int64(e.Duration),
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("record instruction: %w", err)
	}
	return nil
}

// List returns entries matching f, newest first
func (h *DB) List(ctx context.Context, f Filter) ([]Entry, error) {
	if h.db == nil {
		return nil, ErrClosed
	}

	var (
		where []string
		args  []any
	)
	if f.Account != nil {
		where = append(where, "account = ?")
		args = append(args, f.Account.String())
	}
	if f.FailedOnly {
		where = append(where, "success = ?")
		args = append(args, false)
	}

	query := `SELECT id, slot, unix_time, instruction, account, amount, success, error, duration_ns
		FROM instructions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := h.db.QueryContext(ctx, h.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list instructions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			slot     int64
			account  string
			amount   string
			duration int64
		)
		if err := rows.Scan(&e.ID, &slot, &e.UnixTime, &e.Instruction, &account, &amount, &e.Success, &e.Error, &duration); err != nil {
			return nil, fmt.Errorf("scan instruction: %w", err)
		}
		e.Slot = uint64(slot)
		e.Duration = time.Duration(duration)
		if e.Account, err = solana.PublicKeyFromBase58(account); err != nil {
			return nil, fmt.Errorf("scan instruction %d account: %w", e.ID, err)
		}
		if e.Amount, err = strconv.ParseUint(amount, 10, 64); err != nil {
			return nil, fmt.Errorf("scan instruction %d amount: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the connection pool
func (h *DB) Close() error {
	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	return err
}
