package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/textutils"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const rulesSchema = `
CREATE TABLE IF NOT EXISTS merchant_rules (
	merchant_key  TEXT PRIMARY KEY,
	merchant_name TEXT NOT NULL,
	category      TEXT NOT NULL,
	updated_at    TIMESTAMP NOT NULL
)`

// SQLiteRuleStore keeps rules in a SQLite database, one row per merchant
// key.
type SQLiteRuleStore struct {
	db     *sql.DB
	path   string
	logger logging.Logger
}

// NewSQLiteRuleStore opens (and creates if needed) the database at dbPath.
func NewSQLiteRuleStore(dbPath string, logger logging.Logger) (*SQLiteRuleStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), models.PermissionDirectory); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(rulesSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteRuleStore{db: db, path: dbPath, logger: logging.OrDefault(logger)}, nil
}

// LoadRules returns the rules ordered by last update.
func (s *SQLiteRuleStore) LoadRules() ([]models.MerchantRule, error) {
	rows, err := s.db.Query(`SELECT merchant_name, category, updated_at FROM merchant_rules ORDER BY updated_at, merchant_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []models.MerchantRule
	for rows.Next() {
		var r models.MerchantRule
		if err := rows.Scan(&r.MerchantName, &r.Category, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		r.Timestamp = r.Timestamp.UTC()
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	s.logger.Debug("Loaded merchant rules", logging.F(logging.FieldFile, s.path), logging.F(logging.FieldCount, len(rules)))
	return rules, nil
}

// SaveRules upserts every rule and deletes rows for merchants no longer in
// the set, in one transaction.
func (s *SQLiteRuleStore) SaveRules(rules []models.MerchantRule) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `CREATE TEMP TABLE IF NOT EXISTS kept_keys (merchant_key TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("failed to prepare save: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM kept_keys`); err != nil {
		return fmt.Errorf("failed to prepare save: %w", err)
	}

	for _, r := range rules {
		key := textutils.MerchantKey(r.MerchantName)
		if key == "" {
			continue
		}
		ts := r.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO merchant_rules (merchant_key, merchant_name, category, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(merchant_key) DO UPDATE SET
				merchant_name = excluded.merchant_name,
				category = excluded.category,
				updated_at = excluded.updated_at
		`, key, r.MerchantName, r.Category, ts.UTC())
		if err != nil {
			return fmt.Errorf("failed to save rule %q: %w", r.MerchantName, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO kept_keys (merchant_key) VALUES (?)`, key); err != nil {
			return fmt.Errorf("failed to save rule %q: %w", r.MerchantName, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM merchant_rules WHERE merchant_key NOT IN (SELECT merchant_key FROM kept_keys)`); err != nil {
		return fmt.Errorf("failed to prune rules: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rules: %w", err)
	}
	s.logger.Debug("Saved merchant rules", logging.F(logging.FieldFile, s.path), logging.F(logging.FieldCount, len(rules)))
	return nil
}

// Close closes the database connection.
func (s *SQLiteRuleStore) Close() error {
	return s.db.Close()
}
