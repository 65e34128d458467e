package manifest

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"autovo/internal/resolver"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current registry schema version. Bump when the
// schema changes; existing databases must be deleted after a bump.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Registry persists asset to string-reference links across runs so later
// runs and external tools can answer "which strrefs share this file".
type Registry struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// AssetLink is one persisted asset to string-reference association.
type AssetLink struct {
	Asset  string
	StrRef int
	Dialog string
	RunID  string
	Text   string
}

// OpenRegistry initializes or connects to the registry database at path.
func OpenRegistry(path string) (*Registry, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	reg := &Registry{db: db, path: path}
	if err := reg.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return reg, nil
}

// Close closes the underlying database connection.
func (r *Registry) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Record upserts every (asset, strref) pair from lines for one run.
func (r *Registry) Record(ctx context.Context, runID, dialog string, lines []resolver.Line) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin registry tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, `
            INSERT INTO asset_links (asset, strref, dialog, run_id, text)
            VALUES (?, ?, ?, ?, ?)
            ON CONFLICT(asset, strref) DO UPDATE SET
                dialog = excluded.dialog,
                run_id = excluded.run_id,
                text = excluded.text`)
		if err != nil {
			return fmt.Errorf("prepare registry insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, ln := range lines {
			if _, err := stmt.ExecContext(ctx, ln.AssetName, ln.StrRef, dialog, runID, ln.Text); err != nil {
				return fmt.Errorf("record asset %s strref %d: %w", ln.AssetName, ln.StrRef, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit registry tx: %w", err)
		}
		return nil
	})
}

// StrRefs returns every string reference linked to the given asset,
// ascending.
func (r *Registry) StrRefs(ctx context.Context, asset string) ([]int, error) {
	ctx = ensureContext(ctx)
	rows, err := r.db.QueryContext(ctx,
		"SELECT strref FROM asset_links WHERE asset = ? ORDER BY strref", asset)
	if err != nil {
		return nil, fmt.Errorf("query strrefs for %s: %w", asset, err)
	}
	defer func() { _ = rows.Close() }()

	var refs []int
	for rows.Next() {
		var ref int
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("scan strref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// Links returns every persisted link for one dialog, ordered by asset
// then strref.
func (r *Registry) Links(ctx context.Context, dialog string) ([]AssetLink, error) {
	ctx = ensureContext(ctx)
	rows, err := r.db.QueryContext(ctx, `
        SELECT asset, strref, dialog, run_id, text
        FROM asset_links WHERE dialog = ?
        ORDER BY asset, strref`, dialog)
	if err != nil {
		return nil, fmt.Errorf("query links for %s: %w", dialog, err)
	}
	defer func() { _ = rows.Close() }()

	var links []AssetLink
	for rows.Next() {
		var link AssetLink
		if err := rows.Scan(&link.Asset, &link.StrRef, &link.Dialog, &link.RunID, &link.Text); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func (r *Registry) initSchema(ctx context.Context) error {
	var tableExists int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return r.createSchema(ctx)
	}

	var version int
	err = r.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, r.path)
	}
	return nil
}

func (r *Registry) createSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
