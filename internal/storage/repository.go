package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ledger/internal/core"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

var _ Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations before the main pool opens the file.
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// withTx runs fn in a transaction that is committed only if fn succeeds.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CreateContact implements ContactWriter
func (r *SQLiteRepository) CreateContact(ctx context.Context, c core.Contact) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		return insertContact(ctx, tx, c)
	})
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "Contact saved to SQLite", "id", c.ID, "name", c.Name)
	return nil
}

func insertContact(ctx context.Context, tx *sql.Tx, c core.Contact) error {
	if err := c.Validate(); err != nil {
		return err
	}
	key := core.NameKey(c.Name)

	var existing core.Contact
	var createdAt string
	err := tx.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM contacts WHERE name_key = ?`, key,
	).Scan(&existing.ID, &existing.Name, &createdAt)
	switch {
	case err == nil:
		if existing.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return fmt.Errorf("parse contact %s created_at: %w", existing.ID, err)
		}
		return &core.DuplicateNameError{Name: c.Name, Existing: existing}
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check contact name: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO contacts (id, name, name_key, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, key, c.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// DeleteContact implements ContactWriter
func (r *SQLiteRepository) DeleteContact(ctx context.Context, id string) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE contact_id = ?`, id); err != nil {
			return fmt.Errorf("delete contact transactions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM project_members WHERE contact_id = ?`, id); err != nil {
			return fmt.Errorf("delete contact membership: %w", err)
		}
		return execOne(ctx, tx, "contact", id, `DELETE FROM contacts WHERE id = ?`, id)
	})
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "Contact deleted from SQLite", "id", id)
	return nil
}

// CreateTransaction implements TransactionWriter
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction, created *core.Contact) error {
	if err := t.Validate(); err != nil {
		return err
	}
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if created != nil {
			if err := insertContact(ctx, tx, *created); err != nil {
				return err
			}
		}
		if err := requireRow(ctx, tx, "contact", t.ContactID, `SELECT 1 FROM contacts WHERE id = ?`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, contact_id, title, amount, txn_date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID, t.ContactID, t.Title, t.Amount,
			t.Date.Format(timeLayout), t.CurrentDate.Format(timeLayout))
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"contact_id", t.ContactID,
		"amount", t.Amount)
	return nil
}

// DeleteTransaction implements TransactionWriter
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return execOne(ctx, tx, "transaction", id, `DELETE FROM transactions WHERE id = ?`, id)
	})
}

// CreateProject implements ProjectWriter
func (r *SQLiteRepository) CreateProject(ctx context.Context, p core.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)`,
			p.ID, p.Name, p.CreatedAt.Format(timeLayout))
		if err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
		for i, contactID := range p.ContactIDs {
			err := requireRow(ctx, tx, "contact", contactID, `SELECT 1 FROM contacts WHERE id = ?`)
			if errors.Is(err, core.ErrNotFound) {
				return &core.ValidationError{Field: "people", Err: fmt.Errorf("%w: %s", core.ErrUnknownMember, contactID)}
			}
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM project_members WHERE contact_id = ?`, contactID); err != nil {
				return fmt.Errorf("leave previous project: %w", err)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO project_members (project_id, contact_id, position) VALUES (?, ?, ?)`,
				p.ID, contactID, i)
			if err != nil {
				return fmt.Errorf("insert project member: %w", err)
			}
		}
		return nil
	})
}

// AssignContact implements ProjectWriter
func (r *SQLiteRepository) AssignContact(ctx context.Context, contactID, projectID string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireRow(ctx, tx, "contact", contactID, `SELECT 1 FROM contacts WHERE id = ?`); err != nil {
			return err
		}

		var current string
		err := tx.QueryRowContext(ctx,
			`SELECT project_id FROM project_members WHERE contact_id = ?`, contactID,
		).Scan(&current)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("read membership: %w", err)
		}
		if current == projectID {
			return nil
		}

		if projectID != "" {
			if err := requireRow(ctx, tx, "project", projectID, `SELECT 1 FROM projects WHERE id = ?`); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM project_members WHERE contact_id = ?`, contactID); err != nil {
			return fmt.Errorf("leave previous project: %w", err)
		}
		if projectID == "" {
			return nil
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO project_members (project_id, contact_id, position)
			 SELECT ?, ?, COALESCE(MAX(position) + 1, 0) FROM project_members WHERE project_id = ?`,
			projectID, contactID, projectID)
		if err != nil {
			return fmt.Errorf("insert project member: %w", err)
		}
		return nil
	})
}

// DeleteProject implements ProjectWriter
func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM project_members WHERE project_id = ?`, id); err != nil {
			return fmt.Errorf("clear project members: %w", err)
		}
		return execOne(ctx, tx, "project", id, `DELETE FROM projects WHERE id = ?`, id)
	})
}

// Snapshot implements SnapshotReader. All tables are read in one
// transaction so the result is consistent.
func (r *SQLiteRepository) Snapshot(ctx context.Context) (*core.Snapshot, error) {
	var snap *core.Snapshot
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		contacts, err := readContacts(ctx, tx)
		if err != nil {
			return err
		}
		txns, err := readTransactions(ctx, tx)
		if err != nil {
			return err
		}
		projects, err := readProjects(ctx, tx)
		if err != nil {
			return err
		}
		snap = core.NewSnapshot(contacts, txns, projects)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return snap, nil
}

func readContacts(ctx context.Context, tx *sql.Tx) ([]core.Contact, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name, created_at FROM contacts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var out []core.Contact
	for rows.Next() {
		var c core.Contact
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		if c.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("contact %s created_at: %w", c.ID, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func readTransactions(ctx context.Context, tx *sql.Tx) ([]core.Transaction, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, contact_id, title, amount, txn_date, created_at FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var date, createdAt string
		if err := rows.Scan(&t.ID, &t.ContactID, &t.Title, &t.Amount, &date, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = time.Parse(timeLayout, date); err != nil {
			return nil, fmt.Errorf("transaction %s date: %w", t.ID, err)
		}
		if t.CurrentDate, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("transaction %s created_at: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func readProjects(ctx context.Context, tx *sql.Tx) ([]core.Project, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name, created_at FROM projects ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	var out []core.Project
	index := map[string]int{}
	for rows.Next() {
		var p core.Project
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan project: %w", err)
		}
		if p.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("project %s created_at: %w", p.ID, err)
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	members, err := tx.QueryContext(ctx,
		`SELECT project_id, contact_id FROM project_members ORDER BY project_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query project members: %w", err)
	}
	defer members.Close()
	for members.Next() {
		var projectID, contactID string
		if err := members.Scan(&projectID, &contactID); err != nil {
			return nil, fmt.Errorf("scan project member: %w", err)
		}
		if i, ok := index[projectID]; ok {
			out[i].ContactIDs = append(out[i].ContactIDs, contactID)
		}
	}
	return out, members.Err()
}

// Setting implements SettingsStore
func (r *SQLiteRepository) Setting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read setting %s: %w", key, err)
	}
	return value, true, nil
}

// PutSetting implements SettingsStore
func (r *SQLiteRepository) PutSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}

func requireRow(ctx context.Context, tx *sql.Tx, kind, id, query string) error {
	var one int
	err := tx.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return core.NotFound(kind, id)
	}
	if err != nil {
		return fmt.Errorf("look up %s: %w", kind, err)
	}
	return nil
}

func execOne(ctx context.Context, tx *sql.Tx, kind, id, query string, args ...any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if n == 0 {
		return core.NotFound(kind, id)
	}
	return nil
}
