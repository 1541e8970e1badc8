package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"deviceinventory/internal/domain"
	"deviceinventory/internal/repository"

	_ "modernc.org/sqlite"
)

const cookieKey = "loan_cookie"

var _ repository.Repository = (*Repository)(nil)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New opens or creates the database at dbPath. ":memory:" gives a private in-memory database.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" would see its own database.
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS devices (
		alias TEXT PRIMARY KEY,
		host TEXT NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		password TEXT NOT NULL DEFAULT '',
		http_port INTEGER,
		https_port INTEGER,
		ssh_port INTEGER,
		model TEXT,
		loan_id INTEGER,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := r.db.Exec(schema)
	return err
}

// ReadDevices loads every alias database entry
func (r *Repository) ReadDevices(ctx context.Context) (map[string]domain.InventoryDevice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT alias, host, username, password, http_port, https_port, ssh_port, model, loan_id
		FROM devices
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	devices := make(map[string]domain.InventoryDevice)
	for rows.Next() {
		var (
			alias, host, username, password string
			httpPort, httpsPort, sshPort    sql.NullInt64
			model                           sql.NullString
			loanID                          sql.NullInt64
		)
		if err := rows.Scan(&alias, &host, &username, &password, &httpPort, &httpsPort, &sshPort, &model, &loanID); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}

		devices[alias] = domain.InventoryDevice{
			Alias: alias,
			Host:  host,
			Credentials: domain.Credentials{
				Username: username,
				Password: domain.Password(password),
			},
			Ports: domain.Ports{
				HTTP:  nullToPort(httpPort),
				HTTPS: nullToPort(httpsPort),
				SSH:   nullToPort(sshPort),
			},
			Model:  nullToString(model),
			LoanID: uint32(nullToInt(loanID)),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate devices: %w", err)
	}

	return devices, nil
}

// WriteDevices replaces the stored entries with the snapshot in one transaction
func (r *Repository) WriteDevices(ctx context.Context, devices map[string]domain.InventoryDevice) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM devices`); err != nil {
		return fmt.Errorf("failed to clear devices: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO devices (alias, host, username, password, http_port, https_port, ssh_port, model, loan_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for alias, d := range devices {
		if strings.TrimSpace(alias) == "" {
			return fmt.Errorf("device %s has an empty alias", d.Host)
		}
		_, err := stmt.ExecContext(ctx,
			alias,
			d.Host,
			d.Username,
			d.Password.Reveal(),
			portToNull(d.HTTP),
			portToNull(d.HTTPS),
			portToNull(d.SSH),
			stringToNull(d.Model),
			intToNull(int64(d.LoanID)),
		)
		if err != nil {
			return fmt.Errorf("failed to insert device %s: %w", alias, err)
		}
	}

	return tx.Commit()
}

// ReadCookie returns the stored loan service session
func (r *Repository) ReadCookie(ctx context.Context) (string, bool, error) {
	var cookie string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, cookieKey).Scan(&cookie)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cookie: %w", err)
	}
	return cookie, true, nil
}

// WriteCookie stores the loan service session, replacing any previous one
func (r *Repository) WriteCookie(ctx context.Context, cookie string) error {
	cookie = strings.TrimSpace(cookie)
	if cookie == "" {
		return errors.New("cookie is empty")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, cookieKey, cookie)
	if err != nil {
		return fmt.Errorf("failed to write cookie: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
