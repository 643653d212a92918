package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/achrafidrissi/urc/internal/models"
)

// SQLiteStore handles SQLite database operations. It is the DataStore used
// in development when no DATABASE_URL is configured.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/urc.db". ":memory:" is accepted
// for tests.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/urc.db"
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		dbPath += "?_journal_mode=WAL&_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		created_on DATETIME NOT NULL,
		last_login DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateUser creates a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	now := time.Now().UTC()
	id := uuid.New()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password, created_on, last_login)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id.String(), username, email, passwordHash, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	return &models.User{
		ID:        id,
		Username:  username,
		Email:     email,
		CreatedAt: now,
		LastLogin: now,
	}, nil
}

// GetUserByUsername retrieves a user and their password hash.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*models.User, string, error) {
	var (
		idStr string
		user  models.User
		hash  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password, created_on, last_login
		FROM users WHERE username = ?
	`, username).Scan(&idStr, &user.Username, &user.Email, &hash, &user.CreatedAt, &user.LastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", err
	}

	user.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, "", err
	}
	return &user, hash, nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var (
		idStr string
		user  models.User
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, created_on, last_login
		FROM users WHERE id = ?
	`, id.String()).Scan(&idStr, &user.Username, &user.Email, &user.CreatedAt, &user.LastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	user.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users, most recently active first.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, email, created_on, last_login
		FROM users ORDER BY last_login DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var (
			idStr string
			user  models.User
		)
		if err := rows.Scan(&idStr, &user.Username, &user.Email, &user.CreatedAt, &user.LastLogin); err != nil {
			return nil, err
		}
		if user.ID, err = uuid.Parse(idStr); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// TouchLastLogin updates a user's last login time.
func (s *SQLiteStore) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, time.Now().UTC(), id.String())
	return err
}

// CountUsers returns the total number of users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
