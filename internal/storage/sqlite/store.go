package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"taskvault/internal/models"
	"taskvault/internal/storage"
)

// Store wraps access to the SQLite database and exposes high level helpers.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ storage.Store = (*Store)(nil)

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Info("sqlite store ready", slog.String("path", dbPath))
	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func newID() string {
	return uuid.NewString()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS boards (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            user_email TEXT NOT NULL,
            created_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS todos (
            id TEXT PRIMARY KEY,
            board_id TEXT NOT NULL,
            task TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed')),
            is_sub_task BOOLEAN NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL,
            FOREIGN KEY(board_id) REFERENCES boards(id) ON DELETE CASCADE
        );`,
		`CREATE TABLE IF NOT EXISTS projects (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            category TEXT NOT NULL DEFAULT 'Dev',
            tasks INTEGER NOT NULL,
            completed INTEGER NOT NULL DEFAULT 0,
            progress INTEGER NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'In Progress',
            user_email TEXT NOT NULL,
            deadline DATETIME,
            created_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS settings (
            email TEXT PRIMARY KEY,
            name TEXT NOT NULL DEFAULT '',
            theme TEXT NOT NULL DEFAULT 'Deep Blue',
            notif_push BOOLEAN NOT NULL DEFAULT 1,
            notif_email BOOLEAN NOT NULL DEFAULT 0,
            notif_alerts BOOLEAN NOT NULL DEFAULT 1
        );`,
		`CREATE TABLE IF NOT EXISTS tickets (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL,
            issue TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'Open',
            created_at DATETIME NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_boards_owner ON boards(user_email);`,
		`CREATE INDEX IF NOT EXISTS idx_todos_board ON todos(board_id);`,
		`CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(user_email);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// CreateBoard persists a new board for its owner.
func (s *Store) CreateBoard(ctx context.Context, b models.Board) (models.Board, error) {
	b, err := storage.PrepareBoard(b, s.now())
	if err != nil {
		return models.Board{}, err
	}
	b.ID = newID()

	_, err = s.db.ExecContext(ctx, `INSERT INTO boards(id, title, user_email, created_at) VALUES(?, ?, ?, ?)`,
		b.ID, b.Title, b.UserEmail, b.CreatedAt)
	if err != nil {
		return models.Board{}, fmt.Errorf("insert board: %w", err)
	}
	return s.GetBoard(ctx, b.ID)
}

// ListBoards returns the owner's boards ordered by creation.
func (s *Store) ListBoards(ctx context.Context, email string) ([]models.Board, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, user_email, created_at FROM boards
        WHERE user_email = ? ORDER BY rowid`, email)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	boards := []models.Board{}
	for rows.Next() {
		var b models.Board
		if err := rows.Scan(&b.ID, &b.Title, &b.UserEmail, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// GetBoard fetches a single board by id.
func (s *Store) GetBoard(ctx context.Context, id string) (models.Board, error) {
	var b models.Board
	err := s.db.QueryRowContext(ctx, `SELECT id, title, user_email, created_at FROM boards WHERE id = ?`, id).
		Scan(&b.ID, &b.Title, &b.UserEmail, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Board{}, fmt.Errorf("board %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.Board{}, fmt.Errorf("get board: %w", err)
	}
	return b, nil
}

// UpdateBoard renames a board.
func (s *Store) UpdateBoard(ctx context.Context, id, title string) (models.Board, error) {
	title, err := storage.ValidateBoardTitle(title)
	if err != nil {
		return models.Board{}, err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE boards SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return models.Board{}, fmt.Errorf("update board: %w", err)
	}
	if err := expectAffected(res, "board", id); err != nil {
		return models.Board{}, err
	}
	return s.GetBoard(ctx, id)
}

// DeleteBoard removes a board; its todos go with it through the cascade.
func (s *Store) DeleteBoard(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	return expectAffected(res, "board", id)
}

func expectAffected(res sql.Result, kind, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
