package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"taskboard/internal/models"
)

// SQLiteStorage пишет снимки состояния в файл SQLite. Это только экспорт:
// рабочее состояние живёт в памяти и при старте из файла не читается.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(ctx context.Context, dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ошибка создания каталога %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия БД: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStorage{db: db}, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	tables := []struct {
		name string
		ddl  string
	}{
		{"tasks", `
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			due_date TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT 'medium',
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			assigned_to TEXT
		)`},
		{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			attributes TEXT
		)`},
		{"snapshot_meta", `
		CREATE TABLE IF NOT EXISTS snapshot_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`},
	}

	for _, t := range tables {
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("ошибка создания таблицы %s: %w", t.name, err)
		}
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SaveSnapshot заменяет предыдущий экспорт целиком в одной транзакции.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, snap models.Snapshot) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"tasks", "users", "snapshot_meta"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("ошибка очистки %s: %w", table, err)
		}
	}

	for i, task := range snap.Tasks {
		var assignedTo sql.NullString
		if task.AssignedTo != nil {
			assignedTo = sql.NullString{String: *task.AssignedTo, Valid: true}
		}
		_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (id, position, title, description, due_date, priority, completed, assigned_to)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			task.ID, i, task.Title, task.Description, task.DueDate,
			string(task.Priority), task.IsCompleted, assignedTo,
		)
		if err != nil {
			return fmt.Errorf("ошибка записи задачи %s: %w", task.ID, err)
		}
	}

	for i, user := range snap.Users {
		var attrs sql.NullString
		if len(user.Attributes) > 0 {
			raw, jsonErr := json.Marshal(user.Attributes)
			if jsonErr != nil {
				err = fmt.Errorf("ошибка сериализации атрибутов пользователя %s: %w", user.ID, jsonErr)
				return err
			}
			attrs = sql.NullString{String: string(raw), Valid: true}
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO users (id, position, name, attributes) VALUES (?, ?, ?, ?)",
			user.ID, i, user.Name, attrs,
		)
		if err != nil {
			return fmt.Errorf("ошибка записи пользователя %s: %w", user.ID, err)
		}
	}

	meta := map[string]string{
		"filter":   string(snap.Filter),
		"taken_at": snap.TakenAt.UTC().Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err = tx.ExecContext(ctx, "INSERT INTO snapshot_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("ошибка записи метаданных: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// LoadSnapshot читает последний экспорт в исходном порядке.
func (s *SQLiteStorage) LoadSnapshot(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot

	tasks, err := s.loadTasks(ctx)
	if err != nil {
		return snap, err
	}
	users, err := s.loadUsers(ctx)
	if err != nil {
		return snap, err
	}
	snap.Tasks = tasks
	snap.Users = users

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM snapshot_meta")
	if err != nil {
		return snap, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return snap, err
		}
		switch key {
		case "filter":
			snap.Filter = models.Filter(value)
		case "taken_at":
			if snap.TakenAt, err = time.Parse(time.RFC3339Nano, value); err != nil {
				return snap, fmt.Errorf("некорректное время снимка %q: %w", value, err)
			}
		}
	}
	return snap, rows.Err()
}

func (s *SQLiteStorage) loadTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, title, description, due_date, priority, completed, assigned_to
	FROM tasks ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		var priority string
		var assignedTo sql.NullString

		err := rows.Scan(
			&task.ID, &task.Title, &task.Description, &task.DueDate,
			&priority, &task.IsCompleted, &assignedTo,
		)
		if err != nil {
			return nil, err
		}

		task.Priority = models.Priority(priority)
		if assignedTo.Valid {
			task.AssignedTo = &assignedTo.String
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStorage) loadUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, attributes FROM users ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		var attrs sql.NullString
		if err := rows.Scan(&user.ID, &user.Name, &attrs); err != nil {
			return nil, err
		}
		if attrs.Valid && attrs.String != "" {
			if err := json.Unmarshal([]byte(attrs.String), &user.Attributes); err != nil {
				return nil, fmt.Errorf("некорректные атрибуты пользователя %s: %w", user.ID, err)
			}
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
