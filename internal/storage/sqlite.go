// Package storage provides SQLite implementation of the Store interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/taberu/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist. ":memory:" opens a private in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a second connection to :memory: would see an empty database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		brand TEXT NOT NULL,
		meal_type TEXT NOT NULL,
		food TEXT NOT NULL,
		logged_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_logged_at ON entries(logged_at);

	CREATE TABLE IF NOT EXISTS favorites (
		food_key TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		brand TEXT NOT NULL,
		food TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS added_foods (
		food_key TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		brand TEXT NOT NULL,
		food TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// AddEntry logs food under meal at the given time and returns the stored entry.
func (s *SQLiteStore) AddEntry(ctx context.Context, food *models.Food, meal models.MealType, at time.Time) (*models.Entry, error) {
	if food == nil {
		return nil, fmt.Errorf("cannot log a nil food")
	}
	if at.IsZero() {
		at = time.Now()
	}
	if meal == "" {
		meal = models.MealTypeAt(at)
	}
	food = food.WithSource(models.SourceHistory)
	foodJSON, err := json.Marshal(food)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal food: %w", err)
	}

	entry := &models.Entry{
		ID:       uuid.NewString(),
		Food:     food,
		MealType: meal,
		LoggedAt: at,
	}
	query, args, err := sq.Insert("entries").
		Columns("id", "name", "brand", "meal_type", "food", "logged_at").
		Values(entry.ID, food.Name, food.Brand, string(meal), string(foodJSON), at.UnixMilli()).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to insert entry: %w", err)
	}
	return entry, nil
}

// ListRecent returns up to limit entries, most recent first. limit <= 0 returns all.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]*models.Entry, error) {
	b := selectEntries().OrderBy("logged_at DESC", "rowid DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return s.queryEntries(ctx, b)
}

// ListToday returns the entries logged on now's calendar day (in now's location), oldest first.
func (s *SQLiteStore) ListToday(ctx context.Context, now time.Time) ([]*models.Entry, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)
	b := selectEntries().
		Where(sq.GtOrEq{"logged_at": start.UnixMilli()}).
		Where(sq.Lt{"logged_at": end.UnixMilli()}).
		OrderBy("logged_at ASC", "rowid ASC")
	return s.queryEntries(ctx, b)
}

func selectEntries() sq.SelectBuilder {
	return sq.Select("id", "meal_type", "food", "logged_at").From("entries")
}

func (s *SQLiteStore) queryEntries(ctx context.Context, b sq.SelectBuilder) ([]*models.Entry, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*models.Entry{}
	for rows.Next() {
		var (
			e        models.Entry
			meal     string
			foodJSON string
			loggedAt int64
		)
		if err := rows.Scan(&e.ID, &meal, &foodJSON, &loggedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(foodJSON), &e.Food); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry %s: %w", e.ID, err)
		}
		e.MealType = models.MealType(meal)
		e.LoggedAt = time.UnixMilli(loggedAt)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// CountEntries returns the total number of history entries.
func (s *SQLiteStore) CountEntries(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&count)
	return count, err
}

// AddFavorite stores food as a favorite, replacing one with the same identity key.
func (s *SQLiteStore) AddFavorite(ctx context.Context, food *models.Food) error {
	return s.upsertFood(ctx, "favorites", food, "")
}

// RemoveFavorite deletes the favorite with key. Returns ErrNotFound if there is none.
func (s *SQLiteStore) RemoveFavorite(ctx context.Context, key models.Key) error {
	query, args, err := sq.Delete("favorites").Where(sq.Eq{"food_key": key.String()}).ToSql()
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("favorite %q: %w", key.Name, ErrNotFound)
	}
	return nil
}

// ListFavorites returns favorites, most recently added first.
func (s *SQLiteStore) ListFavorites(ctx context.Context) ([]*models.Food, error) {
	return s.listFoods(ctx, "favorites")
}

// AddFood stores a manually added food, replacing one with the same identity key.
func (s *SQLiteStore) AddFood(ctx context.Context, food *models.Food) error {
	return s.upsertFood(ctx, "added_foods", food, models.SourceManual)
}

// ListAdded returns manually added foods, most recently added first.
func (s *SQLiteStore) ListAdded(ctx context.Context) ([]*models.Food, error) {
	return s.listFoods(ctx, "added_foods")
}

func (s *SQLiteStore) upsertFood(ctx context.Context, table string, food *models.Food, src models.Source) error {
	if food == nil {
		return fmt.Errorf("cannot store a nil food")
	}
	if src != "" {
		food = food.WithSource(src)
	}
	foodJSON, err := json.Marshal(food)
	if err != nil {
		return fmt.Errorf("failed to marshal food: %w", err)
	}
	query, args, err := sq.Replace(table).
		Columns("food_key", "name", "brand", "food", "created_at").
		Values(food.Key().String(), food.Name, food.Brand, string(foodJSON), time.Now().UnixMilli()).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to store food in %s: %w", table, err)
	}
	return nil
}

func (s *SQLiteStore) listFoods(ctx context.Context, table string) ([]*models.Food, error) {
	query, args, err := sq.Select("food").From(table).OrderBy("created_at DESC", "rowid DESC").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	foods := []*models.Food{}
	for rows.Next() {
		var foodJSON string
		if err := rows.Scan(&foodJSON); err != nil {
			return nil, err
		}
		var f models.Food
		if err := json.Unmarshal([]byte(foodJSON), &f); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s row: %w", table, err)
		}
		foods = append(foods, &f)
	}
	return foods, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
