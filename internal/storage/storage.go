// Package storage defines the persistence interface for history, favorites and added foods.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hyperjump/taberu/internal/models"
)

// ErrNotFound is returned when a keyed row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines food log persistence operations.
type Store interface {
	// History
	AddEntry(ctx context.Context, food *models.Food, meal models.MealType, at time.Time) (*models.Entry, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Entry, error)
	ListToday(ctx context.Context, now time.Time) ([]*models.Entry, error)
	CountEntries(ctx context.Context) (int64, error)

	// Favorites, keyed by identity key
	AddFavorite(ctx context.Context, food *models.Food) error
	RemoveFavorite(ctx context.Context, key models.Key) error
	ListFavorites(ctx context.Context) ([]*models.Food, error)

	// Manually added foods, keyed by identity key
	AddFood(ctx context.Context, food *models.Food) error
	ListAdded(ctx context.Context) ([]*models.Food, error)

	Close() error
}

// Local is the local half of the merge input.
type Local struct {
	History   []*models.Entry
	Favorites []*models.Food
	Added     []*models.Food
}

// LoadLocal reads the recent history and both food lists in one go.
func LoadLocal(ctx context.Context, s Store, historyLimit int) (*Local, error) {
	history, err := s.ListRecent(ctx, historyLimit)
	if err != nil {
		return nil, err
	}
	favorites, err := s.ListFavorites(ctx)
	if err != nil {
		return nil, err
	}
	added, err := s.ListAdded(ctx)
	if err != nil {
		return nil, err
	}
	return &Local{History: history, Favorites: favorites, Added: added}, nil
}
