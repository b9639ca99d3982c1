package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/taberu/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func food(name, brand string) *models.Food {
	f := &models.Food{Name: name, Brand: brand, Calories: 100, Protein: 1.5, Sodium: models.Float(40)}
	f.Normalize()
	return f
}

func TestSQLiteStore_Entries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)

	for i, name := range []string{"Oats", "Milk", "Apple"} {
		e, err := store.AddEntry(ctx, food(name, "Acme"), models.MealBreakfast, base.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		if e.ID == "" {
			t.Error("entry ID is empty")
		}
		if e.Food.Source != models.SourceHistory {
			t.Errorf("source = %q, want %q", e.Food.Source, models.SourceHistory)
		}
	}

	recent, err := store.ListRecent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("ListRecent(2) returned %d entries", len(recent))
	}
	if recent[0].Food.Name != "Apple" || recent[1].Food.Name != "Milk" {
		t.Errorf("order = %q, %q; want Apple, Milk", recent[0].Food.Name, recent[1].Food.Name)
	}
	if recent[0].MealType != models.MealBreakfast {
		t.Errorf("meal = %q, want %q", recent[0].MealType, models.MealBreakfast)
	}
	if !recent[0].LoggedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("logged at %v, want %v", recent[0].LoggedAt, base.Add(2*time.Hour))
	}
	if recent[0].Food.Sodium == nil || *recent[0].Food.Sodium != 40 {
		t.Errorf("sodium = %v, want 40", recent[0].Food.Sodium)
	}
	if recent[0].Food.Fiber != nil {
		t.Errorf("fiber = %v, want nil", *recent[0].Food.Fiber)
	}

	all, err := store.ListRecent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("ListRecent(0) returned %d entries, want 3", len(all))
	}

	n, err := store.CountEntries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("CountEntries = %d, want 3", n)
	}
}

func TestSQLiteStore_ListToday(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	for _, e := range []struct {
		name string
		meal models.MealType
		at   time.Time
	}{
		{"Yesterday", models.MealDinner, now.AddDate(0, 0, -1)},
		{"Lunch", models.MealLunch, now},
		{"Breakfast", models.MealBreakfast, now.Add(-4 * time.Hour)},
		{"Tomorrow", models.MealBreakfast, now.AddDate(0, 0, 1)},
	} {
		if _, err := store.AddEntry(ctx, food(e.name, "x"), e.meal, e.at); err != nil {
			t.Fatal(err)
		}
	}

	today, err := store.ListToday(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(today) != 2 {
		t.Fatalf("ListToday returned %d entries, want 2", len(today))
	}
	if today[0].Food.Name != "Breakfast" || today[1].Food.Name != "Lunch" {
		t.Errorf("order = %q, %q; want Breakfast, Lunch", today[0].Food.Name, today[1].Food.Name)
	}
}

func TestSQLiteStore_AddEntryDefaultsMeal(t *testing.T) {
	store := newTestStore(t)
	at := time.Date(2026, 3, 10, 19, 30, 0, 0, time.Local)
	e, err := store.AddEntry(context.Background(), food("Soup", "x"), "", at)
	if err != nil {
		t.Fatal(err)
	}
	if e.MealType != models.MealDinner {
		t.Errorf("meal = %q, want %q", e.MealType, models.MealDinner)
	}

	if _, err := store.AddEntry(context.Background(), nil, models.MealLunch, at); err == nil {
		t.Error("AddEntry(nil) should fail")
	}
}

func TestSQLiteStore_Favorites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, f := range []*models.Food{food("Milk", "Acme"), food("Bread", "Baker")} {
		if err := store.AddFavorite(ctx, f); err != nil {
			t.Fatal(err)
		}
	}
	updated := food("MILK", "acme")
	updated.Calories = 64
	if err := store.AddFavorite(ctx, updated); err != nil {
		t.Fatal(err)
	}

	favs, err := store.ListFavorites(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(favs) != 2 {
		t.Fatalf("got %d favorites, want 2: same identity key replaces", len(favs))
	}
	if favs[0].Name != "MILK" || favs[0].Calories != 64 {
		t.Errorf("first favorite = %q %v kcal, want MILK 64 kcal", favs[0].Name, favs[0].Calories)
	}

	if err := store.RemoveFavorite(ctx, models.IdentityKey("milk", "ACME")); err != nil {
		t.Fatal(err)
	}
	if err := store.RemoveFavorite(ctx, models.IdentityKey("milk", "acme")); !errors.Is(err, ErrNotFound) {
		t.Errorf("second remove err = %v, want ErrNotFound", err)
	}

	favs, err = store.ListFavorites(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(favs) != 1 || favs[0].Name != "Bread" {
		t.Errorf("favorites after remove = %v, want [Bread]", favs)
	}
}

func TestSQLiteStore_AddedFoods(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	added, err := store.ListAdded(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if added == nil || len(added) != 0 {
		t.Errorf("ListAdded on empty store = %v, want empty non-nil", added)
	}

	f := food("Granola", "Home")
	f.Basis = models.BasisPerServing
	f.ServingDescription = "1 cup"
	if err := store.AddFood(ctx, f); err != nil {
		t.Fatal(err)
	}

	added, err = store.ListAdded(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 1 {
		t.Fatalf("got %d added foods, want 1", len(added))
	}
	got := added[0]
	if got.Source != models.SourceManual {
		t.Errorf("source = %q, want %q", got.Source, models.SourceManual)
	}
	if got.Basis != models.BasisPerServing {
		t.Errorf("basis = %q, want %q", got.Basis, models.BasisPerServing)
	}
	if got.ServingDescription != "1 cup" {
		t.Errorf("serving = %q, want %q", got.ServingDescription, "1 cup")
	}
}

func TestLoadLocal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now()
	for i := 0; i < 5; i++ {
		if _, err := store.AddEntry(ctx, food("Item", "x"), models.MealSnack, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.AddFavorite(ctx, food("Fav", "x")); err != nil {
		t.Fatal(err)
	}
	if err := store.AddFood(ctx, food("Added", "x")); err != nil {
		t.Fatal(err)
	}

	local, err := LoadLocal(ctx, store, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(local.History) != 3 || len(local.Favorites) != 1 || len(local.Added) != 1 {
		t.Errorf("local = %d history, %d favorites, %d added; want 3, 1, 1",
			len(local.History), len(local.Favorites), len(local.Added))
	}
}

func TestNewSQLiteStore_InMemory(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := store.AddEntry(context.Background(), food("Tea", "x"), models.MealSnack, time.Now()); err != nil {
		t.Fatal(err)
	}
	n, err := store.CountEntries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("CountEntries = %d, want 1", n)
	}
}
