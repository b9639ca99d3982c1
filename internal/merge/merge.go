// Package merge folds local history, favorites, added foods and remote search
// results into one ordered, deduplicated display list.
package merge

import (
	"sort"
	"strings"

	"github.com/hyperjump/taberu/internal/models"
	"github.com/hyperjump/taberu/pkg/utils"
)

// DefaultHistoryLimit is how many of the most recent history entries are considered.
const DefaultHistoryLimit = 100

// Candidate is a local record with the meal type it was logged under, if any.
type Candidate struct {
	Food     *models.Food
	MealType models.MealType
}

// Input is everything Build needs for one rendering of the list.
type Input struct {
	Tab          models.Tab
	Query        string
	History      []*models.Entry
	Favorites    []*models.Food
	Added        []*models.Food
	Remote       []*models.Food
	HistoryLimit int
}

// RecentHistory returns history most recent first, capped to limit entries.
// limit <= 0 uses DefaultHistoryLimit. The input slice is not modified.
func RecentHistory(history []*models.Entry, limit int) []*models.Entry {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	sorted := make([]*models.Entry, 0, len(history))
	for _, e := range history {
		if e != nil && e.Food != nil {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].LoggedAt.After(sorted[j].LoggedAt) })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// Candidates selects the base candidate set for tab.
func Candidates(in *Input) []Candidate {
	switch in.Tab {
	case models.TabFavorites:
		return fromFoods(in.Favorites)
	case models.TabAdded:
		return fromFoods(in.Added)
	}
	recent := RecentHistory(in.History, in.HistoryLimit)
	out := make([]Candidate, 0, len(recent))
	for _, e := range recent {
		out = append(out, Candidate{Food: e.Food, MealType: e.MealType})
	}
	return out
}

func fromFoods(foods []*models.Food) []Candidate {
	out := make([]Candidate, 0, len(foods))
	for _, f := range foods {
		if f != nil {
			out = append(out, Candidate{Food: f})
		}
	}
	return out
}

// Matches reports whether c contains query as a case-insensitive substring of
// "name brand mealType". An empty query matches everything.
func Matches(c Candidate, query string) bool {
	q := utils.Fold(query)
	if q == "" {
		return true
	}
	composite := strings.ToLower(c.Food.Name + " " + c.Food.Brand + " " + string(c.MealType))
	return strings.Contains(composite, q)
}

// Filter returns the candidates matching query, keeping order.
func Filter(cands []Candidate, query string) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if Matches(c, query) {
			out = append(out, c)
		}
	}
	return out
}

// Build produces the display list: filtered local candidates first, then remote
// results when the query is long enough to have been searched. The first record
// for each identity key wins and later duplicates are dropped whole.
func Build(in *Input) []*models.Food {
	local := Filter(Candidates(in), in.Query)
	out := make([]*models.Food, 0, len(local)+len(in.Remote))
	seen := make(map[models.Key]struct{}, cap(out))
	add := func(f *models.Food) {
		k := f.Key()
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	for _, c := range local {
		add(c.Food)
	}
	if models.QueryActive(in.Query) {
		for _, f := range in.Remote {
			if f != nil {
				add(f)
			}
		}
	}
	return out
}
