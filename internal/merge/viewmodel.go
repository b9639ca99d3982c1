package merge

import (
	"strings"
	"sync"

	"github.com/hyperjump/taberu/internal/models"
)

// ViewModel holds the state behind one food list: local sources, the selected
// tab, the current query and the remote results for that query.
type ViewModel struct {
	mu          sync.Mutex
	limit       int
	tab         models.Tab
	query       string
	history     []*models.Entry
	favorites   []*models.Food
	added       []*models.Food
	remote      []*models.Food
	remoteQuery string
}

// NewViewModel creates an empty view model on the recent tab.
func NewViewModel(historyLimit int) *ViewModel {
	return &ViewModel{limit: historyLimit, tab: models.TabRecent}
}

// SetLocal replaces the local sources.
func (v *ViewModel) SetLocal(history []*models.Entry, favorites, added []*models.Food) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.history, v.favorites, v.added = history, favorites, added
}

// SetTab selects the base candidate set.
func (v *ViewModel) SetTab(tab models.Tab) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tab = tab
}

// SetQuery changes the query. Remote results for a different query are dropped.
func (v *ViewModel) SetQuery(query string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = strings.TrimSpace(query)
	if v.remoteQuery != v.query {
		v.remote, v.remoteQuery = nil, ""
	}
}

// SetRemote stores results for query. It reports false and ignores them when
// query is no longer the current one.
func (v *ViewModel) SetRemote(query string, results []*models.Food) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	query = strings.TrimSpace(query)
	if query != v.query {
		return false
	}
	v.remote, v.remoteQuery = results, query
	return true
}

// Query returns the current query.
func (v *ViewModel) Query() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// Items builds the display list from the current state.
func (v *ViewModel) Items() []*models.Food {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Build(&Input{
		Tab:          v.tab,
		Query:        v.query,
		History:      v.history,
		Favorites:    v.favorites,
		Added:        v.added,
		Remote:       v.remote,
		HistoryLimit: v.limit,
	})
}
