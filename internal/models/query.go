package models

import (
	"fmt"
	"strings"

	"github.com/hyperjump/taberu/pkg/utils"
)

// MinQueryLength is the shortest trimmed free-text query sent to a remote search.
const MinQueryLength = 3

// QueryActive reports whether q is long enough to hit a remote search.
func QueryActive(q string) bool {
	return len([]rune(strings.TrimSpace(q))) >= MinQueryLength
}

// Tab selects the base candidate set of the food list.
type Tab string

const (
	TabRecent    Tab = "recent"
	TabFavorites Tab = "favorites"
	TabAdded     Tab = "added"
)

// ParseTab parses s case-insensitively; empty input yields TabRecent.
func ParseTab(s string) (Tab, error) {
	switch Tab(utils.Fold(s)) {
	case TabRecent, "":
		return TabRecent, nil
	case TabFavorites:
		return TabFavorites, nil
	case TabAdded:
		return TabAdded, nil
	}
	return "", fmt.Errorf("unknown tab %q (want recent, favorites or added)", s)
}
