package catalog

import (
	"sort"
	"strings"
)

// maxSuggestDistance is the largest edit distance a correction may have.
const maxSuggestDistance = 2

// Suggest returns query with each word not present in the catalog's names
// and brands replaced by its closest known word, and whether anything changed.
// Ties prefer the word found in more foods.
func (c *Catalog) Suggest(query string) (string, bool) {
	dict, err := c.dictionary()
	if err != nil || len(dict) == 0 {
		return query, false
	}
	terms := tokenize(query)
	changed := false
	for i, term := range terms {
		if _, ok := dict[term]; ok {
			continue
		}
		if best, ok := closest(term, dict); ok {
			terms[i] = best
			changed = true
		}
	}
	if !changed {
		return query, false
	}
	return strings.Join(terms, " "), true
}

// dictionary maps every indexed name and brand term to its document count.
func (c *Catalog) dictionary() (map[string]uint64, error) {
	dict := make(map[string]uint64)
	for _, field := range []string{fieldName, fieldBrand} {
		fd, err := c.index.FieldDict(field)
		if err != nil {
			return nil, err
		}
		for {
			entry, err := fd.Next()
			if err != nil || entry == nil {
				break
			}
			dict[entry.Term] += entry.Count
		}
		_ = fd.Close()
	}
	return dict, nil
}

func closest(term string, dict map[string]uint64) (string, bool) {
	type candidate struct {
		term     string
		distance int
		count    uint64
	}
	var found []candidate
	for word, count := range dict {
		diff := len(word) - len(term)
		if diff < 0 {
			diff = -diff
		}
		if diff > maxSuggestDistance {
			continue
		}
		if d := levenshtein(term, word); d <= maxSuggestDistance {
			found = append(found, candidate{word, d, count})
		}
	}
	if len(found) == 0 {
		return "", false
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].distance != found[j].distance {
			return found[i].distance < found[j].distance
		}
		if found[i].count != found[j].count {
			return found[i].count > found[j].count
		}
		return found[i].term < found[j].term
	})
	return found[0].term, true
}

// levenshtein is the edit distance between a and b over runes, keeping two rows.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
