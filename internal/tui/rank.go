package tui

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pane-dev/pane/internal/skills"
)

// Entry is the searchable text of one skill.
type Entry struct {
	ID          string
	Name        string
	Description string
	Tags        []string
}

// EntryFor extracts the searchable fields of s.
func EntryFor(s skills.Skill) Entry {
	return Entry{ID: s.ID, Name: s.Name, Description: s.Description, Tags: s.Tags}
}

// Field weights: a hit on the name outranks the same hit on the id, which
// outranks a tag.
const (
	weightName = 3
	weightID   = 2
	weightTag  = 1
)

// Match tiers, best first. Within a tier a shorter target scores higher, but
// never enough to climb into the tier above.
const (
	tierExact      = 100
	tierPrefix     = 60
	tierWordPrefix = 40
	tierSubstring  = 25
	tierSubseq     = 5
	tierSpread     = 10

	// descriptionHit is what a plain substring hit in a description is worth.
	descriptionHit = 1
)

// field is a lowercased search target split into words.
type field struct {
	text  []rune
	words [][]rune
}

func newField(s string) field {
	f := field{text: []rune(strings.ToLower(s))}
	start := -1
	for i, r := range f.text {
		if isSeparator(r) {
			if start >= 0 {
				f.words = append(f.words, f.text[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		f.words = append(f.words, f.text[start:])
	}
	return f
}

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || r == '.' || r == '/' || unicode.IsSpace(r)
}

// lengthBonus rewards targets close in length to the token.
func lengthBonus(token, target []rune) int {
	return max(tierSpread-(len(target)-len(token)), 0)
}

// score rates one query token against f. It returns false when the token
// does not match at all.
func (f field) score(token []rune) (int, bool) {
	switch {
	case len(token) == 0:
		return 0, false
	case runesEqual(token, f.text):
		return tierExact, true
	case hasPrefix(f.text, token):
		return tierPrefix + lengthBonus(token, f.text), true
	}
	for _, w := range f.words[min(1, len(f.words)):] {
		if hasPrefix(w, token) {
			return tierWordPrefix + lengthBonus(token, w), true
		}
	}
	if index(f.text, token) >= 0 {
		return tierSubstring + lengthBonus(token, f.text), true
	}
	if s, ok := subsequence(token, f.text); ok {
		return s, true
	}
	return f.typo(token)
}

// subsequence matches token characters in order, rewarding runs of adjacent
// characters and characters that start a word.
func subsequence(token, text []rune) (int, bool) {
	if len(token) > len(text) {
		return 0, false
	}
	bonus, prev, ti := 0, -2, 0
	for i := 0; i < len(text) && ti < len(token); i++ {
		if text[i] != token[ti] {
			continue
		}
		if i == prev+1 {
			bonus += 2
		}
		if i == 0 || isSeparator(text[i-1]) {
			bonus += 3
		}
		prev = i
		ti++
	}
	if ti < len(token) {
		return 0, false
	}
	return tierSubseq + min(bonus, tierSubstring-tierSubseq-1-tierSpread/3) + lengthBonus(token, text)/3, true
}

// typo accepts a token within a small edit budget of the whole field or of
// one of its words, so "gti" still finds "git".
func (f field) typo(token []rune) (int, bool) {
	budget := min(max((len(token)+2)/3, 1), 3)
	best := budget + 1
	try := func(target []rune) {
		if d := len(target) - len(token); d > budget || -d > budget {
			return
		}
		best = min(best, editDistance(token, target))
	}
	try(f.text)
	for _, w := range f.words {
		try(w)
	}
	if best > budget {
		return 0, false
	}
	return max(tierSubseq-best, 1), true
}

// editDistance is the optimal string alignment distance: insertions,
// deletions, substitutions and adjacent transpositions each cost one.
func editDistance(a, b []rune) int {
	prev2 := make([]int, len(b)+1)
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				cur[j] = min(cur[j], prev2[j-2]+cost)
			}
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[len(b)]
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasPrefix(s, prefix []rune) bool {
	return len(s) >= len(prefix) && runesEqual(s[:len(prefix)], prefix)
}

func index(s, sub []rune) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if runesEqual(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

// indexedEntry is an Entry prepared for repeated scoring.
type indexedEntry struct {
	name, id    field
	tags        []field
	description string
}

func indexEntry(e Entry) indexedEntry {
	ie := indexedEntry{
		name:        newField(e.Name),
		id:          newField(e.ID),
		description: strings.ToLower(e.Description),
	}
	for _, t := range e.Tags {
		ie.tags = append(ie.tags, newField(t))
	}
	return ie
}

// tokenScore is the best weighted score of one token across the entry's
// fields. The description only counts when nothing else matched.
func (ie indexedEntry) tokenScore(token []rune) (int, bool) {
	best, ok := 0, false
	consider := func(f field, weight int) {
		if s, hit := f.score(token); hit && (!ok || s*weight > best) {
			best, ok = s*weight, true
		}
	}
	consider(ie.name, weightName)
	consider(ie.id, weightID)
	for _, t := range ie.tags {
		consider(t, weightTag)
	}
	if !ok && strings.Contains(ie.description, string(token)) {
		best, ok = descriptionHit, true
	}
	return best, ok
}

// entryScore sums the token scores. Every whitespace-separated token of the
// query must match somewhere.
func entryScore(query string, e Entry) (int, bool) {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return 0, true
	}
	ie := indexEntry(e)
	total := 0
	for _, tok := range tokens {
		s, ok := ie.tokenScore([]rune(tok))
		if !ok {
			return 0, false
		}
		total += s
	}
	return total, true
}

// Rank filters and orders entries for query and returns their indices. An
// empty query keeps every entry in its original order. Ties keep the
// original order too.
func Rank(query string, entries []Entry) []int {
	if strings.TrimSpace(query) == "" {
		out := make([]int, len(entries))
		for i := range entries {
			out[i] = i
		}
		return out
	}

	type ranked struct {
		index int
		score int
	}
	var results []ranked
	for i, e := range entries {
		if score, ok := entryScore(query, e); ok {
			results = append(results, ranked{index: i, score: score})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.index
	}
	return out
}
