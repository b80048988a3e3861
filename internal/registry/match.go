package registry

import (
	"strings"

	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
)

const (
	nameMatchThreshold      = 0.85
	specialtyMatchThreshold = 0.70
)

// MatchesProvider reports whether a registry record refers to the same
// person as a client provider. NPI equality wins outright; otherwise an
// exact normalized name+specialty match, then a fuzzy match with name
// similarity above 0.85 and specialty similarity above 0.70.
func MatchesProvider(p model.Provider, rec ProviderRecord) bool {
	if p.NPI != "" && rec.NPI != "" {
		return p.NPI == rec.NPI
	}

	name := normalizeProviderName(p.Name)
	recName := normalizeProviderName(rec.Name)
	specialty := strings.ToLower(strings.TrimSpace(p.Specialty))
	recSpecialty := strings.ToLower(strings.TrimSpace(rec.Specialty))

	if name == recName && specialty == recSpecialty {
		return true
	}
	return similarity(name, recName) > nameMatchThreshold &&
		partialSimilarity(specialty, recSpecialty) > specialtyMatchThreshold
}

// normalizeProviderName lowercases a provider name and strips titles and
// credential suffixes so "Dr. Jane Smith, MD" and "jane smith" compare equal.
func normalizeProviderName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "dr.")
	name = strings.TrimPrefix(name, "dr ")
	name = strings.ReplaceAll(name, ".", "")
	name = strings.ReplaceAll(name, ",", " ")

	credentials := map[string]bool{
		"md": true, "do": true, "np": true, "pa": true,
		"phd": true, "dds": true, "dpm": true, "rn": true,
	}
	fields := strings.Fields(name)
	for len(fields) > 1 && credentials[fields[len(fields)-1]] {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

// similarity returns a Levenshtein ratio in [0, 1]; 1 means equal.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// partialSimilarity returns the best similarity of the shorter string
// against any equal-length window of the longer one, so "cardiology"
// still matches "cardiology and electrophysiology".
func partialSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		if len(rb) == 0 {
			return 1
		}
		return 0
	}
	best := 0.0
	for i := 0; i+len(ra) <= len(rb); i++ {
		s := similarity(string(ra), string(rb[i:i+len(ra)]))
		if s > best {
			best = s
		}
	}
	return best
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
