package parser

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/perchbrowser/perch/internal/history"
)

// textRelevanceFloor is the minimum URL or title similarity an entry needs
// before recency and visit counts are allowed to contribute.
const textRelevanceFloor = 0.5

// FuzzyMatcher ranks history entries against omnibox input.
type FuzzyMatcher struct {
	config *FuzzyConfig
}

// NewFuzzyMatcher creates a new FuzzyMatcher with the given configuration.
func NewFuzzyMatcher(config *FuzzyConfig) *FuzzyMatcher {
	return &FuzzyMatcher{config: config}
}

// SearchHistory returns history matches for query, best first, limited to
// the configured maximum. Entries scoring below MinSimilarity are dropped.
func (fm *FuzzyMatcher) SearchHistory(query string, entries []*history.Entry) []Match {
	if len(entries) == 0 || query == "" {
		return nil
	}

	query = strings.ToLower(strings.TrimSpace(query))
	matches := make([]Match, 0)

	for _, entry := range entries {
		match := fm.matchEntry(query, entry)
		if match.Score >= fm.config.MinSimilarity {
			matches = append(matches, match)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > fm.config.MaxResults {
		matches = matches[:fm.config.MaxResults]
	}

	return matches
}

// matchEntry scores a single history entry against the query.
func (fm *FuzzyMatcher) matchEntry(query string, entry *history.Entry) Match {
	match := Match{Entry: entry}

	url := strings.ToLower(entry.URL)
	title := strings.ToLower(entry.Title)

	match.URLScore = math.Max(fm.similarity(query, url), fm.substringScore(query, url))
	if title != "" {
		match.TitleScore = math.Max(fm.similarity(query, title), fm.substringScore(query, title))
	}
	// Recency and visits only ever boost a textual match; without one the
	// entry is irrelevant no matter how popular it is.
	if match.URLScore < textRelevanceFloor && match.TitleScore < textRelevanceFloor {
		return match
	}

	match.RecencyScore = fm.recencyScore(entry.LastVisited)
	match.VisitScore = fm.visitScore(entry.VisitCount)

	match.Score = fm.config.URLWeight*match.URLScore +
		fm.config.TitleWeight*match.TitleScore +
		fm.config.RecencyWeight*match.RecencyScore +
		fm.config.VisitWeight*match.VisitScore

	return match
}

// similarity computes Jaro-Winkler similarity between two strings.
func (fm *FuzzyMatcher) similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}

	jaro := jaroSimilarity(s1, s2)
	if jaro < 0.7 {
		return jaro
	}

	// Winkler prefix boost, capped at 4 characters.
	prefix := 0
	maxPrefix := 4
	if n := min(len(s1), len(s2)); n < maxPrefix {
		maxPrefix = n
	}
	for i := 0; i < maxPrefix; i++ {
		if s1[i] != s2[i] {
			break
		}
		prefix++
	}

	return jaro + 0.1*float64(prefix)*(1-jaro)
}

// substringScore scores exact substring containment, boosted when the
// match sits at or near the start of the text.
func (fm *FuzzyMatcher) substringScore(query, text string) float64 {
	if query == "" || text == "" {
		return 0.0
	}

	index := strings.Index(text, query)
	if index == -1 {
		return 0.0
	}

	score := float64(len(query)) / float64(len(text))
	switch {
	case index == 0:
		score *= 1.5
	case index < len(text)/3:
		score *= 1.2
	}

	return math.Min(score, 1.0)
}

// jaroSimilarity calculates Jaro similarity between two strings.
func jaroSimilarity(s1, s2 string) float64 {
	len1 := utf8.RuneCountInString(s1)
	len2 := utf8.RuneCountInString(s2)

	if len1 == 0 && len2 == 0 {
		return 1.0
	}
	if len1 == 0 || len2 == 0 {
		return 0.0
	}

	runes1 := []rune(s1)
	runes2 := []rune(s2)

	matchWindow := max(len1, len2)/2 - 1
	if matchWindow < 0 {
		matchWindow = 0
	}

	matches1 := make([]bool, len1)
	matches2 := make([]bool, len2)
	matchCount := 0

	for i := 0; i < len1; i++ {
		start := max(0, i-matchWindow)
		end := min(i+matchWindow+1, len2)

		for j := start; j < end; j++ {
			if matches2[j] || runes1[i] != runes2[j] {
				continue
			}
			matches1[i] = true
			matches2[j] = true
			matchCount++
			break
		}
	}

	if matchCount == 0 {
		return 0.0
	}

	transpositions := 0
	k := 0
	for i := 0; i < len1; i++ {
		if !matches1[i] {
			continue
		}
		for !matches2[k] {
			k++
		}
		if runes1[i] != runes2[k] {
			transpositions++
		}
		k++
	}

	return (float64(matchCount)/float64(len1) +
		float64(matchCount)/float64(len2) +
		float64(matchCount-transpositions/2)/float64(matchCount)) / 3.0
}

// recencyScore decays exponentially with days since the last visit.
func (fm *FuzzyMatcher) recencyScore(lastVisited time.Time) float64 {
	if lastVisited.IsZero() {
		return 0.0
	}

	daysSince := time.Since(lastVisited).Hours() / 24
	if daysSince < 0 {
		daysSince = 0
	}

	return math.Exp(-daysSince / float64(fm.config.RecencyDecayDays))
}

// visitScore grows logarithmically with the visit count and saturates at 1.
func (fm *FuzzyMatcher) visitScore(visitCount int64) float64 {
	if visitCount <= 0 {
		return 0.0
	}

	// log10(101) ≈ 2, so 100 visits saturate the score.
	return math.Min(math.Log10(float64(visitCount)+1)/2.0, 1.0)
}
