// Package search scores free-text queries against the knowledge base using a
// fixed keyword-overlap heuristic.
package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hoteleiro/concierge/internal/config"
	"github.com/hoteleiro/concierge/internal/models"
	"github.com/hoteleiro/concierge/pkg/utils"
)

// Engine scores queries against a knowledge base.
type Engine struct {
	config *config.SearchConfig
}

// NewEngine creates a search engine with the given scoring configuration.
func NewEngine(cfg *config.SearchConfig) *Engine {
	return &Engine{config: cfg}
}

// Search scores every document in kb against query and returns hits with
// relevance > 0, sorted descending. Ties keep knowledge-base enumeration
// order. Duplicate (title, category) pairs are dropped, first hit wins.
func (e *Engine) Search(query string, kb *models.KnowledgeBase) []models.SearchResult {
	if kb == nil {
		return nil
	}
	normQuery := utils.Normalize(strings.TrimSpace(query))
	if normQuery == "" {
		return nil
	}

	var tokens []string
	for _, tok := range strings.Fields(normQuery) {
		if utf8.RuneCountInString(tok) >= e.config.MinTokenLength {
			tokens = append(tokens, tok)
		}
	}

	var results []models.SearchResult
	for _, cat := range kb.Categories {
		for _, doc := range cat.Documents {
			title := utils.Normalize(doc.Title)
			content := utils.Normalize(doc.Content)

			relevance := 0
			for _, tok := range tokens {
				if strings.Contains(title, tok) {
					relevance += e.config.TitleScore
				}
				if strings.Contains(content, tok) {
					relevance += e.config.ContentScore
				}
			}

			exact := strings.Contains(content, normQuery)
			if exact {
				relevance += e.config.ExactMatchBonus
			}

			if relevance > 0 {
				results = append(results, models.SearchResult{
					Record:     doc,
					Relevance:  relevance,
					ExactMatch: exact,
				})
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})

	return dedupe(results)
}

// dedupe drops results repeating an already-seen (title, category) pair.
func dedupe(results []models.SearchResult) []models.SearchResult {
	type key struct{ title, category string }
	seen := make(map[key]bool, len(results))
	out := results[:0]
	for _, r := range results {
		k := key{r.Record.Title, r.Record.Category}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
