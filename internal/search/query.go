package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

const categoryFacet = "category"

// Params configures a search.
type Params struct {
	Query    string
	Category string // exact category filter; empty or "all" for none
	Limit    int
	Offset   int
}

// Result is a page of ranked hits.
type Result struct {
	Query      string       `json:"query"`
	Total      uint64       `json:"total"`
	TookMs     int64        `json:"took_ms"`
	Hits       []Hit        `json:"hits"`
	Categories []FacetCount `json:"categories,omitempty"`
}

// Hit is one matching book.
type Hit struct {
	ID         int               `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Author     string            `json:"author"`
	Category   string            `json:"category"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// FacetCount is the number of hits per category.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search runs a relevance-ranked query over title, author and description.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	req.SortBy([]string{"-_score", "_id"})
	req.Fields = []string{"title", "author", "category"}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("title")
	req.Highlight.AddField("author")
	req.AddFacet(categoryFacet, bleve.NewFacetRequest(categoryFacet, 16))

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}

	for _, h := range res.Hits {
		bookID, err := strconv.Atoi(h.ID)
		if err != nil {
			s.logger.Warn("skipping hit with non-numeric id", "id", h.ID)
			continue
		}
		hit := Hit{ID: bookID, Score: h.Score}
		hit.Title, _ = h.Fields["title"].(string)
		hit.Author, _ = h.Fields["author"].(string)
		hit.Category, _ = h.Fields["category"].(string)

		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		out.Hits = append(out.Hits, hit)
	}

	if f, ok := res.Facets[categoryFacet]; ok && f.Terms != nil {
		for _, term := range f.Terms.Terms() {
			out.Categories = append(out.Categories, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return out, nil
}

// buildQuery matches the text on title (boosted), author and description,
// with fuzzy and prefix variants on the title, ANDed with the category filter.
func buildQuery(params Params) query.Query {
	var parts []query.Query

	if text := strings.TrimSpace(params.Query); text != "" {
		title := bleve.NewMatchQuery(text)
		title.SetField("title")
		title.SetBoost(3.0)

		author := bleve.NewMatchQuery(text)
		author.SetField("author")
		author.SetBoost(2.0)

		description := bleve.NewMatchQuery(text)
		description.SetField("description")

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(text))
		fuzzy.SetField("title")
		fuzzy.SetFuzziness(1)
		fuzzy.SetBoost(0.8)

		alternatives := []query.Query{title, author, description, fuzzy}
		if len(text) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(text))
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			alternatives = append(alternatives, prefix)
		}
		parts = append(parts, bleve.NewDisjunctionQuery(alternatives...))
	}

	if c := strings.TrimSpace(params.Category); c != "" && c != "all" {
		term := bleve.NewTermQuery(c)
		term.SetField("category")
		parts = append(parts, term)
	}

	switch len(parts) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return parts[0]
	default:
		return bleve.NewConjunctionQuery(parts...)
	}
}
