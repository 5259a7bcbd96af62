package store

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// QueryFilter holds the optional, conjunctive predicates for reading
// stored articles. Zero values mean "no filter"; Limit defaults to 50.
type QueryFilter struct {
	Limit    int
	Source   string
	DateFrom string
	DateTo   string
}

// StoredArticle is a persisted summary read back from the graph.
type StoredArticle struct {
	URL             string  `json:"url"`
	Headline        string  `json:"headline"`
	PublicationDate string  `json:"publication_date"`
	Summary         string  `json:"summary"`
	Source          string  `json:"source"`
	TokensUsed      int64   `json:"tokens_used"`
	CostUSD         float64 `json:"cost_usd"`
	ProcessedAt     string  `json:"processed_at"`
}

// SourceCount pairs a source name with its article count.
type SourceCount struct {
	Name         string `json:"name"`
	ArticleCount int64  `json:"article_count"`
}

// Statistics are aggregate reductions over all Article nodes. An empty
// store yields zeros, not an error.
type Statistics struct {
	TotalArticles     int64   `json:"total_articles"`
	TotalTokens       int64   `json:"total_tokens"`
	TotalCostUSD      float64 `json:"total_cost"`
	AvgCostPerArticle float64 `json:"avg_cost_per_article"`
}

// buildArticlesQuery assembles the filtered read query and its
// parameters. Filters combine conjunctively; results are ordered by
// most-recently-processed first and capped at the limit.
func buildArticlesQuery(filter QueryFilter) (string, map[string]any) {
	var b strings.Builder
	b.WriteString("MATCH (a:Article)-[:PUBLISHED_BY]->(s:Source)\n")

	params := map[string]any{}
	var where []string

	if filter.Source != "" {
		where = append(where, "s.name = $source")
		params["source"] = filter.Source
	}
	if filter.DateFrom != "" {
		where = append(where, "a.publication_date >= $date_from")
		params["date_from"] = filter.DateFrom
	}
	if filter.DateTo != "" {
		where = append(where, "a.publication_date <= $date_to")
		params["date_to"] = filter.DateTo
	}
	if len(where) > 0 {
		b.WriteString("WHERE " + strings.Join(where, " AND ") + "\n")
	}

	b.WriteString(`RETURN a.url AS url, a.headline AS headline, a.publication_date AS publication_date,
       a.summary AS summary, a.tokens_used AS tokens_used, a.cost_usd AS cost_usd,
       s.name AS source, toString(a.processed_at) AS processed_at
ORDER BY a.processed_at DESC
LIMIT $limit`)

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	params["limit"] = limit

	return b.String(), params
}

// Query returns stored articles matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]StoredArticle, error) {
	query, params := buildArticlesQuery(filter)

	session := s.session(ctx)
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, s.classify("query articles", err)
	}

	articles := make([]StoredArticle, 0)
	for _, record := range records.([]*neo4j.Record) {
		articles = append(articles, StoredArticle{
			URL:             stringValue(record, "url"),
			Headline:        stringValue(record, "headline"),
			PublicationDate: stringValue(record, "publication_date"),
			Summary:         stringValue(record, "summary"),
			Source:          stringValue(record, "source"),
			TokensUsed:      intValue(record, "tokens_used"),
			CostUSD:         floatValue(record, "cost_usd"),
			ProcessedAt:     stringValue(record, "processed_at"),
		})
	}
	return articles, nil
}

const sourcesQuery = `
MATCH (s:Source)
OPTIONAL MATCH (s)<-[:PUBLISHED_BY]-(a:Article)
RETURN s.name AS name, count(a) AS article_count
ORDER BY article_count DESC
`

// ListSources returns every source with its article count, ordered by
// descending count.
func (s *Store) ListSources(ctx context.Context) ([]SourceCount, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, sourcesQuery, nil)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, s.classify("list sources", err)
	}

	sources := make([]SourceCount, 0)
	for _, record := range records.([]*neo4j.Record) {
		sources = append(sources, SourceCount{
			Name:         stringValue(record, "name"),
			ArticleCount: intValue(record, "article_count"),
		})
	}
	return sources, nil
}

const statisticsQuery = `
MATCH (a:Article)
RETURN count(a) AS total_articles,
       coalesce(sum(a.tokens_used), 0) AS total_tokens,
       coalesce(sum(a.cost_usd), 0.0) AS total_cost,
       coalesce(avg(a.cost_usd), 0.0) AS avg_cost_per_article
`

// Statistics computes aggregate totals over all stored articles.
func (s *Store) Statistics(ctx context.Context) (Statistics, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	record, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, statisticsQuery, nil)
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return Statistics{}, s.classify("statistics", err)
	}

	rec := record.(*neo4j.Record)
	return Statistics{
		TotalArticles:     intValue(rec, "total_articles"),
		TotalTokens:       intValue(rec, "total_tokens"),
		TotalCostUSD:      floatValue(rec, "total_cost"),
		AvgCostPerArticle: floatValue(rec, "avg_cost_per_article"),
	}, nil
}

func stringValue(record *neo4j.Record, key string) string {
	if v, ok := record.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func intValue(record *neo4j.Record, key string) int64 {
	if v, ok := record.Get(key); ok {
		switch n := v.(type) {
		case int64:
			return n
		case float64:
			return int64(n)
		}
	}
	return 0
}

func floatValue(record *neo4j.Record, key string) float64 {
	if v, ok := record.Get(key); ok {
		switch n := v.(type) {
		case float64:
			return n
		case int64:
			return float64(n)
		}
	}
	return 0
}
