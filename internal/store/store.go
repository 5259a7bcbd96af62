package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"headliner/internal/config"
	"headliner/internal/core"
	"headliner/internal/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ErrUnavailable indicates the graph store cannot be reached. Callers
// degrade gracefully: summarization still succeeds when persistence
// fails.
var ErrUnavailable = errors.New("article store unavailable")

// Store persists article summaries as a property graph: Article nodes
// keyed by url, Source nodes keyed by name, and PUBLISHED_BY edges
// between them.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	log      *slog.Logger
}

// New creates a Store from connection parameters. The connection is
// lazy; call Connect to verify reachability.
func New(cfg config.Neo4j) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create graph driver: %w", err)
	}
	return &Store{
		driver:   driver,
		database: cfg.Database,
		log:      logger.Get(),
	}, nil
}

// Connect verifies connectivity with the graph store.
func (s *Store) Connect(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Close releases the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// schemaStatements create the uniqueness constraints backing the
// at-most-one-node-per-key invariant, plus read-path indexes.
var schemaStatements = []string{
	"CREATE CONSTRAINT article_url IF NOT EXISTS FOR (a:Article) REQUIRE a.url IS UNIQUE",
	"CREATE CONSTRAINT source_name IF NOT EXISTS FOR (s:Source) REQUIRE s.name IS UNIQUE",
	"CREATE INDEX article_date IF NOT EXISTS FOR (a:Article) ON (a.publication_date)",
	"CREATE INDEX article_headline IF NOT EXISTS FOR (a:Article) ON (a.headline)",
}

// EnsureSchema creates constraints and indexes if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	for _, stmt := range schemaStatements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return s.classify("ensure schema", err)
		}
	}
	return nil
}

// upsertQuery merges the Article node, the Source node, and the
// PUBLISHED_BY edge in one statement so the write is a single unit:
// no partial application, idempotent under repeated calls.
const upsertQuery = `
MERGE (a:Article {url: $url})
SET a.headline = $headline,
    a.publication_date = $publication_date,
    a.summary = $summary,
    a.tokens_used = $tokens_used,
    a.cost_usd = $cost_usd,
    a.processed_at = datetime()
MERGE (s:Source {name: $source})
MERGE (a)-[:PUBLISHED_BY]->(s)
`

// Upsert persists a finished summary. Re-submitting the same URL
// overwrites the Article's scalar fields and refreshes processed_at;
// it never creates a duplicate node or edge.
func (s *Store) Upsert(ctx context.Context, result core.SummaryResult) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, upsertQuery, map[string]any{
			"url":              result.URL,
			"headline":         result.Headline,
			"publication_date": result.PublicationDate,
			"summary":          result.Summary,
			"tokens_used":      result.TokensUsed,
			"cost_usd":         result.CostUSD,
			"source":           result.Source,
		})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return s.classify("upsert article", err)
	}
	return nil
}

func (s *Store) session(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
}

// classify wraps driver errors, marking connectivity failures as
// ErrUnavailable so callers can distinguish "unreachable" from
// query-level failures.
func (s *Store) classify(op string, err error) error {
	if neo4j.IsConnectivityError(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
