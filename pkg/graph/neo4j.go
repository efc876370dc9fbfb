package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/saraswati/saraswati/pkg/paperrank"
)

// graph model:
//
//	(:Paper {arxiv_id, title, published, abstract_snippet, pdf_url, categories})
//	(:Author {name})-[:AUTHORED]->(:Paper)
//	(:Project {project_id})-[:EXPLORED]->(:Paper)
//	(:Paper)-[:RELATED_TO {query, updated}]->(:Paper)
const storedSnippetBytes = 300

// Neo4jStore implements Store against a Neo4j database.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

// Neo4jConfig holds connection settings for the graph database.
type Neo4jConfig struct {
	URI      string
	User     string
	Password string
	Database string
}

// NewNeo4jStore connects to Neo4j and returns a store.
func NewNeo4jStore(cfg Neo4jConfig) (*Neo4jStore, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("neo4j URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = "neo4j"
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	return &Neo4jStore{driver: driver, database: cfg.Database}, nil
}

// Close shuts down the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// SetupConstraints creates uniqueness constraints. Idempotent, safe to call
// on every startup.
func (s *Neo4jStore) SetupConstraints(ctx context.Context) error {
	statements := []string{
		"CREATE CONSTRAINT paper_arxiv_id IF NOT EXISTS FOR (p:Paper) REQUIRE p.arxiv_id IS UNIQUE",
		"CREATE CONSTRAINT author_name IF NOT EXISTS FOR (a:Author) REQUIRE a.name IS UNIQUE",
	}
	for _, stmt := range statements {
		if err := s.run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("creating constraint: %w", err)
		}
	}
	return nil
}

// UpsertPaper merges the paper node and its author relationships.
func (s *Neo4jStore) UpsertPaper(ctx context.Context, paper paperrank.Paper) error {
	snippet := paper.Abstract
	if len(snippet) > storedSnippetBytes {
		snippet = snippet[:storedSnippetBytes]
	}

	err := s.run(ctx, `
		MERGE (p:Paper {arxiv_id: $arxiv_id})
		SET p.title            = $title,
		    p.published        = $published,
		    p.abstract_snippet = $abstract_snippet,
		    p.pdf_url          = $pdf_url,
		    p.categories       = $categories`,
		map[string]any{
			"arxiv_id":         paper.ArxivID,
			"title":            paper.Title,
			"published":        paper.Published,
			"abstract_snippet": snippet,
			"pdf_url":          paper.PDFURL,
			"categories":       paper.Categories,
		})
	if err != nil {
		return fmt.Errorf("upserting paper %s: %w", paper.ArxivID, err)
	}

	for _, author := range paper.Authors {
		err := s.run(ctx, `
			MERGE (a:Author {name: $name})
			WITH a
			MATCH (p:Paper {arxiv_id: $arxiv_id})
			MERGE (a)-[:AUTHORED]->(p)`,
			map[string]any{"name": author, "arxiv_id": paper.ArxivID})
		if err != nil {
			return fmt.Errorf("linking author %q: %w", author, err)
		}
	}
	return nil
}

// LinkProjectPaper merges the project node and its EXPLORED edge.
func (s *Neo4jStore) LinkProjectPaper(ctx context.Context, projectID, arxivID string) error {
	err := s.run(ctx, `
		MERGE (proj:Project {project_id: $project_id})
		WITH proj
		MATCH (p:Paper {arxiv_id: $arxiv_id})
		MERGE (proj)-[:EXPLORED]->(p)`,
		map[string]any{"project_id": projectID, "arxiv_id": arxivID})
	if err != nil {
		return fmt.Errorf("linking project %s to paper %s: %w", projectID, arxivID, err)
	}
	return nil
}

// LinkRelatedPapers merges RELATED_TO edges between all pairs in the batch,
// tagging each with the triggering query and an update timestamp. A batch of
// fewer than two papers is a no-op.
func (s *Neo4jStore) LinkRelatedPapers(ctx context.Context, arxivIDs []string, query string) error {
	if len(arxivIDs) < 2 {
		return nil
	}
	for i, idA := range arxivIDs {
		for _, idB := range arxivIDs[i+1:] {
			err := s.run(ctx, `
				MATCH (a:Paper {arxiv_id: $id_a}), (b:Paper {arxiv_id: $id_b})
				MERGE (a)-[r:RELATED_TO]->(b)
				SET r.query   = $query,
				    r.updated = timestamp()`,
				map[string]any{"id_a": idA, "id_b": idB, "query": query})
			if err != nil {
				return fmt.Errorf("linking papers %s and %s: %w", idA, idB, err)
			}
		}
	}
	return nil
}

func (s *Neo4jStore) run(ctx context.Context, cypher string, params map[string]any) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	_, err := session.Run(ctx, cypher, params)
	return err
}
