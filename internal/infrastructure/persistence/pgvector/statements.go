package pgvector

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

type statements struct {
	table  string
	index  string
	upsert string
	search string
}

func newStatements(table string) statements {
	quoted := pgx.Identifier{table}.Sanitize()
	return statements{
		table: quoted,
		index: pgx.Identifier{table + "_embedding_idx"}.Sanitize(),
		upsert: fmt.Sprintf(
			`INSERT INTO %s (id, position, embedding) VALUES ($1, $2, $3::vector)
ON CONFLICT (id) DO UPDATE SET position = EXCLUDED.position, embedding = EXCLUDED.embedding`, quoted),
		search: fmt.Sprintf(
			`SELECT id, 1 - (embedding <=> $1::vector) AS score FROM %s
ORDER BY embedding <=> $1::vector, position LIMIT $2`, quoted),
	}
}

func (s statements) schema(dim int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	embedding vector(%d) NOT NULL
)`, s.table, dim),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING hnsw (embedding vector_cosine_ops)`, s.index, s.table),
	}
}
