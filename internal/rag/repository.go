package rag

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository é a fonte read-only do corpus no Postgres. O import escreve,
// a API só lê.
type Repository interface {
	ListDocuments(ctx context.Context) ([]Document, error)
	InsertDocument(ctx context.Context, d *Document, lang string) (int, error)
}

type PgRepository struct {
	db *pgxpool.Pool
}

func NewPgRepository(db *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: db}
}

// EnsureSchema creates the news_article table when missing.
func (r *PgRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS news_article (
			position   BIGSERIAL PRIMARY KEY,
			title      TEXT NOT NULL,
			url        TEXT NOT NULL UNIQUE,
			full_text  TEXT NOT NULL,
			lang       TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("create news_article: %w", err)
	}
	return nil
}

func (r *PgRepository) InsertDocument(ctx context.Context, d *Document, lang string) (int, error) {
	var position int

	err := r.db.QueryRow(ctx, `
		INSERT INTO news_article (title, url, full_text, lang)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (url) DO UPDATE
			SET title = EXCLUDED.title, full_text = EXCLUDED.full_text, lang = EXCLUDED.lang
		RETURNING position
	`,
		d.Title,
		d.URL,
		d.FullText,
		lang,
	).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("insert news_article: %w", err)
	}

	return position, nil
}

// ListDocuments devolve o corpus na ordem de inserção. O ID é renumerado
// 1..n porque a sequence do Postgres pode ter buracos.
func (r *PgRepository) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := r.db.Query(ctx, `
		SELECT title, url, full_text
		FROM news_article
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query news_article: %w", err)
	}

	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Document, error) {
		var d Document
		err := row.Scan(&d.Title, &d.URL, &d.FullText)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan news_article: %w", err)
	}

	for i := range docs {
		docs[i].ID = i + 1
	}
	return docs, nil
}

var _ Repository = (*PgRepository)(nil)
