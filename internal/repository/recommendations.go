package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/cineadmin/internal/domain"
)

// RecommendationsRepository stores visitor movie suggestions.
type RecommendationsRepository struct {
	pool *pgxpool.Pool
}

// Create stores a recommendation.
func (r *RecommendationsRepository) Create(ctx context.Context, name, text string) (domain.Recommendation, error) {
	const query = `
        INSERT INTO indicacoes (nome, indicacao)
        VALUES ($1,$2)
        RETURNING id, nome, indicacao, created_at
    `
	var rec domain.Recommendation
	err := r.pool.QueryRow(ctx, query, name, text).Scan(&rec.ID, &rec.Name, &rec.Text, &rec.CreatedAt)
	if err != nil {
		return domain.Recommendation{}, err
	}
	return rec, nil
}

// List returns recommendations newest first, capped at limit (default 100).
func (r *RecommendationsRepository) List(ctx context.Context, limit int) ([]domain.Recommendation, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
        SELECT id, nome, indicacao, created_at
        FROM indicacoes
        ORDER BY created_at DESC, id DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Recommendation, 0)
	for rows.Next() {
		var rec domain.Recommendation
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Text, &rec.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}
