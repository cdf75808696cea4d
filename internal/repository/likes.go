package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/cineadmin/internal/domain"
)

// LikesRepository provides helpers for the user/movie like relation.
type LikesRepository struct {
	pool *pgxpool.Pool
}

// LikeFilter holds equality filters on the likes relation. Nil fields are ignored.
type LikeFilter struct {
	UserID  *uuid.UUID
	MovieID *int64
}

func (f LikeFilter) where() (sq.Eq, bool) {
	eq := sq.Eq{}
	if f.UserID != nil {
		// uuid.UUID is an array type; squirrel would expand it into an IN list.
		eq["user_id"] = f.UserID.String()
	}
	if f.MovieID != nil {
		eq["filme_id"] = *f.MovieID
	}
	return eq, len(eq) > 0
}

// Insert stores a like. A second insert of the same pair returns ErrConflict.
func (r *LikesRepository) Insert(ctx context.Context, like domain.Like) (domain.Like, error) {
	const query = `
        INSERT INTO likes (user_id, filme_id)
        VALUES ($1,$2)
        RETURNING user_id, filme_id, created_at
    `

	var stored domain.Like
	err := r.pool.QueryRow(ctx, query, like.UserID, like.MovieID).Scan(
		&stored.UserID,
		&stored.MovieID,
		&stored.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Like{}, ErrConflict
		}
		return domain.Like{}, err
	}
	return stored, nil
}

// List returns the likes matching the filter, oldest first. An empty filter lists everything.
func (r *LikesRepository) List(ctx context.Context, filter LikeFilter) ([]domain.Like, error) {
	builder := psql.Select("user_id", "filme_id", "created_at").From("likes")
	if eq, ok := filter.where(); ok {
		builder = builder.Where(eq)
	}
	query, args, err := builder.OrderBy("created_at", "filme_id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build likes query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	likes := make([]domain.Like, 0)
	for rows.Next() {
		var like domain.Like
		if err := rows.Scan(&like.UserID, &like.MovieID, &like.CreatedAt); err != nil {
			return nil, err
		}
		likes = append(likes, like)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return likes, nil
}

// Delete removes the likes matching the filter and reports how many rows went away.
// Deleting nothing is not an error. An empty filter is refused.
func (r *LikesRepository) Delete(ctx context.Context, filter LikeFilter) (int64, error) {
	eq, ok := filter.where()
	if !ok {
		return 0, ErrUnfiltered
	}
	query, args, err := psql.Delete("likes").Where(eq).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build likes delete: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of likes a movie has.
func (r *LikesRepository) Count(ctx context.Context, movieID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*)::int8 FROM likes WHERE filme_id = $1`, movieID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}
