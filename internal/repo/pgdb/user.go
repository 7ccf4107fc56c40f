package pgdb

import (
	"context"
	"database/sql"
	"errors"

	"gig-marketplace-api/internal/common"
	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/internal/repo/repo_errors"
	"gig-marketplace-api/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type UserRepo struct {
	*postgres.Postgres
}

func NewUserRepo(pgdb *postgres.Postgres) *UserRepo {
	return &UserRepo{pgdb}
}

func (r *UserRepo) GetUserById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	getUserSql, args, _ := r.SqlBuilder.
		Select("id, name, email, role, is_banned, average_rating, total_ratings, avatar_url").
		From("users").
		Where("id = ?", id).
		ToSql()

	var user entity.User
	err := r.Database.QueryRowContext(ctx, getUserSql, args...).Scan(&user.Id, &user.Name, &user.Email, &user.Role,
		&user.IsBanned, &user.AverageRating, &user.TotalRatings, &user.AvatarUrl)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}

func (r *UserRepo) UpdateAvatarUrl(ctx context.Context, id uuid.UUID, url string) error {
	updateSql, args, _ := r.SqlBuilder.
		Update("users").
		Set("avatar_url", url).
		Where("id = ?", id).
		ToSql()

	res, err := r.Database.ExecContext(ctx, updateSql, args...)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repo_errors.ErrNotFound
	}

	return nil
}

func (r *UserRepo) RecomputeProviderRating(ctx context.Context, providerId uuid.UUID) (*entity.RatingSummary, error) {
	recomputeSql, args, _ := r.SqlBuilder.
		Update("users").
		Set("average_rating", squirrel.Expr(
			"(SELECT COALESCE(ROUND(AVG(rating)::numeric, 2), 0) FROM review_rating WHERE provider_id = ? AND status = ?)",
			providerId, common.ReviewApproved)).
		Set("total_ratings", squirrel.Expr(
			"(SELECT COUNT(*) FROM review_rating WHERE provider_id = ? AND status = ?)",
			providerId, common.ReviewApproved)).
		Where("id = ?", providerId).
		Suffix("RETURNING average_rating, total_ratings").
		ToSql()

	var summary entity.RatingSummary
	err := r.Database.QueryRowContext(ctx, recomputeSql, args...).Scan(&summary.AverageRating, &summary.TotalRatings)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return &summary, nil
}
