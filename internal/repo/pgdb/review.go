package pgdb

import (
	"context"

	"gig-marketplace-api/internal/common"
	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/pkg/postgres"
)

type ReviewRepo struct {
	*postgres.Postgres
}

func NewReviewRepo(pgdb *postgres.Postgres) *ReviewRepo {
	return &ReviewRepo{pgdb}
}

func (r *ReviewRepo) UpsertReview(ctx context.Context, input *entity.UpsertReviewInput) (*entity.ReviewRating, error) {
	upsertSql, args, _ := r.SqlBuilder.
		Insert("review_rating").
		Columns("gig_id", "provider_id", "user_id", "rating", "rating_feedback", "status").
		Values(input.GigId, input.ProviderId, input.UserId, input.Rating, input.Feedback, common.ReviewPending).
		Suffix("ON CONFLICT (gig_id, user_id) DO UPDATE SET " +
			"rating = EXCLUDED.rating, rating_feedback = EXCLUDED.rating_feedback, provider_id = EXCLUDED.provider_id, " +
			"status = EXCLUDED.status, updated_at = now() " +
			"RETURNING id, gig_id, provider_id, user_id, rating, rating_feedback, status, created_at, updated_at").
		ToSql()

	var review entity.ReviewRating
	err := r.Database.QueryRowContext(ctx, upsertSql, args...).Scan(&review.Id, &review.GigId, &review.ProviderId,
		&review.UserId, &review.Rating, &review.RatingFeedback, &review.Status, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &review, nil
}
