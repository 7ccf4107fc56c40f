package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gig-marketplace-api/internal/common"
	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/internal/repo"
	"gig-marketplace-api/internal/repo/repo_errors"
	"gig-marketplace-api/pkg/logger"

	"github.com/google/uuid"
)

const (
	minRating = 1
	maxRating = 5
)

type RatingService struct {
	gigRepo    repo.Gig
	userRepo   repo.User
	reviewRepo repo.Review
	notifier   Notifier
}

func NewRatingService(repos *repo.Repositories, notifier Notifier) *RatingService {
	return &RatingService{
		gigRepo:    repos.Gig,
		userRepo:   repos.User,
		reviewRepo: repos.Review,
		notifier:   notifier,
	}
}

// SubmitRating stores the caller's review of the gig, resetting it to
// pending, and recomputes the provider's aggregate from approved reviews.
func (s *RatingService) SubmitRating(ctx context.Context, identity *entity.Identity, input *entity.SubmitRatingInput) (*entity.ReviewOutputModel, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}

	if input.Rating < minRating || input.Rating > maxRating {
		return nil, ErrInvalidRating.WithFields(map[string]string{
			"rating": fmt.Sprintf("rating must be between %d and %d", minRating, maxRating),
		})
	}

	gigId, err := uuid.Parse(input.GigId)
	if err != nil {
		return nil, ErrInvalidId
	}
	providerId, err := uuid.Parse(input.ProviderId)
	if err != nil {
		return nil, ErrInvalidId
	}

	gig, err := s.gigRepo.GetGigById(ctx, gigId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrGigNotFound
		}

		return nil, err
	}

	for _, userId := range []uuid.UUID{providerId, identity.UserId} {
		if _, err := s.userRepo.GetUserById(ctx, userId); err != nil {
			if errors.Is(err, repo_errors.ErrNotFound) {
				return nil, ErrUserNotFound
			}

			return nil, err
		}
	}

	review, err := s.reviewRepo.UpsertReview(ctx, &entity.UpsertReviewInput{
		GigId:      gigId,
		ProviderId: providerId,
		UserId:     identity.UserId,
		Rating:     input.Rating,
		Feedback:   strings.TrimSpace(input.Feedback),
	})
	if err != nil {
		return nil, err
	}

	summary, err := s.userRepo.RecomputeProviderRating(ctx, providerId)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("review submitted",
		"review_id", review.Id, "gig_id", gigId, "provider_id", providerId, "average_rating", summary.AverageRating)

	notify(ctx, s.notifier, entity.Notification{
		TargetUserId: providerId,
		Title:        "New review",
		Message:      fmt.Sprintf("You received a %d star review for \"%s\"", review.Rating, gig.Title),
		Module:       common.ModuleReview,
		Type:         common.NotificationInfo,
	})

	return mapReview(review, summary), nil
}
