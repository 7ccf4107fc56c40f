package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReviewRating struct {
	Id             uuid.UUID `db:"id"`
	GigId          uuid.UUID `db:"gig_id"`
	ProviderId     uuid.UUID `db:"provider_id"`
	UserId         uuid.UUID `db:"user_id"`
	Rating         int       `db:"rating"`
	RatingFeedback string    `db:"rating_feedback"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// service input model
type SubmitRatingInput struct {
	GigId      string
	ProviderId string
	Rating     int
	Feedback   string
}

// repo input model
type UpsertReviewInput struct {
	GigId      uuid.UUID
	ProviderId uuid.UUID
	UserId     uuid.UUID
	Rating     int
	Feedback   string
}

type RatingSummary struct {
	AverageRating decimal.Decimal
	TotalRatings  int
}

// controller model
type ReviewOutputModel struct {
	Id            string          `json:"id"`
	GigId         string          `json:"gigId"`
	ProviderId    string          `json:"providerId"`
	Rating        int             `json:"rating"`
	Feedback      string          `json:"ratingFeedback"`
	Status        string          `json:"status"`
	AverageRating decimal.Decimal `json:"averageRating"`
	TotalRatings  int             `json:"totalRatings"`
}
