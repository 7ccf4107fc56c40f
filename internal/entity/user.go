package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	Id            uuid.UUID       `db:"id"`
	Name          string          `db:"name"`
	Email         string          `db:"email"`
	Role          string          `db:"role"`
	IsBanned      bool            `db:"is_banned"`
	AverageRating decimal.Decimal `db:"average_rating"`
	TotalRatings  int             `db:"total_ratings"`
	AvatarUrl     string          `db:"avatar_url"`
}

// Identity is what the authorization gate resolves for a request.
type Identity struct {
	UserId   uuid.UUID
	Role     string
	IsBanned bool
}

type StoredFile struct {
	SecureUrl string
}

type UserOutputModel struct {
	Id            string          `json:"id"`
	Name          string          `json:"name"`
	Role          string          `json:"role"`
	AverageRating decimal.Decimal `json:"averageRating"`
	TotalRatings  int             `json:"totalRatings"`
	AvatarUrl     string          `json:"avatarUrl"`
}

type Notification struct {
	TargetUserId uuid.UUID `json:"targetUserId"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Module       string    `json:"module"`
	Type         string    `json:"type"`
}
