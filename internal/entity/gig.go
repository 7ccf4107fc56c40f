package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model, joined with its pipeline row
type Gig struct {
	Id             uuid.UUID       `db:"id"`
	UserId         uuid.UUID       `db:"user_id"`
	Title          string          `db:"title"`
	Description    string          `db:"description"`
	Tier           string          `db:"tier"`
	PriceMin       decimal.Decimal `db:"price_min"`
	PriceMax       decimal.Decimal `db:"price_max"`
	Keywords       []string        `db:"keywords"`
	StartDate      time.Time       `db:"start_date"`
	EndDate        time.Time       `db:"end_date"`
	Slug           string          `db:"slug"`
	IsRemoved      bool            `db:"is_removed"`
	CompletedAt    *time.Time      `db:"completed_at"`
	CreatedAt      time.Time       `db:"created_at"`
	PipelineStatus string          `db:"pipeline_status"`
}

// service + repo input model
type CreateGigInput struct {
	UserId      uuid.UUID
	Title       string
	Description string
	Tier        string
	PriceMin    decimal.Decimal
	PriceMax    decimal.Decimal
	Keywords    []string
	StartDate   time.Time
	EndDate     time.Time
	Slug        string // set by the service
}

// GigFilter holds the optional predicates of the public gig listing. A nil
// or empty field does not constrain the result.
type GigFilter struct {
	PriceMin  *decimal.Decimal
	PriceMax  *decimal.Decimal
	Search    string
	Tiers     []string
	StartFrom *time.Time
	EndTo     *time.Time
}

// controller model
type GigOutputModel struct {
	Id             string          `json:"id"`
	OwnerId        string          `json:"ownerId"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Tier           string          `json:"tier"`
	PriceMin       decimal.Decimal `json:"priceMin"`
	PriceMax       decimal.Decimal `json:"priceMax"`
	Keywords       []string        `json:"keywords"`
	StartDate      string          `json:"startDate"`
	EndDate        string          `json:"endDate"`
	Slug           string          `json:"slug"`
	PipelineStatus string          `json:"pipelineStatus"`
	CompletedAt    *string         `json:"completedAt"`
	CreatedAt      string          `json:"createdAt"`
}

type OwnerPipelineOutput struct {
	Counts map[string]int   `json:"counts"`
	Gigs   []GigOutputModel `json:"gigs"`
}
