package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Bid struct {
	Id           uuid.UUID       `db:"id"`
	GigId        uuid.UUID       `db:"gig_id"`
	ProviderId   uuid.UUID       `db:"provider_id"`
	UserId       uuid.UUID       `db:"user_id"`
	Proposal     string          `db:"proposal"`
	BidPrice     decimal.Decimal `db:"bid_price"`
	Status       string          `db:"status"`
	CreatedAt    time.Time       `db:"created_at"`
	ProviderName string          `db:"provider_name"`
}

// Bid joined with the gig it targets, for the provider's pipeline view.
type ProviderBid struct {
	Bid
	GigTitle       string `db:"gig_title"`
	GigSlug        string `db:"gig_slug"`
	PipelineStatus string `db:"pipeline_status"`
}

// service input model
type PlaceBidInput struct {
	GigId    string
	Proposal string
	BidPrice decimal.Decimal
}

// repo input model
type CreateBidInput struct {
	GigId      uuid.UUID
	ProviderId uuid.UUID
	UserId     uuid.UUID // gig owner
	Proposal   string
	BidPrice   decimal.Decimal
	// Status is always "pending" on insert
}

// AcceptBidResult lists who has to be told about the outcome of an
// acceptance.
type AcceptBidResult struct {
	Accepted          Bid
	RejectedProviders []uuid.UUID
}

// controller model
type BidOutputModel struct {
	Id           string          `json:"id"`
	GigId        string          `json:"gigId"`
	ProviderId   string          `json:"providerId"`
	ProviderName string          `json:"providerName,omitempty"`
	Proposal     string          `json:"proposal"`
	BidPrice     decimal.Decimal `json:"bidPrice"`
	Status       string          `json:"status"`
	CreatedAt    string          `json:"createdAt"`
}

type ProviderBidOutputModel struct {
	BidOutputModel
	GigTitle       string `json:"gigTitle"`
	GigSlug        string `json:"gigSlug"`
	PipelineStatus string `json:"pipelineStatus"`
}

type ProviderPipelineOutput struct {
	Counts map[string]int           `json:"counts"`
	Bids   []ProviderBidOutputModel `json:"bids"`
}
