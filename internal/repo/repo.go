package repo

import (
	"context"
	"time"

	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/internal/repo/pgdb"
	"gig-marketplace-api/pkg/postgres"

	"github.com/google/uuid"
)

type Diagnostics interface {
	Ping(ctx context.Context) error
}

type User interface {
	GetUserById(ctx context.Context, id uuid.UUID) (*entity.User, error)
	UpdateAvatarUrl(ctx context.Context, id uuid.UUID, url string) error
	// RecomputeProviderRating rebuilds average_rating and total_ratings from
	// approved reviews only.
	RecomputeProviderRating(ctx context.Context, providerId uuid.UUID) (*entity.RatingSummary, error)
}

type Gig interface {
	// CreateGig inserts the gig and its open pipeline row in one transaction.
	CreateGig(ctx context.Context, input *entity.CreateGigInput) (uuid.UUID, error)
	GetGigById(ctx context.Context, id uuid.UUID) (*entity.Gig, error)
	GetGigBySlug(ctx context.Context, slug string) (*entity.Gig, error)
	GetOpenGigs(ctx context.Context, filter *entity.GigFilter, pg *entity.PaginationInput) ([]entity.Gig, error)
	GetOwnerGigs(ctx context.Context, ownerId uuid.UUID, status string) ([]entity.Gig, error)
	CountOwnerGigsByStatus(ctx context.Context, ownerId uuid.UUID) (map[string]int, error)
	// RemoveGig soft deletes a gig whose pipeline is still open.
	RemoveGig(ctx context.Context, id uuid.UUID) error
	// CompleteGig moves an in_progress pipeline to completed and stamps
	// completed_at in one transaction.
	CompleteGig(ctx context.Context, id uuid.UUID, completedAt time.Time) error
}

type Bid interface {
	// CreateBid inserts a pending bid only while the gig's pipeline is open.
	CreateBid(ctx context.Context, input *entity.CreateBidInput) (uuid.UUID, error)
	GetBidById(ctx context.Context, id uuid.UUID) (*entity.Bid, error)
	HasProviderBid(ctx context.Context, gigId uuid.UUID, providerId uuid.UUID) (bool, error)
	GetGigBids(ctx context.Context, gigId uuid.UUID) ([]entity.Bid, error)
	GetAcceptedBids(ctx context.Context, gigId uuid.UUID) ([]entity.Bid, error)
	// AcceptBid accepts one pending bid, rejects its pending siblings and
	// advances the pipeline from open to in_progress, atomically.
	AcceptBid(ctx context.Context, gigId uuid.UUID, bidId uuid.UUID) (*entity.AcceptBidResult, error)
	GetProviderBids(ctx context.Context, providerId uuid.UUID, status string) ([]entity.ProviderBid, error)
	CountProviderBidsByStatus(ctx context.Context, providerId uuid.UUID) (map[string]int, error)
}

type Payment interface {
	UpsertHeldPayment(ctx context.Context, input *entity.UpsertPaymentInput) (*entity.Payment, error)
	GetPaymentByGig(ctx context.Context, paymentMethod string, gigId uuid.UUID) (*entity.Payment, error)
	// SettleCapture completes the payment (guarded), inserts the completed
	// earning at most once per gig and approves the gig's reviews, in one
	// transaction.
	SettleCapture(ctx context.Context, input *entity.SettleInput) (*entity.SettleResult, error)
}

type Review interface {
	// UpsertReview inserts or updates the (gig, user) review and resets its
	// status to pending.
	UpsertReview(ctx context.Context, input *entity.UpsertReviewInput) (*entity.ReviewRating, error)
}

type Repositories struct {
	Diagnostics
	User
	Gig
	Bid
	Payment
	Review
}

func NewRepositories(p *postgres.Postgres) *Repositories {
	return &Repositories{
		Diagnostics: pgdb.NewDiagnosticsRepo(p),
		User:        pgdb.NewUserRepo(p),
		Gig:         pgdb.NewGigRepo(p),
		Bid:         pgdb.NewBidRepo(p),
		Payment:     pgdb.NewPaymentRepo(p),
		Review:      pgdb.NewReviewRepo(p),
	}
}
