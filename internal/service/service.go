package service

import (
	"context"
	"io"
	"time"

	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/internal/repo"

	"github.com/google/uuid"
)

type Diagnostics interface {
	Ping(ctx context.Context) error
}

type Gig interface {
	CreateGig(ctx context.Context, identity *entity.Identity, input *entity.CreateGigInput) (*entity.GigOutputModel, error)
	GetGigBySlug(ctx context.Context, slug string) (*entity.GigOutputModel, error)
	ListGigs(ctx context.Context, filter *entity.GigFilter, pg *entity.PaginationInput) ([]entity.GigOutputModel, error)
	RemoveGig(ctx context.Context, identity *entity.Identity, gigId string) error
}

type Bid interface {
	PlaceBid(ctx context.Context, identity *entity.Identity, input *entity.PlaceBidInput) (*entity.BidOutputModel, error)
	ListGigBids(ctx context.Context, identity *entity.Identity, gigId string) ([]entity.BidOutputModel, error)
}

type Pipeline interface {
	AcceptBid(ctx context.Context, identity *entity.Identity, gigId string, bidId string) (*entity.BidOutputModel, error)
	MarkComplete(ctx context.Context, identity *entity.Identity, gigId string) (*entity.GigOutputModel, error)

	OwnerPipeline(ctx context.Context, identity *entity.Identity, status string) (*entity.OwnerPipelineOutput, error)
	ProviderPipeline(ctx context.Context, identity *entity.Identity, status string) (*entity.ProviderPipelineOutput, error)
}

type Payment interface {
	CreateOrder(ctx context.Context, identity *entity.Identity, gigSlug string) (*entity.OrderOutputModel, error)
	CapturePayment(ctx context.Context, identity *entity.Identity, orderId string, gigSlug string) (*entity.CaptureOutputModel, error)
	GetOrder(ctx context.Context, identity *entity.Identity, orderId string) (*entity.OrderOutputModel, error)
}

type Rating interface {
	SubmitRating(ctx context.Context, identity *entity.Identity, input *entity.SubmitRatingInput) (*entity.ReviewOutputModel, error)
}

type User interface {
	ResolveIdentity(ctx context.Context, userId uuid.UUID) (*entity.Identity, error)
	UploadAvatar(ctx context.Context, identity *entity.Identity, file io.Reader, mimetype string, name string, size int64) (*entity.UserOutputModel, error)
}

// PaymentGateway is the payment processor the settlement flow talks to.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, input *entity.CreateOrderInput) (*entity.GatewayOrder, error)
	CaptureOrder(ctx context.Context, orderId string) (*entity.GatewayCapture, error)
	GetOrder(ctx context.Context, orderId string) (*entity.GatewayOrder, error)
}

// Notifier delivers notifications on a best-effort basis. Implementations
// must not block the caller.
type Notifier interface {
	Notify(ctx context.Context, n entity.Notification)
}

type FileStorage interface {
	SaveFile(ctx context.Context, file io.Reader, mimetype string, name string, size int64) (*entity.StoredFile, error)
}

type Services struct {
	Diagnostics Diagnostics
	Gig         Gig
	Bid         Bid
	Pipeline    Pipeline
	Payment     Payment
	Rating      Rating
	User        User
}

type Dependencies struct {
	Repos    *repo.Repositories
	Gateway  PaymentGateway
	Notifier Notifier
	Storage  FileStorage // nil disables uploads

	ReturnUrl string
	CancelUrl string

	Now func() time.Time
}

func NewServices(deps Dependencies) *Services {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Services{
		Diagnostics: NewDiagnosticsService(deps.Repos),
		Gig:         NewGigService(deps.Repos),
		Bid:         NewBidService(deps.Repos, deps.Notifier),
		Pipeline:    NewPipelineService(deps.Repos, deps.Notifier, deps.Now),
		Payment:     NewPaymentService(deps.Repos, deps.Gateway, deps.Notifier, deps.ReturnUrl, deps.CancelUrl),
		Rating:      NewRatingService(deps.Repos, deps.Notifier),
		User:        NewUserService(deps.Repos, deps.Storage),
	}
}

// notify is called only after the write it reports on has committed.
func notify(ctx context.Context, n Notifier, notifications ...entity.Notification) {
	if n == nil {
		return
	}

	for _, notification := range notifications {
		n.Notify(ctx, notification)
	}
}
