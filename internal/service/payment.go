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

// GatewayCompleted is the order and capture status of a settled payment.
const GatewayCompleted = "COMPLETED"

type PaymentService struct {
	gigRepo     repo.Gig
	bidRepo     repo.Bid
	paymentRepo repo.Payment
	userRepo    repo.User
	gateway     PaymentGateway
	notifier    Notifier
	returnUrl   string
	cancelUrl   string
}

func NewPaymentService(repos *repo.Repositories, gateway PaymentGateway, notifier Notifier, returnUrl, cancelUrl string) *PaymentService {
	return &PaymentService{
		gigRepo:     repos.Gig,
		bidRepo:     repos.Bid,
		paymentRepo: repos.Payment,
		userRepo:    repos.User,
		gateway:     gateway,
		notifier:    notifier,
		returnUrl:   returnUrl,
		cancelUrl:   cancelUrl,
	}
}

func (s *PaymentService) getGigBySlug(ctx context.Context, slug string) (*entity.Gig, error) {
	gig, err := s.gigRepo.GetGigBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrGigNotFound
		}

		return nil, err
	}

	return gig, nil
}

func (s *PaymentService) getAcceptedBid(ctx context.Context, gigId uuid.UUID) (*entity.Bid, error) {
	bids, err := s.bidRepo.GetAcceptedBids(ctx, gigId)
	if err != nil {
		return nil, err
	}
	if len(bids) == 0 {
		return nil, ErrNoAcceptedBid
	}

	return &bids[0], nil
}

// CreateOrder opens a gateway order for the accepted bid's price and records
// the held payment for the gig.
func (s *PaymentService) CreateOrder(ctx context.Context, identity *entity.Identity, gigSlug string) (*entity.OrderOutputModel, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}

	gig, err := s.getGigBySlug(ctx, gigSlug)
	if err != nil {
		return nil, err
	}
	if gig.UserId != identity.UserId {
		return nil, ErrNotGigOwner
	}

	bid, err := s.getAcceptedBid(ctx, gig.Id)
	if err != nil {
		return nil, err
	}

	paymentId := uuid.New()
	existing, err := s.paymentRepo.GetPaymentByGig(ctx, common.PaymentMethodPayPal, gig.Id)
	switch {
	case err == nil:
		if existing.Status == common.PaymentCompleted {
			return nil, ErrPaymentAlreadyCompleted
		}
		paymentId = existing.Id
	case !errors.Is(err, repo_errors.ErrNotFound):
		return nil, err
	}

	order, err := s.gateway.CreateOrder(ctx, &entity.CreateOrderInput{
		Amount:      bid.BidPrice,
		GigId:       gig.Id,
		PaymentId:   paymentId,
		Description: fmt.Sprintf("Payment for %s", gig.Title),
		ReturnUrl:   s.returnUrl,
		CancelUrl:   s.cancelUrl,
	})
	if err != nil {
		return nil, ErrOrderFailed.Wrap(err)
	}

	payment, err := s.paymentRepo.UpsertHeldPayment(ctx, &entity.UpsertPaymentInput{
		Id:            paymentId,
		GigId:         gig.Id,
		ProviderId:    bid.ProviderId,
		UserId:        gig.UserId,
		Amount:        bid.BidPrice,
		PaymentMethod: common.PaymentMethodPayPal,
		OrderId:       order.Id,
	})
	if err != nil {
		if errors.Is(err, repo_errors.ErrStatusMismatch) {
			return nil, ErrPaymentAlreadyCompleted
		}

		return nil, err
	}

	logger.FromContext(ctx).Info("payment order created", "gig_id", gig.Id, "order_id", order.Id, "payment_id", payment.Id)

	return &entity.OrderOutputModel{
		OrderId:     order.Id,
		Status:      order.Status,
		ApproveLink: order.ApproveLink,
		PaymentId:   payment.Id.String(),
	}, nil
}

// CapturePayment captures the order at the gateway and settles the gig. It is
// safe to call again for the same order: the payment transition and the
// earning are applied at most once, review approval is repeated.
func (s *PaymentService) CapturePayment(ctx context.Context, identity *entity.Identity, orderId string, gigSlug string) (*entity.CaptureOutputModel, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}

	orderId = strings.TrimSpace(orderId)
	gigSlug = strings.TrimSpace(gigSlug)
	if orderId == "" || gigSlug == "" {
		return nil, ErrInvalidCapture
	}

	log := logger.FromContext(ctx)

	gig, err := s.getGigBySlug(ctx, gigSlug)
	if err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.GetPaymentByGig(ctx, common.PaymentMethodPayPal, gig.Id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}

		return nil, err
	}
	if payment.OrderId != orderId {
		log.Warn("capture rejected, order differs from recorded order",
			"payment_id", payment.Id, "recorded_order_id", payment.OrderId, "order_id", orderId)
		return nil, ErrOrderMismatch
	}

	bid, err := s.getAcceptedBid(ctx, gig.Id)
	if err != nil {
		return nil, err
	}

	capture, err := s.gateway.CaptureOrder(ctx, orderId)
	if err != nil {
		log.Warn("payment capture failed", "order_id", orderId, "error", err)
		return nil, ErrPaymentFailed.Wrap(err)
	}
	if capture.Status != GatewayCompleted {
		log.Warn("payment capture not completed", "order_id", orderId, "status", capture.Status)
		return nil, ErrPaymentFailed
	}

	transactionId := capture.CaptureId
	if transactionId == "" {
		transactionId = capture.OrderId
	}

	result, err := s.paymentRepo.SettleCapture(ctx, &entity.SettleInput{
		PaymentId:     payment.Id,
		GigId:         gig.Id,
		PayerId:       gig.UserId,
		ProviderId:    bid.ProviderId,
		Amount:        bid.BidPrice,
		TransactionId: transactionId,
	})
	if err != nil {
		return nil, err
	}

	// approvals change what the aggregates count
	for _, providerId := range result.ReviewedProviders {
		if _, err := s.userRepo.RecomputeProviderRating(ctx, providerId); err != nil {
			log.Error("failed to recompute provider rating", "provider_id", providerId, "error", err)
		}
	}

	log.Info("payment settled",
		"gig_id", gig.Id,
		"payment_id", payment.Id,
		"payment_completed", result.PaymentCompleted,
		"earning_created", result.EarningCreated,
		"reviews_approved", result.ReviewsApproved,
	)

	if result.PaymentCompleted {
		notify(ctx, s.notifier,
			entity.Notification{
				TargetUserId: gig.UserId,
				Title:        "Payment completed",
				Message:      fmt.Sprintf("Your payment for \"%s\" was completed", gig.Title),
				Module:       common.ModulePayment,
				Type:         common.NotificationSuccess,
			},
			entity.Notification{
				TargetUserId: bid.ProviderId,
				Title:        "Payment received",
				Message:      fmt.Sprintf("You received %s for \"%s\"", bid.BidPrice.StringFixed(2), gig.Title),
				Module:       common.ModulePayment,
				Type:         common.NotificationSuccess,
			},
		)
	}

	return &entity.CaptureOutputModel{
		TransactionId: transactionId,
		ProviderName:  bid.ProviderName,
		GigTitle:      gig.Title,
		PaymentId:     payment.Id.String(),
	}, nil
}

func (s *PaymentService) GetOrder(ctx context.Context, identity *entity.Identity, orderId string) (*entity.OrderOutputModel, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}

	order, err := s.gateway.GetOrder(ctx, orderId)
	if err != nil {
		return nil, ErrPaymentFailed.Wrap(err)
	}

	return &entity.OrderOutputModel{
		OrderId:     order.Id,
		Status:      order.Status,
		ApproveLink: order.ApproveLink,
	}, nil
}
