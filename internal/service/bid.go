package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gig-marketplace-api/internal/common"
	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/internal/repo"
	"gig-marketplace-api/internal/repo/repo_errors"
	"gig-marketplace-api/pkg/logger"

	"github.com/google/uuid"
)

const minProposalLength = 10

type BidService struct {
	gigRepo  repo.Gig
	bidRepo  repo.Bid
	notifier Notifier
}

func NewBidService(repos *repo.Repositories, notifier Notifier) *BidService {
	return &BidService{
		gigRepo:  repos.Gig,
		bidRepo:  repos.Bid,
		notifier: notifier,
	}
}

func (s *BidService) PlaceBid(ctx context.Context, identity *entity.Identity, input *entity.PlaceBidInput) (*entity.BidOutputModel, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}

	if fields := validateBid(input); len(fields) > 0 {
		return nil, ErrInvalidBid.WithFields(fields)
	}

	if identity.Role != common.RoleProvider {
		return nil, ErrOnlyProvidersCanBid
	}
	if identity.IsBanned {
		return nil, ErrUserBanned
	}

	gigId, err := uuid.Parse(input.GigId)
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
	if gig.IsRemoved {
		return nil, ErrGigNotFound
	}
	if gig.UserId == identity.UserId {
		return nil, ErrSelfBid
	}
	if gig.PipelineStatus != common.PipelineOpen {
		return nil, ErrGigNotOpen
	}

	// fast path only, the unique (gig_id, provider_id) constraint decides
	exists, err := s.bidRepo.HasProviderBid(ctx, gigId, identity.UserId)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateBid
	}

	bidId, err := s.bidRepo.CreateBid(ctx, &entity.CreateBidInput{
		GigId:      gigId,
		ProviderId: identity.UserId,
		UserId:     gig.UserId,
		Proposal:   strings.TrimSpace(input.Proposal),
		BidPrice:   input.BidPrice,
	})
	if err != nil {
		switch {
		case errors.Is(err, repo_errors.ErrAlreadyExists):
			return nil, ErrDuplicateBid
		case errors.Is(err, repo_errors.ErrStatusMismatch):
			return nil, ErrGigNotOpen
		case errors.Is(err, repo_errors.ErrNotFound):
			return nil, ErrGigNotFound
		}

		return nil, err
	}

	bid, err := s.bidRepo.GetBidById(ctx, bidId)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("bid placed", "bid_id", bid.Id, "gig_id", gigId)

	notify(ctx, s.notifier, entity.Notification{
		TargetUserId: gig.UserId,
		Title:        "New bid received",
		Message:      fmt.Sprintf("A provider bid %s on \"%s\"", bid.BidPrice.StringFixed(2), gig.Title),
		Module:       common.ModuleBid,
		Type:         common.NotificationInfo,
	})

	return mapBid(bid), nil
}

func (s *BidService) ListGigBids(ctx context.Context, identity *entity.Identity, gigId string) ([]entity.BidOutputModel, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}

	id, err := uuid.Parse(gigId)
	if err != nil {
		return nil, ErrInvalidId
	}

	gig, err := s.gigRepo.GetGigById(ctx, id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrGigNotFound
		}

		return nil, err
	}
	if gig.UserId != identity.UserId && identity.Role != common.RoleAdmin {
		return nil, ErrNotGigOwner
	}

	bids, err := s.bidRepo.GetGigBids(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapBids(bids), nil
}

func validateBid(input *entity.PlaceBidInput) map[string]string {
	fields := make(map[string]string)

	if utf8.RuneCountInString(strings.TrimSpace(input.Proposal)) < minProposalLength {
		fields["proposal"] = fmt.Sprintf("proposal must be at least %d characters", minProposalLength)
	}
	if !input.BidPrice.IsPositive() {
		fields["bidPrice"] = "bidPrice must be greater than 0"
	}

	return fields
}
