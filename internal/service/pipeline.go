package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gig-marketplace-api/internal/common"
	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/internal/repo"
	"gig-marketplace-api/internal/repo/repo_errors"
	"gig-marketplace-api/pkg/logger"

	"github.com/google/uuid"
)

// PipelineService drives a gig through open -> in_progress -> completed.
type PipelineService struct {
	gigRepo  repo.Gig
	bidRepo  repo.Bid
	notifier Notifier
	now      func() time.Time
}

func NewPipelineService(repos *repo.Repositories, notifier Notifier, now func() time.Time) *PipelineService {
	return &PipelineService{
		gigRepo:  repos.Gig,
		bidRepo:  repos.Bid,
		notifier: notifier,
		now:      now,
	}
}

func (s *PipelineService) getGig(ctx context.Context, gigId string) (*entity.Gig, error) {
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
	if gig.IsRemoved {
		return nil, ErrGigNotFound
	}

	return gig, nil
}

// AcceptBid accepts one pending bid of an open gig and rejects the others.
// Of two concurrent acceptances only one commits, the other one sees the
// pipeline already in progress.
func (s *PipelineService) AcceptBid(ctx context.Context, identity *entity.Identity, gigId string, bidId string) (*entity.BidOutputModel, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}

	gig, err := s.getGig(ctx, gigId)
	if err != nil {
		return nil, err
	}
	if gig.UserId != identity.UserId {
		return nil, ErrNotGigOwner
	}
	if !common.CanAdvancePipeline(gig.PipelineStatus, common.PipelineInProgress) {
		return nil, ErrGigNotOpen
	}

	bidUuid, err := uuid.Parse(bidId)
	if err != nil {
		return nil, ErrInvalidId
	}

	result, err := s.bidRepo.AcceptBid(ctx, gig.Id, bidUuid)
	if err != nil {
		switch {
		case errors.Is(err, repo_errors.ErrNotFound):
			return nil, ErrBidNotFound
		case errors.Is(err, repo_errors.ErrStatusMismatch):
			return nil, ErrGigNotOpen
		case errors.Is(err, repo_errors.ErrBidNotPending):
			return nil, ErrBidNotPending
		}

		return nil, err
	}

	logger.FromContext(ctx).Info("bid accepted",
		"gig_id", gig.Id, "bid_id", result.Accepted.Id, "rejected", len(result.RejectedProviders))

	notifications := []entity.Notification{{
		TargetUserId: result.Accepted.ProviderId,
		Title:        "Bid accepted",
		Message:      fmt.Sprintf("Your bid on \"%s\" was accepted", gig.Title),
		Module:       common.ModuleBid,
		Type:         common.NotificationSuccess,
	}}
	for _, providerId := range result.RejectedProviders {
		notifications = append(notifications, entity.Notification{
			TargetUserId: providerId,
			Title:        "Bid not selected",
			Message:      fmt.Sprintf("Another bid was chosen for \"%s\"", gig.Title),
			Module:       common.ModuleBid,
			Type:         common.NotificationInfo,
		})
	}
	notify(ctx, s.notifier, notifications...)

	return mapBid(&result.Accepted), nil
}

// MarkComplete lets the accepted provider finish an in-progress gig.
func (s *PipelineService) MarkComplete(ctx context.Context, identity *entity.Identity, gigId string) (*entity.GigOutputModel, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}

	gig, err := s.getGig(ctx, gigId)
	if err != nil {
		return nil, err
	}
	if !common.CanAdvancePipeline(gig.PipelineStatus, common.PipelineCompleted) {
		return nil, ErrGigNotInProgress
	}

	accepted, err := s.bidRepo.GetAcceptedBids(ctx, gig.Id)
	if err != nil {
		return nil, err
	}
	if len(accepted) != 1 || accepted[0].ProviderId != identity.UserId {
		return nil, ErrNotAcceptedProvider
	}

	if err := s.gigRepo.CompleteGig(ctx, gig.Id, s.now().UTC()); err != nil {
		if errors.Is(err, repo_errors.ErrStatusMismatch) {
			return nil, ErrGigNotInProgress
		}

		return nil, err
	}

	gig, err = s.gigRepo.GetGigById(ctx, gig.Id)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("gig completed", "gig_id", gig.Id)

	notify(ctx, s.notifier, entity.Notification{
		TargetUserId: gig.UserId,
		Title:        "Gig completed",
		Message:      fmt.Sprintf("\"%s\" was marked as completed", gig.Title),
		Module:       common.ModuleGig,
		Type:         common.NotificationSuccess,
	})

	return mapGig(gig), nil
}

func (s *PipelineService) OwnerPipeline(ctx context.Context, identity *entity.Identity, status string) (*entity.OwnerPipelineOutput, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}
	if status != "" && !common.IsPipelineStatus(status) {
		return nil, ErrInvalidPipelineStatus
	}

	gigs, err := s.gigRepo.GetOwnerGigs(ctx, identity.UserId, status)
	if err != nil {
		return nil, err
	}

	counts, err := s.gigRepo.CountOwnerGigsByStatus(ctx, identity.UserId)
	if err != nil {
		return nil, err
	}

	return &entity.OwnerPipelineOutput{
		Counts: withAllStatuses(counts, common.PipelineStatuses),
		Gigs:   mapGigs(gigs),
	}, nil
}

func (s *PipelineService) ProviderPipeline(ctx context.Context, identity *entity.Identity, status string) (*entity.ProviderPipelineOutput, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}
	if status != "" && !common.IsBidStatus(status) {
		return nil, ErrInvalidBidStatus
	}

	bids, err := s.bidRepo.GetProviderBids(ctx, identity.UserId, status)
	if err != nil {
		return nil, err
	}

	counts, err := s.bidRepo.CountProviderBidsByStatus(ctx, identity.UserId)
	if err != nil {
		return nil, err
	}

	return &entity.ProviderPipelineOutput{
		Counts: withAllStatuses(counts, common.BidStatuses),
		Bids:   mapProviderBids(bids),
	}, nil
}
