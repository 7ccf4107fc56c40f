package service

import (
	"time"

	"gig-marketplace-api/internal/entity"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func mapGig(g *entity.Gig) *entity.GigOutputModel {
	out := &entity.GigOutputModel{
		Id:             g.Id.String(),
		OwnerId:        g.UserId.String(),
		Title:          g.Title,
		Description:    g.Description,
		Tier:           g.Tier,
		PriceMin:       g.PriceMin,
		PriceMax:       g.PriceMax,
		Keywords:       g.Keywords,
		StartDate:      formatTime(g.StartDate),
		EndDate:        formatTime(g.EndDate),
		Slug:           g.Slug,
		PipelineStatus: g.PipelineStatus,
		CreatedAt:      formatTime(g.CreatedAt),
	}
	if out.Keywords == nil {
		out.Keywords = []string{}
	}
	if g.CompletedAt != nil {
		completedAt := formatTime(*g.CompletedAt)
		out.CompletedAt = &completedAt
	}

	return out
}

func mapGigs(g []entity.Gig) []entity.GigOutputModel {
	s := make([]entity.GigOutputModel, 0)
	for _, gig := range g {
		s = append(s, *mapGig(&gig))
	}

	return s
}

func mapBid(b *entity.Bid) *entity.BidOutputModel {
	return &entity.BidOutputModel{
		Id:           b.Id.String(),
		GigId:        b.GigId.String(),
		ProviderId:   b.ProviderId.String(),
		ProviderName: b.ProviderName,
		Proposal:     b.Proposal,
		BidPrice:     b.BidPrice,
		Status:       b.Status,
		CreatedAt:    formatTime(b.CreatedAt),
	}
}

func mapBids(b []entity.Bid) []entity.BidOutputModel {
	s := make([]entity.BidOutputModel, 0)
	for _, bid := range b {
		s = append(s, *mapBid(&bid))
	}

	return s
}

func mapProviderBids(b []entity.ProviderBid) []entity.ProviderBidOutputModel {
	s := make([]entity.ProviderBidOutputModel, 0)
	for _, bid := range b {
		s = append(s, entity.ProviderBidOutputModel{
			BidOutputModel: *mapBid(&bid.Bid),
			GigTitle:       bid.GigTitle,
			GigSlug:        bid.GigSlug,
			PipelineStatus: bid.PipelineStatus,
		})
	}

	return s
}

func mapReview(r *entity.ReviewRating, summary *entity.RatingSummary) *entity.ReviewOutputModel {
	out := &entity.ReviewOutputModel{
		Id:         r.Id.String(),
		GigId:      r.GigId.String(),
		ProviderId: r.ProviderId.String(),
		Rating:     r.Rating,
		Feedback:   r.RatingFeedback,
		Status:     r.Status,
	}
	if summary != nil {
		out.AverageRating = summary.AverageRating
		out.TotalRatings = summary.TotalRatings
	}

	return out
}

func mapUser(u *entity.User) *entity.UserOutputModel {
	return &entity.UserOutputModel{
		Id:            u.Id.String(),
		Name:          u.Name,
		Role:          u.Role,
		AverageRating: u.AverageRating,
		TotalRatings:  u.TotalRatings,
		AvatarUrl:     u.AvatarUrl,
	}
}

// withAllStatuses makes every known status appear in the counts, zero or not.
func withAllStatuses(counts map[string]int, statuses []string) map[string]int {
	out := make(map[string]int, len(statuses))
	for _, status := range statuses {
		out[status] = counts[status]
	}

	return out
}
