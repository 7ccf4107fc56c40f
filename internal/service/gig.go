package service

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"gig-marketplace-api/internal/common"
	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/internal/repo"
	"gig-marketplace-api/internal/repo/repo_errors"
	"gig-marketplace-api/pkg/logger"

	"github.com/google/uuid"
)

const maxSlugBase = 60

type GigService struct {
	gigRepo repo.Gig
}

func NewGigService(repos *repo.Repositories) *GigService {
	return &GigService{repos.Gig}
}

func (s *GigService) CreateGig(ctx context.Context, identity *entity.Identity, input *entity.CreateGigInput) (*entity.GigOutputModel, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}
	if identity.IsBanned {
		return nil, ErrUserBanned
	}
	if identity.Role == common.RoleProvider {
		return nil, ErrCannotCreateGig
	}

	if fields := validateGig(input); len(fields) > 0 {
		return nil, ErrInvalidGig.WithFields(fields)
	}

	input.UserId = identity.UserId
	input.Keywords = normalizeKeywords(input.Keywords)
	input.Slug = makeSlug(input.Title, uuid.New())

	id, err := s.gigRepo.CreateGig(ctx, input)
	if err != nil {
		if errors.Is(err, repo_errors.ErrAlreadyExists) {
			return nil, ErrGigSlugTaken
		}

		return nil, err
	}

	gig, err := s.gigRepo.GetGigById(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("gig created", "gig_id", gig.Id, "slug", gig.Slug)

	return mapGig(gig), nil
}

func (s *GigService) GetGigBySlug(ctx context.Context, slug string) (*entity.GigOutputModel, error) {
	gig, err := s.gigRepo.GetGigBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrGigNotFound
		}

		return nil, err
	}
	if gig.IsRemoved {
		return nil, ErrGigNotFound
	}

	return mapGig(gig), nil
}

func (s *GigService) ListGigs(ctx context.Context, filter *entity.GigFilter, pg *entity.PaginationInput) ([]entity.GigOutputModel, error) {
	if filter != nil {
		if fields := validateFilter(filter); len(fields) > 0 {
			return nil, ErrInvalidFilter.WithFields(fields)
		}
	}

	gigs, err := s.gigRepo.GetOpenGigs(ctx, filter, pg)
	if err != nil {
		return nil, err
	}

	return mapGigs(gigs), nil
}

func (s *GigService) RemoveGig(ctx context.Context, identity *entity.Identity, gigId string) error {
	if identity == nil {
		return ErrUnauthorized
	}

	id, err := uuid.Parse(gigId)
	if err != nil {
		return ErrInvalidId
	}

	gig, err := s.gigRepo.GetGigById(ctx, id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return ErrGigNotFound
		}

		return err
	}
	if gig.IsRemoved {
		return ErrGigNotFound
	}
	if gig.UserId != identity.UserId {
		return ErrNotGigOwner
	}

	if err := s.gigRepo.RemoveGig(ctx, id); err != nil {
		if errors.Is(err, repo_errors.ErrStatusMismatch) {
			return ErrGigCannotBeRemoved
		}

		return err
	}

	logger.FromContext(ctx).Info("gig removed", "gig_id", id)

	return nil
}

func validateGig(input *entity.CreateGigInput) map[string]string {
	fields := make(map[string]string)

	if strings.TrimSpace(input.Title) == "" {
		fields["title"] = "title is required"
	}
	if strings.TrimSpace(input.Description) == "" {
		fields["description"] = "description is required"
	}
	if !isTier(input.Tier) {
		fields["tier"] = "tier must be one of basic, standard, premium"
	}
	if input.PriceMin.IsNegative() {
		fields["priceMin"] = "priceMin must not be negative"
	}
	if input.PriceMax.LessThan(input.PriceMin) {
		fields["priceMax"] = "priceMax must not be less than priceMin"
	}
	if input.StartDate.IsZero() {
		fields["startDate"] = "startDate is required"
	}
	if input.EndDate.IsZero() {
		fields["endDate"] = "endDate is required"
	} else if input.EndDate.Before(input.StartDate) {
		fields["endDate"] = "endDate must not be before startDate"
	}

	return fields
}

func validateFilter(f *entity.GigFilter) map[string]string {
	fields := make(map[string]string)

	if f.PriceMin != nil && f.PriceMax != nil && f.PriceMax.LessThan(*f.PriceMin) {
		fields["priceMax"] = "priceMax must not be less than priceMin"
	}
	for _, tier := range f.Tiers {
		if !isTier(tier) {
			fields["tiers"] = "unknown tier " + tier
			break
		}
	}
	if f.StartFrom != nil && f.EndTo != nil && f.EndTo.Before(*f.StartFrom) {
		fields["endTo"] = "endTo must not be before startFrom"
	}

	return fields
}

func isTier(tier string) bool {
	switch tier {
	case common.TierBasic, common.TierStandard, common.TierPremium:
		return true
	}

	return false
}

// normalizeKeywords lower-cases, trims and de-duplicates keywords so the
// keyword search can compare them exactly.
func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}

	return out
}

// makeSlug builds "<title-words>-<8 hex chars>" from the title and id.
func makeSlug(title string, id uuid.UUID) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= maxSlugBase {
			break
		}
	}

	base := strings.Trim(b.String(), "-")
	suffix := strings.ReplaceAll(id.String(), "-", "")[:8]
	if base == "" {
		return "gig-" + suffix
	}

	return base + "-" + suffix
}
