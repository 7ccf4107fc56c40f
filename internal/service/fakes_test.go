package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"gig-marketplace-api/internal/common"
	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/internal/repo"
	"gig-marketplace-api/internal/repo/repo_errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	_ repo.Diagnostics = (*memStore)(nil)
	_ repo.User        = (*memStore)(nil)
	_ repo.Gig         = (*memStore)(nil)
	_ repo.Bid         = (*memStore)(nil)
	_ repo.Payment     = (*memStore)(nil)
	_ repo.Review      = (*memStore)(nil)
)

// memStore is an in-memory store with the same guarded updates the SQL
// repositories perform. One mutex plays the role of the transaction.
type memStore struct {
	mu sync.Mutex

	clock    time.Time
	users    []*entity.User
	gigs     []*entity.Gig
	bids     []*entity.Bid
	payments []*entity.Payment
	earnings []*entity.ProviderEarning
	reviews  []*entity.ReviewRating
}

func newMemStore() *memStore {
	return &memStore{clock: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) addUser(name, role string) *entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := &entity.User{Id: uuid.New(), Name: name, Email: strings.ToLower(name) + "@example.com", Role: role}
	m.users = append(m.users, u)

	c := *u
	return &c
}

func (m *memStore) ban(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u := m.findUser(id); u != nil {
		u.IsBanned = true
	}
}

func (m *memStore) findUser(id uuid.UUID) *entity.User {
	for _, u := range m.users {
		if u.Id == id {
			return u
		}
	}

	return nil
}

func (m *memStore) findGig(id uuid.UUID) *entity.Gig {
	for _, g := range m.gigs {
		if g.Id == id {
			return g
		}
	}

	return nil
}

func (m *memStore) findBid(id uuid.UUID) *entity.Bid {
	for _, b := range m.bids {
		if b.Id == id {
			return b
		}
	}

	return nil
}

func (m *memStore) copyBid(b *entity.Bid) entity.Bid {
	c := *b
	if u := m.findUser(b.ProviderId); u != nil {
		c.ProviderName = u.Name
	}

	return c
}

// snapshot helpers for assertions

func (m *memStore) pipelineStatus(gigId uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.findGig(gigId).PipelineStatus
}

func (m *memStore) gig(gigId uuid.UUID) entity.Gig {
	m.mu.Lock()
	defer m.mu.Unlock()

	return *m.findGig(gigId)
}

func (m *memStore) bidsOf(gigId uuid.UUID) []entity.Bid {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []entity.Bid
	for _, b := range m.bids {
		if b.GigId == gigId {
			out = append(out, *b)
		}
	}

	return out
}

func (m *memStore) completedEarnings(gigId uuid.UUID) []entity.ProviderEarning {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []entity.ProviderEarning
	for _, e := range m.earnings {
		if e.GigId == gigId && e.Status == common.EarningCompleted {
			out = append(out, *e)
		}
	}

	return out
}

func (m *memStore) reviewsOf(gigId uuid.UUID) []entity.ReviewRating {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []entity.ReviewRating
	for _, r := range m.reviews {
		if r.GigId == gigId {
			out = append(out, *r)
		}
	}

	return out
}

func (m *memStore) user(id uuid.UUID) entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	return *m.findUser(id)
}

// Diagnostics

func (m *memStore) Ping(ctx context.Context) error {
	return nil
}

// User

func (m *memStore) GetUserById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.findUser(id)
	if u == nil {
		return nil, repo_errors.ErrNotFound
	}

	c := *u
	return &c, nil
}

func (m *memStore) UpdateAvatarUrl(ctx context.Context, id uuid.UUID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.findUser(id)
	if u == nil {
		return repo_errors.ErrNotFound
	}
	u.AvatarUrl = url

	return nil
}

func (m *memStore) RecomputeProviderRating(ctx context.Context, providerId uuid.UUID) (*entity.RatingSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.findUser(providerId)
	if u == nil {
		return nil, repo_errors.ErrNotFound
	}

	var sum, n int64
	for _, r := range m.reviews {
		if r.ProviderId == providerId && r.Status == common.ReviewApproved {
			sum += int64(r.Rating)
			n++
		}
	}

	avg := decimal.Zero
	if n > 0 {
		avg = decimal.NewFromInt(sum).Div(decimal.NewFromInt(n)).Round(2)
	}
	u.AverageRating = avg
	u.TotalRatings = int(n)

	return &entity.RatingSummary{AverageRating: avg, TotalRatings: int(n)}, nil
}

// Gig

func (m *memStore) CreateGig(ctx context.Context, input *entity.CreateGigInput) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, g := range m.gigs {
		if g.Slug == input.Slug {
			return uuid.Nil, repo_errors.ErrAlreadyExists
		}
	}

	g := &entity.Gig{
		Id:             uuid.New(),
		UserId:         input.UserId,
		Title:          input.Title,
		Description:    input.Description,
		Tier:           input.Tier,
		PriceMin:       input.PriceMin,
		PriceMax:       input.PriceMax,
		Keywords:       input.Keywords,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Slug:           input.Slug,
		CreatedAt:      m.tick(),
		PipelineStatus: common.PipelineOpen,
	}
	m.gigs = append(m.gigs, g)

	return g.Id, nil
}

func (m *memStore) GetGigById(ctx context.Context, id uuid.UUID) (*entity.Gig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.findGig(id)
	if g == nil {
		return nil, repo_errors.ErrNotFound
	}

	c := *g
	return &c, nil
}

func (m *memStore) GetGigBySlug(ctx context.Context, slug string) (*entity.Gig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, g := range m.gigs {
		if g.Slug == slug {
			c := *g
			return &c, nil
		}
	}

	return nil, repo_errors.ErrNotFound
}

func (m *memStore) listGigs(keep func(g *entity.Gig) bool) []entity.Gig {
	out := make([]entity.Gig, 0)
	for _, g := range m.gigs {
		if keep(g) {
			out = append(out, *g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out
}

func (m *memStore) GetOpenGigs(ctx context.Context, filter *entity.GigFilter, pg *entity.PaginationInput) ([]entity.Gig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gigs := m.listGigs(func(g *entity.Gig) bool {
		return !g.IsRemoved && g.PipelineStatus == common.PipelineOpen
	})

	if pg.Offset >= len(gigs) {
		return []entity.Gig{}, nil
	}
	end := pg.Offset + pg.Limit
	if end > len(gigs) {
		end = len(gigs)
	}

	return gigs[pg.Offset:end], nil
}

func (m *memStore) GetOwnerGigs(ctx context.Context, ownerId uuid.UUID, status string) ([]entity.Gig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listGigs(func(g *entity.Gig) bool {
		return g.UserId == ownerId && !g.IsRemoved && (status == "" || g.PipelineStatus == status)
	}), nil
}

func (m *memStore) CountOwnerGigsByStatus(ctx context.Context, ownerId uuid.UUID) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]int)
	for _, g := range m.gigs {
		if g.UserId == ownerId && !g.IsRemoved {
			counts[g.PipelineStatus]++
		}
	}

	return counts, nil
}

func (m *memStore) RemoveGig(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.findGig(id)
	if g == nil || g.IsRemoved || g.PipelineStatus != common.PipelineOpen {
		return repo_errors.ErrStatusMismatch
	}
	g.IsRemoved = true

	return nil
}

func (m *memStore) CompleteGig(ctx context.Context, id uuid.UUID, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.findGig(id)
	if g == nil || g.PipelineStatus != common.PipelineInProgress {
		return repo_errors.ErrStatusMismatch
	}
	g.PipelineStatus = common.PipelineCompleted
	g.CompletedAt = &completedAt

	return nil
}

// Bid

func (m *memStore) CreateBid(ctx context.Context, input *entity.CreateBidInput) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.findGig(input.GigId)
	if g == nil {
		return uuid.Nil, repo_errors.ErrNotFound
	}
	if g.PipelineStatus != common.PipelineOpen {
		return uuid.Nil, repo_errors.ErrStatusMismatch
	}

	for _, b := range m.bids {
		if b.GigId == input.GigId && b.ProviderId == input.ProviderId {
			return uuid.Nil, repo_errors.ErrAlreadyExists
		}
	}

	b := &entity.Bid{
		Id:         uuid.New(),
		GigId:      input.GigId,
		ProviderId: input.ProviderId,
		UserId:     input.UserId,
		Proposal:   input.Proposal,
		BidPrice:   input.BidPrice,
		Status:     common.BidPending,
		CreatedAt:  m.tick(),
	}
	m.bids = append(m.bids, b)

	return b.Id, nil
}

func (m *memStore) GetBidById(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.findBid(id)
	if b == nil {
		return nil, repo_errors.ErrNotFound
	}

	c := m.copyBid(b)
	return &c, nil
}

func (m *memStore) HasProviderBid(ctx context.Context, gigId uuid.UUID, providerId uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.bids {
		if b.GigId == gigId && b.ProviderId == providerId {
			return true, nil
		}
	}

	return false, nil
}

func (m *memStore) GetGigBids(ctx context.Context, gigId uuid.UUID) ([]entity.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]entity.Bid, 0)
	for _, b := range m.bids {
		if b.GigId == gigId {
			out = append(out, m.copyBid(b))
		}
	}

	return out, nil
}

func (m *memStore) GetAcceptedBids(ctx context.Context, gigId uuid.UUID) ([]entity.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]entity.Bid, 0)
	for _, b := range m.bids {
		if b.GigId == gigId && b.Status == common.BidAccepted {
			out = append(out, m.copyBid(b))
		}
	}

	return out, nil
}

func (m *memStore) AcceptBid(ctx context.Context, gigId uuid.UUID, bidId uuid.UUID) (*entity.AcceptBidResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.findGig(gigId)
	if g == nil {
		return nil, repo_errors.ErrNotFound
	}
	if g.PipelineStatus != common.PipelineOpen {
		return nil, repo_errors.ErrStatusMismatch
	}

	target := m.findBid(bidId)
	if target == nil || target.GigId != gigId {
		return nil, repo_errors.ErrNotFound
	}
	if target.Status != common.BidPending {
		return nil, repo_errors.ErrBidNotPending
	}

	var result entity.AcceptBidResult
	for _, b := range m.bids {
		if b.GigId != gigId || b.Status != common.BidPending {
			continue
		}
		if b.Id == bidId {
			b.Status = common.BidAccepted
		} else {
			b.Status = common.BidRejected
			result.RejectedProviders = append(result.RejectedProviders, b.ProviderId)
		}
	}
	g.PipelineStatus = common.PipelineInProgress
	result.Accepted = m.copyBid(target)

	return &result, nil
}

func (m *memStore) GetProviderBids(ctx context.Context, providerId uuid.UUID, status string) ([]entity.ProviderBid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]entity.ProviderBid, 0)
	for _, b := range m.bids {
		if b.ProviderId != providerId || (status != "" && b.Status != status) {
			continue
		}
		g := m.findGig(b.GigId)
		out = append(out, entity.ProviderBid{
			Bid:            m.copyBid(b),
			GigTitle:       g.Title,
			GigSlug:        g.Slug,
			PipelineStatus: g.PipelineStatus,
		})
	}

	return out, nil
}

func (m *memStore) CountProviderBidsByStatus(ctx context.Context, providerId uuid.UUID) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]int)
	for _, b := range m.bids {
		if b.ProviderId == providerId {
			counts[b.Status]++
		}
	}

	return counts, nil
}

// Payment

func (m *memStore) findPayment(method string, gigId uuid.UUID) *entity.Payment {
	for _, p := range m.payments {
		if p.PaymentMethod == method && p.GigId == gigId {
			return p
		}
	}

	return nil
}

func (m *memStore) UpsertHeldPayment(ctx context.Context, input *entity.UpsertPaymentInput) (*entity.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.findPayment(input.PaymentMethod, input.GigId)
	if p == nil {
		p = &entity.Payment{
			Id:            input.Id,
			GigId:         input.GigId,
			UserId:        input.UserId,
			PaymentMethod: input.PaymentMethod,
			CreatedAt:     m.tick(),
		}
		m.payments = append(m.payments, p)
	} else if p.Status == common.PaymentCompleted {
		return nil, repo_errors.ErrStatusMismatch
	}

	p.OrderId = input.OrderId
	p.Amount = input.Amount
	p.ProviderId = input.ProviderId
	p.Status = common.PaymentHeld
	p.RequestStatus = common.RequestPending

	c := *p
	return &c, nil
}

func (m *memStore) GetPaymentByGig(ctx context.Context, paymentMethod string, gigId uuid.UUID) (*entity.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.findPayment(paymentMethod, gigId)
	if p == nil {
		return nil, repo_errors.ErrNotFound
	}

	c := *p
	return &c, nil
}

func (m *memStore) SettleCapture(ctx context.Context, input *entity.SettleInput) (*entity.SettleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result entity.SettleResult

	for _, p := range m.payments {
		if p.Id == input.PaymentId && (p.Status == common.PaymentHeld || p.RequestStatus == common.RequestPending) {
			p.Status = common.PaymentCompleted
			p.RequestStatus = common.RequestAccepted
			p.TransactionId = input.TransactionId
			result.PaymentCompleted = true
		}
	}

	hasEarning := false
	for _, e := range m.earnings {
		if e.GigId == input.GigId && e.Status == common.EarningCompleted {
			hasEarning = true
		}
	}
	if !hasEarning {
		m.earnings = append(m.earnings, &entity.ProviderEarning{
			Id:         uuid.New(),
			UserId:     input.PayerId,
			ProviderId: input.ProviderId,
			GigId:      input.GigId,
			Amount:     input.Amount,
			Status:     common.EarningCompleted,
			CreatedAt:  m.tick(),
		})
		result.EarningCreated = true
	}

	seen := make(map[uuid.UUID]bool)
	for _, r := range m.reviews {
		if r.GigId == input.GigId {
			r.Status = common.ReviewApproved
			result.ReviewsApproved++
			if !seen[r.ProviderId] {
				seen[r.ProviderId] = true
				result.ReviewedProviders = append(result.ReviewedProviders, r.ProviderId)
			}
		}
	}

	return &result, nil
}

// Review

func (m *memStore) UpsertReview(ctx context.Context, input *entity.UpsertReviewInput) (*entity.ReviewRating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.tick()
	for _, r := range m.reviews {
		if r.GigId == input.GigId && r.UserId == input.UserId {
			r.Rating = input.Rating
			r.RatingFeedback = input.Feedback
			r.ProviderId = input.ProviderId
			r.Status = common.ReviewPending
			r.UpdatedAt = now

			c := *r
			return &c, nil
		}
	}

	r := &entity.ReviewRating{
		Id:             uuid.New(),
		GigId:          input.GigId,
		ProviderId:     input.ProviderId,
		UserId:         input.UserId,
		Rating:         input.Rating,
		RatingFeedback: input.Feedback,
		Status:         common.ReviewPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	m.reviews = append(m.reviews, r)

	c := *r
	return &c, nil
}

// fakeGateway stands in for the payment processor.
type fakeGateway struct {
	mu sync.Mutex

	captureStatus string
	captureErr    error
	orders        int
	captures      int
}

func (g *fakeGateway) CreateOrder(ctx context.Context, input *entity.CreateOrderInput) (*entity.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.orders++
	id := fmt.Sprintf("ORDER-%d", g.orders)

	return &entity.GatewayOrder{
		Id:          id,
		Status:      "CREATED",
		ApproveLink: "https://paypal.test/checkoutnow?token=" + id,
	}, nil
}

func (g *fakeGateway) CaptureOrder(ctx context.Context, orderId string) (*entity.GatewayCapture, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.captures++
	if g.captureErr != nil {
		return nil, g.captureErr
	}

	status := g.captureStatus
	if status == "" {
		status = GatewayCompleted
	}

	return &entity.GatewayCapture{
		OrderId:       orderId,
		Status:        status,
		CaptureId:     "CAPTURE-" + orderId,
		CaptureStatus: status,
	}, nil
}

func (g *fakeGateway) GetOrder(ctx context.Context, orderId string) (*entity.GatewayOrder, error) {
	if !strings.HasPrefix(orderId, "ORDER-") {
		return nil, errors.New("order not found")
	}

	return &entity.GatewayOrder{Id: orderId, Status: "APPROVED"}, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []entity.Notification
}

func (n *recordingNotifier) Notify(ctx context.Context, notification entity.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, notification)
}

func (n *recordingNotifier) to(userId uuid.UUID) []entity.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []entity.Notification
	for _, s := range n.sent {
		if s.TargetUserId == userId {
			out = append(out, s)
		}
	}

	return out
}

type testEnv struct {
	store    *memStore
	gateway  *fakeGateway
	notifier *recordingNotifier
	services *Services
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	env := &testEnv{
		store:    store,
		gateway:  &fakeGateway{},
		notifier: &recordingNotifier{},
		now:      time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC),
	}

	env.services = NewServices(Dependencies{
		Repos: &repo.Repositories{
			Diagnostics: store,
			User:        store,
			Gig:         store,
			Bid:         store,
			Payment:     store,
			Review:      store,
		},
		Gateway:   env.gateway,
		Notifier:  env.notifier,
		ReturnUrl: "http://localhost/return",
		CancelUrl: "http://localhost/cancel",
		Now:       func() time.Time { return env.now },
	})

	return env
}

func identityOf(u *entity.User) *entity.Identity {
	return &entity.Identity{UserId: u.Id, Role: u.Role, IsBanned: u.IsBanned}
}

func (e *testEnv) createGig(t *testing.T, owner *entity.User, title string) *entity.GigOutputModel {
	t.Helper()

	gig, err := e.services.Gig.CreateGig(context.Background(), identityOf(owner), &entity.CreateGigInput{
		Title:       title,
		Description: "A gig used in tests",
		Tier:        common.TierStandard,
		PriceMin:    decimal.NewFromInt(50),
		PriceMax:    decimal.NewFromInt(300),
		Keywords:    []string{"Design", "logo"},
		StartDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create gig: %v", err)
	}

	return gig
}

func (e *testEnv) placeBid(t *testing.T, provider *entity.User, gigId string, price int64) *entity.BidOutputModel {
	t.Helper()

	bid, err := e.services.Bid.PlaceBid(context.Background(), identityOf(provider), &entity.PlaceBidInput{
		GigId:    gigId,
		Proposal: "I can do this work well",
		BidPrice: decimal.NewFromInt(price),
	})
	if err != nil {
		t.Fatalf("place bid: %v", err)
	}

	return bid
}
