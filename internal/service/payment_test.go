package service

import (
	"context"
	"errors"
	"testing"

	"gig-marketplace-api/internal/common"
	"gig-marketplace-api/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completedGig runs a gig up to completion and opens a payment order for it.
func completedGig(t *testing.T) (*pipelineFixture, *entity.OrderOutputModel) {
	t.Helper()

	f := newPipelineFixture(t)
	ctx := context.Background()

	_, err := f.env.services.Pipeline.AcceptBid(ctx, identityOf(f.owner), f.gig.Id, f.bid.Id)
	require.NoError(t, err)
	_, err = f.env.services.Pipeline.MarkComplete(ctx, identityOf(f.provider), f.gig.Id)
	require.NoError(t, err)

	order, err := f.env.services.Payment.CreateOrder(ctx, identityOf(f.owner), f.gig.Slug)
	require.NoError(t, err)

	return f, order
}

func TestCreateOrder(t *testing.T) {
	f, order := completedGig(t)
	ctx := context.Background()

	assert.Equal(t, "ORDER-1", order.OrderId)
	assert.NotEmpty(t, order.ApproveLink)

	payment, err := f.env.store.GetPaymentByGig(ctx, common.PaymentMethodPayPal, f.gigId())
	require.NoError(t, err)
	assert.Equal(t, common.PaymentHeld, payment.Status)
	assert.Equal(t, common.RequestPending, payment.RequestStatus)
	assert.True(t, decimal.NewFromInt(100).Equal(payment.Amount))
	assert.Equal(t, f.provider.Id, payment.ProviderId)

	// a new order reuses the payment row
	again, err := f.env.services.Payment.CreateOrder(ctx, identityOf(f.owner), f.gig.Slug)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentId, again.PaymentId)
	assert.Equal(t, "ORDER-2", again.OrderId)

	_, err = f.env.services.Payment.CreateOrder(ctx, identityOf(f.provider), f.gig.Slug)
	assert.ErrorIs(t, err, ErrNotGigOwner)

	_, err = f.env.services.Payment.CreateOrder(ctx, identityOf(f.owner), "missing-slug")
	assert.ErrorIs(t, err, ErrGigNotFound)
}

func TestCreateOrderNeedsAcceptedBid(t *testing.T) {
	f := newPipelineFixture(t)

	_, err := f.env.services.Payment.CreateOrder(context.Background(), identityOf(f.owner), f.gig.Slug)
	assert.ErrorIs(t, err, ErrNoAcceptedBid)
}

func TestCapturePaymentSettlesGig(t *testing.T) {
	f, order := completedGig(t)
	ctx := context.Background()

	_, err := f.env.services.Rating.SubmitRating(ctx, identityOf(f.owner), &entity.SubmitRatingInput{
		GigId:      f.gig.Id,
		ProviderId: f.provider.Id.String(),
		Rating:     4,
		Feedback:   "Solid work",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.env.store.user(f.provider.Id).TotalRatings)

	out, err := f.env.services.Payment.CapturePayment(ctx, identityOf(f.owner), order.OrderId, f.gig.Slug)
	require.NoError(t, err)
	assert.Equal(t, "CAPTURE-"+order.OrderId, out.TransactionId)
	assert.Equal(t, "Pat", out.ProviderName)
	assert.Equal(t, "Logo", out.GigTitle)
	assert.Equal(t, order.PaymentId, out.PaymentId)

	payment, err := f.env.store.GetPaymentByGig(ctx, common.PaymentMethodPayPal, f.gigId())
	require.NoError(t, err)
	assert.Equal(t, common.PaymentCompleted, payment.Status)
	assert.Equal(t, common.RequestAccepted, payment.RequestStatus)

	earnings := f.env.store.completedEarnings(f.gigId())
	require.Len(t, earnings, 1)
	assert.Equal(t, f.provider.Id, earnings[0].ProviderId)
	assert.Equal(t, f.owner.Id, earnings[0].UserId)
	assert.True(t, decimal.NewFromInt(100).Equal(earnings[0].Amount))

	for _, r := range f.env.store.reviewsOf(f.gigId()) {
		assert.Equal(t, common.ReviewApproved, r.Status)
	}

	provider := f.env.store.user(f.provider.Id)
	assert.Equal(t, 1, provider.TotalRatings)
	assert.True(t, decimal.NewFromInt(4).Equal(provider.AverageRating))
}

func TestCapturePaymentIsIdempotent(t *testing.T) {
	f, order := completedGig(t)
	ctx := context.Background()

	first, err := f.env.services.Payment.CapturePayment(ctx, identityOf(f.owner), order.OrderId, f.gig.Slug)
	require.NoError(t, err)
	paymentNotes := len(f.env.notifier.to(f.provider.Id))

	for i := 0; i < 3; i++ {
		again, err := f.env.services.Payment.CapturePayment(ctx, identityOf(f.owner), order.OrderId, f.gig.Slug)
		require.NoError(t, err)
		assert.Equal(t, first.PaymentId, again.PaymentId)
	}

	assert.Len(t, f.env.store.completedEarnings(f.gigId()), 1)
	assert.Len(t, f.env.notifier.to(f.provider.Id), paymentNotes, "no repeated notifications")

	payment, err := f.env.store.GetPaymentByGig(ctx, common.PaymentMethodPayPal, f.gigId())
	require.NoError(t, err)
	assert.Equal(t, common.PaymentCompleted, payment.Status)

	_, err = f.env.services.Payment.CreateOrder(ctx, identityOf(f.owner), f.gig.Slug)
	assert.ErrorIs(t, err, ErrPaymentAlreadyCompleted)
}

func TestCapturePaymentGatewayFailures(t *testing.T) {
	cases := []struct {
		name   string
		status string
		err    error
	}{
		{"declined", "PAYER_ACTION_REQUIRED", nil},
		{"gateway error", "", errors.New("connection reset")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, order := completedGig(t)
			f.env.gateway.captureStatus = tc.status
			f.env.gateway.captureErr = tc.err

			_, err := f.env.services.Payment.CapturePayment(context.Background(), identityOf(f.owner), order.OrderId, f.gig.Slug)
			assert.ErrorIs(t, err, ErrPaymentFailed)

			payment, err := f.env.store.GetPaymentByGig(context.Background(), common.PaymentMethodPayPal, f.gigId())
			require.NoError(t, err)
			assert.Equal(t, common.PaymentHeld, payment.Status)
			assert.Empty(t, f.env.store.completedEarnings(f.gigId()))
		})
	}
}

func TestCapturePaymentMissingRecords(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	_, err := f.env.services.Payment.CapturePayment(ctx, identityOf(f.owner), "ORDER-9", f.gig.Slug)
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	_, err = f.env.services.Payment.CapturePayment(ctx, identityOf(f.owner), "ORDER-9", "missing-slug")
	assert.ErrorIs(t, err, ErrGigNotFound)

	_, err = f.env.services.Payment.CapturePayment(ctx, identityOf(f.owner), "", f.gig.Slug)
	assert.ErrorIs(t, err, ErrInvalidCapture)

	_, err = f.env.services.Payment.CapturePayment(ctx, nil, "ORDER-9", f.gig.Slug)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, f.env.gateway.captures, "nothing is captured without a recorded payment")
}

func TestCapturePaymentRejectsForeignOrder(t *testing.T) {
	f, order := completedGig(t)
	ctx := context.Background()
	stranger := f.env.store.addUser("Mallory", common.RoleConsumer)

	cases := []struct {
		name     string
		identity *entity.Identity
		orderId  string
	}{
		{"order of another gig", identityOf(stranger), "ORDER-999"},
		{"owner with unknown order", identityOf(f.owner), "ORDER-999"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.env.services.Payment.CapturePayment(ctx, tc.identity, tc.orderId, f.gig.Slug)
			assert.ErrorIs(t, err, ErrOrderMismatch)
		})
	}

	assert.Zero(t, f.env.gateway.captures)
	payment, err := f.env.store.GetPaymentByGig(ctx, common.PaymentMethodPayPal, f.gigId())
	require.NoError(t, err)
	assert.Equal(t, common.PaymentHeld, payment.Status)
	assert.Empty(t, payment.TransactionId)
	assert.Empty(t, f.env.store.completedEarnings(f.gigId()))

	// a replaced order no longer settles the gig
	again, err := f.env.services.Payment.CreateOrder(ctx, identityOf(f.owner), f.gig.Slug)
	require.NoError(t, err)
	_, err = f.env.services.Payment.CapturePayment(ctx, identityOf(f.owner), order.OrderId, f.gig.Slug)
	assert.ErrorIs(t, err, ErrOrderMismatch)

	_, err = f.env.services.Payment.CapturePayment(ctx, identityOf(f.owner), again.OrderId, f.gig.Slug)
	require.NoError(t, err)
	assert.Len(t, f.env.store.completedEarnings(f.gigId()), 1)
}

func TestGetOrder(t *testing.T) {
	env := newTestEnv(t)
	user := env.store.addUser("Olivia", common.RoleConsumer)

	order, err := env.services.Payment.GetOrder(context.Background(), identityOf(user), "ORDER-3")
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", order.Status)

	_, err = env.services.Payment.GetOrder(context.Background(), identityOf(user), uuid.NewString())
	assert.ErrorIs(t, err, ErrPaymentFailed)
}
