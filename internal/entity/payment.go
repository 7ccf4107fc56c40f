package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Payment struct {
	Id            uuid.UUID       `db:"id"`
	GigId         uuid.UUID       `db:"gig_id"`
	ProviderId    uuid.UUID       `db:"provider_id"`
	UserId        uuid.UUID       `db:"user_id"`
	Amount        decimal.Decimal `db:"amount"`
	PaymentMethod string          `db:"payment_method"`
	OrderId       string          `db:"order_id"`
	TransactionId string          `db:"transaction_id"`
	Status        string          `db:"status"`
	RequestStatus string          `db:"request_status"`
	CreatedAt     time.Time       `db:"created_at"`
}

type ProviderEarning struct {
	Id         uuid.UUID       `db:"id"`
	UserId     uuid.UUID       `db:"user_id"`
	ProviderId uuid.UUID       `db:"provider_id"`
	GigId      uuid.UUID       `db:"gig_id"`
	Amount     decimal.Decimal `db:"amount"`
	Status     string          `db:"status"`
	CreatedAt  time.Time       `db:"created_at"`
}

// repo input model; the row is created as held/pending or its order
// refreshed while it is not completed yet
type UpsertPaymentInput struct {
	Id            uuid.UUID
	GigId         uuid.UUID
	ProviderId    uuid.UUID
	UserId        uuid.UUID
	Amount        decimal.Decimal
	PaymentMethod string
	OrderId       string
}

// SettleInput carries everything the settlement transaction writes.
type SettleInput struct {
	PaymentId     uuid.UUID
	GigId         uuid.UUID
	PayerId       uuid.UUID
	ProviderId    uuid.UUID
	Amount        decimal.Decimal
	TransactionId string
}

type SettleResult struct {
	PaymentCompleted bool  // payment moved to completed by this call
	EarningCreated   bool  // earning row inserted by this call
	ReviewsApproved  int64 // rows touched by the bulk approval

	// distinct providers of the approved reviews
	ReviewedProviders []uuid.UUID
}

type CreateOrderInput struct {
	Amount      decimal.Decimal
	GigId       uuid.UUID
	PaymentId   uuid.UUID
	Description string
	ReturnUrl   string
	CancelUrl   string
}

type GatewayOrder struct {
	Id          string
	Status      string
	ApproveLink string
}

type GatewayCapture struct {
	OrderId       string
	Status        string
	CaptureId     string
	CaptureStatus string
}

// controller models
type OrderOutputModel struct {
	OrderId     string `json:"orderId"`
	Status      string `json:"status"`
	ApproveLink string `json:"approveLink,omitempty"`
	PaymentId   string `json:"paymentId,omitempty"`
}

type CaptureOutputModel struct {
	TransactionId string `json:"transactionId"`
	ProviderName  string `json:"providerName"`
	GigTitle      string `json:"gigTitle"`
	PaymentId     string `json:"paymentId"`
}
