package common

const (
	RoleConsumer = "consumer"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// gig pipeline
const (
	PipelineOpen       = "open"
	PipelineInProgress = "in_progress"
	PipelineCompleted  = "completed"
)

const (
	BidPending  = "pending"
	BidAccepted = "accepted"
	BidRejected = "rejected"
)

const (
	PaymentHeld      = "held"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"

	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"

	PaymentMethodPayPal = "paypal"
)

const (
	EarningPending   = "pending"
	EarningCompleted = "completed"
)

const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

const (
	TierBasic    = "basic"
	TierStandard = "standard"
	TierPremium  = "premium"
)

const (
	NotificationSuccess = "success"
	NotificationInfo    = "info"
	NotificationWarning = "warning"

	ModuleBid     = "bid"
	ModuleGig     = "gig"
	ModulePayment = "payment"
	ModuleReview  = "review"
)

var PipelineStatuses = []string{PipelineOpen, PipelineInProgress, PipelineCompleted}

var BidStatuses = []string{BidPending, BidAccepted, BidRejected}

func IsPipelineStatus(s string) bool {
	return contains(PipelineStatuses, s)
}

func IsBidStatus(s string) bool {
	return contains(BidStatuses, s)
}

// CanAdvancePipeline reports whether from -> to is a legal single step of the
// gig lifecycle. Completed is terminal and no step is skipped.
func CanAdvancePipeline(from, to string) bool {
	switch from {
	case PipelineOpen:
		return to == PipelineInProgress
	case PipelineInProgress:
		return to == PipelineCompleted
	}

	return false
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}

	return false
}
