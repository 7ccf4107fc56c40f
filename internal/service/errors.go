package service

import (
	"net/http"

	"gig-marketplace-api/pkg/apperrors"
)

var (
	ErrUnauthorized = apperrors.New(apperrors.CodeUnauthorized, "authentication required", http.StatusUnauthorized)
	ErrUserBanned   = apperrors.New(apperrors.CodeForbidden, "user is banned", http.StatusForbidden)
	ErrInvalidId    = apperrors.New(apperrors.CodeValidation, "invalid identifier", http.StatusBadRequest)

	ErrUserNotFound    = apperrors.New(apperrors.CodeNotFound, "user not found", http.StatusNotFound)
	ErrGigNotFound     = apperrors.New(apperrors.CodeNotFound, "gig not found", http.StatusNotFound)
	ErrBidNotFound     = apperrors.New(apperrors.CodeNotFound, "bid not found", http.StatusNotFound)
	ErrPaymentNotFound = apperrors.New(apperrors.CodeNotFound, "payment not found", http.StatusNotFound)

	ErrInvalidGig         = apperrors.New(apperrors.CodeValidation, "invalid gig", http.StatusBadRequest)
	ErrInvalidFilter      = apperrors.New(apperrors.CodeValidation, "invalid gig filter", http.StatusBadRequest)
	ErrCannotCreateGig    = apperrors.New(apperrors.CodeForbidden, "providers cannot post gigs", http.StatusForbidden)
	ErrGigSlugTaken       = apperrors.New(apperrors.CodeConflict, "gig slug already exists", http.StatusConflict)
	ErrNotGigOwner        = apperrors.New(apperrors.CodeForbidden, "only the gig owner can perform this action", http.StatusForbidden)
	ErrGigCannotBeRemoved = apperrors.New(apperrors.CodeBadRequest, "only open gigs can be removed", http.StatusBadRequest)

	ErrInvalidBid          = apperrors.New(apperrors.CodeValidation, "invalid bid", http.StatusBadRequest)
	ErrOnlyProvidersCanBid = apperrors.New(apperrors.CodeForbidden, "only providers can place bids", http.StatusForbidden)
	ErrSelfBid             = apperrors.New(apperrors.CodeForbidden, "cannot bid on your own gig", http.StatusForbidden)
	ErrDuplicateBid        = apperrors.New(apperrors.CodeConflict, "you have already placed a bid on this gig", http.StatusConflict)
	ErrBidNotPending       = apperrors.New(apperrors.CodeBadRequest, "bid is not pending", http.StatusBadRequest)

	ErrGigNotOpen            = apperrors.New(apperrors.CodeBadRequest, "gig is not open", http.StatusBadRequest)
	ErrGigNotInProgress      = apperrors.New(apperrors.CodeBadRequest, "gig is not in progress", http.StatusBadRequest)
	ErrNotAcceptedProvider   = apperrors.New(apperrors.CodeForbidden, "only the accepted provider can complete this gig", http.StatusForbidden)
	ErrInvalidPipelineStatus = apperrors.New(apperrors.CodeBadRequest, "invalid pipeline status", http.StatusBadRequest)
	ErrInvalidBidStatus      = apperrors.New(apperrors.CodeBadRequest, "invalid bid status", http.StatusBadRequest)

	ErrInvalidCapture          = apperrors.New(apperrors.CodeBadRequest, "orderId and gigSlug are required", http.StatusBadRequest)
	ErrOrderMismatch           = apperrors.New(apperrors.CodeBadRequest, "order does not belong to this gig's payment", http.StatusBadRequest)
	ErrPaymentFailed           = apperrors.New(apperrors.CodePaymentFailed, "payment capture failed", http.StatusBadRequest)
	ErrOrderFailed             = apperrors.New(apperrors.CodePaymentFailed, "payment order could not be created", http.StatusBadRequest)
	ErrNoAcceptedBid           = apperrors.New(apperrors.CodeBadRequest, "gig has no accepted bid", http.StatusBadRequest)
	ErrPaymentAlreadyCompleted = apperrors.New(apperrors.CodeConflict, "payment already completed", http.StatusConflict)

	ErrInvalidRating = apperrors.New(apperrors.CodeValidation, "invalid rating", http.StatusBadRequest)

	ErrInvalidFileType    = apperrors.New(apperrors.CodeValidation, "only jpeg, png, webp or gif images are allowed", http.StatusBadRequest)
	ErrFileTooLarge       = apperrors.New(apperrors.CodeValidation, "file is larger than 5 MiB", http.StatusBadRequest)
	ErrStorageUnavailable = apperrors.New(apperrors.CodeInternal, "file storage is not configured", http.StatusServiceUnavailable)
)
