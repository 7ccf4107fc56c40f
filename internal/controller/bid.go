package controller

import (
	"net/http"

	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

type bidRoutesHandler struct {
	bidService      service.Bid
	pipelineService service.Pipeline
	validate        *validator.Validate
}

func newBidRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate, auth echo.MiddlewareFunc) *bidRoutesHandler {
	h := &bidRoutesHandler{bidService: services.Bid, pipelineService: services.Pipeline, validate: v}

	outer.POST("/gigs/bids/:gigId", h.PostBid, auth)
	outer.GET("/gigs/bids/:gigId", h.GetGigBids, auth)
	outer.POST("/gigs/bids/:gigId/accept/:bidId", h.AcceptBid, auth)
	outer.POST("/gigs/complete/:gigId", h.MarkComplete, auth)

	return h
}

type postBidInput struct {
	Proposal string          `json:"proposal" validate:"max=5000"`
	BidPrice decimal.Decimal `json:"bidPrice"`
}

// /gigs/bids/:gigId
func (h *bidRoutesHandler) PostBid(c echo.Context) error {
	var input postBidInput
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return respondError(c, err)
	}

	model := &entity.PlaceBidInput{GigId: c.Param("gigId"), Proposal: input.Proposal, BidPrice: input.BidPrice}
	bid, err := h.bidService.PlaceBid(c.Request().Context(), identityFrom(c), model)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusCreated, "Bid placed", bid)
}

func (h *bidRoutesHandler) GetGigBids(c echo.Context) error {
	bids, err := h.bidService.ListGigBids(c.Request().Context(), identityFrom(c), c.Param("gigId"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, "Bids fetched", bids)
}

// /gigs/bids/:gigId/accept/:bidId
func (h *bidRoutesHandler) AcceptBid(c echo.Context) error {
	bid, err := h.pipelineService.AcceptBid(c.Request().Context(), identityFrom(c), c.Param("gigId"), c.Param("bidId"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, "Bid accepted", bid)
}

// /gigs/complete/:gigId
func (h *bidRoutesHandler) MarkComplete(c echo.Context) error {
	gig, err := h.pipelineService.MarkComplete(c.Request().Context(), identityFrom(c), c.Param("gigId"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, "Gig marked as completed", gig)
}
