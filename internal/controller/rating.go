package controller

import (
	"net/http"

	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type ratingRoutesHandler struct {
	ratingService service.Rating
	validate      *validator.Validate
}

func newRatingRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate, auth echo.MiddlewareFunc) *ratingRoutesHandler {
	h := &ratingRoutesHandler{ratingService: services.Rating, validate: v}
	outer.POST("/ratings", h.PostRating, auth)

	return h
}

type postRatingInput struct {
	GigId          string `json:"gigId" validate:"required"`
	ProviderId     string `json:"providerId" validate:"required"`
	Rating         int    `json:"rating"`
	RatingFeedback string `json:"ratingFeedback" validate:"max=1000"`
}

// /ratings
func (h *ratingRoutesHandler) PostRating(c echo.Context) error {
	var input postRatingInput
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return respondError(c, err)
	}

	model := &entity.SubmitRatingInput{
		GigId: input.GigId, ProviderId: input.ProviderId, Rating: input.Rating, Feedback: input.RatingFeedback,
	}
	review, err := h.ratingService.SubmitRating(c.Request().Context(), identityFrom(c), model)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, "Rating submitted", review)
}
