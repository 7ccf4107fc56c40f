package controller

import (
	"net/http"
	"time"

	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/internal/service"
	"gig-marketplace-api/pkg/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type gigRoutesHandler struct {
	gigService      service.Gig
	pipelineService service.Pipeline
	validate        *validator.Validate
}

// Gig paths share one parameter name; the router keeps a single name per
// path segment across methods.
func newGigRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate, auth echo.MiddlewareFunc) *gigRoutesHandler {
	h := &gigRoutesHandler{gigService: services.Gig, pipelineService: services.Pipeline, validate: v}

	outer.GET("/gigs", h.GetGigs)
	outer.POST("/gigs", h.PostGig, auth)
	outer.GET("/gigs/pipeline", h.GetOwnerPipeline, auth)
	outer.GET("/gigs/provider-pipeline", h.GetProviderPipeline, auth)
	outer.GET("/gigs/:gig", h.GetGig)
	outer.DELETE("/gigs/:gig", h.DeleteGig, auth)

	return h
}

type getGigsInput struct {
	Limit     int32    `query:"limit" validate:"gte=0,lte=50"`
	Offset    int32    `query:"offset" validate:"gte=0"`
	PriceMin  string   `query:"priceMin"`
	PriceMax  string   `query:"priceMax"`
	Search    string   `query:"search" validate:"max=100"`
	Tiers     []string `query:"tier" validate:"max=3,dive,oneof=basic standard premium"`
	StartFrom string   `query:"startFrom"`
	EndTo     string   `query:"endTo"`
}

func newGetGigsInput() getGigsInput {
	return getGigsInput{Limit: entity.DefaultLimit, Tiers: make([]string, 0)}
}

func (in *getGigsInput) toFilter() (*entity.GigFilter, error) {
	fields := make(map[string]string)
	filter := &entity.GigFilter{Search: in.Search, Tiers: in.Tiers}

	filter.PriceMin = parseOptionalDecimal(in.PriceMin, "priceMin", fields)
	filter.PriceMax = parseOptionalDecimal(in.PriceMax, "priceMax", fields)
	filter.StartFrom = parseOptionalDate(in.StartFrom, "startFrom", fields)
	filter.EndTo = parseOptionalDate(in.EndTo, "endTo", fields)

	if len(fields) > 0 {
		return nil, apperrors.Validation("Invalid gig filter", fields)
	}

	return filter, nil
}

// /gigs
func (h *gigRoutesHandler) GetGigs(c echo.Context) error {
	var input = newGetGigsInput()
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return respondError(c, err)
	}

	filter, err := input.toFilter()
	if err != nil {
		return respondError(c, err)
	}

	pg := entity.NewPaginationInput(int(input.Limit), int(input.Offset))
	gigs, err := h.gigService.ListGigs(c.Request().Context(), filter, pg)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, "Gigs fetched", gigs)
}

type postGigInput struct {
	Title       string          `json:"title" validate:"required,max=120"`
	Description string          `json:"description" validate:"required,max=5000"`
	Tier        string          `json:"tier" validate:"required,oneof=basic standard premium"`
	PriceMin    decimal.Decimal `json:"priceMin"`
	PriceMax    decimal.Decimal `json:"priceMax"`
	Keywords    []string        `json:"keywords" validate:"max=20,dive,max=40"`
	StartDate   string          `json:"startDate" validate:"required"`
	EndDate     string          `json:"endDate" validate:"required"`
}

// POST /gigs
func (h *gigRoutesHandler) PostGig(c echo.Context) error {
	var input postGigInput
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return respondError(c, err)
	}

	fields := make(map[string]string)
	model := &entity.CreateGigInput{
		Title: input.Title, Description: input.Description, Tier: input.Tier,
		PriceMin: input.PriceMin, PriceMax: input.PriceMax, Keywords: input.Keywords,
	}
	if d := parseOptionalDate(input.StartDate, "startDate", fields); d != nil {
		model.StartDate = *d
	}
	if d := parseOptionalDate(input.EndDate, "endDate", fields); d != nil {
		model.EndDate = *d
	}
	if len(fields) > 0 {
		return respondError(c, apperrors.Validation("Validation failed", fields))
	}

	gig, err := h.gigService.CreateGig(c.Request().Context(), identityFrom(c), model)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusCreated, "Gig created", gig)
}

// GET /gigs/:gig where :gig is the slug
func (h *gigRoutesHandler) GetGig(c echo.Context) error {
	gig, err := h.gigService.GetGigBySlug(c.Request().Context(), c.Param("gig"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, "Gig fetched", gig)
}

// DELETE /gigs/:gig where :gig is the id
func (h *gigRoutesHandler) DeleteGig(c echo.Context) error {
	if err := h.gigService.RemoveGig(c.Request().Context(), identityFrom(c), c.Param("gig")); err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, "Gig removed", nil)
}

// /gigs/pipeline
func (h *gigRoutesHandler) GetOwnerPipeline(c echo.Context) error {
	out, err := h.pipelineService.OwnerPipeline(c.Request().Context(), identityFrom(c), c.QueryParam("status"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, "Pipeline fetched", out)
}

// /gigs/provider-pipeline
func (h *gigRoutesHandler) GetProviderPipeline(c echo.Context) error {
	out, err := h.pipelineService.ProviderPipeline(c.Request().Context(), identityFrom(c), c.QueryParam("status"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, "Pipeline fetched", out)
}

func parseOptionalDecimal(value, field string, fields map[string]string) *decimal.Decimal {
	if value == "" {
		return nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		fields[field] = "should be a number"
		return nil
	}

	return &d
}

// parseOptionalDate accepts a calendar date or an RFC 3339 timestamp.
func parseOptionalDate(value, field string, fields map[string]string) *time.Time {
	if value == "" {
		return nil
	}

	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	fields[field] = "should be a date (YYYY-MM-DD)"

	return nil
}
