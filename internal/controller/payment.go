package controller

import (
	"net/http"

	"gig-marketplace-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type paymentRoutesHandler struct {
	paymentService service.Payment
	validate       *validator.Validate
}

func newPaymentRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate, m ...echo.MiddlewareFunc) *paymentRoutesHandler {
	h := &paymentRoutesHandler{paymentService: services.Payment, validate: v}

	outer.POST("/payments/order", h.PostOrder, m...)
	outer.POST("/payments/capture", h.PostCapture, m...)
	outer.GET("/payments/order/:orderId", h.GetOrder, m...)

	return h
}

type postOrderInput struct {
	GigSlug string `json:"gigSlug" validate:"required,max=200"`
}

// /payments/order
func (h *paymentRoutesHandler) PostOrder(c echo.Context) error {
	var input postOrderInput
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return respondError(c, err)
	}

	order, err := h.paymentService.CreateOrder(c.Request().Context(), identityFrom(c), input.GigSlug)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusCreated, "Order created", order)
}

type postCaptureInput struct {
	OrderId string `json:"orderId" validate:"required,max=100"`
	GigSlug string `json:"gigSlug" validate:"required,max=200"`
}

// /payments/capture
func (h *paymentRoutesHandler) PostCapture(c echo.Context) error {
	var input postCaptureInput
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return respondError(c, err)
	}

	out, err := h.paymentService.CapturePayment(c.Request().Context(), identityFrom(c), input.OrderId, input.GigSlug)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, "Payment captured", out)
}

// /payments/order/:orderId
func (h *paymentRoutesHandler) GetOrder(c echo.Context) error {
	order, err := h.paymentService.GetOrder(c.Request().Context(), identityFrom(c), c.Param("orderId"))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, "Order fetched", order)
}
