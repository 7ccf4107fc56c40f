package controller

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/pkg/apperrors"
	"gig-marketplace-api/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

const identityKey = "identity"

var errBadInput = apperrors.New(apperrors.CodeBadRequest, "Input data is not formed correctly", http.StatusBadRequest)

type successResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type errorBody struct {
	Code        apperrors.ErrorCode `json:"code"`
	Message     string              `json:"message"`
	FieldErrors map[string]string   `json:"fieldErrors,omitempty"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, successResponse{Success: true, Message: message, Data: data})
}

// respondError writes the error envelope. Untyped errors are logged and
// reported as internal errors without their details.
func respondError(c echo.Context, err error) error {
	appErr := apperrors.From(err)

	log := logger.FromContext(c.Request().Context()).With("method", c.Request().Method, "path", c.Path())
	if appErr.Code == apperrors.CodeInternal {
		log.Error("request failed", "error", err)
	} else {
		log.Debug("request rejected", "code", appErr.Code, "error", err)
	}

	return c.JSON(appErr.HTTPCode, errorResponse{
		Error: errorBody{
			Code:        appErr.Code,
			Message:     appErr.Message,
			FieldErrors: appErr.FieldErrors,
		},
	})
}

// HTTPErrorHandler renders errors that reach echo, such as unknown routes, in
// the same envelope as handler errors.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		err = fromHTTPError(he)
	}

	if e := respondError(c, err); e != nil {
		logger.FromContext(c.Request().Context()).Error("failed to write error response", "error", e)
	}
}

func fromHTTPError(he *echo.HTTPError) *apperrors.AppError {
	message := http.StatusText(he.Code)
	if m, ok := he.Message.(string); ok && m != "" {
		message = m
	}

	code := apperrors.CodeBadRequest
	switch he.Code {
	case http.StatusUnauthorized:
		code = apperrors.CodeUnauthorized
	case http.StatusForbidden:
		code = apperrors.CodeForbidden
	case http.StatusNotFound:
		code = apperrors.CodeNotFound
	case http.StatusTooManyRequests:
		code = apperrors.CodeTooManyRequests
	case http.StatusInternalServerError:
		code = apperrors.CodeInternal
	}

	return apperrors.New(code, message, he.Code)
}

func identityFrom(c echo.Context) *entity.Identity {
	identity, _ := c.Get(identityKey).(*entity.Identity)

	return identity
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}

		return f.Name
	})

	return v
}

// bindAndValidate binds the request into input and runs struct validation,
// returning a typed error ready for respondError.
func bindAndValidate(c echo.Context, v *validator.Validate, input interface{}) error {
	if err := c.Bind(input); err != nil {
		return errBadInput.Wrap(err)
	}

	if err := v.Struct(input); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return apperrors.Validation("Validation failed", fieldErrors(ve))
		}

		return errBadInput.Wrap(err)
	}

	return nil
}

func fieldErrors(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = getMessage(fe)
	}

	return fields
}

func getMessage(fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return getMessageForString(fe)
	case reflect.Int, reflect.Int32, reflect.Int64:
		return getMessageForInt(fe)
	case reflect.Slice:
		return getMessageForSlice(fe)
	}

	return "incorrect value passed"
}

func getMessageForInt(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "lte", "max":
		return "should be less or equal than " + fe.Param()
	case "gte", "min":
		return "should be greater or equal than " + fe.Param()
	}

	return "incorrect value passed"
}

func getMessageForString(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "lte", "max":
		return "length should be less or equal than " + fe.Param()
	case "gte", "min":
		return "length should be greater or equal than " + fe.Param()
	case "oneof":
		return "should have value in: " + fe.Param()
	case "uuid", "uuid4":
		return "should be a valid id"
	}

	return "incorrect value passed"
}

func getMessageForSlice(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return "should have at most " + fe.Param() + " items"
	case "min":
		return "should have at least " + fe.Param() + " items"
	}

	return "incorrect value passed"
}
