package controller

import (
	"net/http"

	"gig-marketplace-api/internal/service"

	"github.com/labstack/echo"
)

const avatarField = "avatar"

type userRoutesHandler struct {
	userService service.User
}

func newUserRoutesHandler(outer *echo.Group, services *service.Services, auth echo.MiddlewareFunc) *userRoutesHandler {
	h := &userRoutesHandler{userService: services.User}
	outer.POST("/users/me/avatar", h.PostAvatar, auth)

	return h
}

// /users/me/avatar, multipart field "avatar"
func (h *userRoutesHandler) PostAvatar(c echo.Context) error {
	header, err := c.FormFile(avatarField)
	if err != nil {
		return respondError(c, errBadInput.Wrap(err))
	}

	file, err := header.Open()
	if err != nil {
		return respondError(c, errBadInput.Wrap(err))
	}
	defer file.Close()

	user, err := h.userService.UploadAvatar(c.Request().Context(), identityFrom(c), file,
		header.Header.Get(echo.HeaderContentType), header.Filename, header.Size)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, "Avatar updated", user)
}
