package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "blogapi/internal/errors"
	"blogapi/internal/model"
)

const (
	// UserContextKey is where the auth middleware stores the authenticated *model.User.
	UserContextKey = "user"
	// TokenContextKey is where the auth middleware stores the raw bearer token.
	TokenContextKey = "access_token"
)

var errNotAuthenticated = apperrors.AuthenticationFailed("Not authenticated")

func currentUser(c echo.Context) (*model.User, error) {
	user, ok := c.Get(UserContextKey).(*model.User)
	if !ok || user == nil {
		return nil, errNotAuthenticated
	}
	return user, nil
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.Validation("id must be a valid UUID")
	}
	return id, nil
}

// bind decodes and validates a request. Decoding failures are reported as validation errors.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	return c.Validate(req)
}
