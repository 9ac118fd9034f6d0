package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "blogapi/internal/errors"
)

// ErrorHandler is the outermost error boundary. Domain errors get their fixed status and code;
// anything unclassified is logged and hidden behind a generic 500.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status int
			body   apperrors.ErrorResponse
			he     *echo.HTTPError
		)
		switch {
		case errors.As(err, &he) && !apperrors.IsClassified(err):
			status, body = fromEchoError(he)
		default:
			mapped := apperrors.MapErrorToHTTP(err)
			status, body = mapped.StatusCode, mapped.ToErrorResponse()
			if !apperrors.IsClassified(err) {
				logger.ErrorContext(c.Request().Context(), "unhandled error",
					slog.String("method", c.Request().Method),
					slog.String("path", c.Request().URL.Path),
					slog.String("error", err.Error()),
				)
			}
		}

		if status == http.StatusUnauthorized {
			c.Response().Header().Set("WWW-Authenticate", "Bearer")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("write error response", slog.String("error", err.Error()))
		}
	}
}

// fromEchoError renders errors raised by echo itself (unknown route, wrong method, bad bind, middleware).
func fromEchoError(he *echo.HTTPError) (int, apperrors.ErrorResponse) {
	if resp, ok := he.Message.(apperrors.ErrorResponse); ok {
		return he.Code, resp
	}

	message := http.StatusText(he.Code)
	if m, ok := he.Message.(string); ok && m != "" {
		message = m
	}

	code := "HTTP_ERROR"
	switch he.Code {
	case http.StatusNotFound:
		code = "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		code = "METHOD_NOT_ALLOWED"
	case http.StatusBadRequest, http.StatusUnsupportedMediaType:
		code = "VALIDATION_ERROR"
	case http.StatusUnauthorized:
		code = "AUTHENTICATION_FAILED"
	case http.StatusTooManyRequests:
		code = "RATE_LIMITED"
	case http.StatusInternalServerError:
		code = "INTERNAL_ERROR"
		message = "internal server error"
	}
	return he.Code, apperrors.ErrorResponse{Error: message, Code: code}
}
