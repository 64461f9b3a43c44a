package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anandpskerala/ArticleHubBackend/internal/domain"
	"github.com/anandpskerala/ArticleHubBackend/pkg/response"
)

// httpStatus maps an operation status onto an HTTP status code
func httpStatus(s domain.Status) int {
	switch s {
	case domain.StatusOK:
		return http.StatusOK
	case domain.StatusCreated:
		return http.StatusCreated
	case domain.StatusBadRequest:
		return http.StatusBadRequest
	case domain.StatusUnauthorized:
		return http.StatusUnauthorized
	case domain.StatusForbidden:
		return http.StatusForbidden
	case domain.StatusNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with the caller-safe message only
func writeError(c *gin.Context, err error) {
	status := domain.KindOf(err).Status()
	c.JSON(httpStatus(status), errorBody(status, domain.MessageOf(err)))
}

func errorBody(status domain.Status, message string) *response.Response {
	switch status {
	case domain.StatusBadRequest:
		return response.BadRequest(message)
	case domain.StatusUnauthorized:
		return response.Unauthorized(message)
	case domain.StatusForbidden:
		return response.Forbidden(message)
	case domain.StatusNotFound:
		return response.NotFound(message)
	default:
		return response.InternalError(message)
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeValidation, err.Error()))
}
