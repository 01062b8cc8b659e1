package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/christopherklint97/timecard/internal/store"
	"github.com/christopherklint97/timecard/internal/week"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// statusFor maps repository and domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateCode):
		return http.StatusConflict
	case errors.Is(err, week.ErrInvalidOffset):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, status int, msg string, err error) {
	s.logger.Warn(msg,
		"request_id", c.GetString(requestIDKey),
		"status", status,
		"error", err,
	)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg + ": " + err.Error(), Code: status})
}

func (s *Server) failErr(c *gin.Context, msg string, err error) {
	s.fail(c, statusFor(err), msg, err)
}
