package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/yeremiapane/choprek/middlewares"
	"github.com/yeremiapane/choprek/services"
	"github.com/yeremiapane/choprek/utils"
)

// statusFor maps a service error to the HTTP status the client sees.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrDeliveryNotFound),
		errors.Is(err, services.ErrDriverNotFound),
		errors.Is(err, services.ErrMenuNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidStatusTransition),
		errors.Is(err, services.ErrOptionNotOnMenu):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNoActiveMenu),
		errors.Is(err, services.ErrDriverHasDeliveries),
		errors.Is(err, services.ErrOrderAlreadyAssigned),
		errors.Is(err, services.ErrMenuActive),
		errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respondServiceError(c *gin.Context, err error) {
	utils.RespondError(c, statusFor(err), err)
}

// actorFrom builds the acting user from the claims the auth middleware stored.
func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		ID:   c.GetString(middlewares.ContextUserID),
		Role: c.GetString(middlewares.ContextRole),
	}
}
