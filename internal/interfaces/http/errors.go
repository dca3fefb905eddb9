package httpinterface

import (
	"errors"
	"net/http"

	"github.com/tdex-network/tdex-escrow/internal/core/application"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	webhookpubsub "github.com/tdex-network/tdex-escrow/internal/infrastructure/pubsub/webhook"
)

var (
	// ErrInvalidRequestBody ...
	ErrInvalidRequestBody = errors.New("invalid request body")
	// ErrInvalidSeed ...
	ErrInvalidSeed = errors.New("seed must be an unsigned 64-bit integer")
)

var statusByCode = map[string]int{
	"validation":           http.StatusBadRequest,
	"already_exists":       http.StatusConflict,
	"not_found":            http.StatusNotFound,
	"unauthorized":         http.StatusForbidden,
	"insufficient_balance": http.StatusUnprocessableEntity,
	"arithmetic":           http.StatusUnprocessableEntity,
	"too_early":            http.StatusUnprocessableEntity,
}

// errorStatus maps err to the returned HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequestBody),
		errors.Is(err, ErrInvalidSeed),
		errors.Is(err, application.ErrUnknownEvent),
		errors.Is(err, webhookpubsub.ErrMissingEvent),
		errors.Is(err, webhookpubsub.ErrInvalidEndpoint):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, webhookpubsub.ErrSubscriptionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, application.ErrFaucetDisabled):
		return http.StatusForbidden, "unauthorized"
	case errors.Is(err, application.ErrWebhookManagerNotInitialized):
		return http.StatusServiceUnavailable, "unavailable"
	}

	code := domain.ErrorCode(err)
	if status, ok := statusByCode[code]; ok {
		return status, code
	}
	return http.StatusInternalServerError, code
}
