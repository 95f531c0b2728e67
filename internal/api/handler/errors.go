// Package handler provides HTTP handlers for the pricing API.
package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/courierops/pricegrid/internal/account"
	"github.com/courierops/pricegrid/internal/api/models"
	"github.com/courierops/pricegrid/internal/api/response"
	"github.com/courierops/pricegrid/internal/pricing"
	"github.com/courierops/pricegrid/internal/volume"
)

// writeDomainError maps domain errors to RFC7807 problem responses.
//
// Validation and legality failures are 422: the request parsed but violates
// a domain rule. Structural request failures (empty grid list, wrong group
// endpoint) are 400. Cross-account and group conflicts are 409.
func writeDomainError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var (
		validationErr  *pricing.ValidationError
		dateRangeErr   *pricing.DateRangeError
		pairingErr     *pricing.InvalidConfigTypeError
		afterUpdateErr *pricing.UnsupportedAfterUpdateError
		partitionErr   *pricing.GridPartitionError
		groupErr       *pricing.InvalidGroupError
		configGroupErr *pricing.ConfigGroupError
		mismatchErr    *pricing.ClientIDMismatchError
		cfgNotFound    *pricing.ConfigNotFoundError
		acctNotFound   *pricing.AccountNotFoundError
		acctDatesErr   *account.DateRangeError
		conflictErr    *account.ConflictError
		volNotFound    *volume.VolumesNotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		response.UnprocessableEntity(w, r, "request failed validation", []models.FieldError{
			{Field: validationErr.Field, Message: validationErr.Message},
		})
	case errors.As(err, &dateRangeErr), errors.As(err, &acctDatesErr):
		response.UnprocessableEntity(w, r, err.Error(), nil)
	case errors.As(err, &pairingErr),
		errors.As(err, &afterUpdateErr),
		errors.As(err, &partitionErr):
		response.UnprocessableEntity(w, r, err.Error(), nil)
	case errors.Is(err, pricing.ErrMissingGrids), errors.As(err, &groupErr):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, account.ErrNoClientIDs):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.As(err, &configGroupErr),
		errors.As(err, &mismatchErr),
		errors.As(err, &conflictErr):
		response.Conflict(w, r, err.Error())
	case errors.As(err, &cfgNotFound),
		errors.As(err, &acctNotFound),
		errors.As(err, &volNotFound),
		errors.Is(err, account.ErrAccountNotFound):
		response.NotFound(w, r, err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
