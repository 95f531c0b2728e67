package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/courierops/pricegrid/internal/account"
	"github.com/courierops/pricegrid/internal/api/models"
	"github.com/courierops/pricegrid/internal/api/response"
)

// AccountHandler handles account endpoints.
type AccountHandler struct {
	accounts *account.Service
	logger   zerolog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts *account.Service, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// Create handles POST /v1/accounts.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body models.AccountCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	created, err := h.accounts.Create(r.Context(), body.ToDraft())
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	location := fmt.Sprintf("/v1/accounts/%d", created.ID)
	response.Created(w, r, location, models.NewAccountResponse(created))
}

// ByClientID handles GET /v1/accounts/client/{clientId}.
func (h *AccountHandler) ByClientID(w http.ResponseWriter, r *http.Request) {
	clientID, ok := parseIDParam(w, r, "clientId")
	if !ok {
		return
	}

	accounts, err := h.accounts.ByClientID(r.Context(), clientID)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewAccountResponses(accounts))
}

// ByID handles GET /v1/accounts/{accountId}.
func (h *AccountHandler) ByID(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseIDParam(w, r, "accountId")
	if !ok {
		return
	}

	acct, err := h.accounts.ByID(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewAccountResponse(acct))
}

// Delete handles DELETE /v1/accounts/{accountId}.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseIDParam(w, r, "accountId")
	if !ok {
		return
	}

	if err := h.accounts.Delete(r.Context(), accountID); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	response.NoContent(w, r)
}
