package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/courierops/pricegrid/internal/api/models"
	"github.com/courierops/pricegrid/internal/api/response"
	"github.com/courierops/pricegrid/internal/pricing"
)

// ConfigHandler handles configuration lifecycle endpoints.
type ConfigHandler struct {
	configs *pricing.Service
	logger  zerolog.Logger
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(configs *pricing.Service, logger zerolog.Logger) *ConfigHandler {
	return &ConfigHandler{configs: configs, logger: logger}
}

// CreateIndividual handles POST /v1/configs/individual/{clientId}.
func (h *ConfigHandler) CreateIndividual(w http.ResponseWriter, r *http.Request) {
	clientID, ok := parseIDParam(w, r, "clientId")
	if !ok {
		return
	}

	var body models.ConfigCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	created, err := h.configs.CreateIndividualConfig(r.Context(), body.ToCreateRequest(), clientID)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	location := fmt.Sprintf("/v1/configs/client/%d", clientID)
	response.Created(w, r, location, models.NewConfigResponse(created))
}

// CreateGroup handles POST /v1/configs/group/{accountId}.
func (h *ConfigHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseIDParam(w, r, "accountId")
	if !ok {
		return
	}

	var body models.ConfigCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	created, err := h.configs.CreateGroupConfig(r.Context(), body.ToCreateRequest(), accountID)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	response.Created(w, r, "", models.NewConfigResponse(created))
}

// UpdateLast handles PUT /v1/configs/{accountId}.
func (h *ConfigHandler) UpdateLast(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseIDParam(w, r, "accountId")
	if !ok {
		return
	}

	var body models.ConfigUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	updated, err := h.configs.UpdateLastConfig(r.Context(), body.ToUpdateRequest(accountID))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewConfigResponse(&pricing.ConfigWithGrids{Config: *updated}))
}

// Delete handles DELETE /v1/configs/{accountId}?scope=all|last.
func (h *ConfigHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseIDParam(w, r, "accountId")
	if !ok {
		return
	}

	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = "all"
	}

	var err error
	switch scope {
	case "all":
		err = h.configs.DeleteAll(r.Context(), accountID)
	case "last":
		err = h.configs.DeleteLast(r.Context(), accountID)
	default:
		response.BadRequest(w, r, "scope must be \"all\" or \"last\"", []models.FieldError{
			{Field: "scope", Message: "unsupported value " + strconv.Quote(scope)},
		})
		return
	}
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	response.NoContent(w, r)
}

// ListForClient handles GET /v1/configs/client/{clientId}.
func (h *ConfigHandler) ListForClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := parseIDParam(w, r, "clientId")
	if !ok {
		return
	}

	configs, err := h.configs.ConfigsForClient(r.Context(), clientID)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	out := make([]*models.ConfigResponse, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, models.NewConfigResponse(cfg))
	}
	response.JSON(w, r, http.StatusOK, out)
}

// ActiveForClient handles GET /v1/configs/client/{clientId}/active.
func (h *ConfigHandler) ActiveForClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := parseIDParam(w, r, "clientId")
	if !ok {
		return
	}
	start, end, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	active, err := h.configs.ActiveConfigForClient(r.Context(), clientID, start, end)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewConfigResponse(active))
}

// parseIDParam reads a positive integer URL parameter, writing a 400 problem
// on failure.
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, r, "invalid "+name, []models.FieldError{
			{Field: name, Message: "must be a positive integer"},
		})
		return 0, false
	}
	return id, true
}

// parseDateRange reads optional start/end query parameters. Absent values
// default to today and tomorrow, matching a point-in-time "active now" query.
func parseDateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	start, end := now, now.AddDate(0, 0, 1)

	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			response.BadRequest(w, r, "invalid start date", []models.FieldError{
				{Field: "start", Message: "must be RFC3339 or YYYY-MM-DD"},
			})
			return time.Time{}, time.Time{}, false
		}
		start = parsed
		end = start.AddDate(0, 0, 1)
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			response.BadRequest(w, r, "invalid end date", []models.FieldError{
				{Field: "end", Message: "must be RFC3339 or YYYY-MM-DD"},
			})
			return time.Time{}, time.Time{}, false
		}
		end = parsed
	}
	if !start.Before(end) {
		response.BadRequest(w, r, "start must be before end", nil)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}
