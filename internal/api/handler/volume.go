package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/courierops/pricegrid/internal/api/models"
	"github.com/courierops/pricegrid/internal/api/response"
	"github.com/courierops/pricegrid/internal/volume"
)

// VolumeHandler handles delivery volume query endpoints.
type VolumeHandler struct {
	volumes *volume.Service
	logger  zerolog.Logger
}

// NewVolumeHandler creates a new VolumeHandler.
func NewVolumeHandler(volumes *volume.Service, logger zerolog.Logger) *VolumeHandler {
	return &VolumeHandler{volumes: volumes, logger: logger}
}

// TotalsForRange handles GET /v1/volumes/{accountId}.
func (h *VolumeHandler) TotalsForRange(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseIDParam(w, r, "accountId")
	if !ok {
		return
	}
	start, end, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	totals, err := h.volumes.TotalsForRange(r.Context(), accountID, start, end)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewVolumeTotalsResponse(totals))
}
