package models

import (
	"github.com/courierops/pricegrid/internal/volume"
)

// VolumeTotalsResponse is the body of GET /v1/volumes/{accountId}.
type VolumeTotalsResponse struct {
	AccountID   int64     `json:"accountId"`
	TotalVolume int       `json:"totalVolume"`
	DateStart   Timestamp `json:"dateStart"`
	DateEnd     Timestamp `json:"dateEnd"`
}

// NewVolumeTotalsResponse maps range totals to their API shape.
func NewVolumeTotalsResponse(t *volume.RangeTotals) *VolumeTotalsResponse {
	return &VolumeTotalsResponse{
		AccountID:   t.AccountID,
		TotalVolume: t.TotalVolume,
		DateStart:   Timestamp(t.DateStart),
		DateEnd:     Timestamp(t.DateEnd),
	}
}
