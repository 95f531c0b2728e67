package models

import (
	"github.com/shopspring/decimal"

	"github.com/courierops/pricegrid/internal/pricing"
)

// GridPayload is one grid cell of a configuration submission. Monetary
// amounts are major units; which fields are meaningful depends on the
// owning configuration's (configType, pricingType) pairing.
type GridPayload struct {
	MinVolumeThreshold int      `json:"minVolumeThreshold"`
	MaxVolumeThreshold *int     `json:"maxVolumeThreshold,omitempty"`
	MinDistanceInUnit  float64  `json:"minDistanceInUnit"`
	MaxDistanceInUnit  *float64 `json:"maxDistanceInUnit,omitempty"`

	PickupAmount          decimal.Decimal `json:"pickupAmount,omitempty"`
	DistanceAmountPerUnit decimal.Decimal `json:"distanceAmountPerUnit,omitempty"`
	DropoffAmount         decimal.Decimal `json:"dropoffAmount,omitempty"`

	Weekdays  []int `json:"weekdays,omitempty"`
	HourStart int   `json:"hourStart,omitempty"`
	HourEnd   int   `json:"hourEnd,omitempty"`

	DiscountAmount decimal.Decimal `json:"discountAmount,omitempty"`
}

// ToDraft converts the payload to a domain grid draft.
func (p GridPayload) ToDraft() pricing.GridDraft {
	return pricing.GridDraft{
		MinVolumeThreshold:    p.MinVolumeThreshold,
		MaxVolumeThreshold:    p.MaxVolumeThreshold,
		MinDistanceInUnit:     p.MinDistanceInUnit,
		MaxDistanceInUnit:     p.MaxDistanceInUnit,
		PickupAmount:          p.PickupAmount,
		DistanceAmountPerUnit: p.DistanceAmountPerUnit,
		DropoffAmount:         p.DropoffAmount,
		Weekdays:              p.Weekdays,
		HourStart:             p.HourStart,
		HourEnd:               p.HourEnd,
		DiscountAmount:        p.DiscountAmount,
	}
}

// ConfigCreateRequest is the body of POST /v1/configs/individual/{clientId}
// and POST /v1/configs/group/{accountId}.
type ConfigCreateRequest struct {
	ValidFrom         Timestamp     `json:"validFrom"`
	ValidTo           *Timestamp    `json:"validTo,omitempty"`
	PricingType       string        `json:"pricingType"`
	ConfigType        string        `json:"configType"`
	Group             string        `json:"group"`
	PackageSizeOption []string      `json:"packageSizeOption"`
	TransportOption   []string      `json:"transportOption"`
	Frequency         string        `json:"frequency"`
	Grids             []GridPayload `json:"grids"`
}

// ToCreateRequest converts the request body to a domain create request.
func (r ConfigCreateRequest) ToCreateRequest() pricing.CreateRequest {
	grids := make([]pricing.GridDraft, 0, len(r.Grids))
	for _, g := range r.Grids {
		grids = append(grids, g.ToDraft())
	}
	return pricing.CreateRequest{
		Config: r.toConfigDraft(),
		Grids:  grids,
	}
}

func (r ConfigCreateRequest) toConfigDraft() pricing.ConfigDraft {
	sizes := make([]pricing.PackageSize, 0, len(r.PackageSizeOption))
	for _, s := range r.PackageSizeOption {
		sizes = append(sizes, pricing.PackageSize(s))
	}
	modes := make([]pricing.TransportType, 0, len(r.TransportOption))
	for _, t := range r.TransportOption {
		modes = append(modes, pricing.TransportType(t))
	}

	draft := pricing.ConfigDraft{
		ValidFrom:         r.ValidFrom.Time(),
		PricingType:       pricing.PricingType(r.PricingType),
		ConfigType:        pricing.ConfigType(r.ConfigType),
		Group:             pricing.Group(r.Group),
		PackageSizeOption: sizes,
		TransportOption:   modes,
		Frequency:         pricing.Frequency(r.Frequency),
	}
	if r.ValidTo != nil {
		to := r.ValidTo.Time()
		draft.ValidTo = &to
	}
	return draft
}

// ConfigUpdateRequest is the body of PUT /v1/configs/{accountId}. It carries
// only scalar fields; grids are immutable after creation.
type ConfigUpdateRequest struct {
	ValidFrom         Timestamp  `json:"validFrom"`
	ValidTo           *Timestamp `json:"validTo,omitempty"`
	PricingType       string     `json:"pricingType"`
	ConfigType        string     `json:"configType"`
	Group             string     `json:"group"`
	PackageSizeOption []string   `json:"packageSizeOption"`
	TransportOption   []string   `json:"transportOption"`
	Frequency         string     `json:"frequency"`
}

// ToUpdateRequest converts the request body to a domain update request.
func (r ConfigUpdateRequest) ToUpdateRequest(accountID int64) pricing.UpdateRequest {
	create := ConfigCreateRequest{
		ValidFrom:         r.ValidFrom,
		ValidTo:           r.ValidTo,
		PricingType:       r.PricingType,
		ConfigType:        r.ConfigType,
		Group:             r.Group,
		PackageSizeOption: r.PackageSizeOption,
		TransportOption:   r.TransportOption,
		Frequency:         r.Frequency,
	}
	return pricing.UpdateRequest{
		Config:    create.toConfigDraft(),
		AccountID: accountID,
	}
}

// GridResponse is one grid cell in a configuration response. Monetary
// amounts are re-exposed in major units.
type GridResponse struct {
	MinVolumeThreshold int      `json:"minVolumeThreshold"`
	MaxVolumeThreshold *int     `json:"maxVolumeThreshold,omitempty"`
	MinDistanceInUnit  float64  `json:"minDistanceInUnit"`
	MaxDistanceInUnit  *float64 `json:"maxDistanceInUnit,omitempty"`

	PickupAmount          *decimal.Decimal `json:"pickupAmount,omitempty"`
	DistanceAmountPerUnit *decimal.Decimal `json:"distanceAmountPerUnit,omitempty"`
	DropoffAmount         *decimal.Decimal `json:"dropoffAmount,omitempty"`

	Weekdays  []int `json:"weekdays,omitempty"`
	HourStart *int  `json:"hourStart,omitempty"`
	HourEnd   *int  `json:"hourEnd,omitempty"`

	DiscountAmount *decimal.Decimal `json:"discountAmount,omitempty"`
}

// ConfigResponse is the representation of a configuration with its grids.
type ConfigResponse struct {
	ID                int64          `json:"id"`
	AccountID         int64          `json:"accountId"`
	ValidFrom         Timestamp      `json:"validFrom"`
	ValidTo           *Timestamp     `json:"validTo,omitempty"`
	PricingType       string         `json:"pricingType"`
	ConfigType        string         `json:"configType"`
	Group             string         `json:"group"`
	PackageSizeOption []string       `json:"packageSizeOption"`
	TransportOption   []string       `json:"transportOption"`
	Frequency         string         `json:"frequency"`
	Grids             []GridResponse `json:"grids"`
}

// NewConfigResponse maps a domain configuration with grids to its API shape.
func NewConfigResponse(cw *pricing.ConfigWithGrids) *ConfigResponse {
	cfg := cw.Config

	sizes := make([]string, 0, len(cfg.PackageSizeOption))
	for _, s := range cfg.PackageSizeOption {
		sizes = append(sizes, string(s))
	}
	modes := make([]string, 0, len(cfg.TransportOption))
	for _, t := range cfg.TransportOption {
		modes = append(modes, string(t))
	}

	return &ConfigResponse{
		ID:                cfg.ID,
		AccountID:         cfg.AccountID,
		ValidFrom:         Timestamp(cfg.ValidFrom),
		ValidTo:           TimestampPtr(cfg.ValidTo),
		PricingType:       string(cfg.PricingType),
		ConfigType:        string(cfg.ConfigType),
		Group:             string(cfg.Group),
		PackageSizeOption: sizes,
		TransportOption:   modes,
		Frequency:         string(cfg.Frequency),
		Grids:             newGridResponses(cw.Grids),
	}
}

func newGridResponses(set pricing.GridSet) []GridResponse {
	out := make([]GridResponse, 0, set.Len())
	switch set.Kind {
	case pricing.GridKindVolume:
		for _, g := range set.Volume {
			out = append(out, volumeFeeResponse(g))
		}
	case pricing.GridKindPeak:
		for _, g := range set.Peak {
			resp := volumeFeeResponse(g.VolumeFeeGrid)
			resp.Weekdays = g.Weekdays
			hourStart, hourEnd := g.HourStart, g.HourEnd
			resp.HourStart = &hourStart
			resp.HourEnd = &hourEnd
			out = append(out, resp)
		}
	case pricing.GridKindDiscount:
		for _, g := range set.Discount {
			amount := pricing.MajorUnits(g.DiscountAmount)
			out = append(out, GridResponse{
				MinVolumeThreshold: g.MinVolumeThreshold,
				MaxVolumeThreshold: g.MaxVolumeThreshold,
				MinDistanceInUnit:  g.MinDistanceInUnit,
				MaxDistanceInUnit:  g.MaxDistanceInUnit,
				DiscountAmount:     &amount,
			})
		}
	}
	return out
}

func volumeFeeResponse(g pricing.VolumeFeeGrid) GridResponse {
	pickup := pricing.MajorUnits(g.PickupAmount)
	distance := pricing.MajorUnits(g.DistanceAmountPerUnit)
	dropoff := pricing.MajorUnits(g.DropoffAmount)
	return GridResponse{
		MinVolumeThreshold:    g.MinVolumeThreshold,
		MaxVolumeThreshold:    g.MaxVolumeThreshold,
		MinDistanceInUnit:     g.MinDistanceInUnit,
		MaxDistanceInUnit:     g.MaxDistanceInUnit,
		PickupAmount:          &pickup,
		DistanceAmountPerUnit: &distance,
		DropoffAmount:         &dropoff,
	}
}
