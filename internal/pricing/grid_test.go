package pricing_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/courierops/pricegrid/internal/pricing"
)

func TestNewVolumeFeeGrid(t *testing.T) {
	ten := 10
	dist := 5.0
	grid, err := pricing.NewVolumeFeeGrid(pricing.GridDraft{
		MinVolumeThreshold:    1,
		MaxVolumeThreshold:    &ten,
		MinDistanceInUnit:     0,
		MaxDistanceInUnit:     &dist,
		PickupAmount:          decimal.NewFromFloat(1.25),
		DistanceAmountPerUnit: decimal.NewFromFloat(0.50),
		DropoffAmount:         decimal.NewFromFloat(2.00),
	})
	if err != nil {
		t.Fatalf("NewVolumeFeeGrid() error = %v", err)
	}

	if grid.PickupAmount != 125 {
		t.Errorf("PickupAmount = %d, want 125", grid.PickupAmount)
	}
	if grid.DistanceAmountPerUnit != 50 {
		t.Errorf("DistanceAmountPerUnit = %d, want 50", grid.DistanceAmountPerUnit)
	}
	if grid.DropoffAmount != 200 {
		t.Errorf("DropoffAmount = %d, want 200", grid.DropoffAmount)
	}

	// Stored minor units round-trip back to major units.
	if got := pricing.MajorUnits(grid.PickupAmount); !got.Equal(decimal.NewFromFloat(1.25)) {
		t.Errorf("MajorUnits(125) = %s, want 1.25", got)
	}
}

func TestNewVolumeFeeGrid_Invalid(t *testing.T) {
	ten := 10
	five := 5
	negDist := -1.0
	zeroDist := 0.0

	tests := []struct {
		name  string
		draft pricing.GridDraft
		field string
	}{
		{
			name:  "zero min volume",
			draft: pricing.GridDraft{MinVolumeThreshold: 0, MaxVolumeThreshold: &ten},
			field: "minVolumeThreshold",
		},
		{
			name:  "max volume below min",
			draft: pricing.GridDraft{MinVolumeThreshold: 10, MaxVolumeThreshold: &five},
			field: "maxVolumeThreshold",
		},
		{
			name:  "negative min distance",
			draft: pricing.GridDraft{MinVolumeThreshold: 1, MinDistanceInUnit: negDist},
			field: "minDistanceInUnit",
		},
		{
			name:  "max distance equal to min",
			draft: pricing.GridDraft{MinVolumeThreshold: 1, MinDistanceInUnit: 0, MaxDistanceInUnit: &zeroDist},
			field: "maxDistanceInUnit",
		},
		{
			name: "negative pickup amount",
			draft: pricing.GridDraft{
				MinVolumeThreshold: 1,
				PickupAmount:       decimal.NewFromFloat(-0.01),
			},
			field: "pickupAmount",
		},
		{
			name: "negative dropoff amount",
			draft: pricing.GridDraft{
				MinVolumeThreshold: 1,
				DropoffAmount:      decimal.NewFromFloat(-2),
			},
			field: "dropoffAmount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pricing.NewVolumeFeeGrid(tt.draft)
			var verr *pricing.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("NewVolumeFeeGrid() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestNewPeakFeeGrid(t *testing.T) {
	grid, err := pricing.NewPeakFeeGrid(pricing.GridDraft{
		MinVolumeThreshold:    1,
		PickupAmount:          decimal.NewFromFloat(1.00),
		DistanceAmountPerUnit: decimal.NewFromFloat(0.30),
		DropoffAmount:         decimal.NewFromFloat(1.00),
		Weekdays:              []int{0, 1, 2, 3, 4},
		HourStart:             17,
		HourEnd:               20,
	})
	if err != nil {
		t.Fatalf("NewPeakFeeGrid() error = %v", err)
	}
	if grid.HourStart != 17 || grid.HourEnd != 20 {
		t.Errorf("hours = [%d, %d), want [17, 20)", grid.HourStart, grid.HourEnd)
	}
	if len(grid.Weekdays) != 5 {
		t.Errorf("len(Weekdays) = %d, want 5", len(grid.Weekdays))
	}
}

func TestNewPeakFeeGrid_Invalid(t *testing.T) {
	base := func() pricing.GridDraft {
		return pricing.GridDraft{
			MinVolumeThreshold: 1,
			Weekdays:           []int{0, 4},
			HourStart:          7,
			HourEnd:            9,
		}
	}

	tests := []struct {
		name   string
		mutate func(*pricing.GridDraft)
		field  string
	}{
		{"empty weekdays", func(d *pricing.GridDraft) { d.Weekdays = nil }, "weekdays"},
		{"weekday out of range", func(d *pricing.GridDraft) { d.Weekdays = []int{7} }, "weekdays"},
		{"hour start out of range", func(d *pricing.GridDraft) { d.HourStart = 24 }, "hourStart"},
		{"hour end out of range", func(d *pricing.GridDraft) { d.HourEnd = 25 }, "hourEnd"},
		{"inverted hours", func(d *pricing.GridDraft) { d.HourStart = 12; d.HourEnd = 9 }, "hourStart"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := base()
			tt.mutate(&draft)
			_, err := pricing.NewPeakFeeGrid(draft)
			var verr *pricing.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("NewPeakFeeGrid() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestNewDiscountGrid_NegatesAmount(t *testing.T) {
	// Positive magnitudes and pre-negated amounts both persist negative.
	for _, amount := range []decimal.Decimal{
		decimal.NewFromFloat(0.75),
		decimal.NewFromFloat(-0.75),
	} {
		grid, err := pricing.NewDiscountGrid(pricing.GridDraft{
			MinVolumeThreshold: 1,
			DiscountAmount:     amount,
		})
		if err != nil {
			t.Fatalf("NewDiscountGrid(%s) error = %v", amount, err)
		}
		if grid.DiscountAmount != -75 {
			t.Errorf("DiscountAmount = %d, want -75 for input %s", grid.DiscountAmount, amount)
		}
	}
}

func TestNewDiscountGrid_ZeroAmount(t *testing.T) {
	_, err := pricing.NewDiscountGrid(pricing.GridDraft{MinVolumeThreshold: 1})
	var verr *pricing.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("NewDiscountGrid() error = %v, want ValidationError", err)
	}
	if verr.Field != "discountAmount" {
		t.Errorf("ValidationError.Field = %q, want %q", verr.Field, "discountAmount")
	}
}
