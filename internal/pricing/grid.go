package pricing

import (
	"github.com/shopspring/decimal"
)

// minorUnitsPerMajor converts caller-supplied major currency units (euros)
// to the integer minor units (cents) persisted in storage.
var minorUnitsPerMajor = decimal.NewFromInt(100)

// toMinorUnits converts a major-unit amount to integer minor units.
func toMinorUnits(major decimal.Decimal) int64 {
	return major.Mul(minorUnitsPerMajor).IntPart()
}

// MajorUnits re-exposes a stored minor-unit amount as a major-unit decimal.
func MajorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// GridBounds is the volume x distance cell shared by every grid kind.
// A nil max means the range is unbounded above.
type GridBounds struct {
	MinVolumeThreshold int
	MaxVolumeThreshold *int
	MinDistanceInUnit  float64
	MaxDistanceInUnit  *float64
}

// Bounds satisfies the partition validator's Bounded constraint.
func (b GridBounds) Bounds() GridBounds { return b }

func (b GridBounds) validate() error {
	if b.MinVolumeThreshold <= 0 {
		return &ValidationError{Field: "minVolumeThreshold", Message: "must be greater than zero"}
	}
	if b.MaxVolumeThreshold != nil && *b.MaxVolumeThreshold <= b.MinVolumeThreshold {
		return &ValidationError{Field: "maxVolumeThreshold", Message: "must be greater than minVolumeThreshold"}
	}
	if b.MinDistanceInUnit < 0 {
		return &ValidationError{Field: "minDistanceInUnit", Message: "must not be negative"}
	}
	if b.MaxDistanceInUnit != nil && *b.MaxDistanceInUnit <= b.MinDistanceInUnit {
		return &ValidationError{Field: "maxDistanceInUnit", Message: "must be greater than minDistanceInUnit"}
	}
	return nil
}

// VolumeFeeGrid prices deliveries by volume bracket. Amounts are stored as
// non-negative integer minor units.
type VolumeFeeGrid struct {
	GridBounds
	PickupAmount          int64
	DistanceAmountPerUnit int64
	DropoffAmount         int64
}

// PeakFeeGrid prices deliveries by volume bracket during configured peak
// hours on the configured weekdays (0=Monday .. 6=Sunday).
type PeakFeeGrid struct {
	VolumeFeeGrid
	Weekdays  []int
	HourStart int
	HourEnd   int
}

// DiscountGrid grants a volume-bracketed discount. The amount is stored as a
// strictly negative integer in minor units.
type DiscountGrid struct {
	GridBounds
	DiscountAmount int64
}

// GridDraft is the raw, untyped grid payload of a configuration submission.
// Monetary fields arrive in major units; which fields are meaningful depends
// on the (config type, pricing type) pairing of the owning configuration.
type GridDraft struct {
	MinVolumeThreshold int
	MaxVolumeThreshold *int
	MinDistanceInUnit  float64
	MaxDistanceInUnit  *float64

	PickupAmount          decimal.Decimal
	DistanceAmountPerUnit decimal.Decimal
	DropoffAmount         decimal.Decimal

	Weekdays  []int
	HourStart int
	HourEnd   int

	DiscountAmount decimal.Decimal
}

func (d GridDraft) bounds() GridBounds {
	return GridBounds{
		MinVolumeThreshold: d.MinVolumeThreshold,
		MaxVolumeThreshold: d.MaxVolumeThreshold,
		MinDistanceInUnit:  d.MinDistanceInUnit,
		MaxDistanceInUnit:  d.MaxDistanceInUnit,
	}
}

// NewVolumeFeeGrid validates a draft and converts its amounts to minor units.
func NewVolumeFeeGrid(d GridDraft) (VolumeFeeGrid, error) {
	bounds := d.bounds()
	if err := bounds.validate(); err != nil {
		return VolumeFeeGrid{}, err
	}
	if d.PickupAmount.IsNegative() {
		return VolumeFeeGrid{}, &ValidationError{Field: "pickupAmount", Message: "must not be negative"}
	}
	if d.DistanceAmountPerUnit.IsNegative() {
		return VolumeFeeGrid{}, &ValidationError{Field: "distanceAmountPerUnit", Message: "must not be negative"}
	}
	if d.DropoffAmount.IsNegative() {
		return VolumeFeeGrid{}, &ValidationError{Field: "dropoffAmount", Message: "must not be negative"}
	}
	return VolumeFeeGrid{
		GridBounds:            bounds,
		PickupAmount:          toMinorUnits(d.PickupAmount),
		DistanceAmountPerUnit: toMinorUnits(d.DistanceAmountPerUnit),
		DropoffAmount:         toMinorUnits(d.DropoffAmount),
	}, nil
}

// NewPeakFeeGrid validates a draft with peak-hour fields.
func NewPeakFeeGrid(d GridDraft) (PeakFeeGrid, error) {
	fee, err := NewVolumeFeeGrid(d)
	if err != nil {
		return PeakFeeGrid{}, err
	}
	if len(d.Weekdays) == 0 {
		return PeakFeeGrid{}, &ValidationError{Field: "weekdays", Message: "must not be empty"}
	}
	for _, day := range d.Weekdays {
		if day < 0 || day > 6 {
			return PeakFeeGrid{}, &ValidationError{Field: "weekdays", Message: "days must be between 0 and 6"}
		}
	}
	if d.HourStart < 0 || d.HourStart >= 24 {
		return PeakFeeGrid{}, &ValidationError{Field: "hourStart", Message: "must be between 0 and 23"}
	}
	if d.HourEnd <= 0 || d.HourEnd > 24 {
		return PeakFeeGrid{}, &ValidationError{Field: "hourEnd", Message: "must be between 1 and 24"}
	}
	if d.HourStart >= d.HourEnd {
		return PeakFeeGrid{}, &ValidationError{Field: "hourStart", Message: "must be before hourEnd"}
	}
	return PeakFeeGrid{
		VolumeFeeGrid: fee,
		Weekdays:      d.Weekdays,
		HourStart:     d.HourStart,
		HourEnd:       d.HourEnd,
	}, nil
}

// NewDiscountGrid validates a draft and converts the discount to negative
// minor units. Callers may supply the discount as either a negative amount or
// a positive magnitude; it is always persisted negative.
func NewDiscountGrid(d GridDraft) (DiscountGrid, error) {
	bounds := d.bounds()
	if err := bounds.validate(); err != nil {
		return DiscountGrid{}, err
	}
	if d.DiscountAmount.IsZero() {
		return DiscountGrid{}, &ValidationError{Field: "discountAmount", Message: "must not be zero"}
	}
	minor := toMinorUnits(d.DiscountAmount)
	if minor > 0 {
		minor = -minor
	}
	return DiscountGrid{GridBounds: bounds, DiscountAmount: minor}, nil
}
