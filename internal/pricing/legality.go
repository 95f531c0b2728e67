package pricing

// GridKind identifies which concrete grid collection a configuration owns.
type GridKind string

const (
	GridKindVolume   GridKind = "volume"
	GridKindPeak     GridKind = "peak"
	GridKindDiscount GridKind = "discount"
)

// pairing keys the legality table.
type pairing struct {
	Config  ConfigType
	Pricing PricingType
}

// gridKinds is the single source of truth for legal (config type, pricing
// type) combinations. A pairing absent from the table is illegal; notably
// (discount, peak_off_peak) is never allowed.
var gridKinds = map[pairing]GridKind{
	{Config: ConfigFee, Pricing: PricingVolume}:      GridKindVolume,
	{Config: ConfigFee, Pricing: PricingPeakOffPeak}: GridKindPeak,
	{Config: ConfigDiscount, Pricing: PricingVolume}: GridKindDiscount,
}

// GridKindFor resolves the grid kind a configuration must carry, or an
// InvalidConfigTypeError for an illegal pairing.
func GridKindFor(configType ConfigType, pricingType PricingType) (GridKind, error) {
	kind, ok := gridKinds[pairing{Config: configType, Pricing: pricingType}]
	if !ok {
		return "", &InvalidConfigTypeError{ConfigType: configType, PricingType: pricingType}
	}
	return kind, nil
}

// GridSet is the tagged union of the three grid collections. Exactly one of
// the slices is populated, selected by Kind.
type GridSet struct {
	Kind     GridKind
	Volume   []VolumeFeeGrid
	Peak     []PeakFeeGrid
	Discount []DiscountGrid
}

// Len returns the number of grids in the populated collection.
func (s GridSet) Len() int {
	switch s.Kind {
	case GridKindVolume:
		return len(s.Volume)
	case GridKindPeak:
		return len(s.Peak)
	case GridKindDiscount:
		return len(s.Discount)
	}
	return 0
}

// BuildGridSet converts raw grid drafts into the concrete collection the
// (config type, pricing type) pairing demands, validating each grid.
func BuildGridSet(configType ConfigType, pricingType PricingType, drafts []GridDraft) (GridSet, error) {
	kind, err := GridKindFor(configType, pricingType)
	if err != nil {
		return GridSet{}, err
	}

	set := GridSet{Kind: kind}
	switch kind {
	case GridKindVolume:
		set.Volume = make([]VolumeFeeGrid, 0, len(drafts))
		for _, d := range drafts {
			grid, err := NewVolumeFeeGrid(d)
			if err != nil {
				return GridSet{}, err
			}
			set.Volume = append(set.Volume, grid)
		}
	case GridKindPeak:
		set.Peak = make([]PeakFeeGrid, 0, len(drafts))
		for _, d := range drafts {
			grid, err := NewPeakFeeGrid(d)
			if err != nil {
				return GridSet{}, err
			}
			set.Peak = append(set.Peak, grid)
		}
	case GridKindDiscount:
		set.Discount = make([]DiscountGrid, 0, len(drafts))
		for _, d := range drafts {
			grid, err := NewDiscountGrid(d)
			if err != nil {
				return GridSet{}, err
			}
			set.Discount = append(set.Discount, grid)
		}
	}
	return set, nil
}

// Validated returns a copy of the set with its collection ordered and checked
// by the partition validator.
func (s GridSet) Validated() (GridSet, error) {
	var err error
	out := GridSet{Kind: s.Kind}
	switch s.Kind {
	case GridKindVolume:
		out.Volume, err = ValidatePartition(s.Volume)
	case GridKindPeak:
		out.Peak, err = ValidatePartition(s.Peak)
	case GridKindDiscount:
		out.Discount, err = ValidatePartition(s.Discount)
	}
	if err != nil {
		return GridSet{}, err
	}
	return out, nil
}
