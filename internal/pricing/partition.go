package pricing

import "sort"

// Bounded is satisfied by every grid kind via its embedded GridBounds.
type Bounded interface {
	Bounds() GridBounds
}

// ValidatePartition orders a configuration's grids and verifies they tile the
// volume x distance space.
//
// The check is a counting consistency check, not a geometric coverage proof:
// each axis must expose as many distinct lower bounds as distinct upper
// bounds, and the number of grids must equal the product of the two bucket
// counts, one grid per (volume bucket, distance bucket) cell. Two grids that
// share a lower bound but differ in upper bound can slip through; that
// matches the behavior callers depend on.
//
// Grids are returned sorted by (MinVolumeThreshold, MinDistanceInUnit), ties
// kept in declaration order so persisted fixtures stay deterministic.
func ValidatePartition[G Bounded](grids []G) ([]G, error) {
	ordered := make([]G, len(grids))
	copy(ordered, grids)
	sort.SliceStable(ordered, func(i, j int) bool {
		bi, bj := ordered[i].Bounds(), ordered[j].Bounds()
		if bi.MinVolumeThreshold != bj.MinVolumeThreshold {
			return bi.MinVolumeThreshold < bj.MinVolumeThreshold
		}
		return bi.MinDistanceInUnit < bj.MinDistanceInUnit
	})

	volMin := make(map[int]struct{})
	volMax := make(map[intOrNil]struct{})
	distMin := make(map[float64]struct{})
	distMax := make(map[floatOrNil]struct{})
	for _, g := range ordered {
		b := g.Bounds()
		volMin[b.MinVolumeThreshold] = struct{}{}
		volMax[intKey(b.MaxVolumeThreshold)] = struct{}{}
		distMin[b.MinDistanceInUnit] = struct{}{}
		distMax[floatKey(b.MaxDistanceInUnit)] = struct{}{}
	}

	if len(volMin) != len(volMax) {
		return nil, &GridPartitionError{Axis: AxisVolume}
	}
	if len(distMin) != len(distMax) {
		return nil, &GridPartitionError{Axis: AxisDistance}
	}
	if len(volMin)*len(distMin) != len(ordered) {
		return nil, &GridPartitionError{Axis: AxisCombined}
	}
	return ordered, nil
}

// intOrNil and floatOrNil make nullable upper bounds usable as map keys, with
// nil distinct from every concrete value.
type intOrNil struct {
	value int
	null  bool
}

type floatOrNil struct {
	value float64
	null  bool
}

func intKey(v *int) intOrNil {
	if v == nil {
		return intOrNil{null: true}
	}
	return intOrNil{value: *v}
}

func floatKey(v *float64) floatOrNil {
	if v == nil {
		return floatOrNil{null: true}
	}
	return floatOrNil{value: *v}
}
