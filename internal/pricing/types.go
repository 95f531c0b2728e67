// Package pricing implements the time-versioned pricing configuration
// engine: typed pricing grids, the grid partition validator, the
// configuration value model, and the configuration lifecycle manager.
package pricing

import (
	"strconv"
	"strings"
)

// PricingType selects how fees are bracketed.
type PricingType string

const (
	PricingVolume      PricingType = "volume"
	PricingPeakOffPeak PricingType = "peak_off_peak"
)

// ConfigType selects whether a configuration charges fees or grants discounts.
type ConfigType string

const (
	ConfigFee      ConfigType = "fee"
	ConfigDiscount ConfigType = "discount"
)

// Group distinguishes single-client accounts from aggregated client groups.
type Group string

const (
	GroupIndividual Group = "individual"
	GroupGroup      Group = "group"
)

// PackageSize is a deliverable package size class.
type PackageSize string

const (
	PackageSmall  PackageSize = "SMALL"
	PackageMedium PackageSize = "MEDIUM"
	PackageLarge  PackageSize = "LARGE"
)

// TransportType is a courier transport mode.
type TransportType string

const (
	TransportWalk TransportType = "WALK"
	TransportBike TransportType = "BIKE"
	TransportCar  TransportType = "CAR"
)

// Frequency is the billing cadence of a configuration.
type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// setDelimiter joins set-valued columns in storage.
const setDelimiter = ", "

// PackageSizes lists every valid package size.
func PackageSizes() []PackageSize {
	return []PackageSize{PackageSmall, PackageMedium, PackageLarge}
}

// TransportTypes lists every valid transport mode.
func TransportTypes() []TransportType {
	return []TransportType{TransportWalk, TransportBike, TransportCar}
}

func (p PricingType) valid() bool {
	return p == PricingVolume || p == PricingPeakOffPeak
}

func (c ConfigType) valid() bool {
	return c == ConfigFee || c == ConfigDiscount
}

func (g Group) valid() bool {
	return g == GroupIndividual || g == GroupGroup
}

func (p PackageSize) valid() bool {
	return p == PackageSmall || p == PackageMedium || p == PackageLarge
}

func (t TransportType) valid() bool {
	return t == TransportWalk || t == TransportBike || t == TransportCar
}

func (f Frequency) valid() bool {
	return f == FrequencyWeekly || f == FrequencyMonthly
}

// JoinPackageSizes encodes package sizes as a single delimited column value.
func JoinPackageSizes(sizes []PackageSize) string {
	parts := make([]string, 0, len(sizes))
	for _, s := range sizes {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, setDelimiter)
}

// SplitPackageSizes decodes a delimited column value back into package sizes.
func SplitPackageSizes(joined string) []PackageSize {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, setDelimiter)
	sizes := make([]PackageSize, 0, len(parts))
	for _, p := range parts {
		sizes = append(sizes, PackageSize(strings.TrimSpace(p)))
	}
	return sizes
}

// JoinTransportTypes encodes transport modes as a single delimited column value.
func JoinTransportTypes(modes []TransportType) string {
	parts := make([]string, 0, len(modes))
	for _, m := range modes {
		parts = append(parts, string(m))
	}
	return strings.Join(parts, setDelimiter)
}

// SplitTransportTypes decodes a delimited column value back into transport modes.
func SplitTransportTypes(joined string) []TransportType {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, setDelimiter)
	modes := make([]TransportType, 0, len(parts))
	for _, p := range parts {
		modes = append(modes, TransportType(strings.TrimSpace(p)))
	}
	return modes
}

// JoinWeekdays encodes peak-grid weekdays as a comma-joined integer string.
func JoinWeekdays(days []int) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}

// SplitWeekdays decodes a comma-joined integer string into weekdays.
func SplitWeekdays(joined string) ([]int, error) {
	if joined == "" {
		return nil, nil
	}
	parts := strings.Split(joined, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}
