package pricing

import (
	"fmt"
	"time"
)

// Config is a time-bounded pricing configuration owned by one account.
// A nil ValidTo means the configuration is open-ended.
type Config struct {
	ID                int64
	AccountID         int64
	ValidFrom         time.Time
	ValidTo           *time.Time
	PricingType       PricingType
	ConfigType        ConfigType
	Group             Group
	PackageSizeOption []PackageSize
	TransportOption   []TransportType
	Frequency         Frequency
	DeletedAt         *time.Time
}

// ConfigDraft carries the raw scalar fields of a configuration submission.
type ConfigDraft struct {
	ValidFrom         time.Time
	ValidTo           *time.Time
	PricingType       PricingType
	ConfigType        ConfigType
	Group             Group
	PackageSizeOption []PackageSize
	TransportOption   []TransportType
	Frequency         Frequency
}

// NewConfig validates a draft and returns the constructed configuration.
// Validation is explicit and ordered: enum membership, window sanity, then
// the (config type, pricing type) legality table.
func NewConfig(d ConfigDraft) (*Config, error) {
	if !d.PricingType.valid() {
		return nil, &ValidationError{Field: "pricingType", Message: fmt.Sprintf("unsupported value %q", d.PricingType)}
	}
	if !d.ConfigType.valid() {
		return nil, &ValidationError{Field: "configType", Message: fmt.Sprintf("unsupported value %q", d.ConfigType)}
	}
	if !d.Group.valid() {
		return nil, &ValidationError{Field: "group", Message: fmt.Sprintf("unsupported value %q", d.Group)}
	}
	if len(d.PackageSizeOption) == 0 {
		return nil, &ValidationError{Field: "packageSizeOption", Message: "must not be empty"}
	}
	for _, p := range d.PackageSizeOption {
		if !p.valid() {
			return nil, &ValidationError{Field: "packageSizeOption", Message: fmt.Sprintf("unsupported value %q", p)}
		}
	}
	if len(d.TransportOption) == 0 {
		return nil, &ValidationError{Field: "transportOption", Message: "must not be empty"}
	}
	for _, t := range d.TransportOption {
		if !t.valid() {
			return nil, &ValidationError{Field: "transportOption", Message: fmt.Sprintf("unsupported value %q", t)}
		}
	}
	if !d.Frequency.valid() {
		return nil, &ValidationError{Field: "frequency", Message: fmt.Sprintf("unsupported value %q", d.Frequency)}
	}
	if d.ValidTo != nil && !d.ValidTo.After(d.ValidFrom) {
		return nil, &DateRangeError{ValidFrom: d.ValidFrom, ValidTo: *d.ValidTo}
	}
	if _, err := GridKindFor(d.ConfigType, d.PricingType); err != nil {
		return nil, err
	}

	return &Config{
		ValidFrom:         d.ValidFrom,
		ValidTo:           d.ValidTo,
		PricingType:       d.PricingType,
		ConfigType:        d.ConfigType,
		Group:             d.Group,
		PackageSizeOption: d.PackageSizeOption,
		TransportOption:   d.TransportOption,
		Frequency:         d.Frequency,
	}, nil
}

// Live reports whether the configuration is not soft-deleted.
func (c *Config) Live() bool { return c.DeletedAt == nil }

// ActiveAt reports whether the configuration's validity window covers t.
func (c *Config) ActiveAt(t time.Time) bool {
	if !c.Live() {
		return false
	}
	if t.Before(c.ValidFrom) {
		return false
	}
	return c.ValidTo == nil || c.ValidTo.After(t)
}

// moreRecent orders configurations by greatest ValidTo with nil sorting
// greatest; "most recent" throughout the lifecycle manager means greatest
// ValidTo. Equal windows (both open-ended, or identical ValidTo) tie-break on
// greater ValidFrom, then greater id, so the ordering stays deterministic
// while a transient state holds two open-ended rows.
func moreRecent(a, b *Config) bool {
	switch {
	case a.ValidTo == nil && b.ValidTo != nil:
		return true
	case a.ValidTo != nil && b.ValidTo == nil:
		return false
	case a.ValidTo != nil && b.ValidTo != nil && !a.ValidTo.Equal(*b.ValidTo):
		return a.ValidTo.After(*b.ValidTo)
	}
	if !a.ValidFrom.Equal(b.ValidFrom) {
		return a.ValidFrom.After(b.ValidFrom)
	}
	return a.ID > b.ID
}
