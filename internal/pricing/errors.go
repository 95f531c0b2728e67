package pricing

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors.
var (
	// ErrMissingGrids is returned when a create request carries no grids.
	ErrMissingGrids = errors.New("pricing configuration requires at least one grid")
)

// ValidationError reports a single field that failed its range or enum rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// DateRangeError reports a validity window that ends before it starts.
type DateRangeError struct {
	ValidFrom time.Time
	ValidTo   time.Time
}

func (e *DateRangeError) Error() string {
	return fmt.Sprintf("invalid dates: valid_from %s is not before valid_to %s",
		e.ValidFrom.Format(time.RFC3339), e.ValidTo.Format(time.RFC3339))
}

// InvalidConfigTypeError reports an illegal (config type, pricing type) pairing.
type InvalidConfigTypeError struct {
	ConfigType  ConfigType
	PricingType PricingType
}

func (e *InvalidConfigTypeError) Error() string {
	return fmt.Sprintf("invalid configuration: config type %q cannot be combined with pricing type %q",
		e.ConfigType, e.PricingType)
}

// UnsupportedAfterUpdateError reports a configuration whose persisted grids no
// longer match its type fields after an update.
type UnsupportedAfterUpdateError struct {
	ConfigID    int64
	GridKind    GridKind
	ConfigType  ConfigType
	PricingType PricingType
}

func (e *UnsupportedAfterUpdateError) Error() string {
	return fmt.Sprintf("config %d: unsupported %s grids for config type %q / pricing type %q after update",
		e.ConfigID, e.GridKind, e.ConfigType, e.PricingType)
}

// Partition check axes reported by GridPartitionError.
const (
	AxisVolume   = "volume buckets"
	AxisDistance = "distance buckets"
	AxisCombined = "combined grids"
)

// GridPartitionError reports a grid set that fails the volume/distance
// bucket-count consistency check or the completeness check.
type GridPartitionError struct {
	Axis string
}

func (e *GridPartitionError) Error() string {
	return fmt.Sprintf("invalid grid values after ordering: %s check failed", e.Axis)
}

// InvalidGroupError reports a request whose group does not match the
// operation it was submitted to.
type InvalidGroupError struct {
	Group   Group
	ReqType Group
}

func (e *InvalidGroupError) Error() string {
	return fmt.Sprintf("group %q is not valid for a %q configuration request", e.Group, e.ReqType)
}

// ConfigGroupError reports a group mismatch between a stored configuration
// and the requested one.
type ConfigGroupError struct {
	AccountID     int64
	ReqGroup      Group
	ExistingGroup Group
}

func (e *ConfigGroupError) Error() string {
	return fmt.Sprintf("account %d: requested group %q does not match existing configuration group %q",
		e.AccountID, e.ReqGroup, e.ExistingGroup)
}

// ClientIDMismatchError reports a stored configuration owned by a different
// account than the one resolved for the request.
type ClientIDMismatchError struct {
	StoredID int64
	ReqID    int64
}

func (e *ClientIDMismatchError) Error() string {
	return fmt.Sprintf("account ids not identical: id in store %d, requested id %d", e.StoredID, e.ReqID)
}

// ConfigNotFoundError reports a missing or deleted configuration.
type ConfigNotFoundError struct {
	ConfigID int64
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config %d not found", e.ConfigID)
}

// AccountNotFoundError reports an account with no live configuration.
type AccountNotFoundError struct {
	AccountID int64
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("no configuration found for account %d", e.AccountID)
}
