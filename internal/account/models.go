// Package account provides billing account resolution for clients and
// client groups. One account owns pricing configurations and may aggregate
// several client ids.
package account

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Errors.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrNoClientIDs     = errors.New("account requires at least one client id")
)

// ConflictError reports a client id already mapped to a different live account.
type ConflictError struct {
	ClientID  int64
	AccountID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("client %d already belongs to live account %d", e.ClientID, e.AccountID)
}

// DateRangeError reports an account validity window that ends before it starts.
type DateRangeError struct {
	ValidFrom time.Time
	ValidTo   time.Time
}

func (e *DateRangeError) Error() string {
	return fmt.Sprintf("invalid dates: valid_from %s is not before valid_to %s",
		e.ValidFrom.Format(time.RFC3339), e.ValidTo.Format(time.RFC3339))
}

// Account is a billing identity owning pricing configurations.
type Account struct {
	ID              int64
	ClientIDs       []int64
	ClientGroupName string
	ValidFrom       time.Time
	ValidTo         *time.Time
	DeletedAt       *time.Time
}

// Live reports whether the account is not soft-deleted.
func (a *Account) Live() bool { return a.DeletedAt == nil }

// Contains reports whether the account aggregates the given client id.
func (a *Account) Contains(clientID int64) bool {
	for _, id := range a.ClientIDs {
		if id == clientID {
			return true
		}
	}
	return false
}

// Draft carries the raw fields of an account creation request.
type Draft struct {
	ClientIDs       []int64
	ClientGroupName string
	ValidFrom       time.Time
	ValidTo         *time.Time
}

// New validates a draft and returns the constructed account.
func New(d Draft) (*Account, error) {
	if len(d.ClientIDs) == 0 {
		return nil, ErrNoClientIDs
	}
	if d.ValidTo != nil && !d.ValidTo.After(d.ValidFrom) {
		return nil, &DateRangeError{ValidFrom: d.ValidFrom, ValidTo: *d.ValidTo}
	}
	return &Account{
		ClientIDs:       d.ClientIDs,
		ClientGroupName: d.ClientGroupName,
		ValidFrom:       d.ValidFrom,
		ValidTo:         d.ValidTo,
	}, nil
}

// JoinClientIDs encodes client ids as the comma-joined column value.
func JoinClientIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

// SplitClientIDs decodes the comma-joined column value back into client ids.
func SplitClientIDs(joined string) ([]int64, error) {
	if joined == "" {
		return nil, nil
	}
	parts := strings.Split(joined, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
