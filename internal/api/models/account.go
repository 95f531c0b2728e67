package models

import (
	"github.com/courierops/pricegrid/internal/account"
)

// AccountCreateRequest is the body of POST /v1/accounts.
type AccountCreateRequest struct {
	ClientIDs       []int64    `json:"clientIds"`
	ClientGroupName string     `json:"clientGroupName"`
	ValidFrom       Timestamp  `json:"validFrom"`
	ValidTo         *Timestamp `json:"validTo,omitempty"`
}

// ToDraft converts the request body to a domain account draft.
func (r AccountCreateRequest) ToDraft() account.Draft {
	d := account.Draft{
		ClientIDs:       r.ClientIDs,
		ClientGroupName: r.ClientGroupName,
		ValidFrom:       r.ValidFrom.Time(),
	}
	if r.ValidTo != nil {
		to := r.ValidTo.Time()
		d.ValidTo = &to
	}
	return d
}

// AccountResponse is the representation of an account.
type AccountResponse struct {
	ID              int64      `json:"id"`
	ClientIDs       []int64    `json:"clientIds"`
	ClientGroupName string     `json:"clientGroupName"`
	ValidFrom       Timestamp  `json:"validFrom"`
	ValidTo         *Timestamp `json:"validTo,omitempty"`
}

// NewAccountResponse maps a domain account to its API shape.
func NewAccountResponse(a *account.Account) *AccountResponse {
	return &AccountResponse{
		ID:              a.ID,
		ClientIDs:       a.ClientIDs,
		ClientGroupName: a.ClientGroupName,
		ValidFrom:       Timestamp(a.ValidFrom),
		ValidTo:         TimestampPtr(a.ValidTo),
	}
}

// NewAccountResponses maps a list of domain accounts.
func NewAccountResponses(accounts []*account.Account) []*AccountResponse {
	out := make([]*AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, NewAccountResponse(a))
	}
	return out
}
