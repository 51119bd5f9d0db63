package regularization

import (
	"time"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// MaxReasonLength caps the justification text.
const MaxReasonLength = 200

// Request is a retroactive attendance correction. Immutable once
// approved or rejected, except the rejection comment written at
// transition time. At most one pending or approved request may exist per
// (employee, target date).
type Request struct {
	ID               string
	EmployeeID       string
	TargetDate       time.Time
	ProposedCheckIn  time.Time
	ProposedCheckOut time.Time
	Reason           string
	Status           RequestStatus
	SubmittedAt      time.Time
	ApprovedBy       *string
	ApprovedAt       *time.Time
	RejectionComment *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// DTO
	EmployeeName *string
}

// WorkDuration is the derived proposed work time.
func (r *Request) WorkDuration() time.Duration {
	return r.ProposedCheckOut.Sub(r.ProposedCheckIn)
}

// Terminal reports whether the request reached a final state.
func (r *Request) Terminal() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}
