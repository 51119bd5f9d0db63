package regularization

import (
	"context"
)

// RegularizationService defines business logic for the regularization
// ledger and approval workflow. The acting employee/manager is taken from
// the request context claims.
type RegularizationService interface {
	// Submit validates and files a new pending request for the caller
	Submit(ctx context.Context, req SubmitRequest) (RequestResponse, error)

	// ListMy retrieves the caller's own requests
	ListMy(ctx context.Context, filter ListFilter) (ListResponse, error)

	// MyQuota reports the caller's standing against the monthly limit
	MyQuota(ctx context.Context) (QuotaResponse, error)

	// ListPending retrieves pending requests from the caller's team
	ListPending(ctx context.Context, filter ListFilter) (ListResponse, error)

	// Approve moves a pending request to approved; the approval consumes
	// one unit of the employee's monthly quota
	Approve(ctx context.Context, requestID string) (RequestResponse, error)

	// Reject moves a pending request to rejected with an optional comment
	Reject(ctx context.Context, requestID string, req RejectRequest) (RequestResponse, error)
}
