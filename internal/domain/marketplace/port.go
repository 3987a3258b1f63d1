package marketplace

import (
	"context"

	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
)

// Repository port for marketplace reads
type Repository interface {
	// ListApprovedByCategory returns APPROVED vendors serving c, solutions included.
	ListApprovedByCategory(ctx context.Context, c assessment.Category) ([]*Vendor, error)
	// Get returns nil, nil when the vendor does not exist. Status is not filtered.
	Get(ctx context.Context, id string) (*Vendor, error)
}

// ApprovalChecker reads the live approval status of vendors.
type ApprovalChecker interface {
	// ApprovedIDs returns the subset of ids whose vendor is currently APPROVED.
	ApprovedIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

// ContactRepository persists contact hand-offs
type ContactRepository interface {
	CreateContact(ctx context.Context, c *Contact) error
}
