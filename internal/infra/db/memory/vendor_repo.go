package memory

import (
	"context"

	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/domain/marketplace"
)

type VendorRepository struct {
	s *Store
}

func NewVendorRepository(s *Store) *VendorRepository {
	return &VendorRepository{s: s}
}

var (
	_ marketplace.Repository        = (*VendorRepository)(nil)
	_ marketplace.ContactRepository = (*VendorRepository)(nil)
	_ marketplace.ApprovalChecker   = (*VendorRepository)(nil)
)

// ListApprovedByCategory keeps insertion order.
func (r *VendorRepository) ListApprovedByCategory(ctx context.Context, c assessment.Category) ([]*marketplace.Vendor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*marketplace.Vendor
	for _, id := range r.s.vendorOrder {
		v := r.s.vendors[id]
		if !v.Approved() || !v.Serves(c) {
			continue
		}
		var cp marketplace.Vendor
		clone(v, &cp)
		out = append(out, &cp)
	}
	return out, nil
}

func (r *VendorRepository) Get(ctx context.Context, id string) (*marketplace.Vendor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.vendors[id]
	if !ok {
		return nil, nil
	}
	var cp marketplace.Vendor
	clone(v, &cp)
	return &cp, nil
}

func (r *VendorRepository) ApprovedIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		if v, ok := r.s.vendors[id]; ok && v.Approved() {
			out[id] = true
		}
	}
	return out, nil
}

func (r *VendorRepository) CreateContact(ctx context.Context, c *marketplace.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	r.s.contacts = append(r.s.contacts, *c)
	r.s.mu.Unlock()
	return nil
}
