package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/domain/marketplace"
)

type VendorRepository struct {
	db *sql.DB
}

func NewVendorRepository(db *sql.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

var (
	_ marketplace.Repository        = (*VendorRepository)(nil)
	_ marketplace.ContactRepository = (*VendorRepository)(nil)
	_ marketplace.ApprovalChecker   = (*VendorRepository)(nil)
)

const vendorColumns = `id, company_name, categories, status, featured, verified, rating, review_count`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVendor(row rowScanner) (*marketplace.Vendor, error) {
	var (
		v      marketplace.Vendor
		cats   []byte
		rating sql.NullFloat64
	)
	if err := row.Scan(&v.ID, &v.CompanyName, &cats, &v.Status, &v.Featured, &v.Verified, &rating, &v.ReviewCount); err != nil {
		return nil, err
	}
	if len(cats) > 0 {
		if err := json.Unmarshal(cats, &v.Categories); err != nil {
			return nil, fmt.Errorf("vendor %s categories: %w", v.ID, err)
		}
	}
	if rating.Valid {
		v.Rating = &rating.Float64
	}
	return &v, nil
}

// ListApprovedByCategory filters on the JSON categories array.
func (r *VendorRepository) ListApprovedByCategory(ctx context.Context, c assessment.Category) ([]*marketplace.Vendor, error) {
	q := `
SELECT ` + vendorColumns + `
FROM vendors
WHERE status=? AND JSON_CONTAINS(categories, JSON_QUOTE(?))
ORDER BY id;
`
	rows, err := r.db.QueryContext(ctx, q, marketplace.StatusApproved, string(c))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*marketplace.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachSolutions(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *VendorRepository) Get(ctx context.Context, id string) (*marketplace.Vendor, error) {
	q := `SELECT ` + vendorColumns + ` FROM vendors WHERE id=? LIMIT 1;`
	v, err := scanVendor(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachSolutions(ctx, []*marketplace.Vendor{v}); err != nil {
		return nil, err
	}
	return v, nil
}

// ApprovedIDs is a single indexed lookup, cheap enough to run on every cache hit.
func (r *VendorRepository) ApprovedIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, marketplace.StatusApproved)
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM vendors WHERE status=? AND id IN (`+placeholders(len(ids))+`);`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// attachSolutions loads solutions for all vendors in one query.
func (r *VendorRepository) attachSolutions(ctx context.Context, vendors []*marketplace.Vendor) error {
	if len(vendors) == 0 {
		return nil
	}
	byID := make(map[string]*marketplace.Vendor, len(vendors))
	args := make([]any, 0, len(vendors))
	for _, v := range vendors {
		byID[v.ID] = v
		args = append(args, v.ID)
	}
	q := fmt.Sprintf(`
SELECT id, vendor_id, name, category, pricing_model, starting_price
FROM solutions
WHERE vendor_id IN (%s)
ORDER BY vendor_id, id;
`, placeholders(len(args)))
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s marketplace.Solution
		if err := rows.Scan(&s.ID, &s.VendorID, &s.Name, &s.Category, &s.PricingModel, &s.StartingPrice); err != nil {
			return err
		}
		if v, ok := byID[s.VendorID]; ok {
			v.Solutions = append(v.Solutions, s)
		}
	}
	return rows.Err()
}

func (r *VendorRepository) CreateContact(ctx context.Context, c *marketplace.Contact) error {
	const q = `
INSERT INTO vendor_contacts (id, vendor_id, user_id, organization_id, type, message, status, created_at)
VALUES (?,?,?,?,?,?,?,?);
`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.VendorID, c.UserID, c.OrganizationID, c.Type, c.Message, c.Status, c.CreatedAt.UTC())
	return err
}
