package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/domain/marketplace"
)

type VendorRepository struct{ db *sql.DB }

func NewVendorRepository(db *sql.DB) *VendorRepository { return &VendorRepository{db: db} }

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
		cats   []string
		rating sql.NullFloat64
	)
	if err := row.Scan(&v.ID, &v.CompanyName, pq.Array(&cats), &v.Status, &v.Featured, &v.Verified, &rating, &v.ReviewCount); err != nil {
		return nil, err
	}
	v.Categories = make([]assessment.Category, len(cats))
	for i, c := range cats {
		v.Categories[i] = assessment.Category(c)
	}
	if rating.Valid {
		v.Rating = &rating.Float64
	}
	return &v, nil
}

func (r *VendorRepository) ListApprovedByCategory(ctx context.Context, c assessment.Category) ([]*marketplace.Vendor, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+vendorColumns+`
FROM vendors
WHERE status = $1 AND $2 = ANY(categories)
ORDER BY id;`, marketplace.StatusApproved, string(c))
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
	v, err := scanVendor(r.db.QueryRowContext(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1;`, id))
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

func (r *VendorRepository) ApprovedIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM vendors WHERE status = $1 AND id = ANY($2);`, marketplace.StatusApproved, pq.Array(ids))
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

func (r *VendorRepository) attachSolutions(ctx context.Context, vendors []*marketplace.Vendor) error {
	if len(vendors) == 0 {
		return nil
	}
	byID := make(map[string]*marketplace.Vendor, len(vendors))
	ids := make([]string, 0, len(vendors))
	for _, v := range vendors {
		byID[v.ID] = v
		ids = append(ids, v.ID)
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, vendor_id, name, category, pricing_model, starting_price
FROM solutions
WHERE vendor_id = ANY($1)
ORDER BY vendor_id, id;`, pq.Array(ids))
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
	_, err := r.db.ExecContext(ctx, `
INSERT INTO vendor_contacts (id, vendor_id, user_id, organization_id, type, message, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`,
		c.ID, c.VendorID, c.UserID, c.OrganizationID, c.Type, c.Message, c.Status, c.CreatedAt.UTC())
	return err
}
