package marketplace

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
)

// Status of a marketplace listing
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// PricingModel of a solution
type PricingModel string

const (
	PricingSubscription PricingModel = "SUBSCRIPTION"
	PricingOneTime      PricingModel = "ONE_TIME"
	PricingUsageBased   PricingModel = "USAGE_BASED"
	PricingCustom       PricingModel = "CUSTOM"
)

// Solution is a product a vendor offers in one category.
type Solution struct {
	ID            string              `json:"id"`
	VendorID      string              `json:"vendor_id"`
	Name          string              `json:"name"`
	Category      assessment.Category `json:"category"`
	PricingModel  PricingModel        `json:"pricing_model"`
	StartingPrice decimal.Decimal     `json:"starting_price"`
}

// Vendor is a marketplace listing.
type Vendor struct {
	ID          string                `json:"id"`
	CompanyName string                `json:"company_name"`
	Categories  []assessment.Category `json:"categories"`
	Status      Status                `json:"status"`
	Featured    bool                  `json:"featured"`
	Verified    bool                  `json:"verified"`
	Rating      *float64              `json:"rating"`
	ReviewCount int                   `json:"review_count"`
	Solutions   []Solution            `json:"solutions,omitempty"`
}

func (v *Vendor) Approved() bool { return v.Status == StatusApproved }

// Serves reports whether c is among the vendor's categories.
func (v *Vendor) Serves(c assessment.Category) bool {
	return slices.Contains(v.Categories, c)
}

// RatingValue treats a missing rating as 0.
func (v *Vendor) RatingValue() float64 {
	if v.Rating == nil {
		return 0
	}
	return *v.Rating
}

// Match is a computed (gap, vendor) pairing. Never persisted.
type Match struct {
	GapID        string   `json:"gapId"`
	VendorID     string   `json:"vendorId"`
	VendorName   string   `json:"vendorName"`
	SolutionID   string   `json:"solutionId,omitempty"`
	MatchScore   float64  `json:"matchScore"`
	MatchReasons []string `json:"matchReasons"`
}

// ContactType enum
type ContactType string

const (
	ContactDemoRequest ContactType = "DEMO_REQUEST"
	ContactInfoRequest ContactType = "INFO_REQUEST"
	ContactRFP         ContactType = "RFP"
	ContactPricing     ContactType = "PRICING"
	ContactGeneral     ContactType = "GENERAL"
)

func (t ContactType) Valid() bool {
	switch t {
	case ContactDemoRequest, ContactInfoRequest, ContactRFP, ContactPricing, ContactGeneral:
		return true
	}
	return false
}

// ContactStatus enum
type ContactStatus string

const ContactStatusPending ContactStatus = "PENDING"

// Contact is the hand-off record created when a user reaches out to a vendor.
type Contact struct {
	ID             string        `json:"id"`
	VendorID       string        `json:"vendor_id"`
	UserID         string        `json:"user_id"`
	OrganizationID string        `json:"organization_id"`
	Type           ContactType   `json:"type"`
	Message        string        `json:"message"`
	Status         ContactStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
}
