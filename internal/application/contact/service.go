// Package contact hands a user's enquiry over to a marketplace vendor. RFPs are the one
// request type gated on the organization's subscription plan.
package contact

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/complyhub/internal/application"
	"github.com/bryanwahyu/complyhub/internal/domain/apperr"
	"github.com/bryanwahyu/complyhub/internal/domain/billing"
	"github.com/bryanwahyu/complyhub/internal/domain/marketplace"
	"github.com/bryanwahyu/complyhub/internal/logging"
)

// Request is the enquiry payload.
type Request struct {
	Type    marketplace.ContactType `json:"type"`
	Message string                  `json:"message"`
}

// Requester identifies who is asking. An empty Plan is resolved through the
// subscription lookup.
type Requester struct {
	UserID         string
	OrganizationID string
	Plan           billing.Plan
}

type Service struct {
	Vendors       marketplace.Repository
	Contacts      marketplace.ContactRepository
	Subscriptions billing.SubscriptionLookup
	Clock         application.Clock
	Log           logging.Logger
	NewID         func() string
}

func NewService(vendors marketplace.Repository, contacts marketplace.ContactRepository, subs billing.SubscriptionLookup, clock application.Clock, log logging.Logger) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Service{
		Vendors:       vendors,
		Contacts:      contacts,
		Subscriptions: subs,
		Clock:         clock,
		Log:           logging.OrNop(log).Named("contact"),
		NewID:         uuid.NewString,
	}
}

// ContactVendor validates the request, enforces the RFP plan gate and stores a PENDING
// contact.
func (s *Service) ContactVendor(ctx context.Context, vendorID string, req Request, who Requester) (*marketplace.Contact, error) {
	typ := marketplace.ContactType(strings.TrimSpace(string(req.Type)))
	if !typ.Valid() {
		return nil, apperr.ErrInvalidContactType.Withf("contact type %q is not one of DEMO_REQUEST, INFO_REQUEST, RFP, PRICING, GENERAL", req.Type)
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, apperr.ErrEmptyMessage
	}

	v, err := s.Vendors.Get(ctx, vendorID)
	if err != nil {
		return nil, apperr.Storage(err, "load vendor")
	}
	if v == nil || !v.Approved() {
		return nil, apperr.ErrVendorNotFound.Withf("vendor %s not found", vendorID)
	}

	if typ == marketplace.ContactRFP {
		plan, err := s.plan(ctx, who)
		if err != nil {
			return nil, err
		}
		if !plan.Paid() {
			logging.OrNop(s.Log).Debug("rfp blocked by plan",
				logging.String("organization_id", who.OrganizationID),
				logging.String("plan", string(plan)),
			)
			return nil, apperr.ErrSubscriptionRequired.Withf("RFP requests require a paid subscription")
		}
	}

	newID := s.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	c := &marketplace.Contact{
		ID:             newID(),
		VendorID:       v.ID,
		UserID:         who.UserID,
		OrganizationID: who.OrganizationID,
		Type:           typ,
		Message:        msg,
		Status:         marketplace.ContactStatusPending,
		CreatedAt:      s.now(),
	}
	if err := s.Contacts.CreateContact(ctx, c); err != nil {
		return nil, apperr.Storage(err, "create contact")
	}
	logging.OrNop(s.Log).Info("vendor contacted",
		logging.String("contact_id", c.ID),
		logging.String("vendor_id", c.VendorID),
		logging.String("type", string(c.Type)),
	)
	return c, nil
}

func (s *Service) plan(ctx context.Context, who Requester) (billing.Plan, error) {
	if who.Plan != "" {
		return who.Plan, nil
	}
	if s.Subscriptions == nil {
		return billing.PlanFree, nil
	}
	p, err := s.Subscriptions.CurrentPlan(ctx, who.OrganizationID)
	if err != nil {
		return "", apperr.Storage(err, "load subscription")
	}
	return p, nil
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
