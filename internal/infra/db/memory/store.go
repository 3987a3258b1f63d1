// Package memory is the process-local adapter set, used by tests and by
// database.driver=memory. Records are deep-copied on the way in and out so callers
// never share state with the store.
package memory

import (
	"encoding/json"
	"sync"

	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/domain/billing"
	"github.com/bryanwahyu/complyhub/internal/domain/marketplace"
)

// Store holds every record behind one lock. The repositories in this package are views
// on it.
type Store struct {
	mu sync.RWMutex

	assessments map[string]*assessment.Assessment
	vendors     map[string]*marketplace.Vendor
	vendorOrder []string
	contacts    []marketplace.Contact
	plans       map[string]billing.Plan
	credits     map[string]int
}

func NewStore() *Store {
	return &Store{
		assessments: make(map[string]*assessment.Assessment),
		vendors:     make(map[string]*marketplace.Vendor),
		plans:       make(map[string]billing.Plan),
		credits:     make(map[string]int),
	}
}

// PutAssessment inserts or replaces an assessment together with its gaps and risks.
func (s *Store) PutAssessment(a *assessment.Assessment) {
	var cp assessment.Assessment
	clone(a, &cp)
	s.mu.Lock()
	s.assessments[a.ID] = &cp
	s.mu.Unlock()
}

// PutVendor inserts or replaces a vendor with its solutions.
func (s *Store) PutVendor(v *marketplace.Vendor) {
	var cp marketplace.Vendor
	clone(v, &cp)
	s.mu.Lock()
	if _, ok := s.vendors[v.ID]; !ok {
		s.vendorOrder = append(s.vendorOrder, v.ID)
	}
	s.vendors[v.ID] = &cp
	s.mu.Unlock()
}

// SetPlan records an organization's subscription plan.
func (s *Store) SetPlan(orgID string, p billing.Plan) {
	s.mu.Lock()
	s.plans[orgID] = p
	s.mu.Unlock()
}

// SetCredits overwrites an organization's credit balance.
func (s *Store) SetCredits(orgID string, n int) {
	s.mu.Lock()
	s.credits[orgID] = n
	s.mu.Unlock()
}

// Contacts returns a copy of every stored contact in insertion order.
func (s *Store) Contacts() []marketplace.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]marketplace.Contact(nil), s.contacts...)
}

// Ping satisfies the health checker.
func (s *Store) Ping() error { return nil }

// clone round-trips v through JSON into out.
func clone(v, out any) {
	b, err := json.Marshal(v)
	if err != nil {
		panic("memory: clone: " + err.Error())
	}
	if err := json.Unmarshal(b, out); err != nil {
		panic("memory: clone: " + err.Error())
	}
}
