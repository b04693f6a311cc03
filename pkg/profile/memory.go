package profile

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a Store backed by a map.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	writes   int
}

func NewMemoryStore(seed ...Profile) *MemoryStore {
	s := &MemoryStore{profiles: make(map[string]Profile, len(seed))}
	for _, p := range seed {
		p.Email = NormalizeEmail(p.Email)
		s.profiles[p.ID] = clone(p)
	}
	return s
}

// Writes counts successful Insert and Update calls.
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return ptr(clone(p)), nil
}

func (s *MemoryStore) GetByCustomerID(_ context.Context, customerID string) (*Profile, error) {
	return s.find(func(p Profile) bool {
		return p.StripeCustomerID != nil && *p.StripeCustomerID == customerID
	})
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*Profile, error) {
	email = NormalizeEmail(email)
	return s.find(func(p Profile) bool { return p.Email == email })
}

func (s *MemoryStore) find(match func(Profile) bool) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if match(p) {
			return ptr(clone(p)), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Insert(_ context.Context, p Profile) (*Profile, error) {
	p.Email = NormalizeEmail(p.Email)
	if err := p.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.ID]; ok {
		return nil, ErrAlreadyExists
	}
	for _, existing := range s.profiles {
		if existing.Email == p.Email {
			return nil, ErrAlreadyExists
		}
	}
	s.profiles[p.ID] = clone(p)
	s.writes++
	return ptr(clone(p)), nil
}

func (s *MemoryStore) UpdateSubscription(_ context.Context, id string, f SubscriptionFields) (*Profile, error) {
	return s.update(id, func(p *Profile) { p.Apply(f) })
}

func (s *MemoryStore) UpdatePreferences(_ context.Context, id string, prefs Preferences, now time.Time) (*Profile, error) {
	return s.update(id, func(p *Profile) {
		p.Preferences = prefs
		p.UpdatedAt = now.UTC()
	})
}

func (s *MemoryStore) update(id string, fn func(*Profile)) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	fn(&p)
	s.profiles[id] = clone(p)
	s.writes++
	return ptr(clone(p)), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// clone detaches pointer and slice fields so callers cannot mutate stored state.
func clone(p Profile) Profile {
	p.StripeCustomerID = clonePtr(p.StripeCustomerID)
	p.SubscriptionID = clonePtr(p.SubscriptionID)
	p.SubscriptionStatus = clonePtr(p.SubscriptionStatus)
	p.SubscriptionTier = clonePtr(p.SubscriptionTier)
	p.SubscriptionPeriodEnd = clonePtr(p.SubscriptionPeriodEnd)
	if p.Preferences.ActivityTypes != nil {
		p.Preferences.ActivityTypes = append([]string(nil), p.Preferences.ActivityTypes...)
	}
	if p.Preferences.SpecialConsiderations != nil {
		p.Preferences.SpecialConsiderations = append([]string(nil), p.Preferences.SpecialConsiderations...)
	}
	return p
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func ptr[T any](v T) *T { return &v }
