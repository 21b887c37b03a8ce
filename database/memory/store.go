/*
Copyright 2024 FeedChain Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package memory is a process-local data source with the same atomicity
// and exclusivity guarantees as the Postgres one. It backs tests and
// memory:// deployments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/feedchain/feedchain/internal/apierror"
	"github.com/feedchain/feedchain/model"
)

type Store struct {
	mu sync.RWMutex

	listings      map[string]model.Listing
	claims        map[string]model.Claim
	activeClaims  map[string]string // listing id -> claim id
	verifications map[string][]model.PickupVerification
	identities    map[string]string // user id -> role

	sequence int64
}

func NewStore() *Store {
	return &Store{
		listings:      make(map[string]model.Listing),
		claims:        make(map[string]model.Claim),
		activeClaims:  make(map[string]string),
		verifications: make(map[string][]model.PickupVerification),
		identities:    make(map[string]string),
	}
}

func (s *Store) nextID() int64 {
	s.sequence++
	return s.sequence
}

func (s *Store) CreateListing(_ context.Context, listing model.Listing) (model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.listings[listing.ListingID]; exists {
		return model.Listing{}, apierror.NewAPIError(apierror.ErrConflict, "Food post with this ID already exists", nil)
	}
	listing.ID = s.nextID()
	s.listings[listing.ListingID] = listing
	return listing, nil
}

func (s *Store) GetListingByID(_ context.Context, id string) (*model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, ok := s.listings[id]
	if !ok {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Food post with ID '%s' not found", id), nil)
	}
	return &listing, nil
}

func (s *Store) GetListingsByDonor(_ context.Context, donorID string) ([]model.Listing, error) {
	return s.filterListings(func(l model.Listing) bool { return l.DonorID == donorID }, newestListingFirst), nil
}

func (s *Store) GetAvailableListings(_ context.Context, now time.Time) ([]model.Listing, error) {
	return s.filterListings(func(l model.Listing) bool { return l.IsAvailable(now) }, func(a, b model.Listing) bool {
		if !a.ExpiryTime.Equal(b.ExpiryTime) {
			return a.ExpiryTime.Before(b.ExpiryTime)
		}
		return a.ID < b.ID
	}), nil
}

func (s *Store) GetAllListings(_ context.Context) ([]model.Listing, error) {
	return s.filterListings(func(model.Listing) bool { return true }, newestListingFirst), nil
}

func newestListingFirst(a, b model.Listing) bool {
	return a.ID > b.ID
}

func (s *Store) filterListings(keep func(model.Listing) bool, less func(a, b model.Listing) bool) []model.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listings := []model.Listing{}
	for _, l := range s.listings {
		if keep(l) {
			listings = append(listings, l)
		}
	}
	sort.Slice(listings, func(i, j int) bool { return less(listings[i], listings[j]) })
	return listings
}

// CreateActiveClaim checks the active-claim index and flips the listing
// under one write lock, mirroring the partial unique index.
func (s *Store) CreateActiveClaim(_ context.Context, claim model.Claim) (model.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[claim.ListingID]
	if !ok {
		return model.Claim{}, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Food post with ID '%s' not found", claim.ListingID), nil)
	}
	if _, held := s.activeClaims[claim.ListingID]; held {
		return model.Claim{}, apierror.NewAPIError(apierror.ErrConflict, "Food post already claimed", nil)
	}
	if listing.Status != model.ListingStatusPosted {
		return model.Claim{}, apierror.NewAPIError(apierror.ErrConflict, "Food post unavailable", nil)
	}

	claim.ID = s.nextID()
	s.claims[claim.ClaimID] = claim
	s.activeClaims[claim.ListingID] = claim.ClaimID
	listing.Status = model.ListingStatusClaimed
	s.listings[claim.ListingID] = listing
	return claim, nil
}

func (s *Store) GetClaimByID(_ context.Context, id string) (*model.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	claim, ok := s.claims[id]
	if !ok {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Claim with ID '%s' not found", id), nil)
	}
	return &claim, nil
}

func (s *Store) GetClaimsByNGO(_ context.Context, ngoID string) ([]model.Claim, error) {
	return s.filterClaims(func(c model.Claim) bool { return c.NGOID == ngoID }), nil
}

func (s *Store) GetAllClaims(_ context.Context) ([]model.Claim, error) {
	return s.filterClaims(func(model.Claim) bool { return true }), nil
}

func (s *Store) filterClaims(keep func(model.Claim) bool) []model.Claim {
	s.mu.RLock()
	defer s.mu.RUnlock()

	claims := []model.Claim{}
	for _, c := range s.claims {
		if keep(c) {
			claims = append(claims, c)
		}
	}
	sort.Slice(claims, func(i, j int) bool { return claims[i].ID > claims[j].ID })
	return claims
}

// TransitionClaim validates every precondition before mutating anything,
// so a rejected transition leaves no partial state.
func (s *Store) TransitionClaim(_ context.Context, t model.ClaimTransition) (*model.Claim, error) {
	if !model.CanTransition(t.From, t.To) {
		return nil, apierror.NewAPIError(apierror.ErrInvalidState, fmt.Sprintf("Claim cannot move from %s to %s", t.From, t.To), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	claim, ok := s.claims[t.ClaimID]
	if !ok || claim.Status != t.From {
		return nil, apierror.NewAPIError(apierror.ErrInvalidState, fmt.Sprintf("Claim '%s' is not %s", t.ClaimID, t.From), nil)
	}

	verificationIdx := -1
	if t.VerificationID != 0 {
		for i, v := range s.verifications[t.ClaimID] {
			if v.ID == t.VerificationID && !v.Verified {
				verificationIdx = i
				break
			}
		}
		if verificationIdx < 0 {
			return nil, apierror.NewAPIError(apierror.ErrInvalidState, "Pickup verification already used", nil)
		}
	}

	listing, ok := s.listings[claim.ListingID]
	if !ok || listing.Status != t.ListingFrom {
		return nil, apierror.NewAPIError(apierror.ErrInvalidState, fmt.Sprintf("Food post '%s' is not %s", claim.ListingID, t.ListingFrom), nil)
	}

	at := t.At
	claim.Status = t.To
	switch t.To {
	case model.ClaimStatusCancelled:
		delete(s.activeClaims, claim.ListingID)
	case model.ClaimStatusPicked:
		claim.PickedAt = &at
	case model.ClaimStatusDistributed:
		served := t.PeopleServed
		claim.DistributedAt = &at
		claim.PeopleServed = &served
		claim.DistributionLocation = t.DistributionLocation
	}
	if verificationIdx >= 0 {
		v := &s.verifications[t.ClaimID][verificationIdx]
		v.Verified = true
		v.VerifiedAt = &at
	}
	listing.Status = t.ListingStatus

	s.claims[claim.ClaimID] = claim
	s.listings[listing.ListingID] = listing
	return &claim, nil
}

func (s *Store) CreateVerificationIfAbsent(_ context.Context, v model.PickupVerification) (model.PickupVerification, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.verifications[v.ClaimID]; len(existing) > 0 {
		return existing[len(existing)-1], false, nil
	}
	v.ID = s.nextID()
	v.Verified = false
	v.VerifiedAt = nil
	s.verifications[v.ClaimID] = append(s.verifications[v.ClaimID], v)
	return v, true, nil
}

func (s *Store) GetLatestVerification(_ context.Context, claimID string) (*model.PickupVerification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.verifications[claimID]
	if len(records) == 0 {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("No pickup verification for claim '%s'", claimID), nil)
	}
	latest := records[0]
	for _, v := range records[1:] {
		if v.ID > latest.ID {
			latest = v
		}
	}
	return &latest, nil
}

func (s *Store) UpsertIdentity(_ context.Context, principal model.Principal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, seen := s.identities[principal.UserID]
	s.identities[principal.UserID] = principal.Role
	return !seen || previous != principal.Role, nil
}

func (s *Store) GetImpactSummary(_ context.Context) (model.ImpactSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summary model.ImpactSummary
	for _, c := range s.claims {
		if c.Status != model.ClaimStatusDistributed {
			continue
		}
		summary.SuccessfulDistributions++
		if c.PeopleServed != nil {
			summary.MealsServed += *c.PeopleServed
		}
	}
	for _, role := range s.identities {
		if role == model.RoleNGO {
			summary.ActiveNGOs++
		}
	}
	return summary, nil
}
