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

package database

import (
	"context"
	"time"

	"github.com/feedchain/feedchain/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	listing
	claim
	verification
	identity
	impact
}

// listing is the Listing Store surface.
type listing interface {
	CreateListing(ctx context.Context, listing model.Listing) (model.Listing, error)  // Inserts a POSTED listing
	GetListingByID(ctx context.Context, id string) (*model.Listing, error)            // NotFound when absent
	GetListingsByDonor(ctx context.Context, donorID string) ([]model.Listing, error)  // Newest first
	GetAvailableListings(ctx context.Context, now time.Time) ([]model.Listing, error) // POSTED and expiring after now
	GetAllListings(ctx context.Context) ([]model.Listing, error)                      // Newest first
}

// claim holds the claim primitives. Both writers are atomic: the listing
// row changes in the same unit of work as the claim row, or not at all.
type claim interface {
	// CreateActiveClaim inserts a CLAIMED claim and moves its listing from
	// POSTED to CLAIMED. It fails with Conflict when the listing already
	// has an active claim or is no longer POSTED.
	CreateActiveClaim(ctx context.Context, claim model.Claim) (model.Claim, error)
	GetClaimByID(ctx context.Context, id string) (*model.Claim, error)
	GetClaimsByNGO(ctx context.Context, ngoID string) ([]model.Claim, error)
	GetAllClaims(ctx context.Context) ([]model.Claim, error)

	// TransitionClaim applies a compare-and-set move of a claim. It fails
	// with InvalidState when the claim or its listing is not in the
	// expected status.
	TransitionClaim(ctx context.Context, t model.ClaimTransition) (*model.Claim, error)
}

type verification interface {
	// CreateVerificationIfAbsent stores v unless the claim already has a
	// record, in which case the latest existing record is returned and
	// created is false.
	CreateVerificationIfAbsent(ctx context.Context, v model.PickupVerification) (record model.PickupVerification, created bool, err error)
	GetLatestVerification(ctx context.Context, claimID string) (*model.PickupVerification, error)
}

type identity interface {
	// UpsertIdentity reports changed when the user is new or its role
	// differs from the one last recorded.
	UpsertIdentity(ctx context.Context, principal model.Principal) (changed bool, err error)
}

type impact interface {
	GetImpactSummary(ctx context.Context) (model.ImpactSummary, error)
}
