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

package feedchain

import (
	"context"
	"strings"

	"github.com/feedchain/feedchain/model"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var listingTracer = otel.Tracer("feedchain.listing")

// ValidateCoordinates rejects latitude and longitude values outside their
// valid ranges.
func ValidateCoordinates(lat, lng float64) error {
	// written as negated ranges so NaN is rejected
	if !(lat >= -90 && lat <= 90) {
		return invalidInput("lat must be between -90 and 90")
	}
	if !(lng >= -180 && lng <= 180) {
		return invalidInput("lng must be between -180 and 180")
	}
	return nil
}

// CreateListing posts a new food listing for a donor. The status and the
// donor are always set here, whatever the caller supplied.
func (f *FeedChain) CreateListing(ctx context.Context, principal model.Principal, listing model.Listing) (model.Listing, error) {
	ctx, span := listingTracer.Start(ctx, "CreateListing")
	defer span.End()

	if err := requireRole(principal, model.RoleDonor); err != nil {
		return model.Listing{}, err
	}

	listing.FoodType = strings.TrimSpace(listing.FoodType)
	listing.Quantity = strings.TrimSpace(listing.Quantity)
	if listing.FoodType == "" {
		return model.Listing{}, invalidInput("food_type is required")
	}
	if listing.Quantity == "" {
		return model.Listing{}, invalidInput("quantity is required")
	}
	now := f.clock()
	if listing.ExpiryTime.IsZero() {
		return model.Listing{}, invalidInput("expiry_time is required")
	}
	if listing.IsExpired(now) {
		return model.Listing{}, invalidInput("expiry_time must be in the future")
	}
	if listing.PickupLat != nil || listing.PickupLng != nil {
		if listing.PickupLat == nil || listing.PickupLng == nil {
			return model.Listing{}, invalidInput("pickup_lat and pickup_lng must be set together")
		}
		if err := ValidateCoordinates(*listing.PickupLat, *listing.PickupLng); err != nil {
			return model.Listing{}, err
		}
	}

	listing.ListingID = model.GenerateUUIDWithSuffix("fp")
	listing.DonorID = principal.UserID
	listing.Status = model.ListingStatusPosted
	listing.ExpiryTime = listing.ExpiryTime.UTC()
	listing.CreatedAt = now

	created, err := f.datasource.CreateListing(ctx, listing)
	if err != nil {
		span.RecordError(err)
		return model.Listing{}, err
	}

	logrus.WithFields(logrus.Fields{"food_post_id": created.ListingID, "donor_id": created.DonorID}).Info("food post created")
	span.AddEvent("Food post created", trace.WithAttributes(attribute.String("food_post.id", created.ListingID)))
	return created, nil
}

// GetMyListings returns the donor's own listings, newest first.
func (f *FeedChain) GetMyListings(ctx context.Context, principal model.Principal) ([]model.Listing, error) {
	ctx, span := listingTracer.Start(ctx, "GetMyListings")
	defer span.End()

	if err := requireRole(principal, model.RoleDonor); err != nil {
		return nil, err
	}

	listings, err := f.datasource.GetListingsByDonor(ctx, principal.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.AddEvent("Food posts retrieved", trace.WithAttributes(attribute.Int("food_post.count", len(listings))))
	return listings, nil
}

func (f *FeedChain) GetListing(ctx context.Context, listingID string) (*model.Listing, error) {
	ctx, span := listingTracer.Start(ctx, "GetListing")
	defer span.End()

	listing, err := f.datasource.GetListingByID(ctx, listingID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return listing, nil
}

// GetNearbyListings returns every claimable listing. The coordinates are
// validated but do not rank or filter the result.
func (f *FeedChain) GetNearbyListings(ctx context.Context, principal model.Principal, lat, lng float64) ([]model.Listing, error) {
	ctx, span := listingTracer.Start(ctx, "GetNearbyListings")
	defer span.End()

	if err := requireRole(principal, model.RoleNGO); err != nil {
		return nil, err
	}
	if err := ValidateCoordinates(lat, lng); err != nil {
		return nil, err
	}

	listings, err := f.datasource.GetAvailableListings(ctx, f.clock())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.AddEvent("Available food posts retrieved", trace.WithAttributes(attribute.Int("food_post.count", len(listings))))
	return listings, nil
}
