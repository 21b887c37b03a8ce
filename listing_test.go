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
	"math"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/feedchain/feedchain/internal/apierror"
	"github.com/feedchain/feedchain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wacul/ptr"
)

func TestCreateListing(t *testing.T) {
	f, _ := newMemoryFeedChain(t)
	ctx := context.Background()

	listing, err := f.CreateListing(ctx, donor, model.Listing{
		ListingID:  "fp_chosen_by_client",
		DonorID:    "someone_else",
		Status:     model.ListingStatusClosed,
		FoodType:   "Rice",
		Quantity:   " 5 boxes ",
		ExpiryTime: testNow.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.NotEqual(t, "fp_chosen_by_client", listing.ListingID)
	assert.Contains(t, listing.ListingID, "fp_")
	assert.Equal(t, donor.UserID, listing.DonorID)
	assert.Equal(t, model.ListingStatusPosted, listing.Status)
	assert.Equal(t, "5 boxes", listing.Quantity)
	assert.Equal(t, testNow, listing.CreatedAt)
}

func TestCreateListing_Validation(t *testing.T) {
	f, _ := newMemoryFeedChain(t)
	ctx := context.Background()
	valid := func() model.Listing {
		return model.Listing{
			FoodType:   gofakeit.Lunch(),
			Quantity:   "3 trays",
			ExpiryTime: testNow.Add(time.Hour),
		}
	}

	tests := []struct {
		name      string
		principal model.Principal
		mutate    func(l *model.Listing)
		code      apierror.ErrorCode
	}{
		{"ngo cannot post", ngoA, func(l *model.Listing) {}, apierror.ErrForbidden},
		{"missing expiry", donor, func(l *model.Listing) { l.ExpiryTime = time.Time{} }, apierror.ErrInvalidInput},
		{"expiry in past", donor, func(l *model.Listing) { l.ExpiryTime = testNow.Add(-time.Minute) }, apierror.ErrInvalidInput},
		{"expiry now", donor, func(l *model.Listing) { l.ExpiryTime = testNow }, apierror.ErrInvalidInput},
		{"missing food type", donor, func(l *model.Listing) { l.FoodType = "  " }, apierror.ErrInvalidInput},
		{"missing quantity", donor, func(l *model.Listing) { l.Quantity = "" }, apierror.ErrInvalidInput},
		{"lat without lng", donor, func(l *model.Listing) { l.PickupLat = ptr.Float64(10) }, apierror.ErrInvalidInput},
		{"lat out of range", donor, func(l *model.Listing) {
			l.PickupLat = ptr.Float64(91)
			l.PickupLng = ptr.Float64(0)
		}, apierror.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := valid()
			tt.mutate(&l)
			_, err := f.CreateListing(ctx, tt.principal, l)
			assertCode(t, err, tt.code)
		})
	}
}

func TestGetMyListings(t *testing.T) {
	f, _ := newMemoryFeedChain(t)
	ctx := context.Background()
	first := postListing(t, f, testNow.Add(time.Hour))
	second := postListing(t, f, testNow.Add(time.Hour))

	other := model.Principal{UserID: "donor_2", Role: model.RoleDonor}
	_, err := f.CreateListing(ctx, other, model.Listing{FoodType: "Bread", Quantity: "1 bag", ExpiryTime: testNow.Add(time.Hour)})
	require.NoError(t, err)

	listings, err := f.GetMyListings(ctx, donor)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, second.ListingID, listings[0].ListingID)
	assert.Equal(t, first.ListingID, listings[1].ListingID)

	_, err = f.GetMyListings(ctx, ngoA)
	assertCode(t, err, apierror.ErrForbidden)
}

func TestGetListing_NotFound(t *testing.T) {
	f, _ := newMemoryFeedChain(t)
	_, err := f.GetListing(context.Background(), "fp_missing")
	assertCode(t, err, apierror.ErrNotFound)
}

func TestValidateCoordinates(t *testing.T) {
	assert.NoError(t, ValidateCoordinates(6.5244, 3.3792))
	assert.NoError(t, ValidateCoordinates(-90, 180))

	tests := []struct {
		name     string
		lat, lng float64
	}{
		{"lat too high", 90.1, 0},
		{"lng too low", 0, -180.5},
		{"lat NaN", math.NaN(), 0},
		{"lng NaN", 0, math.NaN()},
		{"lat infinite", math.Inf(1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, ValidateCoordinates(tt.lat, tt.lng), apierror.ErrInvalidInput)
		})
	}
}

func TestGetNearbyListings(t *testing.T) {
	f, _ := newMemoryFeedChain(t)
	ctx := context.Background()
	open := postListing(t, f, testNow.Add(time.Hour))
	soon := postListing(t, f, testNow.Add(time.Minute))
	claimed := postListing(t, f, testNow.Add(time.Hour))
	_, err := f.ClaimListing(ctx, claimed.ListingID, ngoA)
	require.NoError(t, err)

	listings, err := f.GetNearbyListings(ctx, ngoB, 6.5, 3.4)
	require.NoError(t, err)
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ListingID)
	}
	assert.ElementsMatch(t, []string{open.ListingID, soon.ListingID}, ids)

	f.now = func() time.Time { return testNow.Add(10 * time.Minute) }
	listings, err = f.GetNearbyListings(ctx, ngoB, 6.5, 3.4)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, open.ListingID, listings[0].ListingID)

	_, err = f.GetNearbyListings(ctx, donor, 6.5, 3.4)
	assertCode(t, err, apierror.ErrForbidden)

	_, err = f.GetNearbyListings(ctx, ngoB, 100, 3.4)
	assertCode(t, err, apierror.ErrInvalidInput)

	_, err = f.GetNearbyListings(ctx, ngoB, 6.5, -181)
	assertCode(t, err, apierror.ErrInvalidInput)
}
