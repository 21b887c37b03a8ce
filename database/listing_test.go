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
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/feedchain/feedchain/internal/apierror"
	"github.com/feedchain/feedchain/model"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wacul/ptr"
)

var listingRowColumns = []string{"id", "listing_id", "donor_id", "food_type", "quantity", "expiry_time", "pickup_lat", "pickup_lng", "status", "created_at"}

func fakeListing() model.Listing {
	return model.Listing{
		ListingID:  model.GenerateUUIDWithSuffix("fp"),
		DonorID:    gofakeit.UUID(),
		FoodType:   gofakeit.Dinner(),
		Quantity:   "5 boxes",
		ExpiryTime: time.Now().Add(time.Hour).UTC(),
		PickupLat:  ptr.Float64(gofakeit.Latitude()),
		PickupLng:  ptr.Float64(gofakeit.Longitude()),
		Status:     model.ListingStatusPosted,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestCreateListing_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	listing := fakeListing()

	mock.ExpectQuery("INSERT INTO listings").
		WithArgs(listing.ListingID, listing.DonorID, listing.FoodType, listing.Quantity, listing.ExpiryTime,
			*listing.PickupLat, *listing.PickupLng, listing.Status, listing.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	created, err := ds.CreateListing(context.Background(), listing)
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, listing.ListingID, created.ListingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateListing_NoCoordinates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	listing := fakeListing()
	listing.PickupLat, listing.PickupLng = nil, nil

	mock.ExpectQuery("INSERT INTO listings").
		WithArgs(listing.ListingID, listing.DonorID, listing.FoodType, listing.Quantity, listing.ExpiryTime,
			nil, nil, listing.Status, listing.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	_, err = ds.CreateListing(context.Background(), listing)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateListing_Conflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("INSERT INTO listings").WillReturnError(&pq.Error{Code: "23505"})

	_, err = ds.CreateListing(context.Background(), fakeListing())
	assert.True(t, apierror.Is(err, apierror.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetListingByID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	l := fakeListing()

	rows := sqlmock.NewRows(listingRowColumns).
		AddRow(3, l.ListingID, l.DonorID, l.FoodType, l.Quantity, l.ExpiryTime, *l.PickupLat, nil, l.Status, l.CreatedAt)
	mock.ExpectQuery("SELECT (.+) FROM listings WHERE listing_id =").WithArgs(l.ListingID).WillReturnRows(rows)

	got, err := ds.GetListingByID(context.Background(), l.ListingID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
	assert.Equal(t, l.DonorID, got.DonorID)
	require.NotNil(t, got.PickupLat)
	assert.Equal(t, *l.PickupLat, *got.PickupLat)
	assert.Nil(t, got.PickupLng)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetListingByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT (.+) FROM listings WHERE listing_id =").
		WithArgs("fp_missing").
		WillReturnRows(sqlmock.NewRows(listingRowColumns))

	_, err = ds.GetListingByID(context.Background(), "fp_missing")
	assert.True(t, apierror.Is(err, apierror.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAvailableListings(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now().UTC()
	l := fakeListing()

	rows := sqlmock.NewRows(listingRowColumns).
		AddRow(1, l.ListingID, l.DonorID, l.FoodType, l.Quantity, l.ExpiryTime, nil, nil, l.Status, l.CreatedAt)
	mock.ExpectQuery("SELECT (.+) FROM listings WHERE status = (.+) AND expiry_time >").
		WithArgs(model.ListingStatusPosted, now).
		WillReturnRows(rows)

	listings, err := ds.GetAvailableListings(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, l.ListingID, listings[0].ListingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetListingsByDonor_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT (.+) FROM listings WHERE donor_id =").
		WithArgs("donor-1").
		WillReturnRows(sqlmock.NewRows(listingRowColumns))

	listings, err := ds.GetListingsByDonor(context.Background(), "donor-1")
	require.NoError(t, err)
	assert.NotNil(t, listings)
	assert.Empty(t, listings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllListings_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT (.+) FROM listings ORDER BY").WillReturnError(errors.New("connection reset"))

	_, err = ds.GetAllListings(context.Background())
	assert.True(t, apierror.Is(err, apierror.ErrInternalServer))
	assert.NoError(t, mock.ExpectationsWereMet())
}
