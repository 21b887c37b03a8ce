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
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/feedchain/feedchain/internal/apierror"
	"github.com/feedchain/feedchain/model"
)

const listingColumns = `id, listing_id, donor_id, food_type, quantity, expiry_time, pickup_lat, pickup_lng, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (model.Listing, error) {
	var l model.Listing
	var lat, lng sql.NullFloat64
	err := row.Scan(&l.ID, &l.ListingID, &l.DonorID, &l.FoodType, &l.Quantity, &l.ExpiryTime, &lat, &lng, &l.Status, &l.CreatedAt)
	if err != nil {
		return l, err
	}
	if lat.Valid {
		l.PickupLat = &lat.Float64
	}
	if lng.Valid {
		l.PickupLng = &lng.Float64
	}
	return l, nil
}

func (d Datasource) CreateListing(ctx context.Context, listing model.Listing) (model.Listing, error) {
	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO listings (listing_id, donor_id, food_type, quantity, expiry_time, pickup_lat, pickup_lng, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, listing.ListingID, listing.DonorID, listing.FoodType, listing.Quantity, listing.ExpiryTime,
		listing.PickupLat, listing.PickupLng, listing.Status, listing.CreatedAt).Scan(&listing.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Listing{}, apierror.NewAPIError(apierror.ErrConflict, "Food post with this ID already exists", err)
		}
		return model.Listing{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create food post", err)
	}
	return listing, nil
}

func (d Datasource) GetListingByID(ctx context.Context, id string) (*model.Listing, error) {
	row := d.Conn.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE listing_id = $1`, id)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Food post with ID '%s' not found", id), nil)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve food post", err)
	}
	return &l, nil
}

func (d Datasource) GetListingsByDonor(ctx context.Context, donorID string) ([]model.Listing, error) {
	return d.queryListings(ctx, `SELECT `+listingColumns+` FROM listings WHERE donor_id = $1 ORDER BY created_at DESC, id DESC`, donorID)
}

func (d Datasource) GetAvailableListings(ctx context.Context, now time.Time) ([]model.Listing, error) {
	return d.queryListings(ctx, `SELECT `+listingColumns+` FROM listings WHERE status = $1 AND expiry_time > $2 ORDER BY expiry_time ASC, id ASC`,
		model.ListingStatusPosted, now)
}

func (d Datasource) GetAllListings(ctx context.Context) ([]model.Listing, error) {
	return d.queryListings(ctx, `SELECT `+listingColumns+` FROM listings ORDER BY created_at DESC, id DESC`)
}

func (d Datasource) queryListings(ctx context.Context, query string, args ...any) ([]model.Listing, error) {
	rows, err := d.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve food posts", err)
	}
	defer rows.Close()

	listings := []model.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan food post data", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over food posts", err)
	}
	return listings, nil
}
