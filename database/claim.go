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

const claimColumns = `id, claim_id, listing_id, ngo_id, status, claimed_at, picked_at, distributed_at, people_served, distribution_location`

func scanClaim(row rowScanner) (model.Claim, error) {
	var c model.Claim
	var pickedAt, distributedAt sql.NullTime
	var peopleServed sql.NullInt64
	var location sql.NullString
	err := row.Scan(&c.ID, &c.ClaimID, &c.ListingID, &c.NGOID, &c.Status, &c.ClaimedAt, &pickedAt, &distributedAt, &peopleServed, &location)
	if err != nil {
		return c, err
	}
	if pickedAt.Valid {
		c.PickedAt = &pickedAt.Time
	}
	if distributedAt.Valid {
		c.DistributedAt = &distributedAt.Time
	}
	if peopleServed.Valid {
		c.PeopleServed = &peopleServed.Int64
	}
	c.DistributionLocation = location.String
	return c, nil
}

// CreateActiveClaim inserts the claim and flips its listing to CLAIMED in
// one transaction. The partial unique index on claims(listing_id) is the
// authoritative exclusivity guard.
func (d Datasource) CreateActiveClaim(ctx context.Context, claim model.Claim) (model.Claim, error) {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return model.Claim{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO claims (claim_id, listing_id, ngo_id, status, claimed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, claim.ClaimID, claim.ListingID, claim.NGOID, claim.Status, claim.ClaimedAt).Scan(&claim.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Claim{}, apierror.NewAPIError(apierror.ErrConflict, "Food post already claimed", nil)
		}
		return model.Claim{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create claim", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE listings SET status = $2 WHERE listing_id = $1 AND status = $3
	`, claim.ListingID, model.ListingStatusClaimed, model.ListingStatusPosted)
	if err != nil {
		return model.Claim{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update food post status", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return model.Claim{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return model.Claim{}, apierror.NewAPIError(apierror.ErrConflict, "Food post unavailable", nil)
	}

	if err := tx.Commit(); err != nil {
		return model.Claim{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit transaction", err)
	}
	return claim, nil
}

func (d Datasource) GetClaimByID(ctx context.Context, id string) (*model.Claim, error) {
	row := d.Conn.QueryRowContext(ctx, `SELECT `+claimColumns+` FROM claims WHERE claim_id = $1`, id)
	c, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Claim with ID '%s' not found", id), nil)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve claim", err)
	}
	return &c, nil
}

func (d Datasource) GetClaimsByNGO(ctx context.Context, ngoID string) ([]model.Claim, error) {
	return d.queryClaims(ctx, `SELECT `+claimColumns+` FROM claims WHERE ngo_id = $1 ORDER BY claimed_at DESC, id DESC`, ngoID)
}

func (d Datasource) GetAllClaims(ctx context.Context) ([]model.Claim, error) {
	return d.queryClaims(ctx, `SELECT `+claimColumns+` FROM claims ORDER BY claimed_at DESC, id DESC`)
}

func (d Datasource) queryClaims(ctx context.Context, query string, args ...any) ([]model.Claim, error) {
	rows, err := d.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve claims", err)
	}
	defer rows.Close()

	claims := []model.Claim{}
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan claim data", err)
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over claims", err)
	}
	return claims, nil
}

// transitionArgs returns the optional columns written by a transition.
// Nil leaves the stored value untouched.
func transitionArgs(t model.ClaimTransition) (pickedAt, distributedAt *time.Time, peopleServed *int64, location *string) {
	at := t.At
	switch t.To {
	case model.ClaimStatusPicked:
		pickedAt = &at
	case model.ClaimStatusDistributed:
		distributedAt = &at
		served := t.PeopleServed
		peopleServed = &served
		loc := t.DistributionLocation
		location = &loc
	}
	return
}

// TransitionClaim moves a claim with a compare-and-set on its status, marks
// the pickup verification when one is given, and moves the claim's own
// listing, all in one transaction. The listing is read from the claim row
// returned by the update.
func (d Datasource) TransitionClaim(ctx context.Context, t model.ClaimTransition) (*model.Claim, error) {
	if !model.CanTransition(t.From, t.To) {
		return nil, apierror.NewAPIError(apierror.ErrInvalidState, fmt.Sprintf("Claim cannot move from %s to %s", t.From, t.To), nil)
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	pickedAt, distributedAt, peopleServed, location := transitionArgs(t)
	row := tx.QueryRowContext(ctx, `
		UPDATE claims
		SET status = $3,
			picked_at = COALESCE($4, picked_at),
			distributed_at = COALESCE($5, distributed_at),
			people_served = COALESCE($6, people_served),
			distribution_location = COALESCE($7, distribution_location)
		WHERE claim_id = $1 AND status = $2
		RETURNING `+claimColumns,
		t.ClaimID, t.From, t.To, pickedAt, distributedAt, peopleServed, location)
	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrInvalidState, fmt.Sprintf("Claim '%s' is not %s", t.ClaimID, t.From), nil)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update claim", err)
	}

	if t.VerificationID != 0 {
		result, err := tx.ExecContext(ctx, `
			UPDATE pickup_verifications SET verified = TRUE, verified_at = $3
			WHERE id = $1 AND claim_id = $2 AND verified = FALSE
		`, t.VerificationID, t.ClaimID, t.At)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark verification", err)
		}
		if err := expectOneRow(result, "Pickup verification already used"); err != nil {
			return nil, err
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE listings SET status = $2 WHERE listing_id = $1 AND status = $3
	`, claim.ListingID, t.ListingStatus, t.ListingFrom)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update food post status", err)
	}
	if err := expectOneRow(result, fmt.Sprintf("Food post '%s' is not %s", claim.ListingID, t.ListingFrom)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit transaction", err)
	}
	return &claim, nil
}

func expectOneRow(result sql.Result, message string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrInvalidState, message, nil)
	}
	return nil
}
