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

	"github.com/feedchain/feedchain/internal/apierror"
	"github.com/feedchain/feedchain/model"
)

const verificationColumns = `id, claim_id, method, code, verified, verified_at, created_at`

func scanVerification(row rowScanner) (model.PickupVerification, error) {
	var v model.PickupVerification
	var verifiedAt sql.NullTime
	err := row.Scan(&v.ID, &v.ClaimID, &v.Method, &v.Code, &v.Verified, &verifiedAt, &v.CreatedAt)
	if err != nil {
		return v, err
	}
	if verifiedAt.Valid {
		v.VerifiedAt = &verifiedAt.Time
	}
	return v, nil
}

// CreateVerificationIfAbsent inserts v only when the claim has no record
// yet. Concurrent or retried pickups all get the record that won the
// unique index on claim_id.
func (d Datasource) CreateVerificationIfAbsent(ctx context.Context, v model.PickupVerification) (model.PickupVerification, bool, error) {
	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO pickup_verifications (claim_id, method, code, verified, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		ON CONFLICT (claim_id) DO NOTHING
		RETURNING id
	`, v.ClaimID, v.Method, v.Code, v.CreatedAt).Scan(&v.ID)
	if err == nil {
		v.Verified = false
		return v, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.PickupVerification{}, false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create pickup verification", err)
	}

	existing, err := d.GetLatestVerification(ctx, v.ClaimID)
	if err != nil {
		return model.PickupVerification{}, false, err
	}
	return *existing, false, nil
}

// GetLatestVerification returns the record with the highest id for claimID.
func (d Datasource) GetLatestVerification(ctx context.Context, claimID string) (*model.PickupVerification, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+verificationColumns+`
		FROM pickup_verifications
		WHERE claim_id = $1
		ORDER BY id DESC
		LIMIT 1
	`, claimID)
	v, err := scanVerification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("No pickup verification for claim '%s'", claimID), nil)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve pickup verification", err)
	}
	return &v, nil
}
