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
	"time"

	"github.com/feedchain/feedchain/internal/apierror"
	"github.com/feedchain/feedchain/model"
)

// UpsertIdentity records that principal has been seen with its role. The
// previous role is read from the snapshot taken before the upsert.
func (d Datasource) UpsertIdentity(ctx context.Context, principal model.Principal) (bool, error) {
	var previous sql.NullString
	err := d.Conn.QueryRowContext(ctx, `
		WITH previous AS (SELECT role FROM identities WHERE user_id = $1)
		INSERT INTO identities (user_id, role, first_seen_at, last_seen_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role, last_seen_at = EXCLUDED.last_seen_at
		RETURNING (SELECT role FROM previous)
	`, principal.UserID, principal.Role, time.Now().UTC()).Scan(&previous)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record identity", err)
	}
	return !previous.Valid || previous.String != principal.Role, nil
}
