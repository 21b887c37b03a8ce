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

	"github.com/feedchain/feedchain/internal/apierror"
	"github.com/feedchain/feedchain/model"
)

// GetImpactSummary aggregates DISTRIBUTED claims and counts known NGOs.
func (d Datasource) GetImpactSummary(ctx context.Context) (model.ImpactSummary, error) {
	var summary model.ImpactSummary
	err := d.Conn.QueryRowContext(ctx, `
		SELECT
			COALESCE((SELECT SUM(people_served) FROM claims WHERE status = $1), 0),
			(SELECT COUNT(*) FROM identities WHERE role = $2),
			(SELECT COUNT(*) FROM claims WHERE status = $1)
	`, model.ClaimStatusDistributed, model.RoleNGO).Scan(&summary.MealsServed, &summary.ActiveNGOs, &summary.SuccessfulDistributions)
	if err != nil {
		return model.ImpactSummary{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to compute impact summary", err)
	}
	return summary, nil
}
