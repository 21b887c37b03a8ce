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

	"github.com/feedchain/feedchain/internal/apierror"
	"github.com/feedchain/feedchain/model"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

var identityTracer = otel.Tracer("feedchain.identity")

// TrackPrincipal records that an authenticated user has been seen with a
// role. The ngo count in the impact summary is read from these records.
func (f *FeedChain) TrackPrincipal(ctx context.Context, principal model.Principal) error {
	ctx, span := identityTracer.Start(ctx, "TrackPrincipal")
	defer span.End()

	if principal.UserID == "" || !model.IsValidRole(principal.Role) {
		return apierror.NewAPIError(apierror.ErrUnauthorized, "Invalid principal", nil)
	}

	changed, err := f.datasource.UpsertIdentity(ctx, principal)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if changed {
		if err := f.invalidateImpact(ctx); err != nil {
			logrus.WithError(err).Warn("failed to invalidate impact summary")
		}
	}
	return nil
}
