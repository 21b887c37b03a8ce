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

	"github.com/feedchain/feedchain/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var adminTracer = otel.Tracer("feedchain.admin")

func (f *FeedChain) AdminOverview(ctx context.Context, principal model.Principal) (model.Overview, error) {
	ctx, span := adminTracer.Start(ctx, "AdminOverview")
	defer span.End()

	if err := requireRole(principal, model.RoleAdmin); err != nil {
		return model.Overview{}, err
	}

	listings, err := f.datasource.GetAllListings(ctx)
	if err != nil {
		span.RecordError(err)
		return model.Overview{}, err
	}
	claims, err := f.datasource.GetAllClaims(ctx)
	if err != nil {
		span.RecordError(err)
		return model.Overview{}, err
	}

	span.AddEvent("Overview built", trace.WithAttributes(
		attribute.Int("food_post.count", len(listings)),
		attribute.Int("claim.count", len(claims)),
	))
	return model.Overview{Listings: listings, Claims: claims}, nil
}
