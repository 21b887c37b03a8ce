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

var distributionTracer = otel.Tracer("feedchain.distribution")

// Distribute records the hand-out of a picked up claim and closes its
// listing. peopleServed must be present and positive.
func (f *FeedChain) Distribute(ctx context.Context, claimID string, principal model.Principal, peopleServed *int64, location string) (*model.Claim, error) {
	ctx, span := distributionTracer.Start(ctx, "Distribute")
	defer span.End()

	claim, err := f.loadOwnedClaim(ctx, claimID, principal)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if claim.Status != model.ClaimStatusPicked {
		return nil, invalidState("Cannot distribute a claim that is %s", claim.Status)
	}
	if peopleServed == nil || *peopleServed <= 0 {
		return nil, invalidInput("people_served must be greater than zero")
	}

	distributed, err := f.datasource.TransitionClaim(ctx, model.ClaimTransition{
		ClaimID:              claimID,
		From:                 model.ClaimStatusPicked,
		ListingFrom:          model.ListingStatusPicked,
		To:                   model.ClaimStatusDistributed,
		ListingStatus:        model.ListingStatusClosed,
		At:                   f.clock(),
		PeopleServed:         *peopleServed,
		DistributionLocation: strings.TrimSpace(location),
	})
	if err != nil {
		span.RecordError(err)
		reportFault(err)
		return nil, err
	}

	if err := f.invalidateImpact(ctx); err != nil {
		logrus.WithError(err).Warn("failed to invalidate impact summary")
	}

	logrus.WithFields(logrus.Fields{"claim_id": claimID, "people_served": *peopleServed}).Info("claim distributed")
	span.AddEvent("Claim distributed", trace.WithAttributes(
		attribute.String("claim.id", claimID),
		attribute.Int64("claim.people_served", *peopleServed),
	))
	return distributed, nil
}
