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

	"github.com/feedchain/feedchain/internal/apierror"
	"github.com/feedchain/feedchain/model"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var pickupTracer = otel.Tracer("feedchain.pickup")

// InitiatePickup issues the pickup code for a CLAIMED claim. Repeated calls
// return the record issued first.
func (f *FeedChain) InitiatePickup(ctx context.Context, claimID string, principal model.Principal) (model.PickupVerification, error) {
	ctx, span := pickupTracer.Start(ctx, "InitiatePickup")
	defer span.End()

	claim, err := f.loadOwnedClaim(ctx, claimID, principal)
	if err != nil {
		span.RecordError(err)
		return model.PickupVerification{}, err
	}
	if claim.Status != model.ClaimStatusClaimed {
		return model.PickupVerification{}, invalidState("Cannot start pickup for a claim that is %s", claim.Status)
	}

	code, err := f.codes.Generate()
	if err != nil {
		span.RecordError(err)
		return model.PickupVerification{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to generate pickup code", err)
	}

	verification, created, err := f.datasource.CreateVerificationIfAbsent(ctx, model.PickupVerification{
		ClaimID:   claimID,
		Method:    model.VerificationMethodOTP,
		Code:      code,
		CreatedAt: f.clock(),
	})
	if err != nil {
		span.RecordError(err)
		reportFault(err)
		return model.PickupVerification{}, err
	}

	if created {
		logrus.WithFields(logrus.Fields{"claim_id": claimID, "verification_id": verification.ID}).Info("pickup code issued")
	}
	span.AddEvent("Pickup initiated", trace.WithAttributes(
		attribute.String("claim.id", claimID),
		attribute.Int64("verification.id", verification.ID),
		attribute.Bool("verification.created", created),
	))
	return verification, nil
}

// ConfirmPickup checks code against the claim's latest verification and
// moves the claim and its listing to PICKED.
func (f *FeedChain) ConfirmPickup(ctx context.Context, claimID string, principal model.Principal, code string) (*model.Claim, error) {
	ctx, span := pickupTracer.Start(ctx, "ConfirmPickup")
	defer span.End()

	claim, err := f.loadOwnedClaim(ctx, claimID, principal)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, invalidInput("otp is required")
	}

	verification, err := f.datasource.GetLatestVerification(ctx, claimID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if claim.Status != model.ClaimStatusClaimed {
		return nil, invalidState("Cannot confirm pickup for a claim that is %s", claim.Status)
	}
	if !codesMatch(verification.Code, code) {
		span.AddEvent("Pickup code rejected", trace.WithAttributes(attribute.String("claim.id", claimID)))
		return nil, invalidInput("invalid code")
	}

	picked, err := f.datasource.TransitionClaim(ctx, model.ClaimTransition{
		ClaimID:        claimID,
		From:           model.ClaimStatusClaimed,
		ListingFrom:    model.ListingStatusClaimed,
		To:             model.ClaimStatusPicked,
		ListingStatus:  model.ListingStatusPicked,
		At:             f.clock(),
		VerificationID: verification.ID,
	})
	if err != nil {
		span.RecordError(err)
		reportFault(err)
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"claim_id": claimID, "verification_id": verification.ID}).Info("pickup confirmed")
	span.AddEvent("Pickup confirmed", trace.WithAttributes(attribute.String("claim.id", claimID)))
	return picked, nil
}
