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
	"errors"

	"github.com/feedchain/feedchain/internal/apierror"
	redlock "github.com/feedchain/feedchain/internal/lock"
	"github.com/feedchain/feedchain/model"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var claimTracer = otel.Tracer("feedchain.claim")

// acquireClaimLock takes the advisory lock for a listing. A held lock is a
// conflict. When Redis is unavailable the claim proceeds unlocked and the
// store's active claim guard decides.
func (f *FeedChain) acquireClaimLock(ctx context.Context, listingID string) (*redlock.Locker, error) {
	if f.redis == nil {
		return nil, nil
	}

	locker := redlock.NewLocker(f.redis, redlock.ListingKey(listingID), model.GenerateUUIDWithSuffix("lock"))
	err := locker.Lock(ctx, f.config.ClaimLockTTL())
	if errors.Is(err, redlock.ErrLockHeld) {
		return nil, apierror.NewAPIError(apierror.ErrConflict, "Food post already claimed", nil)
	}
	if err != nil {
		logrus.WithError(err).WithField("food_post_id", listingID).Warn("claim lock unavailable, relying on store guard")
		return nil, nil
	}
	return locker, nil
}

// ClaimListing gives an ngo the exclusive claim on a posted listing. At most
// one active claim can exist per listing; losers get a conflict.
func (f *FeedChain) ClaimListing(ctx context.Context, listingID string, principal model.Principal) (model.Claim, error) {
	ctx, span := claimTracer.Start(ctx, "ClaimListing")
	defer span.End()

	if err := requireRole(principal, model.RoleNGO); err != nil {
		return model.Claim{}, err
	}

	listing, err := f.datasource.GetListingByID(ctx, listingID)
	if err != nil {
		span.RecordError(err)
		return model.Claim{}, err
	}

	now := f.clock()
	if listing.IsExpired(now) {
		return model.Claim{}, invalidInput("Food post expired")
	}
	if listing.Status != model.ListingStatusPosted {
		return model.Claim{}, apierror.NewAPIError(apierror.ErrConflict, "Food post unavailable", nil)
	}

	locker, err := f.acquireClaimLock(ctx, listingID)
	if err != nil {
		span.RecordError(err)
		return model.Claim{}, err
	}
	if locker != nil {
		span.AddEvent("Claim lock acquired", trace.WithAttributes(attribute.String("lock.key", locker.Key())))
		defer func() {
			if err := locker.Unlock(context.Background()); err != nil {
				logrus.WithError(err).Warn("failed to release claim lock")
			}
		}()
	}

	claim, err := f.datasource.CreateActiveClaim(ctx, model.Claim{
		ClaimID:   model.GenerateUUIDWithSuffix("clm"),
		ListingID: listingID,
		NGOID:     principal.UserID,
		Status:    model.ClaimStatusClaimed,
		ClaimedAt: now,
	})
	if err != nil {
		span.RecordError(err)
		reportFault(err)
		return model.Claim{}, err
	}

	logrus.WithFields(logrus.Fields{"claim_id": claim.ClaimID, "food_post_id": listingID, "ngo_id": principal.UserID}).Info("food post claimed")
	span.AddEvent("Food post claimed", trace.WithAttributes(
		attribute.String("claim.id", claim.ClaimID),
		attribute.String("food_post.id", listingID),
	))
	return claim, nil
}

// CancelClaim releases a CLAIMED claim and reopens its listing.
func (f *FeedChain) CancelClaim(ctx context.Context, claimID string, principal model.Principal) (*model.Claim, error) {
	ctx, span := claimTracer.Start(ctx, "CancelClaim")
	defer span.End()

	claim, err := f.loadOwnedClaim(ctx, claimID, principal)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if claim.Status != model.ClaimStatusClaimed {
		return nil, invalidState("Cannot cancel a claim that is %s", claim.Status)
	}

	cancelled, err := f.datasource.TransitionClaim(ctx, model.ClaimTransition{
		ClaimID:       claimID,
		From:          model.ClaimStatusClaimed,
		ListingFrom:   model.ListingStatusClaimed,
		To:            model.ClaimStatusCancelled,
		ListingStatus: model.ListingStatusPosted,
		At:            f.clock(),
	})
	if err != nil {
		span.RecordError(err)
		reportFault(err)
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"claim_id": claimID, "food_post_id": cancelled.ListingID}).Info("claim cancelled")
	span.AddEvent("Claim cancelled", trace.WithAttributes(attribute.String("claim.id", claimID)))
	return cancelled, nil
}

// GetMyClaims lists the ngo's claims, newest first.
func (f *FeedChain) GetMyClaims(ctx context.Context, principal model.Principal) ([]model.Claim, error) {
	ctx, span := claimTracer.Start(ctx, "GetMyClaims")
	defer span.End()

	if err := requireRole(principal, model.RoleNGO); err != nil {
		return nil, err
	}

	claims, err := f.datasource.GetClaimsByNGO(ctx, principal.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.AddEvent("Claims retrieved", trace.WithAttributes(attribute.Int("claim.count", len(claims))))
	return claims, nil
}
