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
	"fmt"

	"github.com/feedchain/feedchain/internal/apierror"
	"github.com/feedchain/feedchain/internal/notification"
	"github.com/feedchain/feedchain/model"
	"go.opentelemetry.io/otel"
)

var lifecycleTracer = otel.Tracer("feedchain.lifecycle")

func requireRole(principal model.Principal, role string) error {
	if principal.Role != role {
		return apierror.NewAPIError(apierror.ErrForbidden, fmt.Sprintf("Only %s accounts can perform this action", role), nil)
	}
	return nil
}

// loadOwnedClaim fetches a claim for an ngo and checks it belongs to them.
// Role is checked before the claim is read.
func (f *FeedChain) loadOwnedClaim(ctx context.Context, claimID string, principal model.Principal) (*model.Claim, error) {
	ctx, span := lifecycleTracer.Start(ctx, "LoadOwnedClaim")
	defer span.End()

	if err := requireRole(principal, model.RoleNGO); err != nil {
		return nil, err
	}

	claim, err := f.datasource.GetClaimByID(ctx, claimID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if claim.NGOID != principal.UserID {
		return nil, apierror.NewAPIError(apierror.ErrForbidden, "Not your claim", nil)
	}
	return claim, nil
}

func invalidState(format string, args ...any) error {
	return apierror.NewAPIError(apierror.ErrInvalidState, fmt.Sprintf(format, args...), nil)
}

func invalidInput(message string) error {
	return apierror.NewAPIError(apierror.ErrInvalidInput, message, nil)
}

// reportFault forwards unexpected store failures to the error notifier.
// Domain errors are returned to the caller only.
func reportFault(err error) {
	if err != nil && apierror.CodeOf(err) == apierror.ErrInternalServer {
		notification.NotifyError(err)
	}
}
