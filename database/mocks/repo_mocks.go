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
package mocks

import (
	"context"
	"time"

	"github.com/feedchain/feedchain/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Listing methods

func (m *MockDataSource) CreateListing(ctx context.Context, listing model.Listing) (model.Listing, error) {
	args := m.Called(ctx, listing)
	return args.Get(0).(model.Listing), args.Error(1)
}

func (m *MockDataSource) GetListingByID(ctx context.Context, id string) (*model.Listing, error) {
	args := m.Called(ctx, id)
	listing, _ := args.Get(0).(*model.Listing)
	return listing, args.Error(1)
}

func (m *MockDataSource) GetListingsByDonor(ctx context.Context, donorID string) ([]model.Listing, error) {
	args := m.Called(ctx, donorID)
	listings, _ := args.Get(0).([]model.Listing)
	return listings, args.Error(1)
}

func (m *MockDataSource) GetAvailableListings(ctx context.Context, now time.Time) ([]model.Listing, error) {
	args := m.Called(ctx, now)
	listings, _ := args.Get(0).([]model.Listing)
	return listings, args.Error(1)
}

func (m *MockDataSource) GetAllListings(ctx context.Context) ([]model.Listing, error) {
	args := m.Called(ctx)
	listings, _ := args.Get(0).([]model.Listing)
	return listings, args.Error(1)
}

// Claim methods

func (m *MockDataSource) CreateActiveClaim(ctx context.Context, claim model.Claim) (model.Claim, error) {
	args := m.Called(ctx, claim)
	return args.Get(0).(model.Claim), args.Error(1)
}

func (m *MockDataSource) GetClaimByID(ctx context.Context, id string) (*model.Claim, error) {
	args := m.Called(ctx, id)
	claim, _ := args.Get(0).(*model.Claim)
	return claim, args.Error(1)
}

func (m *MockDataSource) GetClaimsByNGO(ctx context.Context, ngoID string) ([]model.Claim, error) {
	args := m.Called(ctx, ngoID)
	claims, _ := args.Get(0).([]model.Claim)
	return claims, args.Error(1)
}

func (m *MockDataSource) GetAllClaims(ctx context.Context) ([]model.Claim, error) {
	args := m.Called(ctx)
	claims, _ := args.Get(0).([]model.Claim)
	return claims, args.Error(1)
}

func (m *MockDataSource) TransitionClaim(ctx context.Context, t model.ClaimTransition) (*model.Claim, error) {
	args := m.Called(ctx, t)
	claim, _ := args.Get(0).(*model.Claim)
	return claim, args.Error(1)
}

// Verification methods

func (m *MockDataSource) CreateVerificationIfAbsent(ctx context.Context, v model.PickupVerification) (model.PickupVerification, bool, error) {
	args := m.Called(ctx, v)
	return args.Get(0).(model.PickupVerification), args.Bool(1), args.Error(2)
}

func (m *MockDataSource) GetLatestVerification(ctx context.Context, claimID string) (*model.PickupVerification, error) {
	args := m.Called(ctx, claimID)
	v, _ := args.Get(0).(*model.PickupVerification)
	return v, args.Error(1)
}

// Identity methods

func (m *MockDataSource) UpsertIdentity(ctx context.Context, principal model.Principal) (bool, error) {
	args := m.Called(ctx, principal)
	return args.Bool(0), args.Error(1)
}

// Impact methods

func (m *MockDataSource) GetImpactSummary(ctx context.Context) (model.ImpactSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.ImpactSummary), args.Error(1)
}
