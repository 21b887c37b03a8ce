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

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/feedchain/feedchain"
	"github.com/feedchain/feedchain/config"
	"github.com/feedchain/feedchain/database/memory"
	"github.com/feedchain/feedchain/internal/auth"
	"github.com/feedchain/feedchain/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "feedchain-test-secret-0123456789"

type TestRequest struct {
	Payload  interface{}
	Router   *gin.Engine
	Response interface{}
	Method   string
	Route    string
	Token    string
}

func SetUpTestRequest(s TestRequest) (*httptest.ResponseRecorder, error) {
	var body io.Reader
	if s.Payload != nil {
		raw, err := json.Marshal(s.Payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(s.Method, s.Route, body)
	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	resp := httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)

	if s.Response != nil {
		if err := json.Unmarshal(resp.Body.Bytes(), s.Response); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testEnv struct {
	router *gin.Engine
	tokens map[string]string
}

func setupRouter(t *testing.T) testEnv {
	t.Helper()
	cnf := &config.Configuration{
		ProjectName: "FeedChain Test",
		DataSource:  config.DataSourceConfig{Dns: config.MemoryDataSource},
		Auth:        config.AuthConfig{JWTSecret: testSecret, Issuer: config.DEFAULT_TOKEN_ISSUER},
		Pickup:      config.PickupConfig{CodeLength: config.DEFAULT_CODE_LENGTH},
		Claim:       config.ClaimConfig{LockSeconds: config.DEFAULT_CLAIM_LOCK_SECS},
		Impact:      config.ImpactConfig{CacheTTLSeconds: config.DEFAULT_IMPACT_CACHE_TTL},
	}
	config.MockConfig(cnf)

	f := feedchain.New(memory.NewStore(), nil, cnf)
	api := NewAPI(f)
	require.NotNil(t, api)

	issuer := auth.New(testSecret, config.DEFAULT_TOKEN_ISSUER)
	tokens := make(map[string]string)
	for user, role := range map[string]string{
		"donor_1": model.RoleDonor,
		"ngo_a":   model.RoleNGO,
		"ngo_b":   model.RoleNGO,
		"admin_1": model.RoleAdmin,
	} {
		token, err := issuer.GenerateToken(user, role, time.Hour)
		require.NoError(t, err)
		tokens[user] = token
	}

	return testEnv{router: api.Router(), tokens: tokens}
}

func (e testEnv) postListing(t *testing.T) model.Listing {
	t.Helper()
	var listing model.Listing
	resp, err := SetUpTestRequest(TestRequest{
		Router:   e.router,
		Method:   http.MethodPost,
		Route:    "/food-posts",
		Token:    e.tokens["donor_1"],
		Response: &listing,
		Payload: map[string]interface{}{
			"food_type":   "Jollof rice",
			"quantity":    "5 boxes",
			"expiry_time": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
			"pickup_lat":  6.52,
			"pickup_lng":  3.37,
		},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return listing
}

func TestHealth(t *testing.T) {
	env := setupRouter(t)
	var body map[string]string
	resp, err := SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodGet, Route: "/health", Response: &body})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestAuthentication(t *testing.T) {
	env := setupRouter(t)

	var body errorBody
	resp, err := SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodGet, Route: "/auth/me", Response: &body})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)

	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodGet, Route: "/auth/me", Token: "not-a-jwt"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	var me model.Principal
	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodGet, Route: "/auth/me", Token: env.tokens["ngo_a"], Response: &me})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, model.Principal{UserID: "ngo_a", Role: model.RoleNGO}, me)
}

func TestCreateListing(t *testing.T) {
	env := setupRouter(t)
	listing := env.postListing(t)
	assert.Equal(t, "donor_1", listing.DonorID)
	assert.Equal(t, model.ListingStatusPosted, listing.Status)

	tests := []struct {
		name     string
		token    string
		payload  map[string]interface{}
		wantCode int
		wantErr  string
	}{
		{
			name:     "ngo cannot post",
			token:    env.tokens["ngo_a"],
			payload:  map[string]interface{}{"food_type": "Bread", "quantity": "2", "expiry_time": time.Now().Add(time.Hour).Format(time.RFC3339)},
			wantCode: http.StatusForbidden,
			wantErr:  "FORBIDDEN",
		},
		{
			name:     "missing expiry",
			token:    env.tokens["donor_1"],
			payload:  map[string]interface{}{"food_type": "Bread", "quantity": "2"},
			wantCode: http.StatusBadRequest,
			wantErr:  "INVALID_INPUT",
		},
		{
			name:     "expired",
			token:    env.tokens["donor_1"],
			payload:  map[string]interface{}{"food_type": "Bread", "quantity": "2", "expiry_time": time.Now().Add(-time.Hour).Format(time.RFC3339)},
			wantCode: http.StatusBadRequest,
			wantErr:  "INVALID_INPUT",
		},
		{
			name:     "bad latitude",
			token:    env.tokens["donor_1"],
			payload:  map[string]interface{}{"food_type": "Bread", "quantity": "2", "expiry_time": time.Now().Add(time.Hour).Format(time.RFC3339), "pickup_lat": 120.0, "pickup_lng": 3.0},
			wantCode: http.StatusBadRequest,
			wantErr:  "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			resp, err := SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodPost, Route: "/food-posts", Token: tt.token, Payload: tt.payload, Response: &body})
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantErr, body.Error.Code)
		})
	}
}

func TestListingReads(t *testing.T) {
	env := setupRouter(t)
	listing := env.postListing(t)

	var mine []model.Listing
	resp, err := SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodGet, Route: "/food-posts/my", Token: env.tokens["donor_1"], Response: &mine})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, mine, 1)
	assert.Equal(t, listing.ListingID, mine[0].ListingID)

	var one model.Listing
	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodGet, Route: "/food-posts/" + listing.ListingID, Token: env.tokens["ngo_a"], Response: &one})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, listing.ListingID, one.ListingID)

	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodGet, Route: "/food-posts/fp_missing", Token: env.tokens["ngo_a"]})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	var nearby []model.Listing
	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodGet, Route: "/food-posts/nearby?lat=6.5&lng=3.4", Token: env.tokens["ngo_a"], Response: &nearby})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, nearby, 1)

	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodGet, Route: "/food-posts/nearby?lat=6.5", Token: env.tokens["ngo_a"]})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodGet, Route: "/food-posts/nearby?lat=NaN&lng=3.4", Token: env.tokens["ngo_a"]})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodGet, Route: "/food-posts/nearby?lat=6.5&lng=3.4", Token: env.tokens["donor_1"]})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestClaimLifecycle(t *testing.T) {
	env := setupRouter(t)
	listing := env.postListing(t)
	claimRoute := fmt.Sprintf("/food-posts/%s/claim", listing.ListingID)

	var claim model.Claim
	resp, err := SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodPost, Route: claimRoute, Token: env.tokens["ngo_a"], Response: &claim})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, model.ClaimStatusClaimed, claim.Status)

	var conflict errorBody
	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodPost, Route: claimRoute, Token: env.tokens["ngo_b"], Response: &conflict})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "CONFLICT", conflict.Error.Code)

	var claims []model.Claim
	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodGet, Route: "/claims/my", Token: env.tokens["ngo_a"], Response: &claims})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, claims, 1)

	base := "/claims/" + claim.ClaimID

	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodPost, Route: base + "/pickup", Token: env.tokens["ngo_b"]})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	var started struct {
		Message        string `json:"message"`
		VerificationID int64  `json:"verification_id"`
		Code           string `json:"code"`
	}
	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodPost, Route: base + "/pickup", Token: env.tokens["ngo_a"], Response: &started})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, started.Code, 6)

	var again struct {
		Code string `json:"code"`
	}
	_, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodPost, Route: base + "/pickup", Token: env.tokens["ngo_a"], Response: &again})
	require.NoError(t, err)
	assert.Equal(t, started.Code, again.Code)

	wrong := "000000"
	if started.Code == wrong {
		wrong = "111111"
	}
	var invalid errorBody
	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodPost, Route: base + "/verify", Token: env.tokens["ngo_a"], Payload: map[string]string{"otp": wrong}, Response: &invalid})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "invalid code", invalid.Error.Message)

	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodPost, Route: base + "/cancel", Token: env.tokens["ngo_a"], Payload: map[string]string{}})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Code)

	// cancelled claims cannot be picked up
	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodPost, Route: base + "/verify", Token: env.tokens["ngo_a"], Payload: map[string]string{"otp": started.Code}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodPost, Route: claimRoute, Token: env.tokens["ngo_b"], Response: &claim})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "ngo_b", claim.NGOID)
}

func TestPickupAndDistribute(t *testing.T) {
	env := setupRouter(t)
	listing := env.postListing(t)

	var claim model.Claim
	_, err := SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodPost, Route: "/food-posts/" + listing.ListingID + "/claim", Token: env.tokens["ngo_a"], Response: &claim})
	require.NoError(t, err)
	base := "/claims/" + claim.ClaimID

	resp, err := SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodPost, Route: base + "/distribute", Token: env.tokens["ngo_a"], Payload: map[string]interface{}{"people_served": 40}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	var started struct {
		Code string `json:"code"`
	}
	_, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodPost, Route: base + "/pickup", Token: env.tokens["ngo_a"], Response: &started})
	require.NoError(t, err)

	var picked model.Claim
	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodPost, Route: base + "/verify", Token: env.tokens["ngo_a"], Payload: map[string]string{"otp": started.Code}, Response: &picked})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, model.ClaimStatusPicked, picked.Status)

	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodPost, Route: base + "/distribute", Token: env.tokens["ngo_a"], Payload: map[string]interface{}{"location": "Shelter"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var distributed model.Claim
	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodPost, Route: base + "/distribute", Token: env.tokens["ngo_a"], Payload: map[string]interface{}{"people_served": 40, "location": "Shelter"}, Response: &distributed})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, model.ClaimStatusDistributed, distributed.Status)

	var summary model.ImpactSummary
	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodGet, Route: "/impact/summary", Response: &summary})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int64(40), summary.MealsServed)
	assert.Equal(t, int64(1), summary.SuccessfulDistributions)
	assert.Equal(t, int64(1), summary.ActiveNGOs)

	var got model.Listing
	_, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodGet, Route: "/food-posts/" + listing.ListingID, Token: env.tokens["donor_1"], Response: &got})
	require.NoError(t, err)
	assert.Equal(t, model.ListingStatusClosed, got.Status)
}

func TestAdminOverview(t *testing.T) {
	env := setupRouter(t)
	env.postListing(t)

	var overview model.Overview
	resp, err := SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodGet, Route: "/admin/overview", Token: env.tokens["admin_1"], Response: &overview})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, overview.Listings, 1)
	assert.Empty(t, overview.Claims)

	var body errorBody
	resp, err = SetUpTestRequest(TestRequest{Router: env.router, Method: http.MethodGet, Route: "/admin/overview", Token: env.tokens["ngo_a"], Response: &body})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)
}
