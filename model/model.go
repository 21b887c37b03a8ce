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

package model

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateUUIDWithSuffix generates a UUID with a given module name as a prefix,
// e.g. "lst_6f1c...". The prefix makes identifiers self-describing in logs.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%s", module, id.String())
}

// Roles carried by an authenticated principal.
const (
	RoleDonor = "donor"
	RoleNGO   = "ngo"
	RoleAdmin = "admin"
)

// Principal is the authenticated caller as supplied by the identity layer.
type Principal struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleDonor, RoleNGO, RoleAdmin:
		return true
	}
	return false
}

// ImpactSummary is the aggregate read-model over completed distributions.
type ImpactSummary struct {
	MealsServed             int64 `json:"meals_served"`
	ActiveNGOs              int64 `json:"active_ngos"`
	SuccessfulDistributions int64 `json:"successful_distributions"`
}

// Overview is everything an admin sees.
type Overview struct {
	Listings []Listing `json:"food_posts"`
	Claims   []Claim   `json:"claims"`
}
