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

import "time"

const VerificationMethodOTP = "OTP"

// PickupVerification is a one-time code issued for a pickup attempt.
// Records are ordered by ID; the highest ID is the current attempt.
type PickupVerification struct {
	ID         int64      `json:"id"`
	ClaimID    string     `json:"claim_id"`
	Method     string     `json:"method"`
	Code       string     `json:"-"`
	Verified   bool       `json:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
