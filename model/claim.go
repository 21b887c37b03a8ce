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

const (
	ClaimStatusClaimed     = "CLAIMED"
	ClaimStatusCancelled   = "CANCELLED"
	ClaimStatusPicked      = "PICKED"
	ClaimStatusDistributed = "DISTRIBUTED"
)

// Claim binds one recipient organization to one listing.
type Claim struct {
	ID                   int64      `json:"-"`
	ClaimID              string     `json:"id"`
	ListingID            string     `json:"food_post_id"`
	NGOID                string     `json:"ngo_id"`
	Status               string     `json:"status"`
	ClaimedAt            time.Time  `json:"claimed_at"`
	PickedAt             *time.Time `json:"picked_at,omitempty"`
	DistributedAt        *time.Time `json:"distributed_at,omitempty"`
	PeopleServed         *int64     `json:"people_served,omitempty"`
	DistributionLocation string     `json:"distribution_location,omitempty"`
}

// IsActive reports whether the claim still holds its listing.
func (c *Claim) IsActive() bool {
	return c.Status != ClaimStatusCancelled
}

// ClaimTransition describes one compare-and-set move of a claim together
// with the status its listing must take in the same unit of work.
//
// The listing is always resolved from the stored claim row, never from
// caller input.
type ClaimTransition struct {
	ClaimID string
	From    string
	To      string

	// The claim's listing must be in ListingFrom and moves to ListingStatus.
	ListingFrom   string
	ListingStatus string
	At            time.Time

	// Set when To is PICKED: the verification record to mark as verified.
	VerificationID int64

	// Set when To is DISTRIBUTED.
	PeopleServed         int64
	DistributionLocation string
}

// claimTransitions lists the legal claim moves.
var claimTransitions = map[string][]string{
	ClaimStatusClaimed: {ClaimStatusCancelled, ClaimStatusPicked},
	ClaimStatusPicked:  {ClaimStatusDistributed},
}

// CanTransition reports whether a claim may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range claimTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
