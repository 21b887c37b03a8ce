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
	ListingStatusPosted  = "POSTED"
	ListingStatusClaimed = "CLAIMED"
	ListingStatusPicked  = "PICKED"
	ListingStatusClosed  = "CLOSED"
)

// Listing is a donor's offer of surplus food.
type Listing struct {
	ID         int64     `json:"-"`
	ListingID  string    `json:"id"`
	DonorID    string    `json:"donor_id"`
	FoodType   string    `json:"food_type"`
	Quantity   string    `json:"quantity"`
	ExpiryTime time.Time `json:"expiry_time"`
	PickupLat  *float64  `json:"pickup_lat,omitempty"`
	PickupLng  *float64  `json:"pickup_lng,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsExpired reports whether the listing's expiry is at or before now.
func (l *Listing) IsExpired(now time.Time) bool {
	return !l.ExpiryTime.After(now)
}

// IsAvailable reports whether the listing can currently be claimed.
func (l *Listing) IsAvailable(now time.Time) bool {
	return l.Status == ListingStatusPosted && !l.IsExpired(now)
}
