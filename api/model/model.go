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
	"time"

	"github.com/feedchain/feedchain/model"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type CreateListing struct {
	FoodType   string     `json:"food_type"`
	Quantity   string     `json:"quantity"`
	ExpiryTime *time.Time `json:"expiry_time"`
	PickupLat  *float64   `json:"pickup_lat"`
	PickupLng  *float64   `json:"pickup_lng"`
}

func (l *CreateListing) ValidateCreateListing() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.FoodType, validation.Required, validation.Length(1, 120)),
		validation.Field(&l.Quantity, validation.Required, validation.Length(1, 120)),
		validation.Field(&l.ExpiryTime, validation.Required),
		validation.Field(&l.PickupLat, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&l.PickupLng, validation.Min(-180.0), validation.Max(180.0)),
	)
}

func (l *CreateListing) ToListing() model.Listing {
	listing := model.Listing{
		FoodType:  l.FoodType,
		Quantity:  l.Quantity,
		PickupLat: l.PickupLat,
		PickupLng: l.PickupLng,
	}
	if l.ExpiryTime != nil {
		listing.ExpiryTime = *l.ExpiryTime
	}
	return listing
}

// NearbyQuery is bound from the ?lat=&lng= query string.
type NearbyQuery struct {
	Lat *float64 `form:"lat"`
	Lng *float64 `form:"lng"`
}

func (q *NearbyQuery) ValidateNearbyQuery() error {
	return validation.ValidateStruct(q,
		validation.Field(&q.Lat, validation.NotNil, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&q.Lng, validation.NotNil, validation.Min(-180.0), validation.Max(180.0)),
	)
}

type ConfirmPickup struct {
	OTP string `json:"otp"`
}

func (p *ConfirmPickup) ValidateConfirmPickup() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.OTP, validation.Required),
	)
}

type Distribute struct {
	PeopleServed *int64 `json:"people_served"`
	Location     string `json:"location"`
}

func (d *Distribute) ValidateDistribute() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.PeopleServed, validation.NotNil, validation.Min(int64(1))),
		validation.Field(&d.Location, validation.Length(0, 255)),
	)
}

// PickupStarted is returned when a pickup is initiated. The code is
// included so the claimant can hand it to the donor.
type PickupStarted struct {
	Message        string `json:"message"`
	VerificationID int64  `json:"verification_id"`
	Code           string `json:"code"`
}

func NewPickupStarted(v model.PickupVerification) PickupStarted {
	return PickupStarted{
		Message:        "Pickup initiated",
		VerificationID: v.ID,
		Code:           v.Code,
	}
}
