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
	"net/http"

	"github.com/feedchain/feedchain/api/middleware"
	model2 "github.com/feedchain/feedchain/api/model"
	"github.com/gin-gonic/gin"
)

func (a Api) ClaimListing(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	resp, err := a.feedchain.ClaimListing(c.Request.Context(), c.Param("id"), principal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) GetMyClaims(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	resp, err := a.feedchain.GetMyClaims(c.Request.Context(), principal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) CancelClaim(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	resp, err := a.feedchain.CancelClaim(c.Request.Context(), c.Param("id"), principal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) InitiatePickup(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	verification, err := a.feedchain.InitiatePickup(c.Request.Context(), c.Param("id"), principal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model2.NewPickupStarted(verification))
}

func (a Api) ConfirmPickup(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	var req model2.ConfirmPickup
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.ValidateConfirmPickup(); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := a.feedchain.ConfirmPickup(c.Request.Context(), c.Param("id"), principal, req.OTP)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) Distribute(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	var req model2.Distribute
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.ValidateDistribute(); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := a.feedchain.Distribute(c.Request.Context(), c.Param("id"), principal, req.PeopleServed, req.Location)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
