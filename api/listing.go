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

func (a Api) CreateListing(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	var newListing model2.CreateListing
	if err := c.ShouldBindJSON(&newListing); err != nil {
		badRequest(c, err)
		return
	}
	if err := newListing.ValidateCreateListing(); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := a.feedchain.CreateListing(c.Request.Context(), principal, newListing.ToListing())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) GetMyListings(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	resp, err := a.feedchain.GetMyListings(c.Request.Context(), principal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetNearbyListings(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	var query model2.NearbyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}
	if err := query.ValidateNearbyQuery(); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := a.feedchain.GetNearbyListings(c.Request.Context(), principal, *query.Lat, *query.Lng)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetListing(c *gin.Context) {
	resp, err := a.feedchain.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
