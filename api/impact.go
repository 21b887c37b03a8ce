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
	"github.com/gin-gonic/gin"
)

func (a Api) ImpactSummary(c *gin.Context) {
	resp, err := a.feedchain.ImpactSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) AdminOverview(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	resp, err := a.feedchain.AdminOverview(c.Request.Context(), principal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) Me(c *gin.Context) {
	principal, _ := middleware.Principal(c)
	c.JSON(http.StatusOK, principal)
}
