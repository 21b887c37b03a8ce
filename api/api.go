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

	"github.com/feedchain/feedchain"
	"github.com/feedchain/feedchain/api/middleware"
	"github.com/feedchain/feedchain/config"
	"github.com/feedchain/feedchain/internal/auth"
	"github.com/feedchain/feedchain/model"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Api struct {
	feedchain *feedchain.FeedChain
	auth      *auth.Service
	router    *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router

	router.GET("/health", a.Health)
	router.GET("/impact/summary", a.ImpactSummary)

	authed := router.Group("/", middleware.Authenticate(a.auth, a.feedchain))
	authed.GET("/auth/me", a.Me)

	authed.POST("/food-posts", a.CreateListing)
	authed.GET("/food-posts/my", a.GetMyListings)
	authed.GET("/food-posts/nearby", a.GetNearbyListings)
	authed.GET("/food-posts/:id", a.GetListing)
	authed.POST("/food-posts/:id/claim", a.ClaimListing)

	authed.GET("/claims/my", a.GetMyClaims)
	authed.POST("/claims/:id/cancel", a.CancelClaim)
	authed.POST("/claims/:id/pickup", a.InitiatePickup)
	authed.POST("/claims/:id/verify", a.ConfirmPickup)
	authed.POST("/claims/:id/distribute", a.Distribute)

	authed.GET("/admin/overview", middleware.RequireRole(model.RoleAdmin), a.AdminOverview)
	return a.router
}

func NewAPI(f *feedchain.FeedChain) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(otelgin.Middleware(conf.ProjectName))
	r.Use(middleware.RateLimitMiddleware(conf))

	return &Api{
		feedchain: f,
		auth:      auth.New(conf.Auth.JWTSecret, conf.Auth.Issuer),
		router:    r,
	}
}

func (a Api) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
