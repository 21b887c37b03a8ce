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

package feedchain

import (
	"embed"
	"sync"
	"time"

	"github.com/feedchain/feedchain/config"
	"github.com/feedchain/feedchain/database"
	"github.com/feedchain/feedchain/internal/cache"
	redis_db "github.com/feedchain/feedchain/internal/redis-db"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

//go:embed sql/*.sql
var SQLFiles embed.FS

// FeedChain coordinates food posts through claim, pickup and distribution.
type FeedChain struct {
	datasource database.IDataSource
	redis      redis.UniversalClient
	cache      cache.Cache
	codes      CodeGenerator
	config     *config.Configuration
	now        func() time.Time

	// impactGen counts invalidations of the cached impact summary.
	impactMu  sync.Mutex
	impactGen uint64
}

// NewFeedChain builds the service from the loaded configuration. Redis is
// optional: without it claim locking is skipped and the impact summary is
// cached in process only.
func NewFeedChain(db database.IDataSource) (*FeedChain, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	var client *redis_db.Redis
	if configuration.Redis.Dns != "" {
		client, err = redis_db.NewRedisClient(redis_db.SplitAddresses(configuration.Redis.Dns), configuration.Redis.SkipTLSVerify)
		if err != nil {
			return nil, err
		}
	} else {
		logrus.Warn("redis not configured; claim locking disabled and impact cache is local")
	}

	return New(db, client, configuration), nil
}

// New wires a FeedChain from already constructed dependencies. client may
// be nil.
func New(db database.IDataSource, client *redis_db.Redis, configuration *config.Configuration) *FeedChain {
	f := &FeedChain{
		datasource: db,
		cache:      cache.NewCache(client, configuration.ImpactCacheTTL()),
		codes:      NewRandomCodeGenerator(configuration.Pickup.CodeLength),
		config:     configuration,
		now:        time.Now,
	}
	if client != nil {
		f.redis = client.Client()
	}
	return f
}

func (f *FeedChain) clock() time.Time {
	return f.now().UTC()
}
