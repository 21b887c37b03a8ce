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
	"context"
	"errors"

	"github.com/feedchain/feedchain/internal/cache"
	"github.com/feedchain/feedchain/model"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

var impactTracer = otel.Tracer("feedchain.impact")

const impactCacheKey = "impact:summary"

// ImpactSummary aggregates distributed meals and active ngos. Results are
// cached until the next distribution or the configured TTL.
func (f *FeedChain) ImpactSummary(ctx context.Context) (model.ImpactSummary, error) {
	ctx, span := impactTracer.Start(ctx, "ImpactSummary")
	defer span.End()

	var summary model.ImpactSummary
	err := f.cache.Get(ctx, impactCacheKey, &summary)
	if err == nil {
		span.AddEvent("Impact summary served from cache")
		return summary, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logrus.WithError(err).Warn("impact cache read failed")
	}

	generation := f.impactGeneration()
	summary, err = f.datasource.GetImpactSummary(ctx)
	if err != nil {
		span.RecordError(err)
		reportFault(err)
		return model.ImpactSummary{}, err
	}

	f.impactMu.Lock()
	defer f.impactMu.Unlock()
	if f.impactGen != generation {
		span.AddEvent("Impact summary invalidated during read; not cached")
		return summary, nil
	}
	if err := f.cache.Set(ctx, impactCacheKey, summary, f.config.ImpactCacheTTL()); err != nil {
		logrus.WithError(err).Warn("impact cache write failed")
	}
	return summary, nil
}

func (f *FeedChain) impactGeneration() uint64 {
	f.impactMu.Lock()
	defer f.impactMu.Unlock()
	return f.impactGen
}

// invalidateImpact drops the cached summary. A read that started before the
// call will not write its result back.
func (f *FeedChain) invalidateImpact(ctx context.Context) error {
	f.impactMu.Lock()
	defer f.impactMu.Unlock()
	f.impactGen++
	return f.cache.Delete(ctx, impactCacheKey)
}

// HandleNotification drops the cached impact summary when another instance
// reports a change to the tables it is computed from.
func (f *FeedChain) HandleNotification(ctx context.Context, table string, _ map[string]interface{}) error {
	logrus.WithField("table", table).Debug("impact summary invalidated")
	return f.invalidateImpact(ctx)
}
