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

package database

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/feedchain/feedchain/config"
	"github.com/feedchain/feedchain/database/memory"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 10
	connMaxLifetime = 30 * time.Minute
	connectTimeout  = 30 * time.Second
)

var (
	instance   *Datasource
	instanceMu sync.Mutex
)

var (
	_ IDataSource = Datasource{}
	_ IDataSource = (*memory.Store)(nil)
)

// Datasource is the Postgres implementation of IDataSource.
type Datasource struct {
	Conn *sql.DB
}

// NewDataSource returns the store selected by the configured data source
// dns: the in-memory store for memory://, Postgres otherwise.
func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	if configuration.UsesMemoryStore() {
		logrus.Warn("using in-memory data source; state is lost on restart")
		return memory.NewStore(), nil
	}
	return GetDBConnection(configuration)
}

// GetDBConnection opens the shared Postgres pool on first use. A failed
// attempt is retried by the next caller.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance != nil {
		return instance, nil
	}
	con, err := ConnectDB(configuration.DataSource.Dns)
	if err != nil {
		return nil, err
	}
	instance = &Datasource{Conn: con}
	return instance, nil
}

// ConnectDB opens a pool and pings it with exponential backoff until
// connectTimeout elapses.
func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = connectTimeout

	err = backoff.RetryNotify(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return db.PingContext(ctx)
	}, policy, func(err error, next time.Duration) {
		logrus.WithError(err).Warnf("database not reachable, retrying in %s", next)
	})
	if err != nil {
		_ = db.Close()
		logrus.WithError(err).Error("database connection error")
		return nil, err
	}
	return db, nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code.Name() == "unique_violation"
}
