package db

import (
	"github.com/pkg/errors"

	"github.com/flashwise/flashwise/internal/profile"
	"github.com/flashwise/flashwise/store"
	"github.com/flashwise/flashwise/store/db/postgres"
	"github.com/flashwise/flashwise/store/db/sqlite"
)

// Only PostgreSQL and SQLite are supported. PostgreSQL is the production
// driver (pgvector duplicate detection); SQLite serves single-user and
// development setups.

// NewDBDriver creates a new db driver based on profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.New("unknown db driver: only 'postgres' and 'sqlite' are supported")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
