package store

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/flashwise/flashwise/internal/version"
)

// Migration system overview:
//
// Schema version is stored in instance_setting under "schema-version".
//
// Flow:
//  1. New installations apply LATEST.sql (full schema, faster than
//     replaying incremental migrations) and record the current version.
//  2. Existing installations apply migration/{driver}/{version}/*.sql for
//     every version greater than the recorded one, in order.
//
// Migration files live at store/migration/{driver}/{version}/NN__desc.sql
// and are sorted lexicographically within a version directory.

//go:embed migration
var migrationFS embed.FS

const (
	// LatestSchemaFileName is applied wholesale on fresh installations.
	LatestSchemaFileName = "LATEST.sql"

	schemaVersionSettingName InstanceSettingKey = "schema-version"
)

// Migrate brings the database schema up to the current version.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}

	if !initialized {
		if err := s.applyLatestSchema(ctx); err != nil {
			return errors.Wrap(err, "failed to apply latest schema")
		}
		if err := s.setSchemaVersion(ctx, s.profile.Version); err != nil {
			return errors.Wrap(err, "failed to record schema version")
		}
		slog.Info("database initialized", "version", s.profile.Version, "driver", s.profile.Driver)
		return nil
	}

	currentVersion, err := s.getSchemaVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}

	applied, err := s.applyIncrementalMigrations(ctx, currentVersion)
	if err != nil {
		return errors.Wrapf(err, "failed to migrate from %s", currentVersion)
	}
	if applied > 0 {
		if err := s.setSchemaVersion(ctx, s.profile.Version); err != nil {
			return errors.Wrap(err, "failed to record schema version")
		}
		slog.Info("database migrated", "from", currentVersion, "to", s.profile.Version, "files", applied)
	}

	return nil
}

func (s *Store) applyLatestSchema(ctx context.Context) error {
	path := filepath.Join("migration", s.profile.Driver, LatestSchemaFileName)
	buf, err := migrationFS.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema %q", path)
	}

	if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrap(err, "failed to execute latest schema")
	}
	return nil
}

// applyIncrementalMigrations applies every migration directory with a
// version greater than currentVersion. Returns the number of applied files.
func (s *Store) applyIncrementalMigrations(ctx context.Context, currentVersion string) (int, error) {
	root := filepath.Join("migration", s.profile.Driver)
	entries, err := migrationFS.ReadDir(root)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read migration dir %q", root)
	}

	var versions []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if version.IsVersionGreaterThan(entry.Name(), currentVersion) &&
			version.IsVersionGreaterOrEqualThan(s.profile.Version, entry.Name()) {
			versions = append(versions, entry.Name())
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		return version.IsVersionGreaterThan(versions[j], versions[i])
	})

	applied := 0
	for _, v := range versions {
		files, err := fs.Glob(migrationFS, filepath.Join(root, v, "*.sql"))
		if err != nil {
			return applied, errors.Wrapf(err, "failed to list migrations for %s", v)
		}
		sort.Strings(files)

		for _, file := range files {
			buf, err := migrationFS.ReadFile(file)
			if err != nil {
				return applied, errors.Wrapf(err, "failed to read migration %q", file)
			}
			if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
				return applied, errors.Wrapf(err, "failed to execute migration %q", file)
			}
			applied++
		}
	}

	return applied, nil
}

func (s *Store) getSchemaVersion(ctx context.Context) (string, error) {
	name := schemaVersionSettingName
	setting, err := s.GetInstanceSetting(ctx, &FindInstanceSetting{Name: &name})
	if err != nil {
		return "", err
	}
	if setting == nil {
		return "0.0.0", nil
	}
	return setting.Value, nil
}

func (s *Store) setSchemaVersion(ctx context.Context, v string) error {
	_, err := s.UpsertInstanceSetting(ctx, &InstanceSetting{
		Name:  schemaVersionSettingName,
		Value: v,
	})
	return err
}
