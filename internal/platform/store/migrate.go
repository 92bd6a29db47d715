package store

import (
	"errors"
	"io/fs"
	"net/url"
	"strings"

	perr "crosspost/internal/platform/errors"
	"crosspost/internal/platform/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/clickhouse" // clickhouse:// driver
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"     // pgx5:// driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

type migrator interface {
	Up() error
	Close() (source error, database error)
}

var newMigrator = func(fsys fs.FS, dir, url string) (migrator, error) { // seam
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", src, url)
}

// Migrate applies fsys's postgres/ and clickhouse/ migrations to every enabled backend
// a schema that is already current is not an error
func Migrate(cfg Config, fsys fs.FS, log logger.Logger) error {
	if cfg.PG.Enabled {
		if err := up(fsys, "postgres", pgxURL(cfg.PG.URL), log); err != nil {
			return perr.Wrap(err, perr.ErrorCodeDB, "migrate postgres")
		}
	}
	if cfg.CH.Enabled {
		if err := up(fsys, "clickhouse", chMigrateURL(cfg.CH.URL), log); err != nil {
			return perr.Wrap(err, perr.ErrorCodeDB, "migrate clickhouse")
		}
	}
	return nil
}

func up(fsys fs.FS, dir, url string, log logger.Logger) error {
	m, err := newMigrator(fsys, dir, url)
	if err != nil {
		return err
	}
	defer func() {
		if serr, derr := m.Close(); serr != nil || derr != nil {
			log.Warn().AnErr("source", serr).AnErr("database", derr).Str("backend", dir).Msg("migrator close")
		}
	}()

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		log.Debug().Str("backend", dir).Msg("schema current")
	case err != nil:
		return err
	default:
		log.Info().Str("backend", dir).Msg("schema migrated")
	}
	return nil
}

// pgxURL points a postgres url at the pgx/v5 migrate driver
func pgxURL(u string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(u, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return u
}

// chMigrateURL moves the credentials and database of a clickhouse-go v2 url
// (user:pass@host:9000/db) into the username, password and database params the migrate driver reads
func chMigrateURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	q := u.Query()
	if u.User != nil {
		q.Set("username", u.User.Username())
		if pw, ok := u.User.Password(); ok {
			q.Set("password", pw)
		}
		u.User = nil
	}
	if db := strings.Trim(u.Path, "/"); db != "" && !q.Has("database") {
		q.Set("database", db)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = q.Encode()
	return u.String()
}
