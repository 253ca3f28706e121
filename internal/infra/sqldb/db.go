package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Open connects to the relational store named by url. Supported schemes:
// sqlite:// (or file:), postgres:// (or postgresql://) and mysql://.
func Open(url string, maxOpenConns int) (*bun.DB, error) {
	var db *bun.DB
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(url)))
		db = bun.NewDB(sqldb, pgdialect.New())
	case strings.HasPrefix(url, "mysql://"):
		cfg, err := mysql.ParseDSN(strings.TrimPrefix(url, "mysql://"))
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		sqldb, err := sql.Open("mysql", cfg.FormatDSN())
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db = bun.NewDB(sqldb, mysqldialect.New())
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"), url == ":memory:":
		sqldb, err := sql.Open(sqliteshim.ShimName, sqliteDSN(url))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// SQLite allows one writer; a single connection also keeps :memory: databases alive.
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	default:
		return nil, fmt.Errorf("unsupported database url %q", url)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	return db, nil
}

// sqliteDSN follows the SQLAlchemy convention: sqlite:///rel.db is relative,
// sqlite:////abs/path.db is absolute and a bare sqlite:// is in-memory.
func sqliteDSN(url string) string {
	if strings.HasPrefix(url, "file:") || url == ":memory:" {
		return url
	}
	rest := strings.TrimPrefix(url, "sqlite://")
	if rest == "" || rest == "/:memory:" || rest == ":memory:" {
		return ":memory:"
	}
	rest = strings.TrimPrefix(rest, "/")
	return "file:" + rest
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
