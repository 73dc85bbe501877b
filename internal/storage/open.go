// Package storage picks the domain.Store implementation named by STORE_DRIVER.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"kotobuki_stay/internal/adapters/restdb"
	"kotobuki_stay/internal/domain"
	"kotobuki_stay/internal/shared"
	"kotobuki_stay/internal/storage/memory"
	mysqlrepo "kotobuki_stay/internal/storage/mysql"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open connects the configured store. The closer releases its connections.
func Open(ctx context.Context, cfg shared.Config) (domain.Store, io.Closer, error) {
	switch cfg.StoreDriver {
	case "mysql", "":
		dsn, err := mysql.ParseDSN(cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("parse MYSQL_DSN: %w", err)
		}
		dsn.ClientFoundRows = true
		db, err := sql.Open("mysql", dsn.FormatDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		db.SetMaxOpenConns(20)
		db.SetConnMaxLifetime(5 * time.Minute)
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("db ping: %w", err)
		}
		log.Info().Msg("database connection ok")
		return mysqlrepo.New(db), db, nil
	case "rest":
		c, err := restdb.New(cfg.RESTBase, cfg.RESTKey, cfg.RESTRPS)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("base", cfg.RESTBase).Msg("using hosted data API")
		return restdb.NewRepo(c), nopCloser{}, nil
	case "memory":
		log.Warn().Msg("using in-memory store; edits are lost on restart")
		return memory.New(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
