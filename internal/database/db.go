// Package database opens the MySQL handle every repository shares.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/iliyamo/hotel-room-booking/internal/config"
)

// Open builds the DSN from cfg, applies the configured pool limits and
// verifies connectivity before returning.  parseTime maps DATETIME
// columns onto time.Time and loc=UTC keeps every timestamp (booking
// audit trail included) in one zone regardless of server settings.
func Open(cfg config.Config) (*sql.DB, error) {
	auth := cfg.DBUser
	if cfg.DBPass != "" {
		auth = cfg.DBUser + ":" + cfg.DBPass
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnTTLMin) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.DBPingTimeoutMS)*time.Millisecond)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return db, nil
}
