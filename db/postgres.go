// api/db/postgres.go
package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/fintrack-app/api/logging"
)

var Postgres *sqlx.DB

func InitPostgres() error {
	dsn := viper.GetString("postgres.dsn")

	conn, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	Postgres = conn
	logger.Info("Successfully connected to Postgres")
	return nil
}

func ClosePostgres() {
	if Postgres != nil {
		if err := Postgres.Close(); err != nil {
			logger.Error("Error closing Postgres connection", zap.Error(err))
		}
	}
}
