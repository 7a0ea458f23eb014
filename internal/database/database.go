package database

import (
	"context"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
)

func Connect(ctx context.Context) (*sqlx.DB, error) {
	dsn := viper.GetString("DB_DSN")
	return sqlx.ConnectContext(ctx, "pgx", dsn)
}
