// 包 utils：Postgres / Redis / TLS 连接工具，统一环境变量读取
package utils

import (
	"database/sql"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			return n
		}
	}
	return def
}

func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return db, nil
}

// BuildPostgresDSNFromEnv：PG_HOST/PG_PORT/PG_USER/PG_PASSWORD/PG_DB/PG_SSLMODE 拼接 DSN
func BuildPostgresDSNFromEnv() string {
	dsn := "postgres://" + envOr("PG_USER", "postgres")
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		dsn += ":" + pass
	}
	dsn += "@" + envOr("PG_HOST", "localhost") + ":" + envOr("PG_PORT", "5432") + "/" + envOr("PG_DB", "territory")
	dsn += "?sslmode=" + envOr("PG_SSLMODE", "disable")
	return dsn
}

// OpenPostgresFromEnv：目录库连接；地标目录体量小，连接池默认偏小
func OpenPostgresFromEnv() (*sql.DB, error) {
	db, err := sql.Open("postgres", BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(envInt("PG_MAX_OPEN_CONNS", 10))
	db.SetMaxIdleConns(envInt("PG_MAX_IDLE_CONNS", 5))
	return db, nil
}
