// 包 utils：外部依赖连接工具（Postgres、Redis、TLS 证书）
package utils

import (
	"database/sql"

	_ "github.com/lib/pq"

	"geo-signals/internal/config"
	"geo-signals/internal/logger"
)

// 文档注释：打开 Postgres 连接池
// 约束：仅创建连接池，不做 Ping；连接数上限为 0 时沿用 database/sql 默认值。
func OpenPostgres(c config.Postgres) (*sql.DB, error) {
	db, err := sql.Open("postgres", c.DSN())
	if err != nil {
		return nil, err
	}
	if c.MaxOpen > 0 {
		db.SetMaxOpenConns(c.MaxOpen)
	}
	if c.MaxIdle > 0 {
		db.SetMaxIdleConns(c.MaxIdle)
	}
	logger.L().Debug("pg_open", "host", c.Host, "db", c.DB, "max_open", c.MaxOpen)
	return db, nil
}
