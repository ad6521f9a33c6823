// 包 migrate：扫描归档库的表结构初始化
package migrate

import (
	"context"
	"database/sql"

	"geo-signals/internal/logger"
)

// Statements：按顺序执行的建表语句
var Statements = []string{
	`CREATE TABLE IF NOT EXISTS gs_scans (
        scan_id UUID PRIMARY KEY,
        created_at TIMESTAMPTZ NOT NULL,
        real_only BOOLEAN NOT NULL,
        primary_city TEXT NOT NULL DEFAULT '',
        municipio_id TEXT NOT NULL DEFAULT '',
        polygons INT NOT NULL DEFAULT 0,
        hotspots INT NOT NULL DEFAULT 0,
        flows INT NOT NULL DEFAULT 0,
        warnings TEXT[] NOT NULL DEFAULT '{}',
        envelope JSONB NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_gs_scans_created ON gs_scans(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_gs_scans_municipio ON gs_scans(municipio_id)`,
	`CREATE TABLE IF NOT EXISTS gs_stats_daily (
        day DATE PRIMARY KEY,
        scans BIGINT NOT NULL DEFAULT 0,
        real_only_scans BIGINT NOT NULL DEFAULT 0
    )`,
}

// 文档注释：确保表结构存在
// 背景：首次启动自动创建归档表与日统计表。
// 约束：全部使用 IF NOT EXISTS，可重复执行；任一语句失败立即返回。
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range Statements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
