// 包 store：扫描归档（PostgreSQL），保存完整信封与日统计
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"geo-signals/internal/logger"
	"geo-signals/internal/signals"
)

// ErrNotFound：归档中不存在该扫描
var ErrNotFound = errors.New("store: scan not found")

// Store：数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// 文档注释：归档一次扫描
// 背景：完整信封以 JSONB 保存，便于导出方回放；计数列用于列表与统计，不需要解析 JSON。
// 约束：扫描 ID 必填；同 ID 重复写入时覆盖；日统计失败不影响归档结果。
func (s *Store) SaveEnvelope(ctx context.Context, env *signals.Envelope) error {
	if env == nil || env.ScanID == "" {
		return errors.New("store: envelope without scan id")
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("store: marshal envelope: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO gs_scans(scan_id, created_at, real_only, primary_city, municipio_id, polygons, hotspots, flows, warnings, envelope)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (scan_id) DO UPDATE SET envelope=EXCLUDED.envelope, warnings=EXCLUDED.warnings`,
		env.ScanID, env.CreatedAt, env.RealOnly, env.Briefing.PrimaryCity, env.Briefing.MunicipioID,
		len(env.Polygons), len(env.Hotspots), len(env.Flows), pq.Array(env.Warnings), raw,
	)
	if err != nil {
		return fmt.Errorf("store: insert scan: %w", err)
	}
	ro := 0
	if env.RealOnly {
		ro = 1
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO gs_stats_daily(day, scans, real_only_scans) VALUES(current_date, 1, $1)
        ON CONFLICT (day) DO UPDATE SET scans=gs_stats_daily.scans+1, real_only_scans=gs_stats_daily.real_only_scans+$1`, ro); err != nil {
		logger.L().Warn("stats_incr_error", "err", err)
	}
	logger.L().Debug("scan_archived", "scan_id", env.ScanID, "bytes", len(raw))
	return nil
}

// LoadEnvelope：按扫描 ID 读取归档信封
func (s *Store) LoadEnvelope(ctx context.Context, scanID string) (*signals.Envelope, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, "SELECT envelope FROM gs_scans WHERE scan_id=$1", scanID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: load scan: %w", err)
	}
	var env signals.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("store: decode envelope: %w", err)
	}
	return &env, nil
}

// Totals：累计与当日扫描次数
type Totals struct {
	Total         int64 `json:"total"`
	Today         int64 `json:"today"`
	RealOnlyToday int64 `json:"realOnlyToday"`
}

// GetTotals：读取统计；当日无记录时对应字段为 0
func (s *Store) GetTotals(ctx context.Context) (*Totals, error) {
	var t Totals
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(scans),0) FROM gs_stats_daily").Scan(&t.Total); err != nil {
		return nil, fmt.Errorf("store: totals: %w", err)
	}
	err := s.db.QueryRowContext(ctx, "SELECT scans, real_only_scans FROM gs_stats_daily WHERE day=current_date").Scan(&t.Today, &t.RealOnlyToday)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: today: %w", err)
	}
	logger.L().Debug("stats_totals", "total", t.Total, "today", t.Today)
	return &t, nil
}
