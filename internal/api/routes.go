// 包 api：集中注册 HTTP API 路由（扫描、取回、图例、统计），与主入口解耦
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"geo-signals/internal/briefing"
	"geo-signals/internal/choropleth"
	"geo-signals/internal/logger"
	"geo-signals/internal/publish"
	"geo-signals/internal/signals"
	"geo-signals/internal/store"
)

const maxBriefingBytes = 1 << 20

// Scanner：扫描编排器
type Scanner interface {
	Scan(ctx context.Context, br briefing.Briefing, clientIP string) *signals.Envelope
}

// Publisher：扫描结果发布（尽力而为，返回失败目标）
type Publisher interface {
	Publish(ctx context.Context, env *signals.Envelope) []string
}

// FetchFunc：按扫描 ID 取回信封；未找到时返回 publish.ErrNotFound 或 store.ErrNotFound
type FetchFunc func(ctx context.Context, scanID string) (*signals.Envelope, error)

// StatsReader：归档统计
type StatsReader interface {
	GetTotals(ctx context.Context) (*store.Totals, error)
}

// 文档注释：路由依赖
// 约束：Engine 必填；其余可为空，对应接口返回 503 或跳过。
type Deps struct {
	Engine    Scanner
	Publisher Publisher
	Fetchers  []FetchFunc
	Stats     StatsReader
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 API 前缀
func BuildRoutes(d Deps) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /scan", d.handleScan)
	mux.HandleFunc("GET /scans/{id}", d.handleGetScan)
	mux.HandleFunc("GET /scans/{id}/legend", d.handleLegend)
	mux.HandleFunc("GET /stats", d.handleStats)
	return mux
}

func (d Deps) handleScan(w http.ResponseWriter, r *http.Request) {
	var br briefing.Briefing
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBriefingBytes))
	if err := dec.Decode(&br); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if err := briefing.Validate(br); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	env := d.Engine.Scan(r.Context(), br, clientIP(r))
	env.ScanID = uuid.NewString()
	if d.Publisher != nil {
		if failed := d.Publisher.Publish(context.WithoutCancel(r.Context()), env); len(failed) > 0 {
			logger.L().Debug("scan_publish_partial", "scan_id", env.ScanID, "failed", failed)
		}
	}
	writeJSON(w, http.StatusOK, env)
}

func (d Deps) fetch(ctx context.Context, id string) (*signals.Envelope, error) {
	for _, f := range d.Fetchers {
		env, err := f(ctx, id)
		if err == nil {
			return env, nil
		}
		if !errors.Is(err, publish.ErrNotFound) && !errors.Is(err, store.ErrNotFound) {
			logger.L().Warn("scan_fetch_error", "scan_id", id, "err", err)
		}
	}
	return nil, publish.ErrNotFound
}

func (d Deps) handleGetScan(w http.ResponseWriter, r *http.Request) {
	env, err := d.fetch(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "scan not found")
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (d Deps) handleLegend(w http.ResponseWriter, r *http.Request) {
	attr := choropleth.Attribute(r.URL.Query().Get("attr"))
	if attr == "" {
		attr = choropleth.AttrPopulation
	}
	switch attr {
	case choropleth.AttrPopulation, choropleth.AttrIncome, choropleth.AttrAudience, choropleth.AttrScore:
	default:
		writeError(w, http.StatusBadRequest, "unknown attr: "+string(attr))
		return
	}
	env, err := d.fetch(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "scan not found")
		return
	}
	writeJSON(w, http.StatusOK, choropleth.BuildLegend(env.Polygons, attr, choropleth.DefaultPalette, choropleth.FallbackColor))
}

func (d Deps) handleStats(w http.ResponseWriter, r *http.Request) {
	if d.Stats == nil {
		writeError(w, http.StatusServiceUnavailable, "archive disabled")
		return
	}
	t, err := d.Stats.GetTotals(r.Context())
	if err != nil {
		logger.L().Error("stats_error", "err", err)
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
