package hotspots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"geo-signals/internal/geo"
	"geo-signals/internal/logger"
	"geo-signals/internal/metrics"
	"geo-signals/internal/numeric"
	"geo-signals/internal/provenance"
	"geo-signals/internal/signals"
)

// ErrBackendStatus：后端返回非 2xx
var ErrBackendStatus = errors.New("hotspot backend: unexpected status")

// backendItem：后端热点契约
type backendItem struct {
	Lat    any    `json:"lat"`
	Lng    any    `json:"lng"`
	Name   string `json:"name"`
	Score  any    `json:"score"`
	Label  string `json:"label"`
	Source string `json:"source"`
}

// 文档注释：后端热点来源（次级恢复来源）
// 背景：通过简单 HTTP 契约获取第三方热点；扫描多边形存在时只保留落在多边形内的点，geohash-7 同格去重。
// 约束：仅当后端声明 REAL 且给出来源标识时标记 REAL，其余一律 DERIVED；RequireReal 时丢弃非 REAL 项。
// 输出最多 Limit 个（≤0 时取 DefaultLimit）；超时由 client 控制，失败不重试。
type Backend struct {
	Endpoint    string
	Limit       int
	RequireReal bool
	Client      *http.Client
}

func NewBackend(endpoint string, timeout time.Duration, limit int, requireReal bool) *Backend {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Backend{Endpoint: endpoint, Limit: limit, RequireReal: requireReal, Client: &http.Client{Timeout: timeout}}
}

func (b *Backend) Name() string { return "backend" }

func (b *Backend) Hotspots(ctx context.Context, in Input) ([]signals.Hotspot, error) {
	items, err := b.fetch(ctx, in)
	if err != nil {
		return nil, err
	}
	return b.normalize(items, in), nil
}

func (b *Backend) fetch(ctx context.Context, in Input) ([]backendItem, error) {
	q := url.Values{}
	if in.Center != nil {
		q.Set("lat", strconv.FormatFloat(in.Center.Lat, 'f', 6, 64))
		q.Set("lng", strconv.FormatFloat(in.Center.Lng, 'f', 6, 64))
	}
	if m := in.Briefing.Jurisdiction().MunicipioID; m != "" {
		q.Set("municipio", m)
	}
	u := b.Endpoint
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	t0 := time.Now()
	resp, err := b.Client.Do(req)
	metrics.ConnectorDurationMs.WithLabelValues("hotspot_backend").Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		return nil, fmt.Errorf("hotspot backend: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w %d", ErrBackendStatus, resp.StatusCode)
	}
	var body struct {
		Hotspots []backendItem `json:"hotspots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("hotspot backend decode: %w", err)
	}
	logger.L().Debug("hotspot_backend_resp", "items", len(body.Hotspots), "duration_ms", time.Since(t0).Milliseconds())
	return body.Hotspots, nil
}

func (b *Backend) normalize(items []backendItem, in Input) []signals.Hotspot {
	var rings []geo.Polygon
	for _, p := range in.Polygons {
		rings = append(rings, p.Rings...)
	}
	type scored struct {
		h     signals.Hotspot
		score float64
	}
	var kept []scored
	seen := map[string]bool{}
	for _, it := range items {
		lat, lng := numeric.ToNumber(it.Lat), numeric.ToNumber(it.Lng)
		if lat == nil || lng == nil || math.Abs(*lat) > 90 || math.Abs(*lng) > 180 {
			continue
		}
		pt := geo.Point{Lat: *lat, Lng: *lng}
		if len(rings) > 0 && !geo.PointInAny(pt, rings) {
			continue
		}
		prov := b.provenanceOf(it)
		if b.RequireReal && !prov.IsReal() {
			continue
		}
		cell := geo.Geohash(pt, 7)
		if seen[cell] {
			continue
		}
		seen[cell] = true
		sc := 1.0
		if n := numeric.ToNumber(it.Score); n != nil {
			sc = *n
		}
		id := "backend:" + cell
		name := it.Name
		if name == "" {
			name = id
		}
		kept = append(kept, scored{score: sc, h: signals.Hotspot{
			ID:         id,
			Point:      pt,
			Properties: signals.HotspotProperties{ID: id, Kind: signals.KindHotspot, Name: name},
			Provenance: prov,
		}})
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].score > kept[j].score })
	limit := b.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := make([]signals.Hotspot, 0, len(kept))
	for i, k := range kept {
		if i >= limit {
			break
		}
		h := k.h
		h.Properties.Rank = i + 1
		h.Properties.Score = numeric.ClampInt(k.score, 1, 100)
		out = append(out, h)
	}
	return out
}

func (b *Backend) provenanceOf(it backendItem) provenance.Provenance {
	if l, ok := provenance.ParseLabel(it.Label); ok && l == provenance.Real && it.Source != "" {
		return provenance.NewReal(it.Source)
	}
	src := it.Source
	if src == "" {
		src = "hotspot-backend"
	}
	return provenance.NewDerived(src, "backend-reported")
}
