package connectors

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"geo-signals/internal/geo"
	"geo-signals/internal/logger"
	"geo-signals/internal/metrics"
)

// 文档注释：HTTP 几何来源
// 背景：按 URL 模板拉取 GeoJSON，模板占位符 {uf}、{municipio} 以请求中的行政区编码替换（URL 转义）。
// 约束：非 2xx 返回 ErrStatus；解析失败返回错误；客户端超时为单次请求上限，不重试。
type HTTPSource struct {
	name     string
	template string
	client   *http.Client
}

func NewHTTPSource(name, template string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSource{name: name, template: template, client: &http.Client{Timeout: timeout}}
}

func (h *HTTPSource) Name() string { return h.name }

// URL：展开模板
func (h *HTTPSource) URL(req Request) string {
	return expand(h.template, req, url.PathEscape)
}

// expand：替换 {layer}、{uf}、{municipio} 占位符；esc 非空时对行政区编码转义
func expand(tpl string, req Request, esc func(string) string) string {
	uf, mun := req.UF, req.MunicipioID
	if esc != nil {
		uf, mun = esc(uf), esc(mun)
	}
	return strings.NewReplacer("{uf}", uf, "{municipio}", mun, "{layer}", string(req.Layer)).Replace(tpl)
}

func (h *HTTPSource) Fetch(ctx context.Context, req Request) (geo.FeatureCollection, error) {
	u := h.URL(req)
	hr, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return geo.Empty(), err
	}
	hr.Header.Set("Accept", "application/geo+json, application/json")
	t0 := time.Now()
	logger.L().Debug("geometry_fetch", "source", h.name, "layer", req.Layer, "url", u)
	resp, err := h.client.Do(hr)
	metrics.ConnectorDurationMs.WithLabelValues(h.name).Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		return geo.Empty(), fmt.Errorf("%s: %w", h.name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return geo.Empty(), fmt.Errorf("%s: %w %d", h.name, ErrStatus, resp.StatusCode)
	}
	fc, err := geo.Decode(resp.Body)
	if err != nil {
		return geo.Empty(), fmt.Errorf("%s: %w", h.name, err)
	}
	logger.L().Debug("geometry_fetch_ok", "source", h.name, "layer", req.Layer, "features", len(fc.Features), "duration_ms", time.Since(t0).Milliseconds())
	return fc, nil
}
