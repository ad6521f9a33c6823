// 包 engine：信号合成编排（中心解析 → 图层并发拉取 → 多边形 → 热点链 → 流量与时序 → 信封）
package engine

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"geo-signals/internal/briefing"
	"geo-signals/internal/connectors"
	"geo-signals/internal/flows"
	"geo-signals/internal/geo"
	"geo-signals/internal/hotspots"
	"geo-signals/internal/logger"
	"geo-signals/internal/metrics"
	"geo-signals/internal/numeric"
	"geo-signals/internal/polygons"
	"geo-signals/internal/provenance"
	"geo-signals/internal/signals"
)

// RealOnlyPolicy：进程级只读策略，构造时注入
type RealOnlyPolicy = provenance.Policy

// 警告字符串（写入 envelope.warnings，供前端渲染“数据不可用”状态）
const (
	WarnLayerUnavailable   = "layer_unavailable:"
	WarnCenterUnresolved   = "center_unresolved"
	WarnHotspotsSuppressed = "real_only:hotspots_suppressed"
	WarnFlowsSuppressed    = "real_only:flows_suppressed"
	WarnHotspotsProvider   = "hotspots_provider:"
)

const (
	DefaultLayerTimeout = 5 * time.Second
	maxLayerTimeout     = 9 * time.Second
)

// Options：编排器依赖；nil 字段表示对应能力未配置
type Options struct {
	Policy       RealOnlyPolicy
	Sources      map[connectors.Layer]connectors.GeometrySource
	Aliases      *numeric.AliasTable
	Center       *connectors.CenterResolver
	Backend      *hotspots.Backend
	HotspotLimit int
	LayerTimeout time.Duration
	Now          func() time.Time
}

// 文档注释：信号合成编排器
// 背景：单次扫描从零计算，无跨扫描缓存；仅图层拉取为并发 I/O，其余步骤为同步纯计算。
// 约束：Scan 永不返回错误，单图层失败降级为空集合并记录警告；Real-Only 下热点链仅含要求 REAL 的后端来源，流量与时序为空。
// 并发安全：构造后只读，可被多个请求同时调用。
type Orchestrator struct {
	policy  RealOnlyPolicy
	sources map[connectors.Layer]connectors.GeometrySource
	builder *polygons.Builder
	center  *connectors.CenterResolver
	chain   *hotspots.Chain
	flows   *flows.Synthesizer
	timeout time.Duration
	now     func() time.Time
}

func New(opts Options) *Orchestrator {
	aliases := numeric.DefaultAliases()
	if opts.Aliases != nil {
		aliases = *opts.Aliases
	}
	t := opts.LayerTimeout
	if t <= 0 {
		t = DefaultLayerTimeout
	}
	if t > maxLayerTimeout {
		t = maxLayerTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		policy:  opts.Policy,
		sources: opts.Sources,
		builder: polygons.NewBuilder(aliases, opts.Policy),
		center:  opts.Center,
		chain:   buildChain(opts),
		flows:   flows.NewSynthesizer(opts.Policy),
		timeout: t,
		now:     now,
	}
}

// 文档注释：组装热点来源链
// 约束：推导模式为 [排序器, 后端, 径向兜底]；Real-Only 模式仅保留后端并强制 RequireReal，推导型来源不入链。
func buildChain(opts Options) *hotspots.Chain {
	var backend hotspots.Provider
	if opts.Backend != nil {
		b := *opts.Backend
		if opts.HotspotLimit > 0 {
			b.Limit = opts.HotspotLimit
		}
		if opts.Policy.RealOnly {
			b.RequireReal = true
		}
		backend = &b
	}
	if opts.Policy.RealOnly {
		return hotspots.NewChain(backend)
	}
	return hotspots.NewChain(
		hotspots.NewRanker(opts.HotspotLimit, opts.Policy),
		backend,
		&hotspots.Radial{Policy: opts.Policy},
	)
}

// Policy：当前注入的策略
func (o *Orchestrator) Policy() RealOnlyPolicy { return o.policy }

// ProviderNames：热点链顺序，用于启动日志
func (o *Orchestrator) ProviderNames() []string { return o.chain.Names() }

type layerResult struct {
	layer  connectors.Layer
	source string
	fc     geo.FeatureCollection
	err    error
}

// 文档注释：执行一次扫描
// 参数：clientIP 为请求方地址，仅用于 GeoIP 中心兜底，可为空。
// 返回：结构合法的信封；切片恒非 nil。
func (o *Orchestrator) Scan(ctx context.Context, br briefing.Briefing, clientIP string) *signals.Envelope {
	t0 := time.Now()
	env := signals.NewEnvelope(o.now().UTC(), o.policy.RealOnly)
	env.Briefing = signals.BriefingSummary{
		PrimaryCity: br.Geography.PrimaryCity,
		MunicipioID: br.Geography.MunicipioID,
		DataSources: append([]string{}, br.DataSources...),
	}
	logger.L().Debug("scan_begin", "city", br.Geography.PrimaryCity, "municipio", br.Geography.MunicipioID, "real_only", o.policy.RealOnly)

	center, tier := o.center.Resolve(br, clientIP)

	results := o.fetchLayers(ctx, br)
	layers := make([]polygons.Layer, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			env.Warn(WarnLayerUnavailable + string(r.layer))
			continue
		}
		layers = append(layers, polygons.Layer{Kind: r.layer.Kind(), Source: r.source, Collection: r.fc})
	}
	env.Polygons = o.builder.Build(layers, br)

	if center == nil {
		center = polygonsCenter(env.Polygons)
		if center != nil {
			tier = connectors.TierPolygons
		}
	}
	if center == nil {
		env.Warn(WarnCenterUnresolved)
	}
	env.Center = center

	res := o.chain.Resolve(ctx, hotspots.Input{Briefing: br, Polygons: env.Polygons, Center: center})
	env.Hotspots = res.Hotspots
	if res.Provider != "" {
		env.Warn(WarnHotspotsProvider + res.Provider)
	}

	if o.policy.RealOnly {
		if len(env.Hotspots) == 0 {
			env.Warn(WarnHotspotsSuppressed)
		}
		env.Warn(WarnFlowsSuppressed)
	} else {
		env.Flows = o.flows.Synthesize(center, br)
		env.Timeseries168h = flows.Weekly(br, o.policy)
	}

	dur := time.Since(t0).Milliseconds()
	metrics.ScansTotal.WithLabelValues(strconv.FormatBool(o.policy.RealOnly)).Inc()
	metrics.ScanDurationMs.Observe(float64(dur))
	logger.L().Info("scan_done",
		"polygons", len(env.Polygons),
		"hotspots", len(env.Hotspots),
		"provider", res.Provider,
		"flows", len(env.Flows),
		"center_tier", tier,
		"warnings", len(env.Warnings),
		"duration_ms", dur,
	)
	return env
}

// 文档注释：并发拉取全部已配置图层
// 背景：各图层互相独立，扇出后统一等待；每个图层有独立超时。
// 约束：goroutine 恒返回 nil，单图层失败不取消其它图层；结果按固定图层顺序返回，保证输出确定性。
func (o *Orchestrator) fetchLayers(ctx context.Context, br briefing.Briefing) []layerResult {
	j := br.Jurisdiction()
	var active []connectors.Layer
	for _, l := range connectors.AllLayers {
		if o.sources[l] != nil {
			active = append(active, l)
		}
	}
	results := make([]layerResult, len(active))
	g, gctx := errgroup.WithContext(ctx)
	for i, l := range active {
		i, l := i, l
		src := o.sources[l]
		g.Go(func() error {
			lctx, cancel := context.WithTimeout(gctx, o.timeout)
			defer cancel()
			fc, name, err := connectors.FetchFrom(lctx, src, connectors.Request{Layer: l, UF: j.UF, MunicipioID: j.MunicipioID})
			results[i] = layerResult{layer: l, source: name, fc: fc, err: err}
			if err != nil {
				logger.L().Warn("layer_fetch_error", "layer", l, "source", name, "err", err)
				metrics.LayerFailTotal.WithLabelValues(string(l)).Inc()
				return nil
			}
			metrics.LayerFeatures.WithLabelValues(string(l)).Observe(float64(len(fc.Features)))
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// polygonsCenter：多边形外环质心的均值
func polygonsCenter(polys []signals.Polygon) *geo.Point {
	pts := make([]geo.Point, 0, len(polys))
	for _, p := range polys {
		if c := geo.RingCentroid(p.Rings); c != nil {
			pts = append(pts, *c)
		}
	}
	return geo.MeanPoint(pts)
}
