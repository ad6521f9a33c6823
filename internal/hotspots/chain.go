package hotspots

import (
	"context"

	"geo-signals/internal/briefing"
	"geo-signals/internal/geo"
	"geo-signals/internal/logger"
	"geo-signals/internal/metrics"
	"geo-signals/internal/signals"
)

// Input：热点来源的统一输入
type Input struct {
	Briefing briefing.Briefing
	Polygons []signals.Polygon
	Center   *geo.Point
}

// 文档注释：热点来源策略
// 背景：编排器按顺序尝试各来源，首个返回非空结果的来源胜出。
// 约束：返回空切片表示“无数据”；错误仅用于记录，不中断后续来源。
type Provider interface {
	Name() string
	Hotspots(ctx context.Context, in Input) ([]signals.Hotspot, error)
}

// Result：链路结果；Provider 为空表示所有来源均无数据
type Result struct {
	Hotspots []signals.Hotspot
	Provider string
	Failed   []string
}

// 文档注释：有序来源链
// 约束：nil 来源被忽略；Real-Only 下由构造方排除推导型来源（排序器、径向兜底）。
type Chain struct {
	list []Provider
}

func NewChain(list ...Provider) *Chain {
	c := &Chain{}
	for _, p := range list {
		if p != nil {
			c.list = append(c.list, p)
		}
	}
	return c
}

// Names：链路中的来源名称（按尝试顺序）
func (c *Chain) Names() []string {
	out := make([]string, 0, len(c.list))
	for _, p := range c.list {
		out = append(out, p.Name())
	}
	return out
}

func (c *Chain) Resolve(ctx context.Context, in Input) Result {
	res := Result{Hotspots: []signals.Hotspot{}}
	for _, p := range c.list {
		hs, err := p.Hotspots(ctx, in)
		if err != nil {
			logger.L().Warn("hotspot_provider_error", "provider", p.Name(), "err", err)
			metrics.HotspotProviderTotal.WithLabelValues(p.Name(), "error").Inc()
			res.Failed = append(res.Failed, p.Name())
			continue
		}
		if len(hs) == 0 {
			metrics.HotspotProviderTotal.WithLabelValues(p.Name(), "empty").Inc()
			continue
		}
		metrics.HotspotProviderTotal.WithLabelValues(p.Name(), "used").Inc()
		logger.L().Debug("hotspot_provider_used", "provider", p.Name(), "count", len(hs))
		res.Hotspots = hs
		res.Provider = p.Name()
		return res
	}
	return res
}
