// 包 hotspots：热点排序与多级热点来源策略（多边形排序 → 后端 → 径向兜底）
package hotspots

import (
	"context"
	"sort"

	"geo-signals/internal/briefing"
	"geo-signals/internal/geo"
	"geo-signals/internal/numeric"
	"geo-signals/internal/provenance"
	"geo-signals/internal/signals"
	"geo-signals/internal/weighting"
)

const (
	DefaultLimit = 20

	BehaviorMin = 0.85
	BehaviorMax = 1.06
)

// 文档注释：多边形热点排序器
// 背景：以受众估算（缺失时人口）× 简报权重 × 行为抖动为排序分，取前 N 个多边形的外环中心作为热点。
// 约束：排序与评分本身是推导计算，输出恒为 DERIVED；Real-Only 下整步跳过并返回空。
type Ranker struct {
	Limit  int
	Policy provenance.Policy
}

func NewRanker(limit int, policy provenance.Policy) *Ranker {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Ranker{Limit: limit, Policy: policy}
}

func (r *Ranker) Name() string { return "polygon-ranker" }

func (r *Ranker) Hotspots(_ context.Context, in Input) ([]signals.Hotspot, error) {
	return r.Rank(in.Polygons, in.Briefing), nil
}

type candidate struct {
	poly   *signals.Polygon
	point  geo.Point
	rankSc float64
}

// Rank：排序并归一化评分；最高排序分对应 100
func (r *Ranker) Rank(polys []signals.Polygon, br briefing.Briefing) []signals.Hotspot {
	out := []signals.Hotspot{}
	if !r.Policy.AllowsDerived() || len(polys) == 0 {
		return out
	}
	bw := weighting.BriefingWeight(br)
	cands := make([]candidate, 0, len(polys))
	for i := range polys {
		p := &polys[i]
		pt := geo.RingCentroid(p.Rings)
		if pt == nil {
			continue
		}
		cands = append(cands, candidate{poly: p, point: *pt, rankSc: RankingScore(p.Properties, br, bw)})
	}
	// 稳定排序：同分时保持多边形插入顺序
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].rankSc > cands[j].rankSc })
	if len(cands) > r.Limit {
		cands = cands[:r.Limit]
	}
	if len(cands) == 0 {
		return out
	}
	maxSc := cands[0].rankSc
	for i, c := range cands {
		score := 1
		if maxSc > 0 {
			score = numeric.ClampInt(c.rankSc/maxSc*100, 1, 100)
		}
		id := "hs:" + c.poly.Properties.ID
		out = append(out, signals.Hotspot{
			ID:    id,
			Point: c.point,
			Properties: signals.HotspotProperties{
				ID:                     id,
				Kind:                   c.poly.Properties.Kind,
				Rank:                   i + 1,
				Name:                   c.poly.Properties.Name,
				Score:                  score,
				TargetAudienceEstimate: c.poly.Properties.TargetAudienceEstimate,
			},
			Provenance: provenance.NewDerived(c.poly.Provenance.Source, "audience×briefing-weight×behavior-jitter"),
		})
	}
	return out
}

// RankingScore：(受众估算 ?? 人口 ?? 0) × 简报权重 × 行为抖动
func RankingScore(p signals.PolygonProperties, br briefing.Briefing, bw float64) float64 {
	base := 0.0
	switch {
	case p.TargetAudienceEstimate != nil:
		base = *p.TargetAudienceEstimate
	case p.Population != nil:
		base = *p.Population
	}
	return base * bw * weighting.SeededJitter(br.BehaviorSeed(p.ID), BehaviorMin, BehaviorMax)
}
