package hotspots

import (
	"context"
	"math"
	"strconv"

	"geo-signals/internal/geo"
	"geo-signals/internal/provenance"
	"geo-signals/internal/signals"
)

const (
	radialCount  = 8
	radialRadius = 0.015 // 度
)

// 文档注释：径向兜底来源
// 背景：前置来源均无数据且中心已知时，围绕中心按等角度放置点位，保证地图上有可交互目标。
// 约束：纯数学构造，恒为 DERIVED；Real-Only 下不得加入链路，且自身也拒绝产出。
type Radial struct {
	Policy provenance.Policy
}

func (r *Radial) Name() string { return "radial-fallback" }

func (r *Radial) Hotspots(_ context.Context, in Input) ([]signals.Hotspot, error) {
	out := []signals.Hotspot{}
	if !r.Policy.AllowsDerived() || in.Center == nil {
		return out, nil
	}
	c := *in.Center
	lngScale := math.Cos(c.Lat * math.Pi / 180)
	if lngScale < 0.1 {
		lngScale = 0.1
	}
	for i := 0; i < radialCount; i++ {
		theta := 2 * math.Pi * float64(i) / radialCount
		id := "radial:" + strconv.Itoa(i+1)
		out = append(out, signals.Hotspot{
			ID: id,
			Point: geo.Point{
				Lat: c.Lat + radialRadius*math.Sin(theta),
				Lng: c.Lng + radialRadius*math.Cos(theta)/lngScale,
			},
			Properties: signals.HotspotProperties{
				ID:    id,
				Kind:  signals.KindHotspot,
				Rank:  i + 1,
				Name:  "Radial " + strconv.Itoa(i+1),
				Score: 100 - 10*i,
			},
			Provenance: provenance.NewDerived("geometry:center", "radial-fallback"),
		})
	}
	return out, nil
}
