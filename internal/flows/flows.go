// 包 flows：推导模式下的合成流量网格与周内活跃度序列（仅用于可视化）
package flows

import (
	"math"
	"strconv"

	"geo-signals/internal/briefing"
	"geo-signals/internal/geo"
	"geo-signals/internal/numeric"
	"geo-signals/internal/provenance"
	"geo-signals/internal/signals"
	"geo-signals/internal/weighting"
)

const (
	DefaultLines  = 6
	DefaultExtent = 0.06 // 度，网格总跨度

	findSpotBoost = 1.2
	digitalDampen = 0.7
)

// 强度等级按 高/中/低 循环
var levels = []struct {
	label string
	base  float64
}{
	{"high", 0.85},
	{"medium", 0.55},
	{"low", 0.3},
}

// 文档注释：流量网格合成器
// 背景：系统没有真实人流数据来源，网格仅为推导可视化；FindSpot 目标更关心客流故增强，Digital 模式关心度低故减弱。
// 约束：Real-Only 下返回空；中心未知时返回空；所有线段为 DERIVED。
type Synthesizer struct {
	Lines  int
	Extent float64
	Policy provenance.Policy
}

func NewSynthesizer(policy provenance.Policy) *Synthesizer {
	return &Synthesizer{Lines: DefaultLines, Extent: DefaultExtent, Policy: policy}
}

func (s *Synthesizer) Synthesize(center *geo.Point, br briefing.Briefing) []signals.Flow {
	out := []signals.Flow{}
	if !s.Policy.AllowsDerived() || center == nil || s.Lines <= 0 {
		return out
	}
	mod := Modifier(br)
	half := s.Extent / 2
	step := 0.0
	if s.Lines > 1 {
		step = s.Extent / float64(s.Lines-1)
	}
	prov := provenance.NewDerived("synthetic-grid", "pattern×objective×operational-model")
	for i := 0; i < s.Lines; i++ {
		lv := levels[i%len(levels)]
		intensity := round3(numeric.Clamp(lv.base*mod, 0, 1))
		off := -half + float64(i)*step
		if s.Lines == 1 {
			off = 0
		}
		h := geo.LineString(
			geo.Point{Lat: center.Lat + off, Lng: center.Lng - half},
			geo.Point{Lat: center.Lat + off, Lng: center.Lng + half},
		)
		v := geo.LineString(
			geo.Point{Lat: center.Lat - half, Lng: center.Lng + off},
			geo.Point{Lat: center.Lat + half, Lng: center.Lng + off},
		)
		out = append(out,
			signals.Flow{Type: "Feature", Geometry: h, Properties: signals.FlowProperties{Intensity: intensity, Label: lv.label, Kind: "horizontal-" + strconv.Itoa(i+1)}, Provenance: prov},
			signals.Flow{Type: "Feature", Geometry: v, Properties: signals.FlowProperties{Intensity: intensity, Label: lv.label, Kind: "vertical-" + strconv.Itoa(i+1)}, Provenance: prov},
		)
	}
	return out
}

// Modifier：流量强度修正系数
func Modifier(br briefing.Briefing) float64 {
	m := 1.0
	if weighting.IsObjective(br.Objective, briefing.ObjectiveFindSpot) {
		m *= findSpotBoost
	}
	if weighting.IsModel(br.OperationalModel, briefing.ModelDigital) {
		m *= digitalDampen
	}
	return m
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
